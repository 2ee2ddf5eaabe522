package chat

// flush waits until every event queued before it has been handled.
func (s *Session) flush() {
	s.call(evFlush, "")
}

package chat

type eventKind int

const (
	// connection lifecycle, tagged with the generation that produced them
	evOpened eventKind = iota
	evMessage
	evError
	evClosed
	evRetry

	// commands from the owning session
	evSubmit
	evTeardown
	// evFlush is only queued by tests to wait for earlier events.
	evFlush
)

func (k eventKind) String() string {
	switch k {
	case evOpened:
		return "opened"
	case evMessage:
		return "message"
	case evError:
		return "error"
	case evClosed:
		return "closed"
	case evRetry:
		return "retry"
	case evSubmit:
		return "submit"
	case evTeardown:
		return "teardown"
	case evFlush:
		return "flush"
	default:
		return "unknown"
	}
}

type event struct {
	kind  eventKind
	gen   uint64
	text  string
	err   error
	reply chan error
}

// connListener adapts transport callbacks for one connection generation
// into loop events.
type connListener struct {
	gen  uint64
	post func(event)
}

func (l connListener) OnOpen() {
	l.post(event{kind: evOpened, gen: l.gen})
}

func (l connListener) OnMessage(text string) {
	l.post(event{kind: evMessage, gen: l.gen, text: text})
}

func (l connListener) OnError(err error) {
	l.post(event{kind: evError, gen: l.gen, err: err})
}

func (l connListener) OnClose(err error) {
	l.post(event{kind: evClosed, gen: l.gen, err: err})
}

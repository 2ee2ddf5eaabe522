package chat

import "sync"

type Role string

const (
	RoleUser   Role = "user"
	RoleAI     Role = "ai"
	RoleStatus Role = "status"
)

// Transcript lines appended for lifecycle and input events.
const (
	StatusConnected        = "Connected"
	StatusDisconnected     = "Disconnected, attempting to reconnect"
	StatusNotConnected     = "Not connected, please wait"
	StatusEmptyQuery       = "Please enter a query"
	statusErrorPrefix      = "Connection error: "
	statusSendFailedPrefix = "Message not sent: "
)

// Message is one transcript entry. IDs are assigned by the MessageLog and
// strictly increase within a session.
type Message struct {
	ID      uint64
	Content string
	Role    Role
}

// MessageLog is the append-only transcript. Appends happen on the session
// loop; reads may come from any goroutine.
type MessageLog struct {
	mu          sync.RWMutex
	messages    []Message
	nextID      uint64
	subscribers []func(Message)
}

func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append stores a new entry at the tail and notifies subscribers.
func (l *MessageLog) Append(role Role, content string) Message {
	l.mu.Lock()
	l.nextID++
	msg := Message{ID: l.nextID, Content: content, Role: role}
	l.messages = append(l.messages, msg)
	subs := l.subscribers
	l.mu.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
	return msg
}

// All returns a copy of the transcript in order.
func (l *MessageLog) All() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Subscribe registers fn to be called after every append. fn runs on the
// appending goroutine and must not block or append.
func (l *MessageLog) Subscribe(fn func(Message)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers[:len(l.subscribers):len(l.subscribers)], fn)
}

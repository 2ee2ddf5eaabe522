package transport

import "errors"

var (
	ErrNotOpen        = errors.New("connection is not open")
	ErrSendBufferFull = errors.New("send buffer full")
)

// Listener receives the lifecycle of a single connection. OnOpen fires at
// most once, OnMessage and OnError any number of times while open, and
// OnClose exactly once as the last callback, whatever ended the connection
// (failed dial, remote close, network loss or a local Close).
// Callbacks arrive on transport goroutines and must not block.
type Listener interface {
	OnOpen()
	OnMessage(text string)
	OnError(err error)
	OnClose(err error)
}

// Conn is a text connection handle. It is returned before the connection is
// established; Close aborts a dial that is still in flight.
type Conn interface {
	// Send queues one unframed text frame. It never blocks.
	Send(text string) error
	Close() error
}

// Dialer starts connections in the background.
type Dialer interface {
	Open(url string, l Listener) Conn
}

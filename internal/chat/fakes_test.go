package chat

import (
	"sync"
	"time"

	"github.com/shivamgupta214/outfox-health-assessment/internal/transport"
)

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
}

func (d *fakeDialer) Open(url string, l transport.Listener) transport.Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := &fakeConn{url: url, listener: l}
	d.conns = append(d.conns, c)
	return c
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[len(d.conns)-1]
}

type fakeConn struct {
	url      string
	listener transport.Listener

	mu      sync.Mutex
	sent    []string
	closed  bool
	sendErr error
}

func (c *fakeConn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrNotOpen
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) sentTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type scheduledCall struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// fakeScheduler records AfterFunc calls; tests fire them by hand.
type fakeScheduler struct {
	mu    sync.Mutex
	calls []*scheduledCall
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := &scheduledCall{delay: d, fn: f}
	s.calls = append(s.calls, call)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if call.fired || call.cancelled {
			return false
		}
		call.cancelled = true
		return true
	}
}

func (s *fakeScheduler) all() []scheduledCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scheduledCall, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, *c)
	}
	return out
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if !c.fired && !c.cancelled {
			n++
		}
	}
	return n
}

// fireNext runs the oldest pending call, as the timer would.
func (s *fakeScheduler) fireNext() bool {
	s.mu.Lock()
	var next *scheduledCall
	for _, c := range s.calls {
		if !c.fired && !c.cancelled {
			next = c
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	s.mu.Unlock()

	if next == nil {
		return false
	}
	next.fn()
	return true
}

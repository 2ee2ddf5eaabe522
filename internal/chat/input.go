package chat

import (
	"errors"
	"strings"
	"sync"
)

// InputController validates user text and hands it to the Manager. The
// pending buffer mirrors what the view's input box holds.
type InputController struct {
	mgr *Manager
	log *MessageLog

	mu      sync.Mutex
	pending string
}

func newInputController(mgr *Manager, msgs *MessageLog) *InputController {
	return &InputController{mgr: mgr, log: msgs}
}

func (c *InputController) SetPending(text string) {
	c.mu.Lock()
	c.pending = text
	c.mu.Unlock()
}

func (c *InputController) Pending() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// submit runs on the session loop. Rejections are reported in the
// transcript and returned so the view can keep its input.
func (c *InputController) submit(raw string) error {
	if c.mgr.State() != StateOpen {
		c.log.Append(RoleStatus, StatusNotConnected)
		return ErrNotOpen
	}

	query := strings.TrimSpace(raw)
	if query == "" {
		c.log.Append(RoleStatus, StatusEmptyQuery)
		return ErrEmptyQuery
	}

	if err := c.mgr.send(query); err != nil {
		msg := err.Error()
		if unwrapped := errors.Unwrap(err); unwrapped != nil {
			msg = unwrapped.Error()
		}
		c.log.Append(RoleStatus, statusSendFailedPrefix+msg)
		return err
	}

	c.log.Append(RoleUser, query)
	c.clearPending(raw)
	return nil
}

// clearPending empties the buffer unless it was edited after raw was
// submitted.
func (c *InputController) clearPending(raw string) {
	c.mu.Lock()
	if c.pending == raw {
		c.pending = ""
	}
	c.mu.Unlock()
}

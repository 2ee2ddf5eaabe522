// Package chat implements the realtime chat session: an ordered transcript,
// a self-healing connection to the query service, and input validation,
// all driven by one event loop per session.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shivamgupta214/outfox-health-assessment/internal/transport"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

const eventBuffer = 256

type Options struct {
	URL            string
	Dialer         transport.Dialer
	Scheduler      Scheduler     // defaults to TimerScheduler
	ReconnectDelay time.Duration // defaults to DefaultReconnectDelay
}

// Session owns the loop that serializes every state change of one chat
// screen: transport callbacks, the retry timer, submits and teardown.
type Session struct {
	ID string

	log     *MessageLog
	mgr     *Manager
	input   *InputController
	events  chan event
	done    chan struct{}
	changed chan struct{}
	logger  zerolog.Logger
}

// NewSession creates the session, starts its loop and begins connecting.
// The loop tears the session down when ctx is cancelled.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.URL == "" {
		return nil, errors.New("chat: URL is required")
	}
	if opts.Dialer == nil {
		return nil, errors.New("chat: Dialer is required")
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler()
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}

	id := uuid.New().String()
	s := &Session{
		ID:      id,
		log:     NewMessageLog(),
		events:  make(chan event, eventBuffer),
		done:    make(chan struct{}),
		changed: make(chan struct{}, 1),
		logger:  log.ForSession(id, opts.URL),
	}
	s.mgr = newManager(opts.URL, opts.Dialer, opts.Scheduler, opts.ReconnectDelay,
		s.log, s.post, s.notify, s.logger)
	s.input = newInputController(s.mgr, s.log)
	s.log.Subscribe(func(msg Message) {
		s.logger.Debug().Uint64("id", msg.ID).Str(log.FieldRole, string(msg.Role)).Msg("transcript append")
		s.notify()
	})

	s.mgr.connect()
	go s.run(ctx)

	s.logger.Info().Msg("chat session started")
	return s, nil
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.mgr.close()
			s.logger.Info().Msg("chat session ended by context")
			return

		case ev := <-s.events:
			switch ev.kind {
			case evSubmit:
				ev.reply <- s.input.submit(ev.text)

			case evFlush: // test barrier, see export_test.go
				ev.reply <- nil

			case evTeardown:
				s.mgr.close()
				ev.reply <- nil
				s.logger.Info().Msg("chat session closed")
				return

			default:
				s.mgr.handle(ev)
			}
		}
	}
}

// post hands an event to the loop, or drops it once the loop has exited.
func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// enqueue places a command on the loop; the result arrives on the
// returned channel.
func (s *Session) enqueue(kind eventKind, text string) (chan error, bool) {
	reply := make(chan error, 1)
	select {
	case s.events <- event{kind: kind, text: text, reply: reply}:
		return reply, true
	case <-s.done:
		return nil, false
	}
}

func (s *Session) await(reply chan error) error {
	select {
	case err := <-reply:
		return err
	case <-s.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrSessionClosed
		}
	}
}

// call runs a command on the loop and waits for its result.
func (s *Session) call(kind eventKind, text string) error {
	reply, ok := s.enqueue(kind, text)
	if !ok {
		return ErrSessionClosed
	}
	return s.await(reply)
}

// Submit queues raw for validation and sending in call order. It does not
// wait for the loop; the outcome arrives on the channel (nil when the query
// went out).
func (s *Session) Submit(raw string) <-chan error {
	out := make(chan error, 1)
	reply, ok := s.enqueue(evSubmit, raw)
	if !ok {
		out <- ErrSessionClosed
		return out
	}
	go func() {
		out <- s.await(reply)
	}()
	return out
}

// SubmitPending submits the input buffer, the path used by the Enter key.
func (s *Session) SubmitPending() <-chan error {
	return s.Submit(s.input.Pending())
}

// Close cancels any pending reconnect, closes the connection and stops the
// loop. No transcript entry is appended after Close returns.
func (s *Session) Close() {
	s.call(evTeardown, "")
	<-s.done
}

func (s *Session) State() ConnectionState { return s.mgr.State() }

func (s *Session) Messages() []Message { return s.log.All() }

func (s *Session) Log() *MessageLog { return s.log }

func (s *Session) Input() *InputController { return s.input }

// Changed signals, coalesced, that the transcript or state moved.
func (s *Session) Changed() <-chan struct{} { return s.changed }

// Done is closed once the session loop has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

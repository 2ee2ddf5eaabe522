package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivamgupta214/outfox-health-assessment/internal/transport"
)

const testURL = "ws://navigator.test/ws/ask"

type entry struct {
	Role    Role
	Content string
}

func entries(msgs []Message) []entry {
	out := make([]entry, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, entry{Role: m.Role, Content: m.Content})
	}
	return out
}

func newTestSession(t *testing.T) (*Session, *fakeDialer, *fakeScheduler) {
	t.Helper()
	dialer := &fakeDialer{}
	sched := &fakeScheduler{}
	s, err := NewSession(context.Background(), Options{
		URL:       testURL,
		Dialer:    dialer,
		Scheduler: sched,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, dialer, sched
}

func openSession(t *testing.T) (*Session, *fakeDialer, *fakeScheduler) {
	t.Helper()
	s, dialer, sched := newTestSession(t)
	dialer.last().listener.OnOpen()
	s.flush()
	require.Equal(t, StateOpen, s.State())
	return s, dialer, sched
}

func TestNewSessionConnectsImmediately(t *testing.T) {
	require := require.New(t)

	s, dialer, _ := newTestSession(t)

	require.Equal(1, dialer.count())
	require.Equal(testURL, dialer.last().url)
	require.Equal(StateConnecting, s.State())
	require.Empty(s.Messages())
}

func TestNewSessionValidatesOptions(t *testing.T) {
	_, err := NewSession(context.Background(), Options{Dialer: &fakeDialer{}})
	require.Error(t, err)

	_, err = NewSession(context.Background(), Options{URL: testURL})
	require.Error(t, err)
}

func TestQueryAndReplyScenario(t *testing.T) {
	require := require.New(t)

	s, dialer, _ := openSession(t)

	require.NoError(<-s.Submit("chest pain"))
	dialer.last().listener.OnMessage("Found 3 providers")
	s.flush()

	require.Equal([]entry{
		{RoleStatus, StatusConnected},
		{RoleUser, "chest pain"},
		{RoleAI, "Found 3 providers"},
	}, entries(s.Messages()))
	require.Equal([]string{"chest pain"}, dialer.last().sentTexts())
}

func TestSubmitTrimsBeforeSending(t *testing.T) {
	require := require.New(t)

	s, dialer, _ := openSession(t)

	require.NoError(<-s.Submit("  knee replacement \n"))
	require.Equal([]string{"knee replacement"}, dialer.last().sentTexts())

	msgs := s.Messages()
	require.Equal(RoleUser, msgs[len(msgs)-1].Role)
	require.Equal("knee replacement", msgs[len(msgs)-1].Content)
}

func TestSubmitEmptyQuery(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		s, dialer, _ := openSession(t)
		before := len(s.Messages())

		err := <-s.Submit(raw)
		require.ErrorIs(t, err, ErrEmptyQuery)

		msgs := s.Messages()
		require.Len(t, msgs, before+1)
		require.Equal(t, entry{RoleStatus, StatusEmptyQuery}, entries(msgs)[before])
		require.Empty(t, dialer.last().sentTexts())
	}
}

func TestSubmitWhileNotOpen(t *testing.T) {
	require := require.New(t)

	s, dialer, _ := newTestSession(t)

	err := <-s.Submit("chest pain")
	require.ErrorIs(err, ErrNotOpen)
	require.Equal([]entry{{RoleStatus, StatusNotConnected}}, entries(s.Messages()))
	require.Empty(dialer.last().sentTexts())
}

func TestSubmitWhileReconnectingTakesPrecedenceOverEmpty(t *testing.T) {
	require := require.New(t)

	s, dialer, _ := openSession(t)
	dialer.last().listener.OnClose(nil)
	s.flush()
	require.Equal(StateReconnecting, s.State())

	err := <-s.Submit("   ")
	require.ErrorIs(err, ErrNotOpen)
	msgs := s.Messages()
	require.Equal(entry{RoleStatus, StatusNotConnected}, entries(msgs)[len(msgs)-1])
}

func TestSubmitPendingClearsBuffer(t *testing.T) {
	require := require.New(t)

	s, dialer, _ := openSession(t)
	s.Input().SetPending(" heart failure ")

	require.NoError(<-s.SubmitPending())
	require.Equal("", s.Input().Pending())
	require.Equal([]string{"heart failure"}, dialer.last().sentTexts())
}

func TestSubmitKeepsTextTypedAfterIt(t *testing.T) {
	require := require.New(t)

	s, dialer, _ := openSession(t)
	s.Input().SetPending("hip fracture")

	require.NoError(<-s.Submit("heart failure"))
	require.Equal("hip fracture", s.Input().Pending())
	require.Equal([]string{"heart failure"}, dialer.last().sentTexts())
}

func TestFlushLeavesSessionUntouched(t *testing.T) {
	require := require.New(t)

	s, dialer, sched := openSession(t)
	before := s.Messages()

	s.flush()
	s.flush()

	require.Equal(before, s.Messages())
	require.Equal(StateOpen, s.State())
	require.Empty(dialer.last().sentTexts())
	require.Zero(sched.pending())
}

func TestRejectedSubmitKeepsBuffer(t *testing.T) {
	require := require.New(t)

	s, _, _ := newTestSession(t)
	s.Input().SetPending("sepsis")

	require.ErrorIs(<-s.SubmitPending(), ErrNotOpen)
	require.Equal("sepsis", s.Input().Pending())
}

func TestSendFailureIsReported(t *testing.T) {
	require := require.New(t)

	s, dialer, _ := openSession(t)
	conn := dialer.last()
	conn.mu.Lock()
	conn.sendErr = transport.ErrSendBufferFull
	conn.mu.Unlock()

	err := <-s.Submit("chest pain")
	require.ErrorIs(err, transport.ErrSendBufferFull)

	msgs := entries(s.Messages())
	require.Equal(entry{RoleStatus, statusSendFailedPrefix + "send buffer full"}, msgs[len(msgs)-1])
	for _, m := range msgs {
		require.NotEqual(RoleUser, m.Role)
	}
}

func TestCloseEventSchedulesSingleRetry(t *testing.T) {
	require := require.New(t)

	s, dialer, sched := openSession(t)
	first := dialer.last()

	first.listener.OnClose(errors.New("server went away"))
	s.flush()

	require.Equal(StateReconnecting, s.State())
	msgs := entries(s.Messages())
	require.Equal(entry{RoleStatus, StatusDisconnected}, msgs[len(msgs)-1])

	calls := sched.all()
	require.Len(calls, 1)
	require.Equal(3000*time.Millisecond, calls[0].delay)

	// A second close before the timer fires schedules nothing more.
	first.listener.OnClose(nil)
	s.flush()
	require.Len(sched.all(), 1)
	require.Len(s.Messages(), len(msgs))
	require.Equal(1, dialer.count())

	require.True(sched.fireNext())
	s.flush()

	require.Equal(2, dialer.count())
	require.Equal(StateConnecting, s.State())
	require.Equal(0, sched.pending())
}

func TestReconnectCycle(t *testing.T) {
	require := require.New(t)

	s, dialer, sched := openSession(t)

	for i := 0; i < 3; i++ {
		dialer.last().listener.OnClose(nil)
		s.flush()
		require.True(sched.fireNext())
		s.flush()
		dialer.last().listener.OnOpen()
		s.flush()
		require.Equal(StateOpen, s.State())
	}

	require.Equal(4, dialer.count())
	require.NoError(<-s.Submit("hip fracture"))
	require.Equal([]string{"hip fracture"}, dialer.last().sentTexts())
}

func TestFailedDialRetriesForever(t *testing.T) {
	require := require.New(t)

	s, dialer, sched := newTestSession(t)

	for i := 0; i < 5; i++ {
		conn := dialer.last()
		conn.listener.OnError(errors.New("connection refused"))
		conn.listener.OnClose(errors.New("connection refused"))
		s.flush()
		require.Equal(StateReconnecting, s.State())
		require.True(sched.fireNext())
		s.flush()
	}

	require.Equal(6, dialer.count())
	for _, c := range sched.all() {
		require.Equal(DefaultReconnectDelay, c.delay)
	}
}

func TestTransportErrorIsReportedWithoutStateChange(t *testing.T) {
	require := require.New(t)

	s, dialer, sched := openSession(t)

	dialer.last().listener.OnError(errors.New("read tcp: connection reset"))
	s.flush()

	require.Equal(StateOpen, s.State())
	msgs := entries(s.Messages())
	require.Equal(entry{RoleStatus, "Connection error: read tcp: connection reset"}, msgs[len(msgs)-1])
	require.Equal(0, sched.pending())
	require.Equal(1, dialer.count())
}

func TestEventsFromSupersededConnectionAreIgnored(t *testing.T) {
	require := require.New(t)

	s, dialer, sched := openSession(t)
	old := dialer.last()
	old.listener.OnClose(nil)
	s.flush()
	require.True(sched.fireNext())
	s.flush()
	dialer.last().listener.OnOpen()
	s.flush()
	before := len(s.Messages())

	old.listener.OnMessage("late reply")
	old.listener.OnClose(nil)
	s.flush()

	require.Len(s.Messages(), before)
	require.Equal(StateOpen, s.State())
	require.Equal(0, sched.pending())
}

func TestTeardownCancelsPendingRetry(t *testing.T) {
	require := require.New(t)

	s, dialer, sched := openSession(t)
	conn := dialer.last()
	conn.listener.OnClose(nil)
	s.flush()
	require.Equal(1, sched.pending())
	before := len(s.Messages())

	s.Close()

	require.Equal(StateClosed, s.State())
	require.Equal(0, sched.pending())
	calls := sched.all()
	require.True(calls[0].cancelled)

	// A timer that slipped through and late callbacks change nothing.
	calls[0].fn()
	conn.listener.OnMessage("too late")
	conn.listener.OnOpen()

	require.Len(s.Messages(), before)
	require.Equal(1, dialer.count())
}

func TestTeardownClosesLiveConnection(t *testing.T) {
	require := require.New(t)

	s, dialer, sched := openSession(t)
	s.Close()

	require.True(dialer.last().isClosed())
	require.Equal(StateClosed, s.State())
	require.Equal(0, sched.pending())
	require.ErrorIs(<-s.Submit("chest pain"), ErrSessionClosed)

	// Close is idempotent.
	s.Close()
}

func TestContextCancellationTearsDown(t *testing.T) {
	require := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	dialer := &fakeDialer{}
	s, err := NewSession(ctx, Options{URL: testURL, Dialer: dialer, Scheduler: &fakeScheduler{}})
	require.NoError(err)

	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session loop did not stop")
	}
	require.Equal(StateClosed, s.State())
	require.True(dialer.last().isClosed())
}

func TestChangedSignalsAppends(t *testing.T) {
	s, dialer, _ := newTestSession(t)

	// drain anything from startup
	select {
	case <-s.Changed():
	default:
	}

	dialer.last().listener.OnOpen()
	select {
	case <-s.Changed():
	case <-time.After(time.Second):
		t.Fatal("expected change notification")
	}
}

func TestTranscriptIDsStrictlyIncrease(t *testing.T) {
	s, dialer, sched := openSession(t)

	for i := 0; i < 20; i++ {
		l := dialer.last().listener
		switch i % 4 {
		case 0:
			l.OnMessage("reply")
		case 1:
			<-s.Submit("query")
		case 2:
			l.OnError(errors.New("glitch"))
		case 3:
			l.OnClose(nil)
			s.flush()
			sched.fireNext()
			s.flush()
			dialer.last().listener.OnOpen()
		}
		s.flush()
	}

	msgs := s.Messages()
	require.NotEmpty(t, msgs)
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
	}
}

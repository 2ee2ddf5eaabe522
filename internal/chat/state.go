package chat

import (
	"sync/atomic"
	"time"
)

type ConnectionState int32

const (
	StateConnecting ConnectionState = iota
	StateOpen
	StateReconnecting
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// stateBox holds the state written by the loop and read by the view.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) Load() ConnectionState { return ConnectionState(b.v.Load()) }
func (b *stateBox) Store(s ConnectionState) { b.v.Store(int32(s)) }

// Scheduler runs f once after d. The returned func cancels it and reports
// whether the call was stopped before running.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func() bool)
}

type timerScheduler struct{}

// TimerScheduler schedules with time.AfterFunc.
func TimerScheduler() Scheduler { return timerScheduler{} }

func (timerScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, f)
	return t.Stop
}

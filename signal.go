package winprims

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Signal identifies one of the logical signals the engine installs handlers
// for. Values follow the engine's Windows-native compatibility numbering;
// only the three signals below are emulated, anything else is rejected with
// [ErrNotSupported].
type Signal int

const (
	// SIGINT is the interactive interrupt (Ctrl+C, external interrupt event,
	// or in-process delivery via [Signals.Kill]).
	SIGINT Signal = 2
	// SIGALRM is the one-shot alarm scheduled with [Signals.Alarm].
	SIGALRM Signal = 14
	// SIGUSR1 is the user-defined signal. It has no asynchronous source on
	// Windows; it exists so handler save/restore code stays portable.
	SIGUSR1 Signal = 30
)

// String returns the conventional name of the signal.
func (s Signal) String() string {
	switch s {
	case SIGINT:
		return "SIGINT"
	case SIGALRM:
		return "SIGALRM"
	case SIGUSR1:
		return "SIGUSR1"
	default:
		return "signal " + strconv.Itoa(int(s))
	}
}

// numSignals is the size of the handler table; slot() maps signals to
// indexes.
const numSignals = 3

func slot(sig Signal) int {
	switch sig {
	case SIGINT:
		return 0
	case SIGALRM:
		return 1
	case SIGUSR1:
		return 2
	default:
		return -1
	}
}

// Disposition is the tag of a [Handler]: default action, ignore, or a
// caller-supplied function.
type Disposition int32

const (
	// Default requests the platform's default action (for SIGINT on the
	// console path this lets Windows terminate the process).
	Default Disposition = iota
	// Ignore suppresses delivery entirely.
	Ignore
	// Custom invokes the function installed with [HandleFunc].
	Custom
)

// Handler is the current treatment of a logical signal: the default action,
// ignore, or a custom function. Handlers round-trip through
// [Signals.Install], so the previous value can be reinstalled later.
type Handler struct {
	disp Disposition
	fn   func(Signal)
}

// DefaultHandler requests the default action. It is the initial handler for
// every logical signal.
var DefaultHandler = Handler{disp: Default}

// IgnoreHandler suppresses delivery.
var IgnoreHandler = Handler{disp: Ignore}

// HandleFunc wraps fn as an installable custom handler. fn runs synchronously
// on whatever thread delivers the signal (the console control callback, the
// alarm timer, or the external interrupt watcher), so it must be safe to call
// from outside the engine's main thread.
func HandleFunc(fn func(Signal)) Handler {
	return Handler{disp: Custom, fn: fn}
}

// Disposition returns the handler's tag.
func (h Handler) Disposition() Disposition {
	return h.disp
}

// notify is an auto-reset notification: set() makes exactly one pending
// wakeup available, extra sets coalesce, wait() consumes it. It stands in
// for the internal Win32 auto-reset events of the C implementation.
type notify chan struct{}

func newNotify() notify {
	return make(notify, 1)
}

func (n notify) set() {
	select {
	case n <- struct{}{}:
	default:
	}
}

// wait blocks until the notification is set or the timeout elapses.
// A negative timeout ([WaitInfinite]) blocks indefinitely.
func (n notify) wait(timeout time.Duration) bool {
	if timeout < 0 {
		<-n
		return true
	}
	select {
	case <-n:
		return true
	case <-time.After(timeout):
		return false
	}
}

// interruptEventPrefix is the wire contract with external signaling tools:
// the named event an instance listens on is this prefix plus its decimal PID.
const interruptEventPrefix = "CiaoInterrupt_"

// InterruptEventName returns the name of the cross-process interrupt event
// for the instance with the given PID. External tools (signal_ciao.exe, the
// VS Code extension) reconstruct this name to target a running engine; the
// naming convention is the entire protocol.
func InterruptEventName(pid int) string {
	return interruptEventPrefix + strconv.Itoa(pid)
}

// Signals is the signal-emulation context: one handler slot per logical
// signal, the internal interrupt and alarm notifications every asynchronous
// source converges on, the pending alarm timer, and the external interrupt
// bridge. Create it with [Init] and release it with [Signals.Shutdown];
// at most one context is active per process.
type Signals struct {
	handlers [numSignals]atomic.Pointer[Handler]

	interrupted notify
	alarmed     notify

	alarmMu    sync.Mutex
	alarmTimer *time.Timer

	os osSignals
}

func newSignals() *Signals {
	s := &Signals{
		interrupted: newNotify(),
		alarmed:     newNotify(),
	}
	for i := range s.handlers {
		h := DefaultHandler
		s.handlers[i].Store(&h)
	}
	return s
}

// Install replaces the handler for sig and returns the one it replaced, so
// nested save/restore works:
//
//	prev, _ := sig.Install(winprims.SIGINT, winprims.IgnoreHandler)
//	defer sig.Install(winprims.SIGINT, prev)
//
// Replacement is atomic: a delivery racing with Install observes either the
// old or the new handler. Signals outside the emulated set return
// [ErrNotSupported].
func (s *Signals) Install(sig Signal, h Handler) (Handler, error) {
	i := slot(sig)
	if i < 0 {
		return DefaultHandler, errorf(ErrNotSupported, sig.String()+" is not emulated on this platform")
	}
	prev := s.handlers[i].Swap(&h)
	return *prev, nil
}

// handler returns a snapshot of the current handler for sig. Callers act on
// the snapshot and never re-read mid-dispatch.
func (s *Signals) handler(sig Signal) Handler {
	i := slot(sig)
	if i < 0 {
		return DefaultHandler
	}
	return *s.handlers[i].Load()
}

// deliverInterrupt runs the interrupt handler (when custom) and wakes anyone
// blocked in WaitInterrupt. All three asynchronous sources - console control,
// external event, in-process Kill - funnel through here.
func (s *Signals) deliverInterrupt() {
	if h := s.handler(SIGINT); h.disp == Custom {
		h.fn(SIGINT)
	}
	s.interrupted.set()
}

// WaitInterrupt blocks until an interrupt is delivered through any source or
// the timeout elapses, reporting which. Pass [WaitInfinite] to block
// indefinitely and 0 to poll. The caller learns that an interrupt happened,
// not which source delivered it.
func (s *Signals) WaitInterrupt(timeout time.Duration) bool {
	return s.interrupted.wait(timeout)
}

// Alarm schedules delivery of SIGALRM after d, replacing any pending alarm.
// At most one alarm is outstanding; a non-positive d cancels the pending
// alarm without scheduling a new one. When the alarm fires, a custom SIGALRM
// handler runs on the timer's goroutine and the internal alarm notification
// is set regardless of handler state.
//
// The return value is the POSIX "seconds remaining on the previous alarm";
// that information is not recoverable from a fired-or-cancelled timer, so it
// is always 0 (documented best-effort narrowing).
func (s *Signals) Alarm(d time.Duration) time.Duration {
	s.alarmMu.Lock()
	defer s.alarmMu.Unlock()

	if s.alarmTimer != nil {
		s.alarmTimer.Stop()
		s.alarmTimer = nil
	}
	if d <= 0 {
		return 0
	}
	s.alarmTimer = time.AfterFunc(d, s.fireAlarm)
	return 0
}

func (s *Signals) fireAlarm() {
	if h := s.handler(SIGALRM); h.disp == Custom {
		h.fn(SIGALRM)
	}
	s.alarmed.set()
}

func (s *Signals) stopAlarm() {
	s.alarmMu.Lock()
	defer s.alarmMu.Unlock()
	if s.alarmTimer != nil {
		s.alarmTimer.Stop()
		s.alarmTimer = nil
	}
}

//go:build windows

package winprims

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/windows"
)

// externalPollInterval bounds how long the watcher sleeps between checks of
// its shutdown flag while waiting on the named interrupt event.
const externalPollInterval = 500 * time.Millisecond

// watcherJoinTimeout bounds how long Shutdown waits for the watcher to
// acknowledge the shutdown flag before giving up on the join.
const watcherJoinTimeout = 2 * time.Second

// crtDefaultExitCode is what the Microsoft CRT exits with when a raised
// signal runs its default action.
const crtDefaultExitCode = 3

// osSignals holds the Windows-only half of a [Signals] context: the named
// cross-process interrupt event and its watcher goroutine.
type osSignals struct {
	extEvent    windows.Handle
	watcherDone chan struct{}
	shutdown    atomic.Bool
}

// active is the context the console control callback dispatches to. The OS
// invokes the callback with no parameter, so this is the one piece of
// package-level state; Init enforces that only one context exists.
var active atomic.Pointer[Signals]

var (
	ctrlOnce     sync.Once
	ctrlCallback uintptr
)

// Init creates the signal-emulation context and wires it to its OS-native
// sources: the console control handler for Ctrl+C and close/logoff/shutdown
// notifications, and the named event "CiaoInterrupt_{PID}" with its watcher
// goroutine for external interrupts.
//
// Failure to create the named event is not fatal: the engine still runs,
// only without the external-interrupt capability. At most one context may be
// active per process; a second Init before Shutdown fails with [ErrInternal].
func Init() (*Signals, error) {
	s := newSignals()
	if !active.CompareAndSwap(nil, s) {
		return nil, errorf(ErrInternal, "signal subsystem already initialized")
	}

	ctrlOnce.Do(func() {
		ctrlCallback = windows.NewCallback(consoleCtrlHandler)
	})
	if err := windows.SetConsoleCtrlHandler(ctrlCallback, true); err != nil {
		active.Store(nil)
		return nil, wrapSys(ErrSystem, "signals: SetConsoleCtrlHandler", err)
	}

	name, err := windows.UTF16PtrFromString(InterruptEventName(int(windows.GetCurrentProcessId())))
	if err == nil {
		if h, cerr := windows.CreateEvent(nil, 0, 0, name); cerr == nil {
			s.os.extEvent = h
			s.os.watcherDone = make(chan struct{})
			go s.watchExternal()
		}
	}

	return s, nil
}

// Shutdown unwires the context from its OS sources and releases its
// resources: it deregisters the console handler, sets the watcher's shutdown
// flag, pulses the named event so a mid-wait watcher wakes immediately,
// joins the watcher with a bounded timeout, and cancels any pending alarm.
// Shutdown is idempotent.
func (s *Signals) Shutdown() {
	if !active.CompareAndSwap(s, nil) {
		return
	}

	windows.SetConsoleCtrlHandler(ctrlCallback, false)

	if s.os.extEvent != 0 {
		s.os.shutdown.Store(true)
		windows.SetEvent(s.os.extEvent)
		select {
		case <-s.os.watcherDone:
			windows.CloseHandle(s.os.extEvent)
			s.os.extEvent = 0
		case <-time.After(watcherJoinTimeout):
			// The watcher is still blocked on the event; leak the handle
			// rather than close it out from under a concurrent wait.
		}
	}

	s.stopAlarm()
}

// watchExternal is the external-interrupt watcher: it waits on the named
// event with a bounded poll so the shutdown flag is observed within
// externalPollInterval, and translates each wake into an interrupt delivery.
func (s *Signals) watchExternal() {
	defer close(s.os.watcherDone)
	for !s.os.shutdown.Load() {
		ev, err := windows.WaitForSingleObject(s.os.extEvent, uint32(externalPollInterval/time.Millisecond))
		if err != nil {
			return
		}
		if ev == windows.WAIT_OBJECT_0 && !s.os.shutdown.Load() {
			s.deliverInterrupt()
		}
	}
}

// consoleCtrlHandler runs on an OS-chosen thread whenever the console
// delivers a control event. Returning 1 marks the event handled; returning 0
// lets the next handler (ultimately default termination) proceed.
func consoleCtrlHandler(ctrlType uint32) uintptr {
	s := active.Load()
	if s == nil {
		return 0
	}

	switch ctrlType {
	case windows.CTRL_C_EVENT, windows.CTRL_BREAK_EVENT:
		switch h := s.handler(SIGINT); h.disp {
		case Custom:
			h.fn(SIGINT)
		case Default:
			return 0 // let Windows terminate the process
		}
		s.interrupted.set()
		return 1

	case windows.CTRL_CLOSE_EVENT, windows.CTRL_LOGOFF_EVENT, windows.CTRL_SHUTDOWN_EVENT:
		// Wake anyone blocked in WaitInterrupt so it can observe shutdown,
		// but do not prevent termination.
		s.interrupted.set()
		return 0
	}
	return 0
}

// Kill emulates kill(pid, sig) within Win32's means.
//
// Directed at the current process, SIGINT runs the installed custom handler;
// with no custom handler, and for every other signal, delivery falls back to
// [Signals.raise]. Directed at a foreign process, signal 0 is an existence
// probe and every non-zero signal terminates the target unconditionally -
// Windows has no way to run a handler in another process, so "send signal N"
// narrows to "terminate" (the exit code carries N).
//
// # Errors
//
//   - [ErrNotFound]: target process does not exist or is inaccessible
//   - [ErrPermissionDenied]: target exists but cannot be terminated
//   - [ErrNotSupported]: self-delivery of a signal outside the emulated set
func (s *Signals) Kill(pid int, sig Signal) error {
	if pid == 0 || pid == int(windows.GetCurrentProcessId()) {
		if sig == SIGINT && s.handler(SIGINT).disp == Custom {
			// Converges with the console and external sources, so a thread
			// blocked in WaitInterrupt observes in-process delivery too.
			s.deliverInterrupt()
			return nil
		}
		return s.raise(sig)
	}

	if sig == 0 {
		h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
		if err != nil {
			return wrapSys(ErrNotFound, "kill: no such process", err)
		}
		windows.CloseHandle(h)
		return nil
	}

	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return wrapSys(ErrNotFound, "kill: no such process", err)
	}
	defer windows.CloseHandle(h)
	if err := windows.TerminateProcess(h, uint32(sig)); err != nil {
		return wrapSys(ErrPermissionDenied, "kill: TerminateProcess", err)
	}
	return nil
}

// raise emulates the CRT's synchronous raise(): the signal's current handler
// runs on the calling thread; Ignore delivers nothing; Default terminates
// the process the way the CRT would. Signals outside the emulated set return
// [ErrNotSupported].
func (s *Signals) raise(sig Signal) error {
	if slot(sig) < 0 {
		return errorf(ErrNotSupported, "raise: "+sig.String()+" is not emulated")
	}
	switch h := s.handler(sig); h.disp {
	case Custom:
		h.fn(sig)
	case Default:
		os.Exit(crtDefaultExitCode)
	}
	return nil
}

// NotifyInterrupt signals the named interrupt event of the running instance
// with the given PID. It is the producer side of the external-interrupt
// bridge; cmd/signal_ciao is a thin wrapper around it. [ErrNotFound] means
// no instance with that PID has the bridge running (not started, or too old
// to create the event).
func NotifyInterrupt(pid int) error {
	name, err := windows.UTF16PtrFromString(InterruptEventName(pid))
	if err != nil {
		return wrapSys(ErrInvalidArgument, "notify interrupt: event name", err)
	}
	h, err := windows.OpenEvent(windows.EVENT_MODIFY_STATE, false, name)
	if err != nil {
		return wrapSys(ErrNotFound, "notify interrupt: event not found", err)
	}
	defer windows.CloseHandle(h)
	if err := windows.SetEvent(h); err != nil {
		return wrapSys(ErrSystem, "notify interrupt: SetEvent", err)
	}
	return nil
}

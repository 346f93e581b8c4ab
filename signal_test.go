package winprims

import (
	"sync/atomic"
	"testing"
	"time"
)

// White-box tests for the portable half of the signal emulation. The
// contexts here are built with newSignals directly so nothing touches the
// process-wide console handler or named event; those paths have their own
// Windows-only tests.

// TestInstallReturnsPrevious verifies the LIFO previous-value chain: each
// Install returns the handler installed by the immediately preceding call,
// starting from the default.
func TestInstallReturnsPrevious(t *testing.T) {
	s := newSignals()

	first := HandleFunc(func(Signal) {})
	second := HandleFunc(func(Signal) {})

	prev, err := s.Install(SIGINT, first)
	if err != nil {
		t.Fatalf("Install(first) failed: %v", err)
	}
	if prev.Disposition() != Default {
		t.Errorf("first Install returned disposition %v, want Default", prev.Disposition())
	}

	prev, err = s.Install(SIGINT, IgnoreHandler)
	if err != nil {
		t.Fatalf("Install(IgnoreHandler) failed: %v", err)
	}
	if prev.Disposition() != Custom {
		t.Errorf("second Install returned disposition %v, want Custom", prev.Disposition())
	}

	prev, err = s.Install(SIGINT, second)
	if err != nil {
		t.Fatalf("Install(second) failed: %v", err)
	}
	if prev.Disposition() != Ignore {
		t.Errorf("third Install returned disposition %v, want Ignore", prev.Disposition())
	}

	// Restoring the saved handler must bring the chain back where it was.
	prev, _ = s.Install(SIGINT, prev)
	if prev.Disposition() != Custom {
		t.Errorf("restore returned disposition %v, want Custom", prev.Disposition())
	}
}

// TestInstallUnknownSignal verifies that signals outside the emulated set
// are rejected rather than silently accepted.
func TestInstallUnknownSignal(t *testing.T) {
	s := newSignals()

	_, err := s.Install(Signal(9), IgnoreHandler)
	if err == nil {
		t.Fatal("Install(9) should return error")
	}
	wErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if wErr.Code != ErrNotSupported {
		t.Errorf("expected ErrNotSupported, got %d (%s)", wErr.Code, wErr.Code)
	}
}

// TestSignalsIndependentSlots verifies that installing on one logical signal
// leaves the others untouched.
func TestSignalsIndependentSlots(t *testing.T) {
	s := newSignals()

	if _, err := s.Install(SIGALRM, IgnoreHandler); err != nil {
		t.Fatalf("Install(SIGALRM) failed: %v", err)
	}
	if h := s.handler(SIGINT); h.Disposition() != Default {
		t.Errorf("SIGINT handler = %v, want Default", h.Disposition())
	}
	if h := s.handler(SIGUSR1); h.Disposition() != Default {
		t.Errorf("SIGUSR1 handler = %v, want Default", h.Disposition())
	}
}

// TestAlarmFires verifies that a scheduled alarm invokes a custom SIGALRM
// handler and sets the internal alarm notification.
func TestAlarmFires(t *testing.T) {
	s := newSignals()
	defer s.Alarm(0)

	var fired atomic.Int32
	if _, err := s.Install(SIGALRM, HandleFunc(func(sig Signal) {
		if sig != SIGALRM {
			t.Errorf("handler received %v, want SIGALRM", sig)
		}
		fired.Add(1)
	})); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	s.Alarm(20 * time.Millisecond)
	if !s.alarmed.wait(2 * time.Second) {
		t.Fatal("alarm notification never set")
	}
	if n := fired.Load(); n != 1 {
		t.Errorf("handler fired %d times, want 1", n)
	}
}

// TestAlarmZeroCancels verifies that Alarm(0) before the pending duration
// elapses suppresses delivery entirely.
func TestAlarmZeroCancels(t *testing.T) {
	s := newSignals()

	var fired atomic.Int32
	s.Install(SIGALRM, HandleFunc(func(Signal) { fired.Add(1) }))

	s.Alarm(100 * time.Millisecond)
	s.Alarm(0)

	time.Sleep(300 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("cancelled alarm fired %d times, want 0", n)
	}
	if s.alarmed.wait(0) {
		t.Error("alarm notification set after cancellation")
	}
}

// TestAlarmReplaces verifies replace-not-queue: rescheduling drops the
// earlier alarm, so only one delivery happens.
func TestAlarmReplaces(t *testing.T) {
	s := newSignals()
	defer s.Alarm(0)

	var fired atomic.Int32
	s.Install(SIGALRM, HandleFunc(func(Signal) { fired.Add(1) }))

	s.Alarm(50 * time.Millisecond)
	s.Alarm(20 * time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("handler fired %d times, want 1", n)
	}
}

// TestWaitInterruptTimeout verifies the timed-out outcome of a short wait.
func TestWaitInterruptTimeout(t *testing.T) {
	s := newSignals()

	start := time.Now()
	if s.WaitInterrupt(30 * time.Millisecond) {
		t.Fatal("WaitInterrupt reported Signaled with no interrupt pending")
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("WaitInterrupt returned after %v, before the timeout", elapsed)
	}
}

// TestWaitInterruptSignaled verifies that an in-process delivery wakes a
// blocked waiter and runs the custom handler.
func TestWaitInterruptSignaled(t *testing.T) {
	s := newSignals()

	var handled atomic.Int32
	s.Install(SIGINT, HandleFunc(func(Signal) { handled.Add(1) }))

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.deliverInterrupt()
	}()

	if !s.WaitInterrupt(2 * time.Second) {
		t.Fatal("WaitInterrupt timed out, want Signaled")
	}
	if n := handled.Load(); n != 1 {
		t.Errorf("handler ran %d times, want 1", n)
	}
}

// TestWaitInterruptCoalesces verifies auto-reset semantics: two deliveries
// before anyone waits produce exactly one wakeup.
func TestWaitInterruptCoalesces(t *testing.T) {
	s := newSignals()
	s.Install(SIGINT, IgnoreHandler)

	s.deliverInterrupt()
	s.deliverInterrupt()

	if !s.WaitInterrupt(0) {
		t.Fatal("first poll should observe the pending interrupt")
	}
	if s.WaitInterrupt(0) {
		t.Error("second poll observed a second wakeup; deliveries should coalesce")
	}
}

// TestInstallConcurrentWithDelivery exercises the atomic handler slot: a
// stream of installs racing with deliveries must never crash or tear, and
// every delivery sees some complete handler.
func TestInstallConcurrentWithDelivery(t *testing.T) {
	s := newSignals()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				s.Install(SIGINT, HandleFunc(func(Signal) {}))
			} else {
				s.Install(SIGINT, IgnoreHandler)
			}
		}
	}()
	for i := 0; i < 1000; i++ {
		s.deliverInterrupt()
	}
	<-done
}

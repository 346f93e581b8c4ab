//go:build windows

package winprims_test

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ciao-lang/winprims"
)

// TestInitShutdown verifies the subsystem lifecycle, including that a second
// concurrent context is refused and that Shutdown makes room for a new one.
func TestInitShutdown(t *testing.T) {
	sig, err := winprims.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if _, err := winprims.Init(); err == nil {
		t.Error("second Init should fail while a context is active")
	}

	sig.Shutdown()
	sig.Shutdown() // idempotent

	sig, err = winprims.Init()
	if err != nil {
		t.Fatalf("Init after Shutdown failed: %v", err)
	}
	sig.Shutdown()
}

// TestExternalInterruptDelivery signals this process's own named event and
// expects WaitInterrupt to observe it within the watcher's polling bound,
// with no local raise involved.
func TestExternalInterruptDelivery(t *testing.T) {
	sig, err := winprims.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sig.Shutdown()

	var handled atomic.Int32
	if _, err := sig.Install(winprims.SIGINT, winprims.HandleFunc(func(winprims.Signal) {
		handled.Add(1)
	})); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if err := winprims.NotifyInterrupt(os.Getpid()); err != nil {
		t.Fatalf("NotifyInterrupt(self) failed: %v", err)
	}

	if !sig.WaitInterrupt(1 * time.Second) {
		t.Fatal("WaitInterrupt timed out; watcher never observed the named event")
	}
	if n := handled.Load(); n != 1 {
		t.Errorf("interrupt handler ran %d times, want 1", n)
	}
}

// TestShutdownReleasesNamedEvent verifies that Shutdown joins the watcher and
// closes the named event, so the instance stops being addressable.
func TestShutdownReleasesNamedEvent(t *testing.T) {
	sig, err := winprims.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if err := winprims.NotifyInterrupt(os.Getpid()); err != nil {
		t.Fatalf("NotifyInterrupt(self) while active failed: %v", err)
	}

	sig.Shutdown()

	err = winprims.NotifyInterrupt(os.Getpid())
	if err == nil {
		t.Fatal("NotifyInterrupt(self) after Shutdown should fail")
	}
	wErr, ok := err.(*winprims.Error)
	if !ok {
		t.Fatalf("expected *winprims.Error, got %T", err)
	}
	if wErr.Code != winprims.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %d (%s)", wErr.Code, wErr.Code)
	}
}

// TestNotifyInterruptNoSuchInstance verifies the producer-side not-found
// outcome for a PID with no running instance.
func TestNotifyInterruptNoSuchInstance(t *testing.T) {
	err := winprims.NotifyInterrupt(999999999)
	if err == nil {
		t.Fatal("NotifyInterrupt for a bogus PID should fail")
	}
	wErr, ok := err.(*winprims.Error)
	if !ok {
		t.Fatalf("expected *winprims.Error, got %T", err)
	}
	if wErr.Code != winprims.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %d (%s)", wErr.Code, wErr.Code)
	}
}

// TestKillSelfInterrupt verifies in-process SIGINT delivery through an
// installed custom handler.
func TestKillSelfInterrupt(t *testing.T) {
	sig, err := winprims.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sig.Shutdown()

	var handled atomic.Int32
	sig.Install(winprims.SIGINT, winprims.HandleFunc(func(winprims.Signal) {
		handled.Add(1)
	}))

	if err := sig.Kill(os.Getpid(), winprims.SIGINT); err != nil {
		t.Fatalf("Kill(self, SIGINT) failed: %v", err)
	}
	if n := handled.Load(); n != 1 {
		t.Errorf("interrupt handler ran %d times, want 1", n)
	}
	if !sig.WaitInterrupt(0) {
		t.Error("in-process delivery did not set the interrupt notification")
	}
}

// TestKillSignalZeroProbe verifies the existence probe against a live child
// and a PID assumed not to exist.
func TestKillSignalZeroProbe(t *testing.T) {
	sig, err := winprims.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sig.Shutdown()

	proc, err := winprims.Spawn(winprims.SpawnConfig{
		Argv:           []string{"ping.exe", "-n", "3", "127.0.0.1"},
		RedirectStdout: true,
	})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	defer proc.Close()

	if err := sig.Kill(proc.Pid, 0); err != nil {
		t.Errorf("Kill(live child, 0) = %v, want success", err)
	}

	err = sig.Kill(999999999, 0)
	if err == nil {
		t.Skip("PID 999999999 unexpectedly exists on this system")
	}
	wErr, ok := err.(*winprims.Error)
	if !ok {
		t.Fatalf("expected *winprims.Error, got %T", err)
	}
	if wErr.Code != winprims.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %d (%s)", wErr.Code, wErr.Code)
	}

	sig.Kill(proc.Pid, winprims.SIGINT) // collapses to termination
	proc.Wait(winprims.WaitInfinite)
}

// TestKillForeignTerminates verifies the documented narrowing: any non-zero
// signal to a foreign process terminates it, with the signal number as exit
// code.
func TestKillForeignTerminates(t *testing.T) {
	sig, err := winprims.Init()
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer sig.Shutdown()

	proc, err := winprims.Spawn(winprims.SpawnConfig{
		Argv:           []string{"ping.exe", "-n", "10", "127.0.0.1"},
		RedirectStdout: true,
	})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	defer proc.Close()

	if err := sig.Kill(proc.Pid, winprims.SIGUSR1); err != nil {
		t.Fatalf("Kill(child, SIGUSR1) failed: %v", err)
	}

	r, err := proc.Wait(5 * time.Second)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if !r.Exited {
		t.Fatal("child still running after Kill")
	}
	if r.ExitCode != int(winprims.SIGUSR1) {
		t.Errorf("exit code = %d, want %d (the collapsed signal number)", r.ExitCode, int(winprims.SIGUSR1))
	}
}

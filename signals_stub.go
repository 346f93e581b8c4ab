//go:build !windows

package winprims

// On non-Windows hosts the engine uses real POSIX signals and processes;
// these stubs only keep the package compiling in a uniform build. Portable
// pieces of the emulation (handler table, alarm timer, notifications) still
// work and are exercised by the portable tests.

type osSignals struct{}

// Init reports [ErrNotSupported]: the signal emulation replaces POSIX
// delivery only on Windows.
func Init() (*Signals, error) {
	return nil, errorf(ErrNotSupported, "signal emulation is only available on Windows")
}

// Shutdown cancels any pending alarm. There are no OS sources to unwire off
// Windows.
func (s *Signals) Shutdown() {
	s.stopAlarm()
}

// Kill reports [ErrNotSupported]; use the platform kill(2) instead.
func (s *Signals) Kill(pid int, sig Signal) error {
	return errorf(ErrNotSupported, "kill emulation is only available on Windows")
}

// NotifyInterrupt reports [ErrNotSupported]; named interrupt events exist
// only on Windows.
func NotifyInterrupt(pid int) error {
	return errorf(ErrNotSupported, "named interrupt events are only available on Windows")
}

//go:build !windows

package winprims

import (
	"os"
	"time"
)

// Process represents one spawned child. Off Windows the type exists only so
// the engine build stays uniform; [Spawn] never produces one.
type Process struct {
	Pid int

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Spawn reports [ErrNotSupported]; use fork/exec on POSIX hosts.
func Spawn(cfg SpawnConfig) (*Process, error) {
	return nil, errorf(ErrNotSupported, "spawn emulation is only available on Windows")
}

// Wait reports [ErrNotSupported].
func (p *Process) Wait(timeout time.Duration) (*WaitResult, error) {
	return nil, errorf(ErrNotSupported, "process wait emulation is only available on Windows")
}

// Close releases any stream endpoints. Safe to call repeatedly.
func (p *Process) Close() error {
	for _, f := range []**os.File{&p.Stdin, &p.Stdout, &p.Stderr} {
		if *f != nil {
			(*f).Close()
			*f = nil
		}
	}
	p.Pid = 0
	return nil
}

// Exec reports [ErrNotSupported]; use execvp on POSIX hosts.
func Exec(argv []string) error {
	return errorf(ErrNotSupported, "exec emulation is only available on Windows")
}

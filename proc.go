package winprims

import "time"

// WaitInfinite blocks a wait operation ([Process.Wait],
// [Signals.WaitInterrupt]) until the awaited condition occurs. A timeout of 0
// polls without blocking.
const WaitInfinite = time.Duration(-1)

// WaitResult is the outcome of [Process.Wait]. A still-running child is a
// valid result of a short timeout used for polling, not an error.
type WaitResult struct {
	// Exited reports whether the child has terminated.
	Exited bool
	// ExitCode is the child's exit code; meaningful only when Exited.
	ExitCode int
}

// Running reports whether the child was still running when the wait timed
// out.
func (r *WaitResult) Running() bool {
	return !r.Exited
}

// Fork always fails: Windows cannot duplicate a process image. Engine code
// that reaches a fork() call path gets this error; actual subprocess
// creation goes through [Spawn] instead.
func Fork() (int, error) {
	return -1, errorf(ErrNotSupported, "fork() is not supported on native Windows; use Spawn")
}

// SpawnConfig describes the child process [Spawn] creates.
//
// Argv[0] is the program to run; the whole vector is flattened with
// [BuildCommandLine] into the single command line the child receives.
type SpawnConfig struct {
	// Argv is the program and its arguments. Must be non-empty.
	Argv []string
	// Cwd is the child's working directory; empty inherits the parent's.
	Cwd string
	// Env is the child's complete environment; nil inherits the parent's.
	// A non-nil empty map gives the child an empty environment.
	Env map[string]string

	// RedirectStdin, RedirectStdout, and RedirectStderr independently
	// replace the corresponding standard stream with a pipe whose parent
	// end is exposed on the returned [Process]. Streams left unredirected
	// are inherited from the parent.
	RedirectStdin  bool
	RedirectStdout bool
	RedirectStderr bool
}

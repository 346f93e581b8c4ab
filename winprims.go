// Package winprims provides Win32-native replacements for the POSIX process
// and signal primitives the Ciao engine depends on.
//
// The engine's portable core assumes fork()/exec(), waitpid(), kill(), and
// UNIX signal delivery (SIGINT, SIGALRM, SIGUSR1). None of these exist on
// native Windows. winprims emulates the subset the engine actually uses on
// top of Win32 handles, console control events, and named events:
//
//   - [Spawn] creates a child process with optional pipe-redirected standard
//     streams (replaces fork+exec).
//   - [Process.Wait], [Process.Close], and [Signals.Kill] cover
//     waitpid()/kill() for children and foreign processes.
//   - [Exec] spawns, waits, and exits with the child's code (Windows cannot
//     replace a process image in place).
//   - [Signals] emulates signal handler installation and delivery from three
//     asynchronous sources: the console control handler (Ctrl+C), a one-shot
//     alarm timer, and a named cross-process event that external tools signal
//     to interrupt a running instance (see [NotifyInterrupt] and
//     cmd/signal_ciao).
//
// # Best-effort Emulation
//
// Several operations have no exact Win32 equivalent and are intentionally
// narrowed rather than hidden behind a failure:
//
//   - Delivering a non-zero signal to a foreign process terminates it
//     unconditionally; there is no way to run a handler in another process.
//   - [Exec] never returns on success: the caller's own process exits with
//     the child's exit code.
//   - [Signals.Alarm] cannot report the seconds remaining on a previous
//     alarm; it always reports zero.
//
// # Thread Safety
//
// Handler installation uses an atomic replace-and-fetch per logical signal.
// The console control callback, the alarm timer callback, and the external
// interrupt watcher each read a single snapshot of the handler slot before
// dispatching, so a concurrent [Signals.Install] is observed as either the
// old or the new handler, never a torn value.
//
// # Platform Notes
//
// The package compiles on all platforms so the engine build stays uniform,
// but every operating-system-facing entry point returns [ErrNotSupported]
// off Windows. On Unix hosts the engine uses real POSIX primitives and never
// calls into this package.
package winprims

//go:build windows

package winprims

import (
	"os"
	"sort"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Process represents one spawned child. The caller owns it exclusively and
// must call [Process.Close] exactly once when done; Close is idempotent, so
// calling it again is harmless.
type Process struct {
	// Pid is the child's process identifier.
	Pid int

	// Stdin is the parent's write end of the child's standard input, nil
	// unless RedirectStdin was set. Stdout and Stderr are the read ends of
	// the corresponding output pipes. Each may be closed independently of
	// the Process (closing Stdin early is how a caller signals EOF to the
	// child).
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	process windows.Handle
	thread  windows.Handle
}

// pipePair is one redirection pipe during spawn setup. childEnd is the
// inheritable end handed to the child; parentEnd stays in this process.
type pipePair struct {
	parentEnd windows.Handle
	childEnd  windows.Handle
}

// newInheritablePipe creates a pipe where exactly the child's end is
// inheritable. childReads selects the direction: true for a stdin pipe
// (child reads), false for stdout/stderr (child writes).
func newInheritablePipe(childReads bool) (pipePair, error) {
	sa := &windows.SecurityAttributes{
		InheritHandle: 1,
	}
	sa.Length = uint32(unsafe.Sizeof(*sa))

	var r, w windows.Handle
	if err := windows.CreatePipe(&r, &w, sa, 0); err != nil {
		return pipePair{}, err
	}

	p := pipePair{}
	if childReads {
		p.childEnd, p.parentEnd = r, w
	} else {
		p.childEnd, p.parentEnd = w, r
	}
	// Both ends were created inheritable; revoke inheritance on the end the
	// parent keeps so it does not leak into unrelated children.
	if err := windows.SetHandleInformation(p.parentEnd, windows.HANDLE_FLAG_INHERIT, 0); err != nil {
		windows.CloseHandle(r)
		windows.CloseHandle(w)
		return pipePair{}, err
	}
	return p, nil
}

func (p *pipePair) closeBoth() {
	if p.parentEnd != 0 {
		windows.CloseHandle(p.parentEnd)
		p.parentEnd = 0
	}
	if p.childEnd != 0 {
		windows.CloseHandle(p.childEnd)
		p.childEnd = 0
	}
}

// buildEnvBlock serializes an environment map into the UTF-16, double-NUL
// terminated block CreateProcess expects, with names sorted the way the
// Windows loader likes them.
func buildEnvBlock(env map[string]string) ([]uint16, error) {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var block []uint16
	for _, k := range keys {
		u, err := windows.UTF16FromString(k + "=" + env[k])
		if err != nil {
			return nil, err
		}
		block = append(block, u...) // includes the entry's NUL
	}
	// An empty environment is a block containing a single empty string.
	if len(block) == 0 {
		block = append(block, 0)
	}
	block = append(block, 0)
	return block, nil
}

// Spawn creates a child process, replacing the engine's fork+exec pair.
//
// The argv vector is flattened with [BuildCommandLine] (see its documented
// quoting limitation). For each Redirect* flag a pipe is created, the child
// inherits its end as the corresponding standard handle, and the parent end
// is exposed on the returned [Process]; unredirected streams are inherited.
//
// # Errors
//
//   - [ErrInvalidArgument]: empty Argv or unrepresentable strings
//   - [ErrNotFound]: program or path does not exist
//   - [ErrPermissionDenied]: program exists but cannot be executed
//   - [ErrSpawnFailed]: any other creation failure
//
// On failure every partially-created pipe handle is closed before returning.
func Spawn(cfg SpawnConfig) (*Process, error) {
	if len(cfg.Argv) == 0 {
		return nil, errorf(ErrInvalidArgument, "spawn: empty argv")
	}

	var pipes [3]pipePair
	cleanup := func() {
		for i := range pipes {
			pipes[i].closeBoth()
		}
	}

	redirect := [3]bool{cfg.RedirectStdin, cfg.RedirectStdout, cfg.RedirectStderr}
	for i, want := range redirect {
		if !want {
			continue
		}
		p, err := newInheritablePipe(i == 0)
		if err != nil {
			cleanup()
			return nil, wrapSys(ErrSpawnFailed, "spawn: create pipe", err)
		}
		pipes[i] = p
	}

	si := &windows.StartupInfo{}
	si.Cb = uint32(unsafe.Sizeof(*si))
	if cfg.RedirectStdin || cfg.RedirectStdout || cfg.RedirectStderr {
		si.Flags |= windows.STARTF_USESTDHANDLES
		si.StdInput = stdOrPipe(pipes[0].childEnd, windows.STD_INPUT_HANDLE)
		si.StdOutput = stdOrPipe(pipes[1].childEnd, windows.STD_OUTPUT_HANDLE)
		si.StdErr = stdOrPipe(pipes[2].childEnd, windows.STD_ERROR_HANDLE)
	}

	cmdline, err := windows.UTF16PtrFromString(BuildCommandLine(cfg.Argv))
	if err != nil {
		cleanup()
		return nil, wrapSys(ErrInvalidArgument, "spawn: command line", err)
	}

	var dir *uint16
	if cfg.Cwd != "" {
		dir, err = windows.UTF16PtrFromString(cfg.Cwd)
		if err != nil {
			cleanup()
			return nil, wrapSys(ErrInvalidArgument, "spawn: working directory", err)
		}
	}

	flags := uint32(windows.CREATE_NO_WINDOW)
	var envp *uint16
	if cfg.Env != nil {
		block, err := buildEnvBlock(cfg.Env)
		if err != nil {
			cleanup()
			return nil, wrapSys(ErrInvalidArgument, "spawn: environment", err)
		}
		envp = &block[0]
		flags |= windows.CREATE_UNICODE_ENVIRONMENT
	}

	pi := &windows.ProcessInformation{}
	err = windows.CreateProcess(
		nil,     // application name: resolved from the command line
		cmdline, // flat command line
		nil, nil,
		true, // inherit handles: the child needs its pipe ends
		flags,
		envp,
		dir,
		si,
		pi,
	)
	if err != nil {
		cleanup()
		return nil, mapCreateProcessError(err)
	}

	// The child holds its own references to the pipe ends now; drop ours so
	// EOF propagates when the child exits.
	for i := range pipes {
		if pipes[i].childEnd != 0 {
			windows.CloseHandle(pipes[i].childEnd)
			pipes[i].childEnd = 0
		}
	}

	proc := &Process{
		Pid:     int(pi.ProcessId),
		process: pi.Process,
		thread:  pi.Thread,
	}
	if cfg.RedirectStdin {
		proc.Stdin = os.NewFile(uintptr(pipes[0].parentEnd), "|stdin")
	}
	if cfg.RedirectStdout {
		proc.Stdout = os.NewFile(uintptr(pipes[1].parentEnd), "|stdout")
	}
	if cfg.RedirectStderr {
		proc.Stderr = os.NewFile(uintptr(pipes[2].parentEnd), "|stderr")
	}
	return proc, nil
}

func stdOrPipe(pipe windows.Handle, std uint32) windows.Handle {
	if pipe != 0 {
		return pipe
	}
	h, err := windows.GetStdHandle(std)
	if err != nil {
		return 0
	}
	return h
}

func mapCreateProcessError(err error) *Error {
	if errno, ok := err.(syscall.Errno); ok {
		switch errno {
		case windows.ERROR_FILE_NOT_FOUND, windows.ERROR_PATH_NOT_FOUND:
			return wrapSys(ErrNotFound, "spawn: program not found", err)
		case windows.ERROR_ACCESS_DENIED:
			return wrapSys(ErrPermissionDenied, "spawn: access denied", err)
		}
	}
	return wrapSys(ErrSpawnFailed, "spawn: CreateProcess", err)
}

// Wait blocks until the child exits or the timeout elapses. Pass
// [WaitInfinite] to block indefinitely and 0 to poll. A timeout is reported
// as a still-running [WaitResult], not an error.
func (p *Process) Wait(timeout time.Duration) (*WaitResult, error) {
	if p.process == 0 {
		return nil, errorf(ErrInvalidArgument, "wait: closed or uninitialized process")
	}

	ms := uint32(windows.INFINITE)
	if timeout >= 0 {
		ms = uint32(timeout / time.Millisecond)
	}

	ev, err := windows.WaitForSingleObject(p.process, ms)
	switch ev {
	case windows.WAIT_OBJECT_0:
		var code uint32
		if err := windows.GetExitCodeProcess(p.process, &code); err != nil {
			return nil, wrapSys(ErrSystem, "wait: exit code", err)
		}
		return &WaitResult{Exited: true, ExitCode: int(code)}, nil
	case uint32(windows.WAIT_TIMEOUT):
		return &WaitResult{}, nil
	default:
		return nil, wrapSys(ErrSystem, "wait: WaitForSingleObject", err)
	}
}

// Close releases every stream endpoint and ownership handle and resets the
// Process to its empty state. It is safe on a partially-populated handle and
// a second call is a no-op.
func (p *Process) Close() error {
	var first error
	closeFile := func(f **os.File) {
		if *f != nil {
			if err := (*f).Close(); err != nil && first == nil {
				first = err
			}
			*f = nil
		}
	}
	closeFile(&p.Stdin)
	closeFile(&p.Stdout)
	closeFile(&p.Stderr)

	if p.process != 0 {
		if err := windows.CloseHandle(p.process); err != nil && first == nil {
			first = err
		}
		p.process = 0
	}
	if p.thread != 0 {
		if err := windows.CloseHandle(p.thread); err != nil && first == nil {
			first = err
		}
		p.thread = 0
	}
	p.Pid = 0
	if first != nil {
		return wrapSys(ErrSystem, "close process", first)
	}
	return nil
}

// Exec replaces the engine's execvp(): Windows cannot swap the running
// process image, so Exec spawns argv with inherited standard streams, waits
// for it, and exits the calling process with the child's exit code. On the
// success path Exec never returns; it returns an error only when the spawn
// itself fails.
func Exec(argv []string) error {
	proc, err := Spawn(SpawnConfig{Argv: argv})
	if err != nil {
		return err
	}

	code := 127
	if r, err := proc.Wait(WaitInfinite); err == nil && r.Exited {
		code = r.ExitCode
	}
	proc.Close()
	os.Exit(code)
	return nil // unreachable
}

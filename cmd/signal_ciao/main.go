//go:build windows

// signal_ciao delivers an interrupt to a running Ciao engine instance on
// Windows. It reconstructs the named event "CiaoInterrupt_{PID}" the engine
// creates at startup, signals it once, and exits.
//
// Usage:
//
//	signal_ciao <PID>
//
// Exit codes: 0 = signaled, 1 = bad arguments, 2 = event not found (no
// instance with that PID is running, or it predates the interrupt bridge).
// Nothing is printed on success.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ciao-lang/winprims"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the exit-code contract; main only maps it onto os.Exit.
func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: signal_ciao <PID>")
		return 1
	}
	// A malformed PID names an event that cannot exist; that is the same
	// "not found" outcome as a PID with no running instance.
	pid, err := strconv.Atoi(args[0])
	if err != nil || pid <= 0 {
		return 2
	}

	if err := winprims.NotifyInterrupt(pid); err != nil {
		return 2
	}
	return 0
}

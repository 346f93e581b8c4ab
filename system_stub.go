//go:build !windows

package winprims

import "os"

// The user/group identity shims only replace POSIX queries on Windows; off
// Windows the engine asks the OS directly. Degraded values keep the surface
// uniform for cross-platform builds.

// Setsid returns the current process ID without changing anything, matching
// the Windows shim's behavior.
func Setsid() int { return os.Getpid() }

// Getuid returns 0.
func Getuid() int { return 0 }

// Getgid returns 0.
func Getgid() int { return 0 }

// Geteuid returns 0.
func Geteuid() int { return 0 }

// Getegid returns 0.
func Getegid() int { return 0 }

// Username returns "unknown"; the Windows identity shim is not active.
func Username() string { return "unknown" }

// HomeDir returns the host's notion of a home directory.
func HomeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return h
}

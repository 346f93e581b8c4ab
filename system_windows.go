//go:build windows

package winprims

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/windows"
)

// UNIX user/group identity shims. Windows has no uid/gid; the engine only
// needs stable values, so all four queries report root-like zeros.

// Setsid stands in for setsid(2): Windows has no sessions in the POSIX
// sense, so the current process ID is returned and nothing changes.
func Setsid() int {
	return int(windows.GetCurrentProcessId())
}

// Getuid returns 0.
func Getuid() int { return 0 }

// Getgid returns 0.
func Getgid() int { return 0 }

// Geteuid returns 0.
func Geteuid() int { return 0 }

// Getegid returns 0.
func Getegid() int { return 0 }

var usernameOnce struct {
	sync.Once
	name string
}

// Username returns the account name of the current user, without the domain
// qualifier, or "unknown" when the query fails. The value is cached after
// the first call.
func Username() string {
	usernameOnce.Do(func() {
		var buf [256]uint16
		n := uint32(len(buf))
		if err := windows.GetUserNameEx(windows.NameSamCompatible, &buf[0], &n); err != nil {
			usernameOnce.name = "unknown"
			return
		}
		name := windows.UTF16ToString(buf[:n])
		if i := strings.LastIndexByte(name, '\\'); i >= 0 {
			name = name[i+1:]
		}
		usernameOnce.name = name
	})
	return usernameOnce.name
}

// HomeDir returns the current user's home directory: %USERPROFILE%, then
// %HOMEDRIVE%%HOMEPATH%, then a fixed default.
func HomeDir() string {
	if p := os.Getenv("USERPROFILE"); p != "" {
		return p
	}
	if d, p := os.Getenv("HOMEDRIVE"), os.Getenv("HOMEPATH"); d != "" && p != "" {
		return d + p
	}
	return `C:\Users\Default`
}

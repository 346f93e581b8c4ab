//go:build !windows

package winprims

// ShmOpen reports [ErrNotSupported]; use shm_open(2) on POSIX hosts.
func ShmOpen(name string, size int, create bool) ([]byte, error) {
	return nil, errorf(ErrNotSupported, "shared memory emulation is only available on Windows")
}

// ShmClose reports [ErrNotSupported].
func ShmClose(name string) error {
	return errorf(ErrNotSupported, "shared memory emulation is only available on Windows")
}

//go:build windows

package winprims

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// shmNamePrefix namespaces the engine's regions inside the per-session
// kernel object directory so unrelated processes cannot collide with them.
const shmNamePrefix = `Local\CiaoProlog_`

// maxShmRegions bounds how many regions one process may hold open at once,
// matching the engine's fixed table.
const maxShmRegions = 64

type shmRegion struct {
	name    string
	mapping windows.Handle
	base    uintptr
	size    int
}

var shm struct {
	mu      sync.Mutex
	regions []shmRegion
}

// ShmOpen creates (or, with create false, opens) a named shared memory
// region and maps it into the caller's address space, replacing the engine's
// shm_open+mmap pair. The returned slice aliases the mapping and stays valid
// until [ShmClose] releases the region.
//
// # Errors
//
//   - [ErrInvalidArgument]: empty name or non-positive size
//   - [ErrSystem]: region table full (resource exhaustion, not retried)
//   - [ErrNotFound]: create is false and no region with that name exists
//   - [ErrPermissionDenied]: the mapping exists but cannot be opened
func ShmOpen(name string, size int, create bool) ([]byte, error) {
	if name == "" || size <= 0 {
		return nil, errorf(ErrInvalidArgument, "shm: empty name or non-positive size")
	}

	shm.mu.Lock()
	defer shm.mu.Unlock()

	if len(shm.regions) >= maxShmRegions {
		return nil, errorf(ErrSystem, "shm: too many shared memory regions")
	}

	wname, err := windows.UTF16PtrFromString(shmNamePrefix + name)
	if err != nil {
		return nil, wrapSys(ErrInvalidArgument, "shm: region name", err)
	}

	var mapping windows.Handle
	if create {
		mapping, err = windows.CreateFileMapping(
			windows.InvalidHandle, nil, windows.PAGE_READWRITE,
			uint32(uint64(size)>>32), uint32(uint64(size)&0xFFFFFFFF), wname)
		// An existing region under the same name is opened, not an error.
		if err != nil && err != windows.ERROR_ALREADY_EXISTS {
			return nil, wrapSys(ErrPermissionDenied, "shm: CreateFileMapping", err)
		}
	} else {
		mapping, err = windows.OpenFileMapping(windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, false, wname)
		if err != nil {
			return nil, wrapSys(ErrNotFound, "shm: no such region", err)
		}
	}

	base, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(mapping)
		return nil, wrapSys(ErrSystem, "shm: MapViewOfFile", err)
	}

	shm.regions = append(shm.regions, shmRegion{
		name:    name,
		mapping: mapping,
		base:    base,
		size:    size,
	})
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), size), nil
}

// ShmClose unmaps and releases the region registered under name. The region
// disappears from the system once every process holding it has closed it.
// Closing a name that is not open reports [ErrNotFound].
func ShmClose(name string) error {
	shm.mu.Lock()
	defer shm.mu.Unlock()

	for i, r := range shm.regions {
		if r.name != name {
			continue
		}
		windows.UnmapViewOfFile(r.base)
		windows.CloseHandle(r.mapping)
		shm.regions = append(shm.regions[:i], shm.regions[i+1:]...)
		return nil
	}
	return errorf(ErrNotFound, "shm: region not open: "+name)
}

//go:build windows

package pixbuf

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// OSAllocator commits pages with VirtualAlloc and frees them with VirtualFree.
type OSAllocator struct{}

func (OSAllocator) Commit(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func (OSAllocator) Release(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return windows.VirtualFree(uintptr(unsafe.Pointer(&mem[0])), 0, windows.MEM_RELEASE)
}

//go:build unix

package pixbuf

import "golang.org/x/sys/unix"

// OSAllocator commits anonymous private pages with read/write access.
type OSAllocator struct{}

func (OSAllocator) Commit(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func (OSAllocator) Release(mem []byte) error {
	return unix.Munmap(mem)
}

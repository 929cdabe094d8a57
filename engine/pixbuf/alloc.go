package pixbuf

import "fmt"

// Allocator hands out and takes back raw pixel memory. Commit must return a
// zeroed, writable block of exactly size bytes.
type Allocator interface {
	Commit(size int) ([]byte, error)
	Release(mem []byte) error
}

// HeapAllocator serves blocks from the Go heap.
type HeapAllocator struct{}

// Commit reports a size the runtime refuses to allocate as an error.
func (HeapAllocator) Commit(size int) (mem []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			mem, err = nil, fmt.Errorf("heap commit %d bytes: %v", size, r)
		}
	}()
	return make([]byte, size), nil
}

func (HeapAllocator) Release([]byte) error { return nil }

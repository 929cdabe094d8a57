//go:build !unix && !windows

package pixbuf

// OSAllocator falls back to the Go heap where no page allocator is wired.
type OSAllocator = HeapAllocator

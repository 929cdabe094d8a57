package pixbuf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hubastard/handmade/engine/colors"
)

const (
	// BytesPerPixel is fixed; every buffer is 32bpp.
	BytesPerPixel = 4

	// CompressionRGB marks uncompressed pixel data.
	CompressionRGB = 0

	bitmapInfoHeaderSize = 40
)

var (
	ErrInvalidSize = errors.New("pixbuf: width and height must be positive")
	ErrAlloc       = errors.New("pixbuf: allocation failed")
	ErrRelease     = errors.New("pixbuf: release failed")
)

// BitmapInfo mirrors a platform bitmap header. A negative Height marks a
// top-down image: row 0 is the visual top.
type BitmapInfo struct {
	Size        uint32
	Width       int32
	Height      int32
	Planes      uint16
	BitCount    uint16
	Compression uint32
}

// TopDown reports whether row 0 is the top of the image.
func (bi BitmapInfo) TopDown() bool { return bi.Height < 0 }

// Rows returns the absolute row count.
func (bi BitmapInfo) Rows() int {
	if bi.Height < 0 {
		return int(-bi.Height)
	}
	return int(bi.Height)
}

// Buffer is an off-screen 32bpp canvas backed by memory from an Allocator.
// It has no locking; it belongs to whichever loop owns it.
type Buffer struct {
	Info          BitmapInfo
	Memory        []byte
	Width         int32
	Height        int32
	BytesPerPixel int32

	alloc Allocator
}

// New returns an empty buffer. No memory is committed until Resize.
func New(alloc Allocator) *Buffer {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	return &Buffer{BytesPerPixel: BytesPerPixel, alloc: alloc}
}

// Resize drops the current backing block (if any) and commits a fresh one of
// exactly width*height*4 bytes. Errors wrapping ErrAlloc or ErrRelease leave
// the buffer empty and are not recoverable.
func (b *Buffer) Resize(width, height int32) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	if int64(width)*int64(height) > math.MaxInt/BytesPerPixel {
		return fmt.Errorf("%w: %dx%d overflows the address space", ErrAlloc, width, height)
	}

	if err := b.Release(); err != nil {
		return err
	}

	size := int(width) * int(height) * BytesPerPixel
	mem, err := b.alloc.Commit(size)
	if err != nil {
		return fmt.Errorf("%w: %d bytes: %v", ErrAlloc, size, err)
	}
	if len(mem) != size {
		_ = b.alloc.Release(mem)
		return fmt.Errorf("%w: got %d bytes, want %d", ErrAlloc, len(mem), size)
	}

	b.Memory = mem
	b.Width = width
	b.Height = height
	b.BytesPerPixel = BytesPerPixel
	b.Info = BitmapInfo{
		Size:        bitmapInfoHeaderSize,
		Width:       width,
		Height:      -height,
		Planes:      1,
		BitCount:    32,
		Compression: CompressionRGB,
	}
	return nil
}

// Release returns the backing block to the allocator. Calling it on an empty
// buffer is a no-op.
func (b *Buffer) Release() error {
	if b.Memory == nil {
		return nil
	}
	mem := b.Memory
	b.Memory = nil
	b.Width, b.Height = 0, 0
	b.Info = BitmapInfo{}
	if err := b.alloc.Release(mem); err != nil {
		return fmt.Errorf("%w: %v", ErrRelease, err)
	}
	return nil
}

func (b *Buffer) Allocated() bool { return b.Memory != nil }
func (b *Buffer) Len() int        { return len(b.Memory) }
func (b *Buffer) Pitch() int      { return int(b.Width) * BytesPerPixel }

// Fill writes c to every pixel.
func (b *Buffer) Fill(c colors.Pixel) {
	if len(b.Memory) < BytesPerPixel {
		return
	}
	binary.LittleEndian.PutUint32(b.Memory, uint32(c))
	// doubling copy
	for n := BytesPerPixel; n < len(b.Memory); n *= 2 {
		copy(b.Memory[n:], b.Memory[:n])
	}
}

// SetPixel writes c at (x, y); out-of-range coordinates are ignored.
func (b *Buffer) SetPixel(x, y int, c colors.Pixel) {
	if x < 0 || y < 0 || x >= int(b.Width) || y >= int(b.Height) {
		return
	}
	off := y*b.Pitch() + x*BytesPerPixel
	binary.LittleEndian.PutUint32(b.Memory[off:], uint32(c))
}

// Pixel reads the pixel at (x, y); out-of-range coordinates read as zero.
func (b *Buffer) Pixel(x, y int) colors.Pixel {
	if x < 0 || y < 0 || x >= int(b.Width) || y >= int(b.Height) {
		return 0
	}
	off := y*b.Pitch() + x*BytesPerPixel
	return colors.Pixel(binary.LittleEndian.Uint32(b.Memory[off:]))
}


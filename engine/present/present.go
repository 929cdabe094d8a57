package present

import (
	"errors"
	"fmt"
	"image"

	"github.com/hubastard/handmade/engine/pixbuf"
)

var (
	ErrNothingToPresent = errors.New("present: empty buffer or target")
	ErrPresentFailed    = errors.New("present: surface rejected blit")
)

// Surface is a drawing target that can stretch a raw 32bpp image onto
// itself. Implementations must only read pixels and never keep it.
type Surface interface {
	StretchBlit(dst, src image.Rectangle, pixels []byte, info pixbuf.BitmapInfo) error
}

// Present copies the whole buffer onto s at (0,0,targetW,targetH), scaling if
// the sizes differ. Both error kinds are recoverable: callers skip the frame.
func Present(s Surface, buf *pixbuf.Buffer, targetW, targetH int) error {
	if buf == nil || !buf.Allocated() || targetW <= 0 || targetH <= 0 {
		return ErrNothingToPresent
	}
	src := image.Rect(0, 0, int(buf.Width), int(buf.Height))
	dst := image.Rect(0, 0, targetW, targetH)
	if err := s.StretchBlit(dst, src, buf.Memory, buf.Info); err != nil {
		return fmt.Errorf("%w: %v", ErrPresentFailed, err)
	}
	return nil
}

// SourceImage wraps raw pixels as an RGBA image without copying. Channel
// order is left as stored, which is fine for byte-exact copies. Bottom-up
// sources are flipped into a new top-down image.
func SourceImage(pixels []byte, info pixbuf.BitmapInfo) (*image.RGBA, error) {
	w, h := int(info.Width), info.Rows()
	if info.BitCount != 32 || info.Compression != pixbuf.CompressionRGB {
		return nil, fmt.Errorf("unsupported format: %d bpp, compression %d", info.BitCount, info.Compression)
	}
	stride := w * pixbuf.BytesPerPixel
	if w <= 0 || h <= 0 || len(pixels) < stride*h {
		return nil, fmt.Errorf("pixel data %d bytes too short for %dx%d", len(pixels), w, h)
	}
	img := &image.RGBA{Pix: pixels[:stride*h:stride*h], Stride: stride, Rect: image.Rect(0, 0, w, h)}
	if info.TopDown() {
		return img, nil
	}
	flipped := image.NewRGBA(img.Rect)
	for y := 0; y < h; y++ {
		copy(flipped.Pix[y*stride:(y+1)*stride], pixels[(h-1-y)*stride:(h-y)*stride])
	}
	return flipped, nil
}

package present

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/hubastard/handmade/engine/pixbuf"
)

// MemorySurface is a software client area. Pix uses the buffer's own byte
// layout so a same-size present is a byte-identical copy.
type MemorySurface struct {
	Width    int
	Height   int
	Pix      []byte
	Presents int
}

func NewMemorySurface(w, h int) *MemorySurface {
	s := &MemorySurface{}
	s.Resize(w, h)
	return s
}

// Resize reallocates the surface; contents are cleared.
func (m *MemorySurface) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	m.Width, m.Height = w, h
	m.Pix = make([]byte, w*h*pixbuf.BytesPerPixel)
}

func (m *MemorySurface) target() *image.RGBA {
	return &image.RGBA{Pix: m.Pix, Stride: m.Width * pixbuf.BytesPerPixel, Rect: image.Rect(0, 0, m.Width, m.Height)}
}

func (m *MemorySurface) StretchBlit(dst, src image.Rectangle, pixels []byte, info pixbuf.BitmapInfo) error {
	img, err := SourceImage(pixels, info)
	if err != nil {
		return err
	}
	draw.NearestNeighbor.Scale(m.target(), dst, img, src.Intersect(img.Rect), draw.Src, nil)
	m.Presents++
	return nil
}

// Pixel returns the raw 32-bit value at (x, y), or zero outside the surface.
func (m *MemorySurface) Pixel(x, y int) uint32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	off := (y*m.Width + x) * pixbuf.BytesPerPixel
	p := m.Pix[off : off+4]
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
}

// Image converts the surface into an opaque RGBA image.
func (m *MemorySurface) Image() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i := 0; i+3 < len(m.Pix); i += 4 {
		out.Pix[i+0] = m.Pix[i+2]
		out.Pix[i+1] = m.Pix[i+1]
		out.Pix[i+2] = m.Pix[i+0]
		out.Pix[i+3] = 0xFF
	}
	return out
}

package glbackend

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/hubastard/handmade/engine/pixbuf"
)

// Surface presents raw 32bpp pixels through a texture-backed read
// framebuffer and glBlitFramebuffer into the default framebuffer. It needs a
// current GL 3.3 context on the calling thread.
type Surface struct {
	tex  uint32
	fbo  uint32
	texW int32
	texH int32
}

func NewSurface() (*Surface, error) {
	s := &Surface{}
	gl.GenTextures(1, &s.tex)
	gl.GenFramebuffers(1, &s.fbo)
	if err := glError("create surface"); err != nil {
		s.Shutdown()
		return nil, err
	}
	return s, nil
}

// StretchBlit uploads the source and scales it over dst. Rows are flipped
// for top-down sources since GL's origin is bottom-left.
func (s *Surface) StretchBlit(dst, src image.Rectangle, pixels []byte, info pixbuf.BitmapInfo) error {
	if info.BitCount != 32 || info.Compression != pixbuf.CompressionRGB {
		return fmt.Errorf("unsupported format: %d bpp, compression %d", info.BitCount, info.Compression)
	}
	w, h := info.Width, int32(info.Rows())
	if w <= 0 || h <= 0 || len(pixels) < int(w)*int(h)*pixbuf.BytesPerPixel {
		return fmt.Errorf("pixel data %d bytes too short for %dx%d", len(pixels), w, h)
	}

	gl.BindTexture(gl.TEXTURE_2D, s.tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	if w != s.texW || h != s.texH {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.BGRA, gl.UNSIGNED_INT_8_8_8_8_REV, nil)
		s.texW, s.texH = w, h

		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, s.fbo)
		gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, s.tex, 0)
		if st := gl.CheckFramebufferStatus(gl.READ_FRAMEBUFFER); st != gl.FRAMEBUFFER_COMPLETE {
			s.texW, s.texH = 0, 0
			return fmt.Errorf("read framebuffer incomplete: %#x", st)
		}
	}
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w, h, gl.BGRA, gl.UNSIGNED_INT_8_8_8_8_REV, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	sx0, sy0, sx1, sy1 := int32(src.Min.X), int32(src.Min.Y), int32(src.Max.X), int32(src.Max.Y)
	dx0, dy0, dx1, dy1 := int32(dst.Min.X), int32(dst.Min.Y), int32(dst.Max.X), int32(dst.Max.Y)
	if info.TopDown() {
		dy0, dy1 = dy1, dy0
	}

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, s.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(dst.Dx()), int32(dst.Dy()))
	gl.BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	return glError("stretch blit")
}

func (s *Surface) Shutdown() {
	if s.fbo != 0 {
		gl.DeleteFramebuffers(1, &s.fbo)
		s.fbo = 0
	}
	if s.tex != 0 {
		gl.DeleteTextures(1, &s.tex)
		s.tex = 0
	}
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: gl error %#x", op, code)
	}
	return nil
}

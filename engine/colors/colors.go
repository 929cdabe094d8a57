package colors

// Pixel is one 32-bit buffer pixel. Stored little-endian it reads B, G, R, X
// in memory, the layout an uncompressed 32bpp bitmap expects.
type Pixel uint32

func Pack(r, g, b uint8) Pixel {
	return Pixel(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (p Pixel) RGB() (r, g, b uint8) {
	return uint8(p >> 16), uint8(p >> 8), uint8(p)
}

var (
	White    = Pack(255, 255, 255)
	Red      = Pack(255, 0, 0)
	Green    = Pack(0, 255, 0)
	Blue     = Pack(0, 0, 255)
	Black    = Pack(0, 0, 0)
	Magenta  = Pack(255, 0, 255)
	Cyan     = Pack(0, 255, 255)
	Yellow   = Pack(255, 255, 0)
	Gray     = Pack(128, 128, 128)
	DarkGray = Pack(20, 26, 31)
)

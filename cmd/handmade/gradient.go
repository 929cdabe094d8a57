package main

import (
	"github.com/hubastard/handmade/engine/colors"
	"github.com/hubastard/handmade/engine/input"
	"github.com/hubastard/handmade/engine/pixbuf"
)

// Gradient scrolls a blue/green ramp one pixel per frame. The first
// connected pad's left stick adds to the scroll speed.
type Gradient struct {
	XOffset int
	YOffset int
}

func (g *Gradient) Render(buf *pixbuf.Buffer, pads []input.ControllerState) {
	if pad, ok := input.FirstConnected(pads); ok {
		g.XOffset += int(pad.ThumbLX) >> 12
		g.YOffset -= int(pad.ThumbLY) >> 12
		if pad.Pressed(input.ButtonA) {
			g.YOffset++
		}
	}

	for y := 0; y < int(buf.Height); y++ {
		for x := 0; x < int(buf.Width); x++ {
			buf.SetPixel(x, y, colors.Pack(0, uint8(y+g.YOffset), uint8(x+g.XOffset)))
		}
	}
	g.XOffset++
}

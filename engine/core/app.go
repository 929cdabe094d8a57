package core

import (
	"github.com/hubastard/handmade/engine/input"
	"github.com/hubastard/handmade/engine/pixbuf"
	"github.com/hubastard/handmade/engine/present"
)

// Host is the platform side of a single top-level window.
type Host interface {
	// Pump drains every pending notification without blocking. Platform
	// callbacks only queue; they never touch loop state.
	Pump() []Event
	// Default hands a notification back to the platform's default handling.
	Default(ev Event)
	ClientSize() (int, int)
	Surface() present.Surface
	// Show makes the window visible and queues EventShown.
	Show() error
	// Destroy releases the window. Called once, after the loop has exited.
	Destroy()
}

// Driver is implemented by hosts whose toolkit owns the frame loop. Drive
// calls step once per frame until it reports false or fails.
type Driver interface {
	Drive(step func() (bool, error)) error
}

// Renderer fills the buffer each iteration. It is the seam for whatever draws
// the frame; the loop presents right after it returns.
type Renderer interface {
	Render(buf *pixbuf.Buffer, pads []input.ControllerState)
}

type RendererFunc func(buf *pixbuf.Buffer, pads []input.ControllerState)

func (f RendererFunc) Render(buf *pixbuf.Buffer, pads []input.ControllerState) { f(buf, pads) }

// ResizePolicy decides what happens to the buffer when the client area
// changes size.
type ResizePolicy string

const (
	ResizeMatchWindow ResizePolicy = "match-window"
	ResizeFixed       ResizePolicy = "fixed"
)

// Config for the window and loop.
type Config struct {
	Title           string
	ClassName       string
	Width           int
	Height          int
	VSync           bool
	ControllerSlots int // 0 = input.MaxSlots
	Resize          ResizePolicy
	MaxFrames       uint64 // 0 = until closed
}

func DefaultConfig() Config {
	return Config{
		Title:           "Handmade",
		ClassName:       "HandmadeWindowClass",
		Width:           1280,
		Height:          720,
		VSync:           true,
		ControllerSlots: input.MaxSlots,
		Resize:          ResizeMatchWindow,
	}
}

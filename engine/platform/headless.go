package platform

import (
	"github.com/hubastard/handmade/engine/core"
	"github.com/hubastard/handmade/engine/input"
	"github.com/hubastard/handmade/engine/present"
)

func init() {
	Register("headless", func(cfg core.Config) (*Backend, error) {
		return &Backend{Host: NewHeadless(cfg.Width, cfg.Height), Pads: &input.Static{}}, nil
	})
}

// Headless is a window without a screen. The client area is a MemorySurface
// and notifications come from Post or from a script consumed one batch per
// Pump.
type Headless struct {
	Script    [][]core.Event
	Defaults  []core.Event
	Destroyed bool

	surface  *present.MemorySurface
	queue    []core.Event
	shown    bool
	scripted bool
}

func NewHeadless(w, h int) *Headless {
	return &Headless{
		surface: present.NewMemorySurface(w, h),
		queue:   []core.Event{core.EventCreated{}},
	}
}

// Post queues notifications for the next Pump.
func (h *Headless) Post(evs ...core.Event) { h.queue = append(h.queue, evs...) }

// Resize changes the client area and queues the matching notification and
// repaint, the way a desktop window reports a drag.
func (h *Headless) Resize(w, hgt int) {
	h.surface.Resize(w, hgt)
	h.Post(core.EventResize{W: w, H: hgt}, core.EventPaint{})
}

// Close queues a close request.
func (h *Headless) Close() { h.Post(core.EventCloseRequested{}) }

func (h *Headless) Pump() []core.Event {
	q := h.queue
	h.queue = nil
	if h.scripted && len(h.Script) > 0 {
		q = append(q, h.Script[0]...)
		h.Script = h.Script[1:]
	}
	// the script starts on the first pump after the one that shows the window
	h.scripted = h.shown
	return q
}

func (h *Headless) Default(ev core.Event) { h.Defaults = append(h.Defaults, ev) }

func (h *Headless) ClientSize() (int, int) { return h.surface.Width, h.surface.Height }

func (h *Headless) Surface() present.Surface { return h.surface }

// Memory exposes the client area for inspection and frame dumps.
func (h *Headless) Memory() *present.MemorySurface { return h.surface }

func (h *Headless) Show() error {
	h.shown = true
	h.Post(core.EventShown{}, core.EventPaint{})
	return nil
}

func (h *Headless) Destroy() { h.Destroyed = true }

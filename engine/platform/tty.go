package platform

import (
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"

	"github.com/hubastard/handmade/engine/core"
	"github.com/hubastard/handmade/engine/input"
	"github.com/hubastard/handmade/engine/pixbuf"
	"github.com/hubastard/handmade/engine/present"
)

func init() {
	Register("tty", func(cfg core.Config) (*Backend, error) {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		w, err := NewTTYWindow(s, cfg)
		if err != nil {
			return nil, err
		}
		return &Backend{Host: w, Pads: &input.Static{}}, nil
	})
}

// upper half block: foreground paints the top pixel, background the bottom
const halfBlock = '▀'

// TTYWindow uses a terminal as the client area. Every cell holds two pixel
// rows. tcell delivers events from a goroutine; Pump only drains what has
// already arrived.
type TTYWindow struct {
	screen    tcell.Screen
	events    chan tcell.Event
	quit      chan struct{}
	queue     []core.Event
	canvas    *present.MemorySurface
	destroyed bool
}

func NewTTYWindow(s tcell.Screen, cfg core.Config) (*TTYWindow, error) {
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	s.HideCursor()
	s.SetTitle(cfg.Title)

	t := &TTYWindow{
		screen: s,
		events: make(chan tcell.Event, 64),
		quit:   make(chan struct{}),
		queue:  []core.Event{core.EventCreated{}},
		canvas: present.NewMemorySurface(0, 0),
	}
	go t.poll()
	return t, nil
}

func (t *TTYWindow) poll() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.quit:
			return
		}
	}
}

func (t *TTYWindow) Pump() []core.Event {
	for {
		select {
		case ev := <-t.events:
			t.queue = append(t.queue, translateTTY(ev)...)
		default:
			q := t.queue
			t.queue = nil
			return q
		}
	}
}

func translateTTY(ev tcell.Event) []core.Event {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		return []core.Event{core.EventResize{W: w, H: h * 2}, core.EventPaint{}}
	case *tcell.EventKey:
		if isCloseKey(e) {
			return []core.Event{core.EventCloseRequested{}}
		}
		return []core.Event{core.EventOther{Code: int(e.Key()), Name: e.Name()}}
	default:
		return []core.Event{core.EventOther{Name: fmt.Sprintf("%T", ev)}}
	}
}

func isCloseKey(e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return e.Rune() == 'q' || e.Rune() == 'Q'
	}
	return false
}

func (t *TTYWindow) Default(core.Event) {}

// ClientSize reports pixels: one column wide, two rows per cell.
func (t *TTYWindow) ClientSize() (int, int) {
	w, h := t.screen.Size()
	return w, h * 2
}

func (t *TTYWindow) Surface() present.Surface { return t }

func (t *TTYWindow) Show() error {
	t.screen.Clear()
	t.screen.Show()
	t.queue = append(t.queue, core.EventShown{})
	return nil
}

func (t *TTYWindow) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	close(t.quit)
	t.screen.Fini()
}

// StretchBlit scales into an off-screen canvas of the destination size and
// then writes it out as half-block cells.
func (t *TTYWindow) StretchBlit(dst, src image.Rectangle, pixels []byte, info pixbuf.BitmapInfo) error {
	if t.canvas.Width != dst.Dx() || t.canvas.Height != dst.Dy() {
		t.canvas.Resize(dst.Dx(), dst.Dy())
	}
	if err := t.canvas.StretchBlit(image.Rect(0, 0, dst.Dx(), dst.Dy()), src, pixels, info); err != nil {
		return err
	}

	cols, rows := t.screen.Size()
	for cy := 0; cy < rows; cy++ {
		py := cy*2 - dst.Min.Y
		for cx := 0; cx < cols; cx++ {
			px := cx - dst.Min.X
			top := cellColor(t.canvas.Pixel(px, py))
			bottom := cellColor(t.canvas.Pixel(px, py+1))
			t.screen.SetContent(cx, cy, halfBlock, nil, tcell.StyleDefault.Foreground(top).Background(bottom))
		}
	}
	t.screen.Show()
	return nil
}

func cellColor(p uint32) tcell.Color {
	return tcell.NewRGBColor(int32(p>>16&0xFF), int32(p>>8&0xFF), int32(p&0xFF))
}

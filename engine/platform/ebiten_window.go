//go:build ebiten

package platform

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hubastard/handmade/engine/core"
	"github.com/hubastard/handmade/engine/input"
	"github.com/hubastard/handmade/engine/pixbuf"
	"github.com/hubastard/handmade/engine/present"
)

func init() {
	Register("ebiten", func(cfg core.Config) (*Backend, error) {
		return &Backend{Host: NewEbitenWindow(cfg), Pads: &EbitenGamepads{}}, nil
	})
}

// EbitenWindow implements core.Host and core.Driver. Ebiten owns the frame
// loop, so one Update is one loop iteration and Draw shows the last blit.
type EbitenWindow struct {
	queue []core.Event
	w, h  int
	frame *ebiten.Image
	pix   []byte
	dst   image.Rectangle
	step  func() (bool, error)
}

func NewEbitenWindow(cfg core.Config) *EbitenWindow {
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetVsyncEnabled(cfg.VSync)
	return &EbitenWindow{
		queue: []core.Event{core.EventCreated{}},
		w:     cfg.Width,
		h:     cfg.Height,
	}
}

func (e *EbitenWindow) push(ev core.Event) { e.queue = append(e.queue, ev) }

func (e *EbitenWindow) Pump() []core.Event {
	q := e.queue
	e.queue = nil
	return q
}

func (e *EbitenWindow) Default(core.Event)       {}
func (e *EbitenWindow) ClientSize() (int, int)   { return e.w, e.h }
func (e *EbitenWindow) Surface() present.Surface { return e }

// Show only queues the notification; the window appears when RunGame starts.
func (e *EbitenWindow) Show() error {
	e.push(core.EventShown{})
	return nil
}

func (e *EbitenWindow) Destroy() {
	if e.frame != nil {
		e.frame.Deallocate()
		e.frame = nil
	}
}

// Drive runs ebiten's loop; step returning false ends it cleanly.
func (e *EbitenWindow) Drive(step func() (bool, error)) error {
	e.step = step
	err := ebiten.RunGame(e)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// ebiten.Game impl
func (e *EbitenWindow) Update() error {
	if ebiten.IsWindowBeingClosed() {
		e.push(core.EventCloseRequested{})
	}
	more, err := e.step()
	if err != nil {
		return err
	}
	if !more {
		return ebiten.Termination
	}
	return nil
}

func (e *EbitenWindow) Draw(screen *ebiten.Image) {
	if e.frame == nil || e.dst.Empty() {
		return
	}
	fw, fh := e.frame.Bounds().Dx(), e.frame.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(e.dst.Dx())/float64(fw), float64(e.dst.Dy())/float64(fh))
	op.GeoM.Translate(float64(e.dst.Min.X), float64(e.dst.Min.Y))
	screen.DrawImage(e.frame, op)
}

func (e *EbitenWindow) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != e.w || outsideHeight != e.h {
		e.w, e.h = outsideWidth, outsideHeight
		e.push(core.EventResize{W: outsideWidth, H: outsideHeight})
		e.push(core.EventPaint{})
	}
	return outsideWidth, outsideHeight
}

// StretchBlit stages the pixels as an RGBA image; the scale happens in Draw.
func (e *EbitenWindow) StretchBlit(dst, src image.Rectangle, pixels []byte, info pixbuf.BitmapInfo) error {
	img, err := present.SourceImage(pixels, info)
	if err != nil {
		return err
	}
	src = src.Intersect(img.Rect)
	if src.Empty() {
		return errors.New("empty source rectangle")
	}
	w, h := src.Dx(), src.Dy()
	if e.frame == nil || e.frame.Bounds().Dx() != w || e.frame.Bounds().Dy() != h {
		if e.frame != nil {
			e.frame.Deallocate()
		}
		e.frame = ebiten.NewImage(w, h)
		e.pix = make([]byte, w*h*4)
	}
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(src.Min.X, src.Min.Y+y):]
		out := e.pix[y*w*4:]
		for x := 0; x < w; x++ {
			out[x*4+0] = row[x*4+2]
			out[x*4+1] = row[x*4+1]
			out[x*4+2] = row[x*4+0]
			out[x*4+3] = 0xFF
		}
	}
	e.frame.WritePixels(e.pix)
	e.dst = dst
	return nil
}

// EbitenGamepads maps connected gamepads, in id order, onto slots.
type EbitenGamepads struct {
	ids []ebiten.GamepadID
}

var ebitenButtons = [...]struct {
	src ebiten.StandardGamepadButton
	dst input.Button
}{
	{ebiten.StandardGamepadButtonRightBottom, input.ButtonA},
	{ebiten.StandardGamepadButtonRightRight, input.ButtonB},
	{ebiten.StandardGamepadButtonRightLeft, input.ButtonX},
	{ebiten.StandardGamepadButtonRightTop, input.ButtonY},
	{ebiten.StandardGamepadButtonFrontTopLeft, input.ButtonLeftShoulder},
	{ebiten.StandardGamepadButtonFrontTopRight, input.ButtonRightShoulder},
	{ebiten.StandardGamepadButtonCenterLeft, input.ButtonBack},
	{ebiten.StandardGamepadButtonCenterRight, input.ButtonStart},
	{ebiten.StandardGamepadButtonCenterCenter, input.ButtonGuide},
	{ebiten.StandardGamepadButtonLeftStick, input.ButtonLeftThumb},
	{ebiten.StandardGamepadButtonRightStick, input.ButtonRightThumb},
	{ebiten.StandardGamepadButtonLeftTop, input.ButtonDpadUp},
	{ebiten.StandardGamepadButtonLeftBottom, input.ButtonDpadDown},
	{ebiten.StandardGamepadButtonLeftLeft, input.ButtonDpadLeft},
	{ebiten.StandardGamepadButtonLeftRight, input.ButtonDpadRight},
}

func (g *EbitenGamepads) State(slot int) (input.ControllerState, error) {
	g.ids = ebiten.AppendGamepadIDs(g.ids[:0])
	if slot < 0 || slot >= len(g.ids) {
		return input.ControllerState{}, input.ErrNotConnected
	}
	id := g.ids[slot]
	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		return input.ControllerState{}, input.ErrNotConnected
	}

	st := input.ControllerState{Name: ebiten.GamepadName(id)}
	for _, b := range ebitenButtons {
		if ebiten.IsStandardGamepadButtonPressed(id, b.src) {
			st.Buttons |= b.dst
		}
	}
	st.ThumbLX = input.ThumbFromAxis(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal), false)
	st.ThumbLY = input.ThumbFromAxis(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical), true)
	st.ThumbRX = input.ThumbFromAxis(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal), false)
	st.ThumbRY = input.ThumbFromAxis(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical), true)
	st.LeftTrigger = input.TriggerFromValue(ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomLeft))
	st.RightTrigger = input.TriggerFromValue(ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomRight))
	return st, nil
}

//go:build !ebiten

package platform

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/hubastard/handmade/engine/core"
	glbackend "github.com/hubastard/handmade/engine/gfx/gl"
	"github.com/hubastard/handmade/engine/logging"
	"github.com/hubastard/handmade/engine/pixbuf"
	"github.com/hubastard/handmade/engine/present"
)

func init() {
	Register("glfw", func(cfg core.Config) (*Backend, error) {
		w, err := NewGLFWWindow(cfg)
		if err != nil {
			return nil, err
		}
		return &Backend{Host: w, Pads: GLFWGamepads{}}, nil
	})
}

// GLFWWindow implements core.Host. GLFW callbacks run inside PollEvents and
// only queue notifications; the loop decides what they mean.
type GLFWWindow struct {
	w         *glfw.Window
	surf      *glbackend.Surface
	queue     []core.Event
	destroyed bool
}

// Must be called on main thread before any GL calls.
func NewGLFWWindow(cfg core.Config) (*GLFWWindow, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 0)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	// created hidden; Show flips it once the loop has the window
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHintString(glfw.X11ClassName, cfg.ClassName)
	glfw.WindowHintString(glfw.X11InstanceName, cfg.ClassName)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	logging.Component("glfw").Infof("GL: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	surf, err := glbackend.NewSurface()
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}

	gw := &GLFWWindow{w: win, surf: surf}

	win.SetCloseCallback(func(w *glfw.Window) {
		// the state machine owns shutdown, not GLFW's flag
		w.SetShouldClose(false)
		gw.push(core.EventCloseRequested{})
	})
	win.SetRefreshCallback(func(*glfw.Window) { gw.push(core.EventPaint{}) })
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gw.push(core.EventResize{W: w, H: h})
	})
	win.SetFocusCallback(func(*glfw.Window, bool) {
		gw.push(core.EventOther{Name: "focus"})
	})
	win.SetIconifyCallback(func(*glfw.Window, bool) {
		gw.push(core.EventOther{Name: "iconify"})
	})

	gw.push(core.EventCreated{})
	return gw, nil
}

func (g *GLFWWindow) push(ev core.Event) { g.queue = append(g.queue, ev) }

// core.Host impl
func (g *GLFWWindow) Pump() []core.Event {
	glfw.PollEvents()
	q := g.queue
	g.queue = nil
	return q
}

// Default is a no-op: GLFW has already run its own handling by the time
// PollEvents returns.
func (g *GLFWWindow) Default(core.Event)       {}
func (g *GLFWWindow) ClientSize() (int, int)   { return g.w.GetFramebufferSize() }
func (g *GLFWWindow) Surface() present.Surface { return swapSurface{g} }

func (g *GLFWWindow) Show() error {
	g.w.Show()
	g.push(core.EventShown{})
	return nil
}

func (g *GLFWWindow) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.surf.Shutdown()
	g.w.Destroy()
	glfw.Terminate()
}

// swapSurface blits and then swaps, so one present is one visible frame.
type swapSurface struct{ g *GLFWWindow }

func (s swapSurface) StretchBlit(dst, src image.Rectangle, pixels []byte, info pixbuf.BitmapInfo) error {
	if err := s.g.surf.StretchBlit(dst, src, pixels, info); err != nil {
		return err
	}
	s.g.w.SwapBuffers()
	return nil
}

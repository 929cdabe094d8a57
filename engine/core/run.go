package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hubastard/handmade/engine/input"
	"github.com/hubastard/handmade/engine/logging"
	"github.com/hubastard/handmade/engine/pixbuf"
	"github.com/hubastard/handmade/engine/present"
	"github.com/hubastard/handmade/engine/profiler"
)

var ErrNotShown = errors.New("core: window never became visible")

// AppState is everything the window procedure and the loop share. It lives
// on one goroutine and is passed explicitly instead of being global.
type AppState struct {
	State  State
	Buffer *pixbuf.Buffer
}

// Loop pumps the host, polls controllers and presents the buffer.
type Loop struct {
	App AppState

	cfg    Config
	host   Host
	poller *input.Poller
	render Renderer
	log    *logrus.Entry

	frames uint64
	pads   []input.ControllerState
}

func NewLoop(cfg Config, host Host, buf *pixbuf.Buffer, poller *input.Poller, r Renderer) *Loop {
	if cfg.ControllerSlots <= 0 {
		cfg.ControllerSlots = input.MaxSlots
	}
	if cfg.Resize == "" {
		cfg.Resize = ResizeMatchWindow
	}
	if poller == nil {
		poller = input.NewPoller(nil)
	}
	return &Loop{
		App:    AppState{State: StateNotCreated, Buffer: buf},
		cfg:    cfg,
		host:   host,
		poller: poller,
		render: r,
		log:    logging.Component("loop"),
	}
}

func (l *Loop) Frames() uint64                { return l.frames }
func (l *Loop) Pads() []input.ControllerState { return l.pads }

// Start allocates the buffer, waits for the creation notification and shows
// the window. Any error is fatal and leaves nothing visible.
func (l *Loop) Start() error {
	if l.App.Buffer == nil {
		l.App.Buffer = pixbuf.New(pixbuf.OSAllocator{})
	}
	if !l.App.Buffer.Allocated() {
		if err := l.App.Buffer.Resize(int32(l.cfg.Width), int32(l.cfg.Height)); err != nil {
			return fmt.Errorf("allocate back buffer: %w", err)
		}
	}

	if _, err := l.dispatch(l.host.Pump()); err != nil {
		return err
	}
	if l.App.State != StateCreated {
		return fmt.Errorf("%w: state %s after create", ErrNotShown, l.App.State)
	}
	if err := l.host.Show(); err != nil {
		return fmt.Errorf("show window: %w", err)
	}
	repaint, err := l.dispatch(l.host.Pump())
	if err != nil {
		return err
	}
	if !l.App.State.Running() {
		return fmt.Errorf("%w: state %s after show", ErrNotShown, l.App.State)
	}
	if repaint {
		l.present()
	}
	w, h := l.host.ClientSize()
	l.log.WithFields(logrus.Fields{"buffer": fmt.Sprintf("%dx%d", l.App.Buffer.Width, l.App.Buffer.Height), "client": fmt.Sprintf("%dx%d", w, h)}).Info("window running")
	return nil
}

// Step runs one iteration and reports whether the loop should continue.
// A non-nil error is fatal. The surface is presented at most once per
// iteration: a paint request and a rendered frame share the same present.
func (l *Loop) Step() (bool, error) {
	defer profiler.Start("Loop.Step")()

	endPump := profiler.Start("Loop.Pump")
	repaint, err := l.dispatch(l.host.Pump())
	endPump()
	if err != nil {
		return false, err
	}
	if !l.App.State.Running() {
		if repaint && l.App.State != StateTerminated {
			l.present()
		}
		return false, nil
	}

	endPoll := profiler.Start("Loop.Poll")
	l.pads = l.poller.PollAll(l.cfg.ControllerSlots)
	endPoll()

	if l.render != nil {
		endRender := profiler.Start("Loop.Render")
		l.render.Render(l.App.Buffer, l.pads)
		endRender()
		repaint = true
	}
	if repaint {
		l.present()
	}

	l.frames++
	return l.App.State.Running(), nil
}

// Run drives the loop until the window leaves the running state, ctx is
// cancelled or the frame limit is hit, then tears everything down.
func (l *Loop) Run(ctx context.Context) (err error) {
	if err := l.Start(); err != nil {
		l.host.Destroy()
		if rerr := l.App.Buffer.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return err
	}
	defer func() {
		err = errors.Join(err, l.Shutdown())
	}()

	step := func() (bool, error) {
		if ctx.Err() != nil || (l.cfg.MaxFrames > 0 && l.frames >= l.cfg.MaxFrames) {
			l.App.State, _ = Transition(l.App.State, EventQuit{})
			return false, nil
		}
		return l.Step()
	}

	if d, ok := l.host.(Driver); ok {
		return d.Drive(step)
	}
	for {
		more, err := step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Shutdown releases the window and the buffer. It runs after the last
// iteration so nothing that needs the window is still in flight.
func (l *Loop) Shutdown() error {
	if l.App.State != StateTerminated {
		l.App.State, _ = Transition(l.App.State, EventQuit{})
	}
	l.host.Destroy()
	if err := l.App.Buffer.Release(); err != nil {
		return fmt.Errorf("release back buffer: %w", err)
	}
	l.log.WithField("frames", l.frames).Info("loop exit")
	return nil
}

// dispatch feeds a drained batch through Transition, then applies the
// collected effects and reports whether a present was requested. Once the
// window stops running the rest of the batch is dropped, except a quit.
func (l *Loop) dispatch(batch []Event) (bool, error) {
	var effects []Effect
	for i, ev := range batch {
		prev := l.App.State
		next, eff := Transition(prev, ev)
		l.App.State = next
		effects = append(effects, eff...)
		if l.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
			l.log.WithFields(logrus.Fields{"event": fmt.Sprintf("%T", ev), "from": prev, "to": next}).Debug("dispatch")
		}
		if prev.Running() && !next.Running() {
			l.drain(batch[i+1:])
			break
		}
	}
	return l.apply(effects)
}

func (l *Loop) drain(rest []Event) {
	for _, ev := range rest {
		if _, ok := ev.(EventQuit); ok {
			l.App.State, _ = Transition(l.App.State, ev)
			continue
		}
		l.log.WithField("event", fmt.Sprintf("%T", ev)).Debug("dropped after close")
	}
}

func (l *Loop) apply(effects []Effect) (bool, error) {
	var (
		resize   *ResizeBufferEffect
		repaint  bool
		defaults []Event
	)
	for _, e := range effects {
		switch e := e.(type) {
		case ResizeBufferEffect:
			resize = &e
		case PresentEffect:
			repaint = true
		case DefaultEffect:
			defaults = append(defaults, e.Event)
		}
	}

	if resize != nil {
		if err := l.resize(resize.W, resize.H); err != nil {
			return false, err
		}
	}
	for _, ev := range defaults {
		l.host.Default(ev)
	}
	return repaint, nil
}

func (l *Loop) resize(w, h int) error {
	buf := l.App.Buffer
	if l.cfg.Resize == ResizeFixed {
		l.log.WithField("client", fmt.Sprintf("%dx%d", w, h)).Debug("resize ignored, fixed buffer")
		return nil
	}
	if int32(w) == buf.Width && int32(h) == buf.Height {
		return nil
	}
	if err := buf.Resize(int32(w), int32(h)); err != nil {
		return fmt.Errorf("resize back buffer: %w", err)
	}
	l.log.WithField("buffer", fmt.Sprintf("%dx%d", w, h)).Debug("buffer resized")
	return nil
}

func (l *Loop) present() {
	defer profiler.Start("Loop.Present")()
	w, h := l.host.ClientSize()
	err := present.Present(l.host.Surface(), l.App.Buffer, w, h)
	switch {
	case err == nil:
	case errors.Is(err, present.ErrNothingToPresent):
		l.log.WithField("client", fmt.Sprintf("%dx%d", w, h)).Debug("present skipped")
	default:
		l.log.WithError(err).Warn("present failed, frame skipped")
	}
}

package core

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/hubastard/handmade/engine/colors"
	"github.com/hubastard/handmade/engine/input"
	"github.com/hubastard/handmade/engine/logging"
	"github.com/hubastard/handmade/engine/pixbuf"
	"github.com/hubastard/handmade/engine/present"
)

func init() { logging.SetOutput(io.Discard) }

// fakeHost records what the loop asks of the window. Scripted batches are
// returned one per Pump call.
type fakeHost struct {
	batches   [][]Event
	pumps     int
	defaults  []Event
	surface   *present.MemorySurface
	w, h      int
	shown     bool
	destroyed int
	showErr   error
}

func newFakeHost(w, h int) *fakeHost {
	return &fakeHost{
		batches: [][]Event{{EventCreated{}}},
		surface: present.NewMemorySurface(w, h),
		w:       w,
		h:       h,
	}
}

func (f *fakeHost) queue(evs ...Event) { f.batches = append(f.batches, evs) }

func (f *fakeHost) Pump() []Event {
	f.pumps++
	if len(f.batches) == 0 {
		return nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b
}

func (f *fakeHost) Default(ev Event)         { f.defaults = append(f.defaults, ev) }
func (f *fakeHost) ClientSize() (int, int)   { return f.w, f.h }
func (f *fakeHost) Surface() present.Surface { return f.surface }
func (f *fakeHost) Destroy()                 { f.destroyed++ }

func (f *fakeHost) Show() error {
	if f.showErr != nil {
		return f.showErr
	}
	f.shown = true
	// show lands in the batch the next pump returns
	if len(f.batches) == 0 {
		f.batches = append(f.batches, nil)
	}
	f.batches[0] = append([]Event{EventShown{}}, f.batches[0]...)
	return nil
}

func testConfig(w, h int) Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = w, h
	return cfg
}

func startedLoop(t *testing.T, host *fakeHost, cfg Config, src input.Source, r Renderer) *Loop {
	t.Helper()
	l := NewLoop(cfg, host, pixbuf.New(pixbuf.HeapAllocator{}), input.NewPoller(src), r)
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return l
}

func TestStartShowsWindowAndRuns(t *testing.T) {
	host := newFakeHost(64, 48)
	l := NewLoop(testConfig(64, 48), host, nil, nil, nil)
	if l.App.State.Running() {
		t.Fatal("running before the window exists")
	}
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !host.shown || l.App.State != StateRunning {
		t.Fatalf("shown=%v state=%s", host.shown, l.App.State)
	}
	if l.App.Buffer.Width != 64 || l.App.Buffer.Height != 48 {
		t.Fatalf("buffer %dx%d", l.App.Buffer.Width, l.App.Buffer.Height)
	}
	if err := l.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestCloseStopsLoopBeforeNextDrain(t *testing.T) {
	host := newFakeHost(32, 32)
	l := startedLoop(t, host, testConfig(32, 32), nil, nil)

	host.queue(EventCloseRequested{})
	more, err := l.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if more || l.App.State.Running() {
		t.Fatalf("more=%v state=%s, want stopped", more, l.App.State)
	}
	if l.App.State != StateClosing {
		t.Fatalf("state = %s, want Closing", l.App.State)
	}
}

func TestNoPaintAfterClose(t *testing.T) {
	host := newFakeHost(8, 8)
	l := startedLoop(t, host, testConfig(8, 8), nil, nil)
	before := host.surface.Presents

	host.queue(EventCloseRequested{}, EventPaint{}, EventPaint{}, EventOther{Code: 7})
	if _, err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if host.surface.Presents != before {
		t.Fatalf("presented %d times after close", host.surface.Presents-before)
	}
	if len(host.defaults) != 0 {
		t.Fatalf("dispatched %d events after close", len(host.defaults))
	}
}

func TestQuitAfterCloseInSameBatchTerminates(t *testing.T) {
	host := newFakeHost(8, 8)
	l := startedLoop(t, host, testConfig(8, 8), nil, nil)
	host.queue(EventCloseRequested{}, EventPaint{}, EventQuit{})
	if _, err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if l.App.State != StateTerminated {
		t.Fatalf("state = %s, want Terminated", l.App.State)
	}
}

func TestPaintPresentsOncePerBatch(t *testing.T) {
	host := newFakeHost(16, 16)
	l := startedLoop(t, host, testConfig(16, 16), nil, nil)
	l.App.Buffer.Fill(colors.Green)
	before := host.surface.Presents

	host.queue(EventPaint{}, EventPaint{}, EventPaint{})
	if _, err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := host.surface.Presents - before; got != 1 {
		t.Fatalf("presents = %d, want 1", got)
	}
	if host.surface.Pixel(15, 15) != uint32(colors.Green) {
		t.Fatal("paint did not copy the buffer")
	}
}

func TestResizeReallocatesBuffer(t *testing.T) {
	host := newFakeHost(16, 16)
	l := startedLoop(t, host, testConfig(16, 16), nil, nil)

	host.queue(EventResize{W: 40, H: 30}, EventResize{W: 50, H: 20})
	if _, err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	b := l.App.Buffer
	if b.Width != 50 || b.Height != 20 || b.Len() != 50*20*4 || b.Info.Height != -20 {
		t.Fatalf("buffer %dx%d len %d info %+v", b.Width, b.Height, b.Len(), b.Info)
	}
}

func TestFixedPolicyKeepsBuffer(t *testing.T) {
	host := newFakeHost(16, 16)
	cfg := testConfig(16, 16)
	cfg.Resize = ResizeFixed
	l := startedLoop(t, host, cfg, nil, nil)

	host.queue(EventResize{W: 40, H: 30})
	if _, err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if l.App.Buffer.Width != 16 || l.App.Buffer.Height != 16 {
		t.Fatalf("buffer resized to %dx%d", l.App.Buffer.Width, l.App.Buffer.Height)
	}
}

type failingAllocator struct{ commits int }

func (a *failingAllocator) Commit(size int) ([]byte, error) {
	a.commits++
	if a.commits > 1 {
		return nil, errors.New("out of memory")
	}
	return make([]byte, size), nil
}

func (a *failingAllocator) Release([]byte) error { return nil }

func TestResizeAllocationFailureIsFatal(t *testing.T) {
	host := newFakeHost(16, 16)
	l := NewLoop(testConfig(16, 16), host, pixbuf.New(&failingAllocator{}), nil, nil)
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	host.queue(EventResize{W: 32, H: 32})
	if _, err := l.Step(); !errors.Is(err, pixbuf.ErrAlloc) {
		t.Fatalf("err = %v, want ErrAlloc", err)
	}
}

func TestInitialAllocationFailureHaltsBeforeShow(t *testing.T) {
	host := newFakeHost(16, 16)
	a := &failingAllocator{commits: 1}
	l := NewLoop(testConfig(16, 16), host, pixbuf.New(a), nil, nil)
	err := l.Run(context.Background())
	if !errors.Is(err, pixbuf.ErrAlloc) {
		t.Fatalf("err = %v, want ErrAlloc", err)
	}
	if host.shown {
		t.Fatal("window shown despite fatal setup error")
	}
	if host.destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1", host.destroyed)
	}
}

func TestShowFailureIsFatal(t *testing.T) {
	host := newFakeHost(16, 16)
	host.showErr = errors.New("no display")
	l := NewLoop(testConfig(16, 16), host, nil, nil, nil)
	if err := l.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if l.App.Buffer.Allocated() {
		t.Fatal("buffer not released after failed start")
	}
}

func TestMissingCreateIsFatal(t *testing.T) {
	host := newFakeHost(16, 16)
	host.batches = nil
	l := NewLoop(testConfig(16, 16), host, nil, nil, nil)
	if err := l.Start(); !errors.Is(err, ErrNotShown) {
		t.Fatalf("err = %v, want ErrNotShown", err)
	}
}

type failingSurface struct{ calls int }

func (f *failingSurface) StretchBlit(image.Rectangle, image.Rectangle, []byte, pixbuf.BitmapInfo) error {
	f.calls++
	return errors.New("device lost")
}

type surfaceHost struct {
	*fakeHost
	s present.Surface
}

func (h surfaceHost) Surface() present.Surface { return h.s }

func TestFailedPresentIsNotFatal(t *testing.T) {
	fs := &failingSurface{}
	host := surfaceHost{fakeHost: newFakeHost(8, 8), s: fs}
	l := NewLoop(testConfig(8, 8), host, nil, nil, RendererFunc(func(*pixbuf.Buffer, []input.ControllerState) {}))
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 3; i++ {
		more, err := l.Step()
		if err != nil || !more {
			t.Fatalf("step %d: more=%v err=%v", i, more, err)
		}
	}
	if fs.calls != 3 {
		t.Fatalf("present calls = %d, want 3", fs.calls)
	}
}

func TestStepPollsEverySlotWhileRunning(t *testing.T) {
	host := newFakeHost(8, 8)
	src := &input.Static{Pads: map[int]input.ControllerState{2: {Name: "pad"}}}
	l := startedLoop(t, host, testConfig(8, 8), src, nil)

	for i := 0; i < 5; i++ {
		if _, err := l.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if src.Calls != 5*input.MaxSlots {
		t.Fatalf("source calls = %d, want %d", src.Calls, 5*input.MaxSlots)
	}
	pads := l.Pads()
	if len(pads) != input.MaxSlots || !pads[2].Connected() || pads[0].Connected() {
		t.Fatalf("pads = %v", pads)
	}

	host.queue(EventCloseRequested{})
	if _, err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if src.Calls != 5*input.MaxSlots {
		t.Fatal("controllers polled after close")
	}
}

func TestRendererThenPresentEachFrame(t *testing.T) {
	host := newFakeHost(4, 4)
	var frames int
	r := RendererFunc(func(buf *pixbuf.Buffer, pads []input.ControllerState) {
		frames++
		buf.Fill(colors.Red)
	})
	l := startedLoop(t, host, testConfig(4, 4), nil, r)
	before := host.surface.Presents
	if _, err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if frames != 1 || host.surface.Presents-before != 1 {
		t.Fatalf("frames=%d presents=%d", frames, host.surface.Presents-before)
	}
	if host.surface.Pixel(0, 0) != uint32(colors.Red) {
		t.Fatal("rendered frame not presented")
	}
}

func TestPaintAndFrameShareOnePresent(t *testing.T) {
	host := newFakeHost(4, 4)
	r := RendererFunc(func(buf *pixbuf.Buffer, _ []input.ControllerState) { buf.Fill(colors.Blue) })
	l := startedLoop(t, host, testConfig(4, 4), nil, r)
	before := host.surface.Presents

	host.queue(EventPaint{}, EventResize{W: 8, H: 8}, EventPaint{})
	if _, err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := host.surface.Presents - before; got != 1 {
		t.Fatalf("presents = %d, want 1", got)
	}
	if host.surface.Pixel(3, 3) != uint32(colors.Blue) {
		t.Fatal("present ran before the frame was rendered")
	}
}

func TestUnknownEventsGoToDefault(t *testing.T) {
	host := newFakeHost(4, 4)
	l := startedLoop(t, host, testConfig(4, 4), nil, nil)
	host.queue(EventOther{Code: 0x84, Name: "nchittest"})
	if _, err := l.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(host.defaults) != 1 {
		t.Fatalf("defaults = %v", host.defaults)
	}
}

func TestRunScenarioCloseTerminates(t *testing.T) {
	host := newFakeHost(16, 16)
	l := NewLoop(testConfig(16, 16), host, nil, nil, nil)
	// the first empty batch carries EventShown
	host.queue()
	host.queue()
	host.queue(EventCloseRequested{})

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if l.App.State != StateTerminated {
		t.Fatalf("state = %s, want Terminated", l.App.State)
	}
	if l.Frames() != 1 {
		t.Fatalf("frames = %d, want 1", l.Frames())
	}
	if host.destroyed != 1 || l.App.Buffer.Allocated() {
		t.Fatalf("teardown incomplete: destroyed=%d allocated=%v", host.destroyed, l.App.Buffer.Allocated())
	}
}

func TestRunHonoursFrameLimitAndContext(t *testing.T) {
	host := newFakeHost(4, 4)
	cfg := testConfig(4, 4)
	cfg.MaxFrames = 3
	l := NewLoop(cfg, host, nil, nil, nil)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if l.Frames() != 3 {
		t.Fatalf("frames = %d, want 3", l.Frames())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l = NewLoop(testConfig(4, 4), newFakeHost(4, 4), nil, nil, nil)
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if l.Frames() != 0 || l.App.State != StateTerminated {
		t.Fatalf("frames=%d state=%s", l.Frames(), l.App.State)
	}
}

type driverHost struct {
	*fakeHost
	drives int
}

func (d *driverHost) Drive(step func() (bool, error)) error {
	d.drives++
	for {
		more, err := step()
		if err != nil || !more {
			return err
		}
	}
}

func TestRunHandsStepToDriver(t *testing.T) {
	host := &driverHost{fakeHost: newFakeHost(4, 4)}
	host.queue()
	host.queue()
	host.queue()
	host.queue(EventQuit{})
	l := NewLoop(testConfig(4, 4), host, nil, nil, nil)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if host.drives != 1 || l.Frames() != 2 {
		t.Fatalf("drives=%d frames=%d", host.drives, l.Frames())
	}
}

package core

import "fmt"

// State of the single window.
type State int

const (
	StateNotCreated State = iota
	StateCreated
	StateRunning
	StateClosing
	StateTerminated
)

var stateNames = [...]string{"NotCreated", "Created", "Running", "Closing", "Terminated"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Running is the loop's only shutdown signal.
func (s State) Running() bool { return s == StateRunning }

// Event model for window notifications.
type Event interface{ isEvent() }

type EventCreated struct{}

func (EventCreated) isEvent() {}

type EventShown struct{}

func (EventShown) isEvent() {}

type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

type EventPaint struct{}

func (EventPaint) isEvent() {}

type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

// EventQuit is the terminal notification; nothing follows it.
type EventQuit struct{}

func (EventQuit) isEvent() {}

// EventOther carries anything the window does not handle itself.
type EventOther struct {
	Code int
	Name string
}

func (EventOther) isEvent() {}

// Effect is work a transition asks the loop to do once the current batch of
// notifications has been dispatched.
type Effect interface{ isEffect() }

type PresentEffect struct{}

func (PresentEffect) isEffect() {}

type ResizeBufferEffect struct{ W, H int }

func (ResizeBufferEffect) isEffect() {}

type DefaultEffect struct{ Event Event }

func (DefaultEffect) isEffect() {}

// Transition is the window procedure: it maps a notification in a state to
// the next state plus deferred effects. It has no side effects.
func Transition(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case EventCreated:
		if s == StateNotCreated {
			return StateCreated, nil
		}
	case EventShown:
		if s == StateCreated {
			return StateRunning, nil
		}
	case EventCloseRequested:
		if s == StateRunning {
			// Handled here; default processing would destroy the window
			// while the loop still holds it.
			return StateClosing, nil
		}
	case EventPaint:
		if s == StateRunning || s == StateClosing {
			return s, []Effect{PresentEffect{}}
		}
	case EventResize:
		if (s == StateCreated || s == StateRunning) && e.W > 0 && e.H > 0 {
			return s, []Effect{ResizeBufferEffect{W: e.W, H: e.H}}
		}
	case EventQuit:
		if s != StateTerminated {
			return StateTerminated, nil
		}
		return s, nil
	}
	return s, []Effect{DefaultEffect{Event: ev}}
}

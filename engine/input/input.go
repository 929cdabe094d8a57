package input

import (
	"errors"
	"fmt"
)

// MaxSlots is the number of controller slots polled every iteration.
const MaxSlots = 4

var ErrNotConnected = errors.New("input: controller not connected")

type Status uint8

const (
	Disconnected Status = iota
	Connected
)

func (s Status) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Button is a bitmask over the standard gamepad layout.
type Button uint16

const (
	ButtonDpadUp Button = 1 << iota
	ButtonDpadDown
	ButtonDpadLeft
	ButtonDpadRight
	ButtonStart
	ButtonBack
	ButtonLeftThumb
	ButtonRightThumb
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonGuide
	_
	ButtonA
	ButtonB
	ButtonX
	ButtonY
)

// ControllerState is a snapshot of one slot. Only read the button and axis
// fields when Status is Connected.
type ControllerState struct {
	Slot         int
	Status       Status
	Packet       uint32
	Buttons      Button
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
	Name         string
}

func (c ControllerState) Connected() bool { return c.Status == Connected }

func (c ControllerState) Pressed(b Button) bool { return c.Buttons&b != 0 }

func (c ControllerState) String() string {
	if !c.Connected() {
		return fmt.Sprintf("slot %d: %s", c.Slot, c.Status)
	}
	return fmt.Sprintf("slot %d: %s buttons=%#04x L=(%d,%d) R=(%d,%d)", c.Slot, c.Name, uint16(c.Buttons), c.ThumbLX, c.ThumbLY, c.ThumbRX, c.ThumbRY)
}

// Source queries one controller slot. Absent slots return ErrNotConnected.
type Source interface {
	State(slot int) (ControllerState, error)
}

// Poller reads every slot once per call and keeps nothing between calls.
type Poller struct {
	src Source
}

func NewPoller(src Source) *Poller { return &Poller{src: src} }

// PollAll queries slots [0, maxSlots). Errors of any kind mark the slot
// disconnected; they are never returned or escalated.
func (p *Poller) PollAll(maxSlots int) []ControllerState {
	if maxSlots > MaxSlots {
		maxSlots = MaxSlots
	}
	if maxSlots < 0 {
		maxSlots = 0
	}
	out := make([]ControllerState, maxSlots)
	for i := range out {
		out[i] = p.poll(i)
	}
	return out
}

func (p *Poller) poll(slot int) (st ControllerState) {
	defer func() {
		if r := recover(); r != nil {
			st = ControllerState{Slot: slot}
		}
	}()
	if p.src == nil {
		return ControllerState{Slot: slot}
	}
	st, err := p.src.State(slot)
	if err != nil {
		return ControllerState{Slot: slot}
	}
	st.Slot = slot
	st.Status = Connected
	return st
}

// FirstConnected returns the first connected slot in states.
func FirstConnected(states []ControllerState) (ControllerState, bool) {
	for _, s := range states {
		if s.Connected() {
			return s, true
		}
	}
	return ControllerState{}, false
}

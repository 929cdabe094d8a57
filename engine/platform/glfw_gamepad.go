//go:build !ebiten

package platform

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/hubastard/handmade/engine/input"
)

// GLFWGamepads reads joystick slots through GLFW's gamepad mapping. Slots
// without a mapped gamepad are reported as not connected.
type GLFWGamepads struct{}

var glfwButtons = [...]struct {
	src glfw.GamepadButton
	dst input.Button
}{
	{glfw.ButtonA, input.ButtonA},
	{glfw.ButtonB, input.ButtonB},
	{glfw.ButtonX, input.ButtonX},
	{glfw.ButtonY, input.ButtonY},
	{glfw.ButtonLeftBumper, input.ButtonLeftShoulder},
	{glfw.ButtonRightBumper, input.ButtonRightShoulder},
	{glfw.ButtonBack, input.ButtonBack},
	{glfw.ButtonStart, input.ButtonStart},
	{glfw.ButtonGuide, input.ButtonGuide},
	{glfw.ButtonLeftThumb, input.ButtonLeftThumb},
	{glfw.ButtonRightThumb, input.ButtonRightThumb},
	{glfw.ButtonDpadUp, input.ButtonDpadUp},
	{glfw.ButtonDpadRight, input.ButtonDpadRight},
	{glfw.ButtonDpadDown, input.ButtonDpadDown},
	{glfw.ButtonDpadLeft, input.ButtonDpadLeft},
}

func (GLFWGamepads) State(slot int) (input.ControllerState, error) {
	joy := glfw.Joystick1 + glfw.Joystick(slot)
	if slot < 0 || joy > glfw.JoystickLast || !joy.Present() || !joy.IsGamepad() {
		return input.ControllerState{}, input.ErrNotConnected
	}
	gs := joy.GetGamepadState()
	if gs == nil {
		return input.ControllerState{}, input.ErrNotConnected
	}

	st := input.ControllerState{Name: joy.GetGamepadName()}
	for _, b := range glfwButtons {
		if gs.Buttons[b.src] == glfw.Press {
			st.Buttons |= b.dst
		}
	}
	// GLFW reports Y down-positive
	st.ThumbLX = input.ThumbFromAxis(float64(gs.Axes[glfw.AxisLeftX]), false)
	st.ThumbLY = input.ThumbFromAxis(float64(gs.Axes[glfw.AxisLeftY]), true)
	st.ThumbRX = input.ThumbFromAxis(float64(gs.Axes[glfw.AxisRightX]), false)
	st.ThumbRY = input.ThumbFromAxis(float64(gs.Axes[glfw.AxisRightY]), true)
	st.LeftTrigger = input.TriggerFromAxis(float64(gs.Axes[glfw.AxisLeftTrigger]))
	st.RightTrigger = input.TriggerFromAxis(float64(gs.Axes[glfw.AxisRightTrigger]))
	return st, nil
}

package input

// Static serves fixed controller states. Slots without an entry are not
// connected.
type Static struct {
	Pads  map[int]ControllerState
	Calls int
}

func (s *Static) State(slot int) (ControllerState, error) {
	s.Calls++
	st, ok := s.Pads[slot]
	if !ok {
		return ControllerState{}, ErrNotConnected
	}
	st.Packet = uint32(s.Calls)
	return st, nil
}

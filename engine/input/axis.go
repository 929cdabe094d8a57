package input

import "math"

// ThumbFromAxis maps a normalized stick axis in [-1, 1] onto the signed
// 16-bit range. Set invert for toolkits where positive Y points down.
func ThumbFromAxis(v float64, invert bool) int16 {
	if invert {
		v = -v
	}
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return int16(math.Round(v * 32768))
	}
	return int16(math.Round(v * 32767))
}

// TriggerFromAxis maps a trigger reported in [-1, 1] (rest at -1) onto 0..255.
func TriggerFromAxis(v float64) uint8 {
	return TriggerFromValue((v + 1) / 2)
}

// TriggerFromValue maps a trigger reported in [0, 1] onto 0..255.
func TriggerFromValue(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255))
}

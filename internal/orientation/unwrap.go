// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

// Unwrapper turns a wrapped angle stream (±180°) into a continuous one by
// counting full turns. A wrap is detected when consecutive raw samples jump
// between the two outer quadrants (above 90° and below -90°).
type Unwrapper struct {
	prev   float64
	turns  int
	primed bool
}

// Unwrap returns raw plus 360° for every turn counted so far.
func (u *Unwrapper) Unwrap(raw float64) float64 {
	if u.primed && crossed(u.prev, raw) {
		if raw > u.prev {
			u.turns--
		} else {
			u.turns++
		}
	}
	u.prev = raw
	u.primed = true
	return raw + float64(u.turns)*360
}

// Turns is the signed number of full turns counted.
func (u *Unwrapper) Turns() int {
	return u.turns
}

func crossed(prev, next float64) bool {
	return (next > 90 && prev < -90) || (next < -90 && prev > 90)
}

// Package pitch maps real-valued function samples into a MIDI note
// register and fits stray notes back into it.
package pitch

// MapToRange linearly rescales samples from their own min/max span onto
// [minNote, maxNote], preserving order and relative spacing. Inverted
// bounds are swapped. A constant input maps every sample to the exact
// midpoint of the register.
func MapToRange(samples []float64, minNote, maxNote int) []float64 {
	if minNote > maxNote {
		minNote, maxNote = maxNote, minNote
	}
	if len(samples) == 0 {
		return nil
	}
	lo, hi := samples[0], samples[0]
	for _, v := range samples[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(samples))
	if lo == hi {
		mid := float64(minNote+maxNote) / 2
		for i := range out {
			out[i] = mid
		}
		return out
	}
	span := float64(maxNote - minNote)
	for i, v := range samples {
		out[i] = float64(minNote) + (v-lo)/(hi-lo)*span
	}
	return out
}

// FitToRange shifts note by octaves until it lands inside
// [minNote, maxNote], preserving its pitch class, then clamps as a
// final safety net for registers narrower than an octave.
func FitToRange(note, minNote, maxNote int) int {
	if minNote > maxNote {
		minNote, maxNote = maxNote, minNote
	}
	for note < minNote && note+12 <= maxNote {
		note += 12
	}
	for note > maxNote && note-12 >= minNote {
		note -= 12
	}
	if note < minNote {
		note = minNote
	}
	if note > maxNote {
		note = maxNote
	}
	return note
}

package scale

// ChordMode selects how a single melodic note expands into simultaneous
// harmony tones.
type ChordMode string

const (
	ChordNone    ChordMode = "none"
	ChordPower   ChordMode = "power"
	ChordTriad   ChordMode = "triad"
	ChordSeventh ChordMode = "seventh"
)

// ValidChordMode reports whether m is one of the recognized modes.
func ValidChordMode(m ChordMode) bool {
	switch m {
	case ChordNone, ChordPower, ChordTriad, ChordSeventh:
		return true
	}
	return false
}

// ChordNotes expands note into the tone set for the given chord mode.
// Power chords stack a perfect fifth regardless of scale content; triad
// and seventh chords stack scale degrees (third and fifth, plus the
// seventh), wrapping degree indices around the scale with octave
// reconstruction. An unknown scale name collapses to the single note.
func ChordNotes(note, root int, name string, mode ChordMode) []int {
	switch mode {
	case ChordPower:
		return []int{note, note + 7}
	case ChordTriad:
		return stackDegrees(note, root, name, 3)
	case ChordSeventh:
		return stackDegrees(note, root, name, 4)
	default:
		return []int{note}
	}
}

func stackDegrees(note, root int, name string, count int) []int {
	intervals, ok := Scales[name]
	if !ok {
		return []int{note}
	}
	octave, semitone := splitOctave(note - root)
	idx := indexOf(intervals, semitone)
	if idx < 0 {
		// The base note sits outside the scale; snap it in before
		// looking up its degree.
		note = Quantize(note, root, name)
		octave, semitone = splitOctave(note - root)
		idx = indexOf(intervals, semitone)
	}
	notes := make([]int, 0, count)
	for i := 0; i < count; i++ {
		degree := idx + 2*i
		wrapped := degree % len(intervals)
		extra := degree / len(intervals)
		notes = append(notes, root+(octave+extra)*12+intervals[wrapped])
	}
	return notes
}

func indexOf(intervals []int, semitone int) int {
	for i, iv := range intervals {
		if iv == semitone {
			return i
		}
	}
	return -1
}

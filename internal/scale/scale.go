// Package scale holds the static scale table, pitch-class quantization,
// and chord expansion. The table is built once and never mutated, so it
// is safe to share across concurrent generation requests.
package scale

import "sort"

// Scales maps a scale name to its semitone offsets from the root. The
// offset lists are load-bearing for output compatibility; do not edit
// them casually.
var Scales = map[string][]int{
	"chromatic":        {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"major":            {0, 2, 4, 5, 7, 9, 11},
	"minor":            {0, 2, 3, 5, 7, 8, 10},
	"pentatonic_major": {0, 2, 4, 7, 9},
	"pentatonic_minor": {0, 3, 5, 7, 10},
	"dorian":           {0, 2, 3, 5, 7, 9, 10},
	"phrygian":         {0, 1, 3, 5, 7, 8, 10},
	"lydian":           {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":       {0, 2, 4, 5, 7, 9, 10},
	"locrian":          {0, 1, 3, 5, 6, 8, 10},
	"blues":            {0, 3, 5, 6, 7, 10},
	"harmonic_minor":   {0, 2, 3, 5, 7, 8, 11},
	"melodic_minor":    {0, 2, 3, 5, 7, 9, 11},
}

// Names returns the known scale names in sorted order.
func Names() []string {
	out := make([]string, 0, len(Scales))
	for name := range Scales {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Known reports whether name is in the scale table.
func Known(name string) bool {
	_, ok := Scales[name]
	return ok
}

// Quantize maps a MIDI note to the closest note of the named scale
// relative to root. Unknown scale names leave the note untouched;
// quantization is advisory, not a failure path. On a tie the
// first-listed scale interval wins.
func Quantize(note, root int, name string) int {
	intervals, ok := Scales[name]
	if !ok {
		return note
	}
	octave, semitone := splitOctave(note - root)
	closest := intervals[0]
	for _, iv := range intervals[1:] {
		if absInt(iv-semitone) < absInt(closest-semitone) {
			closest = iv
		}
	}
	return root + octave*12 + closest
}

// splitOctave decomposes a semitone distance into a floor-division
// octave count and a non-negative remainder, matching Euclidean
// division for negative distances.
func splitOctave(delta int) (octave, semitone int) {
	octave = delta / 12
	semitone = delta % 12
	if semitone < 0 {
		semitone += 12
		octave--
	}
	return octave, semitone
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

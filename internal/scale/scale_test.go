package scale

import "testing"

func TestScaleTableContents(t *testing.T) {
	cases := []struct {
		name string
		want []int
	}{
		{"chromatic", []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
		{"major", []int{0, 2, 4, 5, 7, 9, 11}},
		{"minor", []int{0, 2, 3, 5, 7, 8, 10}},
		{"pentatonic_major", []int{0, 2, 4, 7, 9}},
		{"pentatonic_minor", []int{0, 3, 5, 7, 10}},
		{"blues", []int{0, 3, 5, 6, 7, 10}},
		{"harmonic_minor", []int{0, 2, 3, 5, 7, 8, 11}},
		{"melodic_minor", []int{0, 2, 3, 5, 7, 9, 11}},
	}
	for _, tc := range cases {
		got, ok := Scales[tc.name]
		if !ok {
			t.Fatalf("scale %q missing from table", tc.name)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("scale %q has %d intervals, want %d", tc.name, len(got), len(tc.want))
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("scale %q interval %d = %d, want %d", tc.name, i, got[i], tc.want[i])
			}
		}
	}
	if len(Scales) != 13 {
		t.Fatalf("expected 13 scales, got %d", len(Scales))
	}
}

func TestQuantizeSnapsToScale(t *testing.T) {
	// C major around middle C: C#4 snaps to C or D; first-listed
	// interval wins the tie, and 1 is equidistant from 0 and 2.
	if got := Quantize(61, 60, "major"); got != 60 {
		t.Fatalf("quantize 61 to C major = %d, want 60", got)
	}
	// F#4 (66) is equidistant from F (65) and G (67); offsets 5 and 7
	// around semitone 6, so the first-listed 5 wins.
	if got := Quantize(66, 60, "major"); got != 65 {
		t.Fatalf("quantize 66 to C major = %d, want 65", got)
	}
	// In-scale notes stay put.
	for _, n := range []int{60, 62, 64, 65, 67, 69, 71, 72} {
		if got := Quantize(n, 60, "major"); got != n {
			t.Fatalf("quantize in-scale %d = %d, want unchanged", n, got)
		}
	}
}

func TestQuantizeChromaticIsIdentity(t *testing.T) {
	for n := 0; n <= 127; n++ {
		if got := Quantize(n, 60, "chromatic"); got != n {
			t.Fatalf("chromatic quantize changed %d to %d", n, got)
		}
	}
}

func TestQuantizeUnknownScalePassthrough(t *testing.T) {
	if got := Quantize(61, 60, "klingon"); got != 61 {
		t.Fatalf("unknown scale quantize = %d, want 61", got)
	}
}

func TestQuantizeBelowRoot(t *testing.T) {
	// Notes below the root must decompose with a non-negative
	// semitone remainder, not mirror around it.
	if got := Quantize(59, 60, "major"); got != 59 {
		// 59 is semitone 11 of the octave below: in C major.
		t.Fatalf("quantize 59 to C major = %d, want 59", got)
	}
	if got := Quantize(58, 60, "major"); got != 57 {
		// Semitone 10 snaps to 9 (A), one tie broken toward the
		// first-listed interval.
		t.Fatalf("quantize 58 to C major = %d, want 57", got)
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	for name := range Scales {
		for _, root := range []int{48, 60, 61} {
			for n := 20; n <= 100; n += 3 {
				once := Quantize(n, root, name)
				twice := Quantize(once, root, name)
				if once != twice {
					t.Fatalf("quantize not idempotent: scale %q root %d note %d: %d then %d",
						name, root, n, once, twice)
				}
			}
		}
	}
}

func TestChordNotesShapes(t *testing.T) {
	cases := []struct {
		name string
		mode ChordMode
		want int
	}{
		{"none", ChordNone, 1},
		{"power", ChordPower, 2},
		{"triad", ChordTriad, 3},
		{"seventh", ChordSeventh, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			notes := ChordNotes(64, 60, "major", tc.mode)
			if len(notes) != tc.want {
				t.Fatalf("%s chord has %d notes, want %d", tc.mode, len(notes), tc.want)
			}
		})
	}
}

func TestPowerChordInterval(t *testing.T) {
	for _, n := range []int{36, 60, 61, 90} {
		notes := ChordNotes(n, 60, "major", ChordPower)
		if len(notes) != 2 || notes[1]-notes[0] != 7 {
			t.Fatalf("power chord on %d = %v, want [n n+7]", n, notes)
		}
	}
}

func TestTriadOnCMajor(t *testing.T) {
	// E4 in C major is degree 2; the triad is E G B.
	notes := ChordNotes(64, 60, "major", ChordTriad)
	want := []int{64, 67, 71}
	for i := range want {
		if notes[i] != want[i] {
			t.Fatalf("triad on E4 = %v, want %v", notes, want)
		}
	}
}

func TestSeventhWrapsOctave(t *testing.T) {
	// B4 (71) is the last degree of C major; stacking thirds wraps
	// into the next octave: B D F A.
	notes := ChordNotes(71, 60, "major", ChordSeventh)
	want := []int{71, 74, 77, 81}
	for i := range want {
		if notes[i] != want[i] {
			t.Fatalf("seventh on B4 = %v, want %v", notes, want)
		}
	}
}

func TestChordDegreesStayInScale(t *testing.T) {
	for _, name := range []string{"major", "minor", "dorian", "pentatonic_major", "blues"} {
		intervals := Scales[name]
		inScale := map[int]bool{}
		for _, iv := range intervals {
			inScale[iv] = true
		}
		for n := 40; n <= 90; n += 7 {
			for _, mode := range []ChordMode{ChordTriad, ChordSeventh} {
				for _, tone := range ChordNotes(n, 60, name, mode) {
					_, semitone := splitOctave(tone - 60)
					if !inScale[semitone] {
						t.Fatalf("scale %q mode %s note %d produced out-of-scale tone %d (pc %d)",
							name, mode, n, tone, semitone)
					}
				}
			}
		}
	}
}

func TestChordOutOfScaleBaseRequantized(t *testing.T) {
	// C#4 is not in C major; the builder must snap it before degree
	// lookup rather than failing or emitting chromatic tones.
	notes := ChordNotes(61, 60, "major", ChordTriad)
	want := []int{60, 64, 67}
	for i := range want {
		if notes[i] != want[i] {
			t.Fatalf("triad on out-of-scale 61 = %v, want %v", notes, want)
		}
	}
}

func TestChordUnknownScaleSingleNote(t *testing.T) {
	notes := ChordNotes(64, 60, "klingon", ChordTriad)
	if len(notes) != 1 || notes[0] != 64 {
		t.Fatalf("unknown scale triad = %v, want [64]", notes)
	}
}

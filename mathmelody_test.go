package mathmelody

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yalue/midi"
)

func sineConfig() Config {
	cfg := DefaultConfig()
	cfg.XMin = -math.Pi
	cfg.XMax = math.Pi
	cfg.Notes = 8
	return cfg
}

func TestEventsSineMelody(t *testing.T) {
	g := New(WithSeed(7))
	notes, bends, err := g.Events(sineConfig())
	require.NoError(t, err)
	assert.Empty(t, bends)
	require.Len(t, notes, 8)

	prev := -1.0
	for i, n := range notes {
		assert.GreaterOrEqual(t, n.Start, prev, "note %d out of order", i)
		prev = n.Start
		assert.GreaterOrEqual(t, n.Note, 36)
		assert.LessOrEqual(t, n.Note, 96)
		assert.Equal(t, 100, n.Velocity)
		assert.Equal(t, 0.5, n.Duration)
	}
}

func TestEventsTriadChords(t *testing.T) {
	cfg := sineConfig()
	cfg.Scale = "major"
	cfg.Chord = ChordTriad
	notes, _, err := New(WithSeed(7)).Events(cfg)
	require.NoError(t, err)
	require.Len(t, notes, 24)
	for i := 0; i < len(notes); i += 3 {
		assert.Equal(t, notes[i].Start, notes[i+1].Start)
		assert.Equal(t, notes[i].Start, notes[i+2].Start)
	}
}

func TestEventsConstantFunctionCenterPitch(t *testing.T) {
	cfg := sineConfig()
	cfg.Function = "0"
	notes, _, err := New(WithSeed(1)).Events(cfg)
	require.NoError(t, err)
	for _, n := range notes {
		assert.Equal(t, 66, n.Note, "constant input maps to the register midpoint")
	}
}

func TestEventsRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty function", func(c *Config) { c.Function = "" }},
		{"inverted x range", func(c *Config) { c.XMin, c.XMax = c.XMax, c.XMin }},
		{"too few notes", func(c *Config) { c.Notes = 4 }},
		{"tempo too slow", func(c *Config) { c.Tempo = 20 }},
		{"bad scale", func(c *Config) { c.Scale = "klingon" }},
		{"bad chord mode", func(c *Config) { c.Chord = ChordMode("cluster") }},
		{"bad rhythm step", func(c *Config) { c.Rhythm = []float64{0.5, 0} }},
		{"swing too big", func(c *Config) { c.Swing = 1.5 }},
		{"note range inverted", func(c *Config) { c.MinNote, c.MaxNote = 96, 36 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := sineConfig()
			tc.mutate(&cfg)
			_, _, err := New().Events(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEventsEvaluationFailureIsAtomic(t *testing.T) {
	cfg := sineConfig()
	cfg.Function = "1 / x"
	cfg.XMin = -1
	cfg.XMax = 1
	cfg.Notes = 9 // places a sample exactly at x=0
	notes, _, err := New().Events(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEvaluationFailed)
	assert.Nil(t, notes)
}

func TestEventsNonFiniteSampleFails(t *testing.T) {
	cfg := sineConfig()
	cfg.Function = "log(x)"
	cfg.XMin = -1
	cfg.XMax = 1
	_, _, err := New().Events(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEvaluationFailed)
}

func TestGenerateRoundTrip(t *testing.T) {
	data, err := New(WithSeed(7)).Generate(sineConfig())
	require.NoError(t, err)

	f, err := midi.ParseSMFFile(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, f.Tracks, 1)

	var ons int
	for _, m := range f.Tracks[0].Messages {
		if _, ok := m.(*midi.NoteOnEvent); ok {
			ons++
		}
	}
	assert.Equal(t, 8, ons)
}

func TestGenerateMicrotonal(t *testing.T) {
	cfg := sineConfig()
	cfg.Microtonal = true
	data, err := New(WithSeed(7)).Generate(cfg)
	require.NoError(t, err)

	f, err := midi.ParseSMFFile(bytes.NewReader(data))
	require.NoError(t, err)

	var rpn bool
	var bends int
	for _, m := range f.Tracks[0].Messages {
		switch e := m.(type) {
		case *midi.ControlChangeEvent:
			if e.ControllerNumber == 101 && e.Value == 0 {
				rpn = true
			}
		case *midi.PitchBendEvent:
			bends++
		}
	}
	assert.True(t, rpn, "pitch bend sensitivity RPN missing")
	assert.Greater(t, bends, 0)
}

func TestGenerateDeterministicUnderSeed(t *testing.T) {
	cfg := sineConfig()
	cfg.HumanizeTiming = 0.1
	cfg.HumanizeVelocity = 20
	a, err := New(WithSeed(99)).Generate(cfg)
	require.NoError(t, err)
	b, err := New(WithSeed(99)).Generate(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "melody.mid")
	err := New(WithSeed(7)).GenerateToFile(sineConfig(), path)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestScaleNamesSortedAndComplete(t *testing.T) {
	names := ScaleNames()
	assert.Len(t, names, 13)
	assert.Contains(t, names, "chromatic")
	assert.Contains(t, names, "harmonic_minor")
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestSampleEndpointsIncluded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Function = "x"
	cfg.XMin = 0
	cfg.XMax = 7
	cfg.Notes = 8
	values, err := New().Sample(cfg)
	require.NoError(t, err)
	require.Len(t, values, 8)
	assert.Equal(t, 0.0, values[0])
	assert.Equal(t, 7.0, values[7])
}

func TestSampleSyntaxError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Function = "sin(x"
	_, err := New().Sample(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEvaluationFailed))
}

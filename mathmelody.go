// Package mathmelody turns single-variable math expressions into MIDI
// melodies. An expression such as sin(x) is sampled over an interval,
// the samples are rescaled into a pitch register, quantized to a scale,
// optionally stacked into chords, scheduled with rhythm and humanize
// jitter, and finally serialized as a Standard MIDI File.
package mathmelody

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/marcocmaj7/mathmelody/internal/expr"
	"github.com/marcocmaj7/mathmelody/internal/pitch"
	"github.com/marcocmaj7/mathmelody/internal/scale"
	"github.com/marcocmaj7/mathmelody/internal/schedule"
	"github.com/marcocmaj7/mathmelody/internal/smf"
)

// ChordMode selects how many voices each melody note fans out into.
type ChordMode = scale.ChordMode

const (
	ChordNone    = scale.ChordNone
	ChordPower   = scale.ChordPower
	ChordTriad   = scale.ChordTriad
	ChordSeventh = scale.ChordSeventh
)

// NoteEvent is a scheduled note in beat time.
type NoteEvent = schedule.NoteEvent

// BendEvent is a scheduled pitch-wheel move in beat time.
type BendEvent = schedule.BendEvent

var (
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrEvaluationFailed wraps any failure while sampling the
	// expression, including non-finite results.
	ErrEvaluationFailed = errors.New("expression evaluation failed")
)

// ScaleNames lists the supported scale names in sorted order.
func ScaleNames() []string {
	return scale.Names()
}

// Config holds every generation parameter. Zero values are not usable;
// start from DefaultConfig and override.
type Config struct {
	// Function is the expression to sample, in the variable x.
	Function string
	// Sampling interval. XMin must be strictly below XMax.
	XMin float64
	XMax float64
	// Notes is the number of samples taken across the interval.
	Notes int

	Tempo        int     // beats per minute
	Velocity     int     // base note-on velocity
	NoteDuration float64 // base duration in beats
	Program      int     // General MIDI program number
	Transpose    int     // semitones added before quantization
	Channel      int

	// Microtonal keeps fractional pitches as pitch-wheel deflections
	// instead of quantizing. Ignored when chords are enabled.
	Microtonal bool
	BendRange  int // pitch wheel span in semitones
	ResetBend  bool

	Scale   string
	Root    int
	MinNote int
	MaxNote int

	// Rhythm is an optional duration pattern in beats, cycled across
	// the melody. Empty means every note gets NoteDuration.
	Rhythm []float64
	// Swing in [0,1] delays every second note by up to half a beat.
	Swing            float64
	HumanizeTiming   float64 // max onset jitter in beats
	HumanizeVelocity int     // max velocity jitter

	Chord ChordMode
}

// DefaultConfig returns a sine sweep over two periods, quantized to the
// chromatic scale around middle C.
func DefaultConfig() Config {
	return Config{
		Function:     "sin(x)",
		XMin:         -2 * math.Pi,
		XMax:         2 * math.Pi,
		Notes:        32,
		Tempo:        120,
		Velocity:     100,
		NoteDuration: 0.5,
		Program:      0,
		BendRange:    2,
		ResetBend:    true,
		Scale:        "chromatic",
		Root:         60,
		MinNote:      36,
		MaxNote:      96,
		Chord:        ChordNone,
	}
}

func (c Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if c.Function == "" {
		return fail("function must not be empty")
	}
	if !(c.XMin < c.XMax) {
		return fail("x range [%g, %g] is empty", c.XMin, c.XMax)
	}
	if c.Notes < 8 || c.Notes > 128 {
		return fail("note count %d outside [8, 128]", c.Notes)
	}
	if c.Tempo < 40 || c.Tempo > 240 {
		return fail("tempo %d outside [40, 240]", c.Tempo)
	}
	if c.Velocity < 0 || c.Velocity > 127 {
		return fail("velocity %d outside [0, 127]", c.Velocity)
	}
	if c.NoteDuration < 0.1 || c.NoteDuration > 4.0 {
		return fail("note duration %g outside [0.1, 4.0]", c.NoteDuration)
	}
	if c.Program < 0 || c.Program > 127 {
		return fail("program %d outside [0, 127]", c.Program)
	}
	if c.Transpose < -24 || c.Transpose > 24 {
		return fail("transpose %d outside [-24, 24]", c.Transpose)
	}
	if c.Channel < 0 || c.Channel > 15 {
		return fail("channel %d outside [0, 15]", c.Channel)
	}
	if c.BendRange < 1 || c.BendRange > 24 {
		return fail("bend range %d outside [1, 24]", c.BendRange)
	}
	if !scale.Known(c.Scale) {
		return fail("unknown scale %q", c.Scale)
	}
	if c.Root < 0 || c.Root > 127 {
		return fail("root note %d outside [0, 127]", c.Root)
	}
	if c.MinNote < 0 || c.MaxNote > 127 || c.MinNote >= c.MaxNote {
		return fail("note range [%d, %d] invalid", c.MinNote, c.MaxNote)
	}
	for i, d := range c.Rhythm {
		if d <= 0 {
			return fail("rhythm step %d is %g, must be positive", i, d)
		}
	}
	if c.Swing < 0 || c.Swing > 1 {
		return fail("swing %g outside [0, 1]", c.Swing)
	}
	if c.HumanizeTiming < 0 || c.HumanizeTiming > 0.5 {
		return fail("humanize timing %g outside [0, 0.5]", c.HumanizeTiming)
	}
	if c.HumanizeVelocity < 0 || c.HumanizeVelocity > 40 {
		return fail("humanize velocity %d outside [0, 40]", c.HumanizeVelocity)
	}
	if !scale.ValidChordMode(c.Chord) {
		return fail("unknown chord mode %q", c.Chord)
	}
	return nil
}

type GeneratorOption func(*Generator)

// WithLogger installs a zap logger. The default discards everything.
func WithLogger(logger *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithSeed makes humanize jitter reproducible.
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand supplies the random source directly.
func WithRand(rng *rand.Rand) GeneratorOption {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// Generator samples expressions and renders melodies. Safe to reuse
// across calls, but not from multiple goroutines at once.
type Generator struct {
	logger *zap.Logger
	rng    *rand.Rand
}

func New(opts ...GeneratorOption) *Generator {
	g := &Generator{
		logger: zap.NewNop(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Sample parses the expression once and evaluates it at Notes points
// spaced evenly across [XMin, XMax], both endpoints included. Any
// failed or non-finite sample aborts the whole run.
func (g *Generator) Sample(cfg Config) ([]float64, error) {
	parsed, err := expr.Parse(cfg.Function)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}
	n := cfg.Notes
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		x := cfg.XMin
		if n > 1 {
			x = cfg.XMin + (cfg.XMax-cfg.XMin)*float64(i)/float64(n-1)
		}
		v, err := parsed.Eval(x)
		if err != nil {
			return nil, fmt.Errorf("%w: at x=%g: %w", ErrEvaluationFailed, x, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value at x=%g", ErrEvaluationFailed, x)
		}
		values[i] = v
	}
	return values, nil
}

// Events produces the scheduled note and bend events for the config.
func (g *Generator) Events(cfg Config) ([]NoteEvent, []BendEvent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	values, err := g.Sample(cfg)
	if err != nil {
		return nil, nil, err
	}
	pitches := pitch.MapToRange(values, cfg.MinNote, cfg.MaxNote)
	g.logger.Debug("sampled expression",
		zap.String("function", cfg.Function),
		zap.Int("samples", len(values)))

	schedCfg := schedule.Config{
		Velocity:         cfg.Velocity,
		NoteDuration:     cfg.NoteDuration,
		Transpose:        cfg.Transpose,
		Channel:          cfg.Channel,
		Microtonal:       cfg.Microtonal,
		BendRange:        cfg.BendRange,
		ResetBend:        cfg.ResetBend,
		ScaleName:        cfg.Scale,
		Root:             cfg.Root,
		MinNote:          cfg.MinNote,
		MaxNote:          cfg.MaxNote,
		Rhythm:           cfg.Rhythm,
		Swing:            cfg.Swing,
		HumanizeTiming:   cfg.HumanizeTiming,
		HumanizeVelocity: cfg.HumanizeVelocity,
		Chord:            cfg.Chord,
	}
	notes, bends, err := schedule.New(g.rng).Schedule(pitches, schedCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}
	g.logger.Debug("scheduled events",
		zap.Int("notes", len(notes)),
		zap.Int("bends", len(bends)))
	return notes, bends, nil
}

// Generate renders the config as SMF bytes.
func (g *Generator) Generate(cfg Config) ([]byte, error) {
	notes, bends, err := g.Events(cfg)
	if err != nil {
		return nil, err
	}
	return smf.Encode(smf.Document{
		Tempo:      cfg.Tempo,
		Program:    cfg.Program,
		Channel:    cfg.Channel,
		TrackName:  "Math Function Melody",
		Microtonal: cfg.Microtonal && cfg.Chord == ChordNone,
		BendRange:  cfg.BendRange,
		Notes:      notes,
		Bends:      bends,
	})
}

// GenerateToFile renders the config and writes the result to path,
// creating parent directories as needed.
func (g *Generator) GenerateToFile(cfg Config, path string) error {
	data, err := g.Generate(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	g.logger.Info("wrote MIDI file",
		zap.String("path", path),
		zap.Int("bytes", len(data)))
	return nil
}

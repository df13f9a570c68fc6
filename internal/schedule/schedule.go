// Package schedule turns mapped pitch values into timed, velocity-
// assigned note events, applying rhythm patterns, swing, humanization,
// and the microtonal pitch-bend path.
package schedule

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/marcocmaj7/mathmelody/internal/pitch"
	"github.com/marcocmaj7/mathmelody/internal/scale"
)

// minDuration is the floor applied when a rhythm step or base duration
// resolves non-positive.
const minDuration = 0.1

// BendCenter is the 14-bit pitch-wheel rest position.
const BendCenter = 8192

// Config carries the scheduling-relevant slice of a generation request.
// The caller validates ranges before handing it over.
type Config struct {
	Velocity     int
	NoteDuration float64
	Transpose    int
	Channel      int

	Microtonal bool
	BendRange  int // semitones the bend wheel spans at full deflection
	ResetBend  bool

	ScaleName        string
	Root             int
	MinNote, MaxNote int

	Rhythm           []float64
	Swing            float64
	HumanizeTiming   float64
	HumanizeVelocity int

	Chord scale.ChordMode
}

// NoteEvent is one scheduled note. Times are in beats.
type NoteEvent struct {
	Start    float64
	Duration float64
	Note     int
	Velocity int
	Channel  int
}

// BendEvent is a 14-bit pitch-wheel move at an absolute beat time.
type BendEvent struct {
	Time    float64
	Value   int
	Channel int
}

// Scheduler walks pitch sequences with an injected random source so
// humanized output is reproducible under a fixed seed.
type Scheduler struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Scheduler {
	return &Scheduler{rng: rng}
}

// Schedule produces the note (and, on the microtonal path, pitch-bend)
// events for the given mapped pitch values. Values must be finite;
// failed evaluations are the caller's problem and trip an error here
// rather than a fabricated note.
func (s *Scheduler) Schedule(values []float64, cfg Config) ([]NoteEvent, []BendEvent, error) {
	notes := make([]NoteEvent, 0, len(values))
	var bends []BendEvent

	// Microtonal output is monophonic only; chords force the
	// quantized path.
	microtonal := cfg.Microtonal && cfg.Chord == scale.ChordNone

	currentTime := 0.0
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("non-finite pitch value %g at index %d", v, i)
		}

		duration := cfg.NoteDuration
		if len(cfg.Rhythm) > 0 {
			duration = cfg.Rhythm[i%len(cfg.Rhythm)]
		}
		if duration <= 0 {
			duration = cfg.NoteDuration
			if duration < minDuration {
				duration = minDuration
			}
		}

		start := currentTime
		if cfg.Swing > 0 && i%2 == 1 {
			start += math.Min(1, cfg.Swing) * 0.5
		}
		if cfg.HumanizeTiming > 0 {
			start += (s.rng.Float64()*2 - 1) * cfg.HumanizeTiming
			if start < 0 {
				start = 0
			}
		}

		velocity := cfg.Velocity
		if cfg.HumanizeVelocity > 0 {
			velocity += s.rng.Intn(2*cfg.HumanizeVelocity+1) - cfg.HumanizeVelocity
		}
		velocity = clampInt(velocity, 1, 127)

		noteFloat := v + float64(cfg.Transpose)

		if microtonal {
			bendRange := cfg.BendRange
			if bendRange <= 0 {
				bendRange = 2
			}
			baseNote := int(math.Round(noteFloat))
			deviation := noteFloat - float64(baseNote)
			ratio := deviation / float64(bendRange)
			if ratio > 1 {
				ratio = 1
			}
			if ratio < -1 {
				ratio = -1
			}
			value := clampInt(int(math.Round(BendCenter+ratio*BendCenter)), 0, 16383)
			bends = append(bends, BendEvent{Time: start, Value: value, Channel: cfg.Channel})
			notes = append(notes, NoteEvent{
				Start:    start,
				Duration: duration,
				Note:     pitch.FitToRange(baseNote, cfg.MinNote, cfg.MaxNote),
				Velocity: velocity,
				Channel:  cfg.Channel,
			})
			if cfg.ResetBend {
				bends = append(bends, BendEvent{Time: start + duration, Value: BendCenter, Channel: cfg.Channel})
			}
		} else {
			rounded := int(math.Round(noteFloat))
			quantized := scale.Quantize(rounded, cfg.Root, cfg.ScaleName)
			for _, tone := range scale.ChordNotes(quantized, cfg.Root, cfg.ScaleName, cfg.Chord) {
				tone = pitch.FitToRange(tone, cfg.MinNote, cfg.MaxNote)
				notes = append(notes, NoteEvent{
					Start:    start,
					Duration: duration,
					Note:     clampInt(tone, 0, 127),
					Velocity: velocity,
					Channel:  cfg.Channel,
				})
			}
		}

		// Swing and humanize jitter move the onset only; the cadence
		// advances by the resolved duration.
		currentTime += duration
	}
	return notes, bends, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

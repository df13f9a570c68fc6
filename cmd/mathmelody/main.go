package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/marcocmaj7/mathmelody"
)

func main() {
	// Optional overrides from a local .env file; missing file is fine.
	_ = godotenv.Load()

	defaults := mathmelody.DefaultConfig()
	var (
		function    = flag.String("f", defaults.Function, "expression in x to turn into a melody")
		xRange      = flag.String("range", "", "sampling interval as \"min,max\" (default -2pi,2pi)")
		notes       = flag.Int("notes", defaults.Notes, "number of notes (8-128)")
		tempo       = flag.Int("tempo", defaults.Tempo, "tempo in BPM (40-240)")
		velocity    = flag.Int("velocity", defaults.Velocity, "base velocity (0-127)")
		duration    = flag.Float64("duration", defaults.NoteDuration, "base note duration in beats (0.1-4.0)")
		program     = flag.Int("program", defaults.Program, "General MIDI program (0-127)")
		transpose   = flag.Int("transpose", defaults.Transpose, "semitone shift (-24..24)")
		scaleName   = flag.String("scale", defaults.Scale, "scale name; use -scales to list")
		root        = flag.Int("root", defaults.Root, "scale root note (0-127)")
		minNote     = flag.Int("min-note", defaults.MinNote, "lowest playable note")
		maxNote     = flag.Int("max-note", defaults.MaxNote, "highest playable note")
		chord       = flag.String("chord", string(defaults.Chord), "chord mode: none|power|triad|seventh")
		rhythm      = flag.String("rhythm", "", "comma-separated duration pattern in beats, e.g. 0.5,0.5,1")
		swing       = flag.Float64("swing", 0, "swing amount (0-1)")
		humTiming   = flag.Float64("humanize-timing", 0, "onset jitter in beats (0-0.5)")
		humVelocity = flag.Int("humanize-velocity", 0, "velocity jitter (0-40)")
		microtonal  = flag.Bool("microtonal", false, "use pitch bends instead of quantizing")
		bendRange   = flag.Int("bend-range", defaults.BendRange, "pitch wheel span in semitones (1-24)")
		noReset     = flag.Bool("no-bend-reset", false, "skip resetting the wheel after each note")
		output      = flag.String("o", "", "output file (default $MATHMELODY_OUTPUT or melody.mid)")
		seed        = flag.Int64("seed", 0, "random seed; 0 means time-based")
		listScales  = flag.Bool("scales", false, "list supported scales and exit")
		interactive = flag.Bool("interactive", false, "start an interactive session")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *listScales {
		for _, name := range mathmelody.ScaleNames() {
			fmt.Println(name)
		}
		return
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfg := defaults
	cfg.Function = *function
	cfg.Notes = *notes
	cfg.Tempo = *tempo
	cfg.Velocity = *velocity
	cfg.NoteDuration = *duration
	cfg.Program = *program
	cfg.Transpose = *transpose
	cfg.Scale = *scaleName
	cfg.Root = *root
	cfg.MinNote = *minNote
	cfg.MaxNote = *maxNote
	cfg.Chord = mathmelody.ChordMode(*chord)
	cfg.Swing = *swing
	cfg.HumanizeTiming = *humTiming
	cfg.HumanizeVelocity = *humVelocity
	cfg.Microtonal = *microtonal
	cfg.BendRange = *bendRange
	cfg.ResetBend = !*noReset

	if *xRange != "" {
		lo, hi, err := parseRange(*xRange)
		if err != nil {
			log.Fatal(err)
		}
		cfg.XMin, cfg.XMax = lo, hi
	}
	if *rhythm != "" {
		pattern, err := parseRhythm(*rhythm)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Rhythm = pattern
	}

	opts := []mathmelody.GeneratorOption{mathmelody.WithLogger(logger)}
	if *seed != 0 {
		opts = append(opts, mathmelody.WithSeed(*seed))
	}
	gen := mathmelody.New(opts...)

	if *interactive {
		if err := runREPL(gen, cfg, outputPath(*output)); err != nil {
			log.Fatal(err)
		}
		return
	}

	path := outputPath(*output)
	if err := gen.GenerateToFile(cfg, path); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s\n", path)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func outputPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("MATHMELODY_OUTPUT"); env != "" {
		return env
	}
	return "melody.mid"
}

func parseRange(s string) (float64, float64, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("range must be \"min,max\", got %q", s)
	}
	lo, err := parseBound(parts[0])
	if err != nil {
		return 0, 0, err
	}
	hi, err := parseBound(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// parseBound accepts plain numbers plus pi shorthand like "2pi" or "-pi".
func parseBound(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	if strings.HasSuffix(s, "pi") {
		coef := strings.TrimSuffix(s, "pi")
		switch coef {
		case "", "+":
			coef = "1"
		case "-":
			coef = "-1"
		}
		v, err := strconv.ParseFloat(coef, 64)
		if err != nil {
			return 0, fmt.Errorf("bad range bound %q", s)
		}
		return v * math.Pi, nil
	}
	return 0, fmt.Errorf("bad range bound %q", s)
}

func parseRhythm(s string) ([]float64, error) {
	var pattern []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad rhythm step %q", part)
		}
		pattern = append(pattern, v)
	}
	return pattern, nil
}

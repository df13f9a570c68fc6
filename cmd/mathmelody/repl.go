package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/marcocmaj7/mathmelody"
)

// runREPL reads expressions and settings interactively. Each expression
// line renders a numbered MIDI file next to the base output path.
func runREPL(gen *mathmelody.Generator, cfg mathmelody.Config, basePath string) error {
	rl, err := readline.New("mathmelody> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("enter an expression in x, \"set <param> <value>\", \"show\", or \"exit\"")
	count := 0
	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case line == "exit" || line == "quit":
			return nil
		case line == "show":
			printConfig(cfg)
		case strings.HasPrefix(line, "set "):
			if err := setParam(&cfg, line[len("set "):]); err != nil {
				fmt.Println(err)
			}
		default:
			cfg.Function = line
			count++
			path := numberedPath(basePath, count)
			if err := gen.GenerateToFile(cfg, path); err != nil {
				fmt.Println(err)
				count--
				continue
			}
			fmt.Printf("wrote %s\n", path)
		}
	}
}

func numberedPath(base string, n int) string {
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), n, ext)
}

func printConfig(cfg mathmelody.Config) {
	fmt.Printf("function           %s\n", cfg.Function)
	fmt.Printf("range              %g .. %g\n", cfg.XMin, cfg.XMax)
	fmt.Printf("notes              %d\n", cfg.Notes)
	fmt.Printf("tempo              %d\n", cfg.Tempo)
	fmt.Printf("velocity           %d\n", cfg.Velocity)
	fmt.Printf("duration           %g\n", cfg.NoteDuration)
	fmt.Printf("program            %d\n", cfg.Program)
	fmt.Printf("transpose          %d\n", cfg.Transpose)
	fmt.Printf("scale              %s (root %d)\n", cfg.Scale, cfg.Root)
	fmt.Printf("note range         %d .. %d\n", cfg.MinNote, cfg.MaxNote)
	fmt.Printf("chord              %s\n", cfg.Chord)
	fmt.Printf("rhythm             %v\n", cfg.Rhythm)
	fmt.Printf("swing              %g\n", cfg.Swing)
	fmt.Printf("humanize-timing    %g\n", cfg.HumanizeTiming)
	fmt.Printf("humanize-velocity  %d\n", cfg.HumanizeVelocity)
	fmt.Printf("microtonal         %t (bend range %d, reset %t)\n",
		cfg.Microtonal, cfg.BendRange, cfg.ResetBend)
}

func setParam(cfg *mathmelody.Config, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return fmt.Errorf("usage: set <param> <value>")
	}
	param, value := fields[0], strings.Join(fields[1:], " ")

	atoi := func() (int, error) { return strconv.Atoi(value) }
	atof := func() (float64, error) { return strconv.ParseFloat(value, 64) }
	atob := func() (bool, error) { return strconv.ParseBool(value) }

	var err error
	switch param {
	case "range":
		cfg.XMin, cfg.XMax, err = parseRange(value)
	case "notes":
		cfg.Notes, err = atoi()
	case "tempo":
		cfg.Tempo, err = atoi()
	case "velocity":
		cfg.Velocity, err = atoi()
	case "duration":
		cfg.NoteDuration, err = atof()
	case "program":
		cfg.Program, err = atoi()
	case "transpose":
		cfg.Transpose, err = atoi()
	case "scale":
		cfg.Scale = value
	case "root":
		cfg.Root, err = atoi()
	case "min-note":
		cfg.MinNote, err = atoi()
	case "max-note":
		cfg.MaxNote, err = atoi()
	case "chord":
		cfg.Chord = mathmelody.ChordMode(value)
	case "rhythm":
		if value == "none" {
			cfg.Rhythm = nil
		} else {
			cfg.Rhythm, err = parseRhythm(value)
		}
	case "swing":
		cfg.Swing, err = atof()
	case "humanize-timing":
		cfg.HumanizeTiming, err = atof()
	case "humanize-velocity":
		cfg.HumanizeVelocity, err = atoi()
	case "microtonal":
		cfg.Microtonal, err = atob()
	case "bend-range":
		cfg.BendRange, err = atoi()
	case "reset-bend":
		cfg.ResetBend, err = atob()
	default:
		return fmt.Errorf("unknown parameter: %s", param)
	}
	if err != nil {
		return fmt.Errorf("set %s: %w", param, err)
	}
	return nil
}

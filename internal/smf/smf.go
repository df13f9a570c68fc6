// Package smf renders scheduled note and pitch-bend events into a
// single-track Standard MIDI File.
package smf

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/yalue/midi"

	"github.com/marcocmaj7/mathmelody/internal/schedule"
)

// TicksPerQuarter is the time division written into the file header.
// One beat of scheduler time maps to this many ticks.
const TicksPerQuarter = 480

// Document holds everything needed to render one track.
type Document struct {
	Tempo     int
	Program   int
	Channel   int
	TrackName string
	// When set, the RPN 0 sequence configuring the pitch wheel span is
	// emitted before any notes.
	Microtonal bool
	BendRange  int
	Notes      []schedule.NoteEvent
	Bends      []schedule.BendEvent
}

// Message classes used to order simultaneous events. Note-offs sort
// before note-ons so a repeated pitch retriggers cleanly, and bends
// land before the notes they detune.
const (
	classSetup = iota
	classBend
	classNoteOff
	classNoteOn
	classEnd
)

type timedMessage struct {
	tick    uint32
	class   int
	seq     int
	message midi.MIDIMessage
}

func beatsToTicks(beats float64) uint32 {
	t := math.Round(beats * TicksPerQuarter)
	if t < 0 {
		return 0
	}
	return uint32(t)
}

// Encode renders the document as SMF bytes.
func Encode(doc Document) ([]byte, error) {
	if doc.Tempo <= 0 {
		return nil, fmt.Errorf("tempo must be positive, got %d", doc.Tempo)
	}
	if doc.Channel < 0 || doc.Channel > 15 {
		return nil, fmt.Errorf("channel out of range: %d", doc.Channel)
	}
	channel := uint8(doc.Channel)

	msgs := make([]timedMessage, 0, len(doc.Notes)*2+len(doc.Bends)+16)
	add := func(tick uint32, class int, m midi.MIDIMessage) {
		msgs = append(msgs, timedMessage{tick, class, len(msgs), m})
	}

	name := doc.TrackName
	if name == "" {
		name = "Math Function Melody"
	}
	add(0, classSetup, &midi.TextMetaEvent{TextEventType: 3, Data: []byte(name)})
	add(0, classSetup, midi.SetTempoMetaEvent(60000000/uint32(doc.Tempo)))
	add(0, classSetup, &midi.ProgramChangeEvent{Channel: channel, Value: uint8(doc.Program)})

	if doc.Microtonal {
		// RPN 0 (pitch bend sensitivity): select, write the semitone
		// span, then deselect with the null RPN.
		bendRange := doc.BendRange
		if bendRange <= 0 {
			bendRange = 2
		}
		for _, cc := range [][2]uint8{
			{101, 0}, {100, 0},
			{6, uint8(bendRange)}, {38, 0},
			{101, 127}, {100, 127},
		} {
			add(0, classSetup, &midi.ControlChangeEvent{
				Channel:          channel,
				ControllerNumber: cc[0],
				Value:            cc[1],
			})
		}
	}

	for _, b := range doc.Bends {
		if b.Value < 0 || b.Value > 0x3fff {
			return nil, fmt.Errorf("pitch bend value out of range: %d", b.Value)
		}
		add(beatsToTicks(b.Time), classBend, &midi.PitchBendEvent{
			Channel: channel,
			Value:   uint16(b.Value),
		})
	}

	for _, n := range doc.Notes {
		if n.Note < 0 || n.Note > 127 {
			return nil, fmt.Errorf("note out of range: %d", n.Note)
		}
		if n.Velocity < 0 || n.Velocity > 127 {
			return nil, fmt.Errorf("velocity out of range: %d", n.Velocity)
		}
		on := beatsToTicks(n.Start)
		off := beatsToTicks(n.Start + n.Duration)
		if off <= on {
			off = on + 1
		}
		add(on, classNoteOn, &midi.NoteOnEvent{
			Channel:  channel,
			Note:     midi.MIDINote(n.Note),
			Velocity: uint8(n.Velocity),
		})
		add(off, classNoteOff, &midi.NoteOffEvent{
			Channel: channel,
			Note:    midi.MIDINote(n.Note),
		})
	}

	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		if msgs[i].class != msgs[j].class {
			return msgs[i].class < msgs[j].class
		}
		return msgs[i].seq < msgs[j].seq
	})

	endTick := uint32(0)
	if len(msgs) > 0 {
		endTick = msgs[len(msgs)-1].tick
	}
	msgs = append(msgs, timedMessage{endTick, classEnd, len(msgs), midi.EndOfTrackMetaEvent(0)})

	track := &midi.SMFTrack{
		Messages:   make([]midi.MIDIMessage, len(msgs)),
		TimeDeltas: make([]uint32, len(msgs)),
	}
	prev := uint32(0)
	for i, m := range msgs {
		track.Messages[i] = m.message
		track.TimeDeltas[i] = m.tick - prev
		prev = m.tick
	}

	file := &midi.SMFFile{
		Division: midi.TimeDivision(TicksPerQuarter),
		Tracks:   []*midi.SMFTrack{track},
	}
	var buf bytes.Buffer
	if err := file.WriteToFile(&buf); err != nil {
		return nil, fmt.Errorf("writing SMF data: %w", err)
	}
	return buf.Bytes(), nil
}

package mixloop

import (
	"fmt"
	"math"
)

type NoteName int

const (
	NoteC NoteName = iota
	NoteCSharp
	NoteD
	NoteDSharp
	NoteE
	NoteF
	NoteFSharp
	NoteG
	NoteGSharp
	NoteA
	NoteASharp
	NoteB
)

var noteNames = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func (n NoteName) String() string {
	if n < 0 || int(n) >= len(noteNames) {
		return fmt.Sprintf("NoteName(%d)", int(n))
	}
	return noteNames[n]
}

// Note is a pitch class in an octave, C4 being middle C.
type Note struct {
	Name   NoteName
	Octave int
}

func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// MidiIndex returns the MIDI note number, clamped to 0..127.
func (n Note) MidiIndex() uint8 {
	i := (n.Octave+1)*12 + int(n.Name)
	return uint8(min(max(i, 0), 127))
}

// NoteOfMidiIndex is the inverse of Note.MidiIndex.
func NoteOfMidiIndex(index uint8) Note {
	return Note{Name: NoteName(int(index) % 12), Octave: int(index)/12 - 1}
}

// FreqHzOfMidiIndex converts a MIDI note number to Hz with A4 = 440.
func FreqHzOfMidiIndex(index uint8) float64 {
	return 440 * math.Exp2((float64(index)-69)/12)
}

// SemitoneRatio is the frequency ratio spanning the given semitones.
func SemitoneRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12)
}

func (s Su8) MidiIndexToFreqHzA440() Sf64 {
	return Sf64{Map(s.Signal, FreqHzOfMidiIndex)}
}

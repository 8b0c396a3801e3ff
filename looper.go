package mixloop

import (
	"errors"
	"fmt"
)

// ErrZeroLength is returned when a looper is built without any steps.
var ErrZeroLength = errors.New("looper length must be positive")

// TriggerLooper records and replays a rhythmic pattern of Length steps.
// The cursor moves one step per Clock pulse. At each pulse the step under
// the cursor is recorded while Add is held, or erased while Remove is
// held, and the output fires if the step is recorded.
type TriggerLooper struct {
	Clock  Trigger
	Add    Gate
	Remove Gate
	Length int
}

type triggerLooper struct {
	clock  Trigger
	add    Gate
	remove Gate
	steps  []bool
	cursor int
}

func (l *triggerLooper) Sample(ctx *Ctx) bool {
	// control gates are sampled every tick so they never miss a tick of
	// their own evaluation while the clock is idle
	add := l.add.Sample(ctx)
	remove := l.remove.Sample(ctx)
	if !l.clock.Sample(ctx) {
		return false
	}
	if add {
		l.steps[l.cursor] = true
	} else if remove {
		l.steps[l.cursor] = false
	}
	fired := l.steps[l.cursor]
	l.cursor = (l.cursor + 1) % len(l.steps)
	return fired
}

func (c TriggerLooper) Build() (Trigger, error) {
	if c.Length <= 0 {
		return Trigger{}, fmt.Errorf("trigger looper: %w (got %d)", ErrZeroLength, c.Length)
	}
	logger.Debug("trigger looper", "length", c.Length)
	return Trigger{Stateful[bool](&triggerLooper{
		clock:  c.Clock,
		add:    c.Add,
		remove: c.Remove,
		steps:  make([]bool, c.Length),
	})}, nil
}

// NoteLooper records a monophonic line of MIDI notes into Length clocked
// steps and plays it back whenever the live gate is released.
//
// A step keeps the note together with the shape of its gate: the tick
// within the step at which the key went down and the tick at which it was
// released. A key still held at the next clock keeps the gate open up to
// that clock on replay. A new press within a step replaces what the step
// held.
type NoteLooper struct {
	Clock     Trigger
	InputGate Gate
	InputNote Su8
	Clear     Trigger
	Length    int
}

type noteStep struct {
	note     uint8
	recorded bool
	// the gate is open for ticks on..off-1 of the step, or from on up to
	// the next clock when held is set
	on, off  int
	held     bool
}

func (s *noteStep) open(tick int) bool {
	return s.recorded && tick >= s.on && (s.held || tick < s.off)
}

// NoteEvent is the per-tick output of a note looper.
type NoteEvent struct {
	Note uint8
	Gate bool
}

type noteLooper struct {
	clock     Trigger
	inputGate Gate
	inputNote Su8
	clear     Trigger
	steps     []noteStep
	step      int
	// tick counts the ticks since the last clock
	tick      int
	started   bool
	recording bool
	lastNote  uint8
}

func (l *noteLooper) Sample(ctx *Ctx) NoteEvent {
	if l.clear.Sample(ctx) {
		for i := range l.steps {
			l.steps[i] = noteStep{}
		}
		l.recording = false
	}
	open := l.inputGate.Sample(ctx)
	note := l.inputNote.Sample(ctx)
	if l.clock.Sample(ctx) {
		if l.started {
			if l.recording {
				l.steps[l.step].held = true
			}
			l.step = (l.step + 1) % len(l.steps)
		}
		l.started = true
		l.tick = 0
		l.recording = false
	} else if l.started {
		l.tick++
	}
	if open {
		if l.started {
			s := &l.steps[l.step]
			if !l.recording {
				*s = noteStep{recorded: true, on: l.tick}
				l.recording = true
			}
			s.note = note
			s.off = l.tick + 1
		}
		l.lastNote = note
		return NoteEvent{Note: note, Gate: true}
	}
	l.recording = false
	if !l.started {
		return NoteEvent{Note: l.lastNote}
	}
	s := &l.steps[l.step]
	if !s.open(l.tick) {
		return NoteEvent{Note: l.lastNote}
	}
	l.lastNote = s.note
	return NoteEvent{Note: s.note, Gate: true}
}

// BuildEvents returns the combined looper output.
func (c NoteLooper) BuildEvents() (Signal[NoteEvent], error) {
	if c.Length <= 0 {
		return Signal[NoteEvent]{}, fmt.Errorf("note looper: %w (got %d)", ErrZeroLength, c.Length)
	}
	logger.Debug("note looper", "length", c.Length)
	return Stateful[NoteEvent](&noteLooper{
		clock:     c.Clock,
		inputGate: c.InputGate,
		inputNote: c.InputNote,
		clear:     c.Clear,
		steps:     make([]noteStep, c.Length),
	}), nil
}

// Build returns the looper output split into a gate and a note index.
// Both views share one looper state.
func (c NoteLooper) Build() (Gate, Su8, error) {
	events, err := c.BuildEvents()
	if err != nil {
		return Gate{}, Su8{}, err
	}
	gate := Gate{Map(events, func(e NoteEvent) bool { return e.Gate })}
	note := Su8{Map(events, func(e NoteEvent) uint8 { return e.Note })}
	return gate, note, nil
}

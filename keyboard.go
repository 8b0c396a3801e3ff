package mixloop

// KeyNote binds one key gate to the MIDI note it plays.
type KeyNote struct {
	Gate Gate
	Note uint8
}

type keyState struct {
	KeyNote
	pressed bool
	// lastPressed is the tick of the latest press plus one; 0 means never.
	lastPressed uint64
}

type monoKeyboard struct {
	keys []keyState
}

func (k *monoKeyboard) Sample(ctx *Ctx) NoteEvent {
	var (
		open       bool
		note       uint8
		newestHeld uint64
		noteAll    uint8
		newestEver uint64
	)
	for i := range k.keys {
		key := &k.keys[i]
		if key.Gate.Sample(ctx) {
			open = true
			if !key.pressed {
				key.pressed = true
				key.lastPressed = ctx.SampleIndex + 1
			}
			// strict comparison: on a same-tick tie the earlier entry wins
			if key.lastPressed > newestHeld {
				newestHeld = key.lastPressed
				note = key.Note
			}
		} else {
			key.pressed = false
		}
		if key.lastPressed > newestEver {
			newestEver = key.lastPressed
			noteAll = key.Note
		}
	}
	if open {
		return NoteEvent{Note: note, Gate: true}
	}
	return NoteEvent{Note: noteAll}
}

// MonophonicKeyboard folds a table of key gates into one monophonic voice.
// The sounding note is the held key pressed most recently; releasing it
// falls back to the newest key still held. With every key up the gate
// closes but the note stays on the most recently pressed key, so pitch
// does not snap elsewhere during the release. Keys pressed on the same
// tick resolve to the one listed first.
func MonophonicKeyboard(keys []KeyNote) (Gate, Su8) {
	state := make([]keyState, len(keys))
	for i, kn := range keys {
		state[i] = keyState{KeyNote: kn}
	}
	events := Stateful[NoteEvent](&monoKeyboard{keys: state})
	gate := Gate{Map(events, func(e NoteEvent) bool { return e.Gate })}
	note := Su8{Map(events, func(e NoteEvent) uint8 { return e.Note })}
	return gate, note
}

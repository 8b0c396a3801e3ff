package mixloop

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

// MidiChannelCount is the number of channels on one MIDI port.
const MidiChannelCount = 16

// PitchBendRangeSemitones is how far a full pitch bend moves the pitch.
const PitchBendRangeSemitones = 2.0

// MidiVoice is the monophonic voice of one MIDI channel.
type MidiVoice struct {
	Note       Su8
	NoteFreqHz Sf64
	Velocity01 Sf64
	Gate       Gate
	// Trigger fires on every note-on, including legato ones where the
	// gate stays open.
	Trigger Trigger
}

// MidiChannel groups the signals derived from one MIDI channel.
type MidiChannel struct {
	Voice                 MidiVoice
	PitchBendMultiplierHz Sf64
	Controllers           *ControllerTable
}

type voiceView struct {
	note      uint8
	velocity  uint8
	gate      bool
	noteOns   uint64
	pitchBend int16
}

type midiChannelState struct {
	// held holds the press serial of each held note, 0 when released
	held   [128]uint64
	serial uint64

	view        Box[voiceView]
	controllers *ControllerTable
	channel     MidiChannel
}

// MidiPlayer turns MIDI messages into signals. HandleMessage may be
// called from the port's listener goroutine while the graph is playing.
//
// Each channel plays one note at a time: the most recent note-on wins and
// releasing it falls back to the newest note still held.
type MidiPlayer struct {
	mu       sync.Mutex
	channels [MidiChannelCount]*midiChannelState
}

func NewMidiPlayer() *MidiPlayer {
	p := &MidiPlayer{}
	for i := range p.channels {
		p.channels[i] = newMidiChannelState()
	}
	return p
}

func newMidiChannelState() *midiChannelState {
	cs := &midiChannelState{controllers: NewControllerTable()}
	view := Stateful[*voiceView](&snapshot[voiceView]{box: &cs.view})
	note := Su8{Map(view, func(v *voiceView) uint8 { return v.note })}
	noteOns := Map(view, func(v *voiceView) uint64 { return v.noteOns })
	var prevNoteOns uint64
	cs.channel = MidiChannel{
		Voice: MidiVoice{
			Note:       note,
			NoteFreqHz: note.MidiIndexToFreqHzA440(),
			Velocity01: Sf64{Map(view, func(v *voiceView) float64 { return float64(v.velocity) / 127 })},
			Gate:       Gate{Map(view, func(v *voiceView) bool { return v.gate })},
			Trigger: Trigger{FromFn(func(ctx *Ctx) bool {
				n := noteOns.Sample(ctx)
				fired := n != prevNoteOns
				prevNoteOns = n
				return fired
			})},
		},
		PitchBendMultiplierHz: Sf64{Map(view, func(v *voiceView) float64 {
			return SemitoneRatio(float64(v.pitchBend) / 8192 * PitchBendRangeSemitones)
		})},
		Controllers: cs.controllers,
	}
	return cs
}

// Channel returns the signals of channel ch (0-based). Every call returns
// handles to the same underlying nodes.
func (p *MidiPlayer) Channel(ch uint8) MidiChannel {
	return p.channels[ch%MidiChannelCount].channel
}

// HandleMessage applies one MIDI message. Unhandled message types are
// ignored.
func (p *MidiPlayer) HandleMessage(msg midi.Message) {
	var ch, key, vel, cc, val uint8
	var bend int16
	var absBend uint16
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		p.channels[ch%MidiChannelCount].noteOn(key, vel)
	case msg.GetNoteEnd(&ch, &key):
		p.channels[ch%MidiChannelCount].noteOff(key)
	case msg.GetControlChange(&ch, &cc, &val):
		cs := p.channels[ch%MidiChannelCount]
		cs.controllers.SetMidi(cc, val)
		if cc == midiAllNotesOff {
			cs.allNotesOff()
		}
	case msg.GetPitchBend(&ch, &bend, &absBend):
		p.channels[ch%MidiChannelCount].view.Update(func(v *voiceView) { v.pitchBend = bend })
	default:
		logger.Debug("unhandled MIDI message", "msg", msg.String())
	}
}

// AllNotesOff releases every note on every channel, for use when a port
// disappears.
func (p *MidiPlayer) AllNotesOff() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cs := range p.channels {
		cs.allNotesOff()
	}
}

const midiAllNotesOff = 123

func (cs *midiChannelState) noteOn(key, vel uint8) {
	key &= 0x7f
	cs.serial++
	cs.held[key] = cs.serial
	cs.view.Update(func(v *voiceView) {
		v.note = key
		v.velocity = vel
		v.gate = true
		v.noteOns++
	})
}

func (cs *midiChannelState) noteOff(key uint8) {
	key &= 0x7f
	cs.held[key] = 0
	var newest uint64
	var fallback uint8
	for k, s := range cs.held {
		if s > newest {
			newest = s
			fallback = uint8(k)
		}
	}
	cs.view.Update(func(v *voiceView) {
		if newest == 0 {
			v.gate = false
			return
		}
		v.note = fallback
	})
}

func (cs *midiChannelState) allNotesOff() {
	cs.held = [128]uint64{}
	cs.view.Update(func(v *voiceView) { v.gate = false })
}

// MidiStreamParser splits a raw MIDI byte stream, as read from a serial
// line, into messages. It understands running status and real-time bytes
// interleaved with other messages; system exclusive data is skipped.
type MidiStreamParser struct {
	status byte
	data   [2]byte
	n      int
	sysex  bool
}

func midiDataLen(status byte) int {
	switch {
	case status < 0x80:
		return -1
	case status < 0xc0:
		return 2
	case status < 0xe0:
		return 1
	case status < 0xf0:
		return 2
	}
	switch status {
	case 0xf1, 0xf3:
		return 1
	case 0xf2:
		return 2
	}
	return 0
}

// Parse feeds buf to the parser and calls emit for each complete message.
func (p *MidiStreamParser) Parse(buf []byte, emit func(midi.Message)) {
	for _, b := range buf {
		switch {
		case b >= 0xf8:
			emit(midi.Message{b})
		case b == 0xf0:
			p.sysex = true
			p.status = 0
		case b == 0xf7:
			p.sysex = false
		case b >= 0x80:
			p.sysex = false
			p.n = 0
			if midiDataLen(b) == 0 {
				p.status = 0
				emit(midi.Message{b})
				continue
			}
			p.status = b
		default:
			if p.sysex || p.status == 0 {
				continue
			}
			p.data[p.n] = b
			p.n++
			if p.n == midiDataLen(p.status) {
				msg := make(midi.Message, 0, 3)
				msg = append(msg, p.status)
				msg = append(msg, p.data[:p.n]...)
				emit(msg)
				p.n = 0
				// system common messages do not establish running status
				if p.status >= 0xf0 {
					p.status = 0
				}
			}
		}
	}
}

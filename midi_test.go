package mixloop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

type voiceFrame struct {
	gate    bool
	note    uint8
	trigger bool
}

// tickVoice samples the voice once and advances ctx.
func tickVoice(ctx *Ctx, v MidiVoice) voiceFrame {
	f := voiceFrame{
		gate:    v.Gate.Sample(ctx),
		note:    v.Note.Sample(ctx),
		trigger: v.Trigger.Sample(ctx),
	}
	ctx.Advance()
	return f
}

func TestMidiPlayerNotes(t *testing.T) {
	mp := NewMidiPlayer()
	voice := mp.Channel(0).Voice
	ctx := NewCtx(1000)

	assert.Equal(t, voiceFrame{}, tickVoice(ctx, voice))

	mp.HandleMessage(midi.NoteOn(0, 60, 127))
	assert.Equal(t, voiceFrame{gate: true, note: 60, trigger: true}, tickVoice(ctx, voice))
	assert.Equal(t, voiceFrame{gate: true, note: 60}, tickVoice(ctx, voice))

	mp.HandleMessage(midi.NoteOn(0, 64, 64))
	assert.Equal(t, voiceFrame{gate: true, note: 64, trigger: true}, tickVoice(ctx, voice))

	mp.HandleMessage(midi.NoteOff(0, 64))
	assert.Equal(t, voiceFrame{gate: true, note: 60}, tickVoice(ctx, voice))

	// a note-on with zero velocity is a note-off
	mp.HandleMessage(midi.NoteOn(0, 60, 0))
	assert.Equal(t, voiceFrame{note: 60}, tickVoice(ctx, voice))
}

func TestMidiPlayerVelocityAndFreq(t *testing.T) {
	mp := NewMidiPlayer()
	voice := mp.Channel(3).Voice
	mp.HandleMessage(midi.NoteOn(3, 69, 127))
	ctx := NewCtx(1000)
	assert.InDelta(t, 440, voice.NoteFreqHz.Sample(ctx), 1e-9)
	assert.InDelta(t, 1, voice.Velocity01.Sample(ctx), 1e-12)
}

func TestMidiPlayerChannelsAreIndependent(t *testing.T) {
	mp := NewMidiPlayer()
	mp.HandleMessage(midi.NoteOn(2, 50, 100))
	ctx := NewCtx(1000)
	assert.False(t, mp.Channel(0).Voice.Gate.Sample(ctx))
	assert.True(t, mp.Channel(2).Voice.Gate.Sample(ctx))
}

func TestMidiPlayerPitchBend(t *testing.T) {
	tests := []struct {
		name string
		bend int16
		want float64
	}{
		{"centre", 0, 1},
		{"down", -8192, math.Exp2(-2.0 / 12)},
		{"up", 4096, math.Exp2(1.0 / 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := NewMidiPlayer()
			mp.HandleMessage(midi.Pitchbend(1, tt.bend))
			got := mp.Channel(1).PitchBendMultiplierHz.Sample(NewCtx(1000))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestMidiPlayerControllers(t *testing.T) {
	mp := NewMidiPlayer()
	mp.HandleMessage(midi.ControlChange(0, ControllerModulation, 127))
	mp.HandleMessage(midi.NoteOn(0, 40, 90))
	ctx := NewCtx(1000)
	ch := mp.Channel(0)
	assert.Equal(t, 1.0, ch.Controllers.Modulation().Sample(ctx))
	assert.True(t, ch.Voice.Gate.Sample(ctx))

	mp.HandleMessage(midi.ControlChange(0, midiAllNotesOff, 0))
	ctx.Advance()
	assert.False(t, ch.Voice.Gate.Sample(ctx))
}

func TestMidiPlayerAllNotesOff(t *testing.T) {
	mp := NewMidiPlayer()
	mp.HandleMessage(midi.NoteOn(0, 40, 90))
	mp.HandleMessage(midi.NoteOn(5, 41, 90))
	mp.AllNotesOff()
	ctx := NewCtx(1000)
	assert.False(t, mp.Channel(0).Voice.Gate.Sample(ctx))
	assert.False(t, mp.Channel(5).Voice.Gate.Sample(ctx))
}

func TestMidiStreamParser(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]byte
		want   []midi.Message
	}{
		{
			name:   "running status",
			chunks: [][]byte{{0x90, 60, 100, 62, 100}},
			want:   []midi.Message{midi.NoteOn(0, 60, 100), midi.NoteOn(0, 62, 100)},
		},
		{
			name:   "real-time byte inside a message",
			chunks: [][]byte{{0x91, 60, 0xf8, 100}},
			want:   []midi.Message{{0xf8}, midi.NoteOn(1, 60, 100)},
		},
		{
			name:   "split across reads",
			chunks: [][]byte{{0xb0, 1}, {127, 0x80}, {60, 0}},
			want:   []midi.Message{midi.ControlChange(0, 1, 127), midi.NoteOff(0, 60)},
		},
		{
			name:   "sysex is skipped",
			chunks: [][]byte{{0xf0, 1, 2, 3, 0xf7, 0x90, 60, 100}},
			want:   []midi.Message{midi.NoteOn(0, 60, 100)},
		},
		{
			name:   "one data byte messages",
			chunks: [][]byte{{0xc0, 5, 6}},
			want:   []midi.Message{{0xc0, 5}, {0xc0, 6}},
		},
		{
			name:   "data before any status is dropped",
			chunks: [][]byte{{60, 100, 0xe0, 0, 0x40}},
			want:   []midi.Message{midi.Pitchbend(0, 0)},
		},
		{
			name:   "system common cancels running status",
			chunks: [][]byte{{0x90, 60, 100, 0xf3, 2, 61, 100}},
			want:   []midi.Message{midi.NoteOn(0, 60, 100), {0xf3, 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p MidiStreamParser
			var got []midi.Message
			for _, c := range tt.chunks {
				p.Parse(c, func(msg midi.Message) { got = append(got, msg) })
			}
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, []byte(tt.want[i]), []byte(got[i]), "message %d", i)
			}
		})
	}
}

func TestMidiStreamParserFeedsPlayer(t *testing.T) {
	mp := NewMidiPlayer()
	var p MidiStreamParser
	p.Parse([]byte{0x90, 72, 80}, mp.HandleMessage)
	ctx := NewCtx(1000)
	assert.True(t, mp.Channel(0).Voice.Gate.Sample(ctx))
	assert.Equal(t, uint8(72), mp.Channel(0).Voice.Note.Sample(ctx))
}

package main

import (
	"fmt"

	ml "github.com/cellux/mixloop"
)

var patchNames = []string{"drums", "keys", "midi", "demo"}

type patchEnv struct {
	input  *ml.Input
	midi   *ml.MidiPlayer
	sample *ml.Tape
}

func buildPatch(name string, env patchEnv) (ml.Sf64, error) {
	switch name {
	case "drums":
		return drumsPatch(env.input, env.sample)
	case "keys":
		return keysPatch(env.input), nil
	case "midi":
		return midiPatch(env.midi), nil
	case "demo":
		return demoPatch(env.sample)
	}
	return ml.Sf64{}, fmt.Errorf("unknown patch: %s", name)
}

func adsr(gate ml.Gate, attackS, decayS, sustain01, releaseS float64) ml.Sf64 {
	return ml.ADSRLinear01{
		Gate:      gate,
		AttackS:   ml.F64(attackS),
		DecayS:    ml.F64(decayS),
		Sustain01: ml.F64(sustain01),
		ReleaseS:  ml.F64(releaseS),
	}.Build()
}

func release(gate ml.Gate, releaseS float64) ml.Sf64 {
	return adsr(gate, 0, 0, 1, releaseS)
}

func kick(trigger ml.Trigger) ml.Sf64 {
	gate := trigger.ToGate()
	const durationS = 0.05
	freqHz := release(gate, durationS).Exp01(1).MulScalar(200).AddScalar(40)
	osc := ml.OscillatorHz(ml.WaveformPulse, freqHz)
	envAmp := release(gate, durationS).Exp01(1).Filter(ml.LowPassMoogLadder(ml.F64(1000)))
	x := osc.Filter(ml.LowPassMoogLadder(ml.F64(400))).MulScalar(8)
	x = osc.Add(x).
		Filter(ml.LowPassMoogLadder(envAmp.MulScalar(500))).
		Filter(ml.Compress{Ratio: ml.F64(0.02), Scale: ml.F64(16)}.Build())
	reverb := x.
		Filter(ml.LowPassMoogLadder(ml.F64(400))).
		Filter(ml.Reverb{RoomSize: ml.F64(0.5), Damping: ml.F64(0.5)}.Build())
	reverbEnv := release(trigger.ToGateWithDurationS(0.2), 0.1).Exp01(1)
	return x.Add(reverb.Mul(reverbEnv))
}

func snare(trigger ml.Trigger) ml.Sf64 {
	gate := trigger.ToGate()
	const durationS = 0.1
	env := release(gate, durationS).Filter(ml.LowPassMoogLadder(ml.F64(1000)))
	noise := ml.Noise().Filter(ml.DownSample(ml.F64(5)))
	freqHz := release(gate, durationS).Exp01(1).MulScalar(100).AddScalar(40)
	x := ml.Oscillator{
		Waveform:     ml.WaveformPulse,
		FreqHz:       freqHz,
		ResetTrigger: trigger,
	}.Build().Add(noise).Cached()
	x = x.Add(x.Filter(ml.LowPassMoogLadder(ml.F64(200))).MulScalar(6)).MulLazy(env)
	reverb := x.Filter(ml.Reverb{RoomSize: ml.F64(0.5), Damping: ml.F64(0.5)}.Build())
	reverbEnv := release(trigger.ToGateWithDurationS(0.2), 0.05).Exp01(1)
	return x.Add(reverb.Mul(reverbEnv)).MulScalar(0.5)
}

func cymbal(trigger ml.Trigger) ml.Sf64 {
	env := release(trigger.ToGate(), 0.1).Filter(ml.LowPassButterworth(ml.F64(100)))
	return ml.Noise().
		Filter(ml.LowPassMoogLadder(env.MulScalar(10000))).
		Filter(ml.HighPassButterworth(ml.F64(6000))).
		MulScalar(4)
}

// keyRow assigns consecutive MIDI notes to keys starting at base.
func keyRow(in *ml.Input, base ml.Note, keys ...ml.Key) []ml.KeyNote {
	first := base.MidiIndex()
	out := make([]ml.KeyNote, len(keys))
	for i, k := range keys {
		out[i] = ml.KeyNote{Gate: in.Key(k), Note: first + uint8(i)}
	}
	return out
}

var bottomRow = []ml.Key{
	ml.KeyZ, ml.KeyX, ml.KeyD, ml.KeyC, ml.KeyF, ml.KeyV, ml.KeyB,
	ml.KeyH, ml.KeyN, ml.KeyJ, ml.KeyM, ml.KeyK, ml.KeyComma, ml.KeyPeriod,
}

var topRow = []ml.Key{
	ml.KeyQ, ml.KeyW, ml.Key3, ml.KeyE, ml.Key4, ml.KeyR, ml.KeyT,
	ml.Key5, ml.KeyY, ml.Key7, ml.KeyU, ml.Key8, ml.KeyI, ml.KeyO,
	ml.Key0, ml.KeyP, ml.KeyMinus, ml.KeyLeftBracket, ml.KeyRightBracket,
}

var bassRow = []ml.Key{
	ml.KeyR, ml.Key5, ml.KeyT, ml.Key6, ml.KeyY, ml.KeyU, ml.Key8,
	ml.KeyI, ml.Key9, ml.KeyO, ml.Key0, ml.KeyP, ml.KeyLeftBracket,
}

func synthEnv(gate ml.Gate) ml.Sf64 {
	return adsr(gate, 0, 0.5, 0, 0.1)
}

func synthVoice(gate ml.Gate, note ml.Su8, filter ml.Sf64) ml.Sf64 {
	freqHz := note.MidiIndexToFreqHzA440().Filter(ml.LowPassButterworth(ml.F64(20))).Cached()
	osc := ml.OscillatorHz(ml.WaveformSaw, freqHz)
	env := synthEnv(gate)
	cutoff := ml.Product(freqHz.MulScalar(128), env, filter.AddScalar(0.01))
	x := osc.
		Filter(ml.LowPassButterworth(freqHz.MulScalar(10))).
		Filter(ml.MoogLadder{CutoffHz: cutoff, Resonance: ml.F64(2)}.Build()).
		Cached()
	return x.Add(x.Filter(ml.Reverb{}.Build()))
}

func bassVoice(gate ml.Gate, note ml.Su8, filter ml.Sf64) ml.Sf64 {
	freqHz := note.MidiIndexToFreqHzA440().Filter(ml.LowPassButterworth(ml.F64(10))).Cached()
	pulse := func(f ml.Sf64) ml.Sf64 {
		lfo := ml.OscillatorHz(ml.WaveformSine, f.MulScalar(0.5)).SignedTo01().MulScalar(0.4).AddScalar(0.1)
		return ml.Oscillator{Waveform: ml.WaveformPulse, FreqHz: f, PulseWidth01: lfo}.Build()
	}
	osc := ml.Mean(
		pulse(freqHz),
		pulse(freqHz.AddScalar(0.37)).MulScalar(0.5),
		pulse(freqHz.AddScalar(0.47)).MulScalar(0.5),
	).Filter(ml.LowPassButterworth(freqHz.MulScalar(8)))
	env := adsr(gate, 0.1, 0, 1, 1).Exp01(-1)
	cutoff := ml.Product(env, freqHz.MulScalar(128), filter.AddScalar(0.01))
	return osc.
		Filter(ml.MoogLadder{CutoffHz: cutoff, Resonance: ml.F64(1)}.Build()).
		MulScalar(8).
		Tanh()
}

// drumsPatch is a clocked drum machine with a recordable synth line and a
// live bass. Q/W/E (and A with a sample) add hits at the cursor, 1/2/3/4
// erase them, the bottom row plays the looped synth, slash clears it.
func drumsPatch(in *ml.Input, sample *ml.Tape) (ml.Sf64, error) {
	clock := ml.PeriodicTriggerHz(ml.F64(4))
	loop := func(add, remove ml.Key, length int) (ml.Trigger, error) {
		return ml.TriggerLooper{
			Clock:  clock,
			Add:    in.Key(add),
			Remove: in.Key(remove),
			Length: length,
		}.Build()
	}
	kickLoop, err := loop(ml.KeyQ, ml.Key1, 8)
	if err != nil {
		return ml.Sf64{}, err
	}
	snareLoop, err := loop(ml.KeyW, ml.Key2, 8)
	if err != nil {
		return ml.Sf64{}, err
	}
	cymbalLoop, err := loop(ml.KeyE, ml.Key3, 7)
	if err != nil {
		return ml.Sf64{}, err
	}
	parts := []ml.Sf64{kick(kickLoop), snare(snareLoop), cymbal(cymbalLoop)}
	if sample != nil {
		sampleLoop, err := loop(ml.KeyA, ml.Key4, 16)
		if err != nil {
			return ml.Sf64{}, err
		}
		parts = append(parts, ml.SamplePlayer(sample, sampleLoop))
	}
	drums := ml.Sum(parts...).
		Filter(ml.LowPassButterworth(in.MouseX01().MulScalar(10000))).
		MulScalar(0.5)

	liveGate, liveNote := ml.MonophonicKeyboard(keyRow(in, ml.Note{Name: ml.NoteB, Octave: 1}, bottomRow...))
	synthGate, synthNote, err := ml.NoteLooper{
		Clock:     clock,
		InputGate: liveGate,
		InputNote: liveNote,
		Clear:     in.Key(ml.KeySlash).ToTriggerRisingEdge(),
		Length:    16,
	}.Build()
	if err != nil {
		return ml.Sf64{}, err
	}
	synth := synthVoice(synthGate, synthNote, in.MouseY01())

	bassGate, bassNote := ml.MonophonicKeyboard(keyRow(in, ml.Note{Name: ml.NoteC, Octave: 2}, bassRow...))
	bass := bassVoice(bassGate, bassNote, in.MouseX01()).Cached()
	bass = bass.Add(bass.Filter(ml.Reverb{}.Build()))

	return ml.Mean(drums, synth, bass.MulScalar(0.5)).
		Filter(ml.Saturate{Threshold: ml.F64(2)}.Build()), nil
}

func keyVoice(freqHz float64, gate ml.Gate, x, y ml.Sf64) ml.Sf64 {
	freq := ml.F64(freqHz)
	osc := ml.OscillatorHz(ml.WaveformSaw, freq).
		Add(ml.Oscillator{Waveform: ml.WaveformSaw, FreqHz: freq, ResetOffset01: 0.5}.Build())
	ampEnv := release(gate, 0.5)
	filterEnv := adsr(gate, 0, 0.1, 0.6, 0.5).Cached()
	return osc.
		Filter(ml.MoogLadder{
			CutoffHz:  filterEnv.MulScalar(12000).Mul(x),
			Resonance: y.MulScalar(4),
		}.Build()).
		MulLazy(ampEnv).
		ForceLazy(filterEnv)
}

// keysPatch gives every key of the two piano rows its own voice.
func keysPatch(in *ml.Input) ml.Sf64 {
	rows := append(
		keyRow(in, ml.Note{Name: ml.NoteB, Octave: 2}, topRow...),
		keyRow(in, ml.Note{Name: ml.NoteB, Octave: 1}, bottomRow...)...,
	)
	x, y := in.MouseX01().Cached(), in.MouseY01().Cached()
	voices := make([]ml.Sf64, len(rows))
	for i, kn := range rows {
		voices[i] = keyVoice(ml.FreqHzOfMidiIndex(kn.Note), kn.Gate, x, y)
	}
	dry := ml.Sum(voices...).
		Filter(ml.Compress{Ratio: ml.F64(0.1), Scale: ml.F64(2)}.Build()).
		Cached()
	return dry.Filter(ml.Reverb{RoomSize: ml.F64(1)}.Build()).Add(dry).MulScalar(0.1)
}

// midiPatch plays channel 1 through a unison saw. The modulation wheel
// opens the filter and controller 74 adds resonance.
func midiPatch(mp *ml.MidiPlayer) ml.Sf64 {
	ch := mp.Channel(0)
	freqHz := ch.Voice.NoteFreqHz.Mul(ch.PitchBendMultiplierHz).Cached()
	osc := ml.Unison{
		Waveform:     ml.WaveformSaw,
		FreqHz:       freqHz,
		ResetTrigger: ch.Voice.Trigger,
		Voices:       3,
		DetuneCents:  8,
	}.Build()
	env := adsr(ch.Voice.Gate, 0.005, 0.2, 0.7, 0.3).Cached()
	cutoff := ml.Product(freqHz, env, ch.Controllers.Modulation().MulScalar(32).AddScalar(2))
	x := osc.
		Filter(ml.MoogLadder{CutoffHz: cutoff, Resonance: ch.Controllers.Get01(74).MulScalar(3)}.Build()).
		MulLazy(env.Mul(ch.Voice.Velocity01)).
		Cached()
	return x.Add(x.Filter(ml.Echo{TimeS: ml.F64(0.3), Scale: ml.F64(0.35)}.Build()).MulScalar(0.5))
}

// everyNth fires on every n-th clock pulse, starting with pulse offset.
func everyNth(clock ml.Trigger, n, offset int) ml.Trigger {
	count := -1
	return ml.TriggerOf(ml.FromFn(func(ctx *ml.Ctx) bool {
		if !clock.Sample(ctx) {
			return false
		}
		count++
		return count%n == offset
	}))
}

var demoMelody = []uint8{45, 48, 52, 55, 57, 55, 52, 48}

// demoMelodyLooper plays staccato notes of demoMelody into a note looper
// during the first four seconds. The looper replays them from then on.
func demoMelodyLooper(clock ml.Trigger, steps int) (ml.Gate, ml.Su8, error) {
	step := -1
	melodyNote := ml.AsSu8(ml.FromFn(func(ctx *ml.Ctx) uint8 {
		if clock.Sample(ctx) {
			step++
		}
		return demoMelody[max(step, 0)%len(demoMelody)]
	}))
	recording := ml.GateOf(ml.FromPureFn(func(ctx *ml.Ctx) bool {
		return ctx.SampleIndex < ctx.SecondsToTicks(4)
	}))
	noteGate := clock.ToGateWithDurationS(0.15).And(recording)
	return ml.NoteLooper{
		Clock:     clock,
		InputGate: noteGate,
		InputNote: melodyNote,
		Length:    steps,
	}.Build()
}

// demoPatch plays by itself: scripted drums run through trigger loopers
// and a melody recorded into a note looper during the first bars is
// replayed afterwards.
func demoPatch(sample *ml.Tape) (ml.Sf64, error) {
	clock := ml.PeriodicTriggerHz(ml.F64(4)).Cached()
	const steps = 16
	loop := func(pattern ml.Trigger) (ml.Trigger, error) {
		return ml.TriggerLooper{Clock: clock, Add: pattern.ToGate(), Length: steps}.Build()
	}
	kickLoop, err := loop(everyNth(clock, 4, 0))
	if err != nil {
		return ml.Sf64{}, err
	}
	snareLoop, err := loop(everyNth(clock, 8, 4))
	if err != nil {
		return ml.Sf64{}, err
	}
	hatLoop, err := loop(everyNth(clock, 2, 1))
	if err != nil {
		return ml.Sf64{}, err
	}
	parts := []ml.Sf64{kick(kickLoop), snare(snareLoop), cymbal(hatLoop).MulScalar(0.5)}
	if sample != nil {
		parts = append(parts, ml.SamplePlayer(sample, everyNth(clock, steps, 0)))
	}
	drums := ml.Sum(parts...).MulScalar(0.5)

	gate, note, err := demoMelodyLooper(clock, steps)
	if err != nil {
		return ml.Sf64{}, err
	}
	sweep := ml.PeriodicGate{FreqHz: ml.F64(0.125)}.Build().ToSf64().
		Filter(ml.LowPassOnePole(ml.F64(0.5)))
	synth := synthVoice(gate, note, sweep.MulScalar(0.5).AddScalar(0.2))
	return ml.Mean(drums, synth).Filter(ml.Saturate{Threshold: ml.F64(2)}.Build()), nil
}

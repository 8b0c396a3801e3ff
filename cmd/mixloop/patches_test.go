package main

import (
	"math"
	"testing"

	ml "github.com/cellux/mixloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

func newEnv() patchEnv {
	return patchEnv{input: ml.NewInput(), midi: ml.NewMidiPlayer()}
}

func renderPatch(t *testing.T, root ml.Sf64, frames int) []float64 {
	t.Helper()
	p, err := ml.NewPlayer(root, ml.PlayerConfig{SampleRate: 8000, Channels: 1, Gain: 1})
	require.NoError(t, err)
	out := make([]float64, frames)
	for i := range out {
		out[i] = p.Tick()
		require.False(t, math.IsNaN(out[i]), "frame %d", i)
	}
	return out
}

func peak(values []float64) float64 {
	var m float64
	for _, v := range values {
		m = max(m, math.Abs(v))
	}
	return m
}

func TestBuildAllPatches(t *testing.T) {
	for _, name := range patchNames {
		t.Run(name, func(t *testing.T) {
			root, err := buildPatch(name, newEnv())
			require.NoError(t, err)
			renderPatch(t, root, 2000)
		})
	}
	_, err := buildPatch("theremin", newEnv())
	assert.Error(t, err)
}

func TestDemoPatchIsDeterministicAndAudible(t *testing.T) {
	a, err := demoPatch(nil)
	require.NoError(t, err)
	b, err := demoPatch(nil)
	require.NoError(t, err)
	outA := renderPatch(t, a, 8000*6)
	outB := renderPatch(t, b, 8000*6)
	assert.Equal(t, outA, outB)
	// still playing after recording stops at four seconds
	assert.Greater(t, peak(outA[8000*5:]), 0.01)
}

func TestDemoMelodyReplaysAfterRecording(t *testing.T) {
	const sr = 8000
	clock := ml.PeriodicTriggerHz(ml.F64(4)).Cached()
	gate, _, err := demoMelodyLooper(clock, 16)
	require.NoError(t, err)
	env := synthEnv(gate)
	ctx := ml.NewCtx(sr)
	var rises int
	var envPeak float64
	var prev bool
	for i := 0; i < sr*8; i++ {
		g := gate.Sample(ctx)
		e := env.Sample(ctx)
		if i >= sr*4 {
			if g && !prev {
				rises++
			}
			envPeak = max(envPeak, e)
		}
		prev = g
		ctx.Advance()
	}
	// every replayed step opens its own gate and restarts the envelope
	assert.GreaterOrEqual(t, rises, 14)
	assert.Greater(t, envPeak, 0.5)
}

func TestKeysPatchRespondsToInput(t *testing.T) {
	env := newEnv()
	root, err := buildPatch("keys", env)
	require.NoError(t, err)
	env.input.SetMouse01(0.5, 0.2)
	silent := renderPatch(t, root, 400)
	assert.Equal(t, 0.0, peak(silent))

	root, err = buildPatch("keys", env)
	require.NoError(t, err)
	env.input.SetKey(ml.KeyQ, true)
	assert.Greater(t, peak(renderPatch(t, root, 4000)), 0.0)
}

func TestMidiPatchRespondsToNotes(t *testing.T) {
	env := newEnv()
	root, err := buildPatch("midi", env)
	require.NoError(t, err)
	env.midi.HandleMessage(midi.NoteOn(0, 57, 100))
	assert.Greater(t, peak(renderPatch(t, root, 2000)), 0.0)
}

func TestEveryNth(t *testing.T) {
	clock := ml.TriggerOf(ml.Const(true))
	trig := everyNth(clock, 3, 1)
	ctx := ml.NewCtx(1)
	var got []bool
	for range 7 {
		got = append(got, trig.Sample(ctx))
		ctx.Advance()
	}
	assert.Equal(t, []bool{false, true, false, false, true, false, false}, got)
}

func TestKeyRow(t *testing.T) {
	in := ml.NewInput()
	row := keyRow(in, ml.Note{Name: ml.NoteC, Octave: 4}, ml.KeyA, ml.KeyS, ml.KeyD)
	require.Len(t, row, 3)
	assert.Equal(t, []uint8{60, 61, 62}, []uint8{row[0].Note, row[1].Note, row[2].Note})
}

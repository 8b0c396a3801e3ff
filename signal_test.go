package mixloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroSignal(t *testing.T) {
	var s Sf64
	assert.True(t, s.IsZero())
	assert.Equal(t, 0.0, s.Sample(NewCtx(48000)))
	assert.Equal(t, "Signal(nil)", s.String())
}

func TestStatefulAdvancesOncePerTick(t *testing.T) {
	c := &counter{}
	shared := Sf64{Stateful[float64](c)}
	consumers := []Sf64{shared, shared.MulScalar(1), shared.Add(F64(0)), shared.Cached()}

	ctx := NewCtx(48000)
	for tick := 1; tick <= 5; tick++ {
		for _, s := range consumers {
			assert.Equal(t, float64(tick), s.Sample(ctx))
		}
		ctx.Advance()
	}
	assert.Equal(t, 5, c.calls)
}

func TestCachedIsIdempotent(t *testing.T) {
	s := Cached(Signal[float64]{node: &counter{}})
	again := Cached(s)
	assert.Same(t, s.node, again.node)

	k := Const(3.0)
	assert.Equal(t, k, Cached(k))
}

func TestFromFnRunsOncePerTick(t *testing.T) {
	calls := 0
	s := FromFn(func(ctx *Ctx) uint64 {
		calls++
		return ctx.SampleIndex * 2
	})
	ctx := NewCtx(100)
	ctx.Advance()
	ctx.Advance()
	assert.Equal(t, uint64(4), s.Sample(ctx))
	assert.Equal(t, uint64(4), s.Sample(ctx))
	assert.Equal(t, 1, calls)
}

func TestFromPureFnIsUncached(t *testing.T) {
	calls := 0
	s := FromPureFn(func(ctx *Ctx) int {
		calls++
		return calls
	})
	ctx := NewCtx(100)
	s.Sample(ctx)
	s.Sample(ctx)
	assert.Equal(t, 2, calls)
}

func TestMapZip(t *testing.T) {
	a := seq(1.0, 2.0, 3.0)
	b := seq(10.0, 20.0, 30.0)
	sum := Zip(a, b, func(x, y float64) float64 { return x + y })
	assert.Equal(t, []float64{11, 22, 33}, render(sum, 3, 1))
	neg := Map(a, func(x float64) bool { return x > 1 })
	assert.Equal(t, []bool{false, true, true}, render(neg, 3, 1))
}

func TestConstantFolding(t *testing.T) {
	v, ok := constValue(F64(2).Mul(F64(3)).AddScalar(1).Signal)
	require.True(t, ok)
	assert.Equal(t, 7.0, v)

	_, ok = constValue(Noise().Mul(F64(3)).Signal)
	assert.False(t, ok)
}

func TestSu8(t *testing.T) {
	s := AsSu8(seq[uint8](60, 61, 62))
	assert.Equal(t, []float64{60, 61, 62}, render(s.ToSf64().Signal, 3, 1))
	assert.Equal(t, []uint8{5, 5}, render(U8(5).Signal, 2, 1))
}

func buildDeterminismGraph() Sf64 {
	clock := PeriodicTriggerHz(F64(8))
	env := ADSRLinear01{Gate: clock.ToGateWithDurationS(0.05), ReleaseS: F64(0.02)}.Build()
	osc := Oscillator{Waveform: WaveformSaw, FreqHz: F64(220), ResetTrigger: clock}.Build()
	x := osc.Add(Noise().MulScalar(0.1)).
		Filter(LowPassMoogLadder(env.MulScalar(4000).AddScalar(100))).
		MulLazy(env)
	return x.Add(x.Filter(Reverb{}.Build()))
}

func TestDeterminism(t *testing.T) {
	const n = 4000
	a := render(buildDeterminismGraph().Signal, n, 8000)
	b := render(buildDeterminismGraph().Signal, n, 8000)
	require.Equal(t, a, b)

	nonSilent := false
	for _, v := range a {
		if v != 0 {
			nonSilent = true
			break
		}
	}
	assert.True(t, nonSilent)
}

func TestSecondsToTicks(t *testing.T) {
	tests := []struct {
		name    string
		sr      float64
		seconds float64
		want    uint64
	}{
		{"zero", 48000, 0, 0},
		{"negative", 48000, -1, 0},
		{"one second", 48000, 1, 48000},
		{"rounds", 10, 0.26, 3},
		{"no sample rate", 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewCtx(tt.sr).SecondsToTicks(tt.seconds))
		})
	}
}

func BenchmarkGraphTick(b *testing.B) {
	s := buildDeterminismGraph()
	ctx := NewCtx(48000)
	b.ResetTimer()
	for range b.N {
		s.Sample(ctx)
		ctx.Advance()
	}
}

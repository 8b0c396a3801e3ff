package mixloop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayLine(t *testing.T) {
	dl := newDelayLine(8)
	for i := 1; i <= 5; i++ {
		dl.write(float64(i))
	}
	assert.Equal(t, 5.0, dl.read(1))
	assert.Equal(t, 3.0, dl.read(3))
	assert.InDelta(t, 3.5, dl.read(2.5), 1e-12)
	// delays are clamped to what the buffer can hold
	assert.Equal(t, 5.0, dl.read(0))
}

func TestEcho(t *testing.T) {
	out := AsSf64(seq(1.0)).Filter(Echo{TimeS: F64(0.5), Scale: F64(0.5)}.Build())
	got := render(out.Signal, 13, 8)
	want := []float64{1, 0, 0, 0, 0.5, 0, 0, 0, 0.25, 0, 0, 0, 0.125}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "tick %d", i)
	}
}

func TestEchoFeedbackIsLimited(t *testing.T) {
	out := Noise().Filter(Echo{TimeS: F64(0.01), Scale: F64(5)}.Build())
	for i, v := range render(out.Signal, 48000, 8000) {
		require.False(t, math.IsInf(v, 0) || math.IsNaN(v), "tick %d", i)
	}
}

func TestReverb(t *testing.T) {
	silent := F64(0).Filter(Reverb{}.Build())
	for _, v := range render(silent.Signal, 1000, testRate) {
		require.Equal(t, 0.0, v)
	}

	impulse := AsSf64(seq(1.0))
	a := render(impulse.Filter(Reverb{RoomSize: F64(0.8)}.Build()).Signal, testRate, testRate)
	b := render(impulse.Filter(Reverb{RoomSize: F64(0.8)}.Build()).Signal, testRate, testRate)
	assert.Equal(t, a, b)
	assert.Equal(t, 0.0, a[0])
	tail := rms(a[testRate/10:])
	assert.Greater(t, tail, 0.0)
	for _, v := range a {
		require.Less(t, math.Abs(v), 1.5)
	}
}

func TestCompress(t *testing.T) {
	tests := []struct {
		name string
		c    Compress
		in   float64
		want float64
	}{
		{"below threshold", Compress{}, 0.5, 0.5},
		{"above threshold", Compress{}, 3, 1.2},
		{"negative", Compress{}, -3, -1.2},
		{"makeup gain", Compress{Scale: F64(2)}, 3, 2.4},
		{"hard limit", Compress{Threshold: F64(0.5), Ratio: F64(0)}, 0.9, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := F64(tt.in).Filter(tt.c.Build())
			assert.InDelta(t, tt.want, out.Sample(NewCtx(testRate)), 1e-12)
		})
	}
}

func TestSaturate(t *testing.T) {
	s := Saturate{Threshold: F64(2)}.Build()
	ctx := NewCtx(testRate)
	assert.InDelta(t, 2*math.Tanh(0.5), s.Run(1, ctx), 1e-12)
	assert.LessOrEqual(t, s.Run(100, ctx), 2.0)
	assert.InDelta(t, math.Tanh(1), Saturate{}.Build().Run(1, ctx), 1e-12)
}

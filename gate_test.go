package mixloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRisingEdge(t *testing.T) {
	tests := []struct {
		name string
		gate string
		want string
	}{
		{"closed", "......", "......"},
		{"starts open", "###...", "......"},
		{"single press", "..###.", "..#..."},
		{"repeated presses", ".#.#.##", ".#.#.#."},
		{"open after first tick", ".#####", ".#...."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderPattern(gatePattern(tt.gate).ToTriggerRisingEdge().Signal, len(tt.gate))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRisingEdgeProperty(t *testing.T) {
	rng := newXorshift32(7)
	values := make([]bool, 500)
	for i := range values {
		values[i] = rng.next()%3 == 0
	}
	trig := render(Gate{seq(values...)}.ToTriggerRisingEdge().Signal, len(values), 1000)
	for i := range values {
		want := i > 0 && values[i] && !values[i-1]
		assert.Equal(t, want, trig[i], "tick %d", i)
	}
}

func TestGateWithDuration(t *testing.T) {
	tests := []struct {
		name    string
		trigger string
		seconds float64
		want    string
	}{
		{"three ticks", ".#.......", 0.003, ".###....."},
		{"restart while open", ".#.#.....", 0.003, ".#####..."},
		{"zero duration lasts one tick", ".#..#..", 0, ".#..#.."},
		{"adjacent triggers", "##.......", 0.002, "###......"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := triggerPattern(tt.trigger).ToGateWithDurationS(tt.seconds)
			assert.Equal(t, tt.want, renderPattern(g.Signal, len(tt.trigger)))
		})
	}
}

func TestGateLogic(t *testing.T) {
	a := gatePattern("##..")
	b := gatePattern("#.#.")
	assert.Equal(t, "#...", renderPattern(a.And(b).Signal, 4))
	assert.Equal(t, "###.", renderPattern(a.Or(b).Signal, 4))
	assert.Equal(t, "..##", renderPattern(a.Not().Signal, 4))
	assert.Equal(t, []float64{1, 1, 0, 0}, render(a.ToSf64().Signal, 4, 1))
	assert.Equal(t, "....", renderPattern(Never().Signal, 4))
	assert.Equal(t, "####", renderPattern(GateConst(true).Signal, 4))
}

func TestAnySamplesEveryInput(t *testing.T) {
	first := triggerPattern("#...")
	c := &counter{}
	second := Sf64{Stateful[float64](c)}.ToGate(3)
	fired := Any(first, Trigger(second))
	assert.Equal(t, "#.##", renderPattern(fired.Signal, 4))
	assert.Equal(t, 4, c.calls)
}

func TestSf64ToGate(t *testing.T) {
	g := AsSf64(seq(0.0, 0.5, 1.0, 0.49)).ToGate(0.5)
	assert.Equal(t, ".##.", renderPattern(g.Signal, 4))
}

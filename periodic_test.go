package mixloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodicGate(t *testing.T) {
	tests := []struct {
		name string
		gate Gate
		want string
	}{
		{"default duty", PeriodicGateHz(F64(2)), "##..##..##.."},
		{"quarter duty", PeriodicGate{FreqHz: F64(2), DutyCycle01: F64(0.25)}.Build(), "#...#...#..."},
		{"half offset", PeriodicGate{FreqHz: F64(2), Offset01: 0.5}.Build(), "..##..##..##"},
		{"period in seconds", PeriodicGateS(F64(0.5)), "##..##..##.."},
		{"zero frequency holds phase", PeriodicGateHz(F64(0)), "############"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderPatternAt(tt.gate.Signal, 12, 8))
		})
	}
}

func TestPeriodicTrigger(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		want    string
	}{
		{"hz", PeriodicTriggerHz(F64(2)), "...#...#...#"},
		{"seconds", PeriodicTriggerS(F64(0.5)), "...#...#...#"},
		{"every tick", PeriodicTriggerHz(F64(8)), "############"},
		{"stopped", PeriodicTriggerHz(F64(0)), "............"},
		{"zero period", PeriodicTriggerS(F64(0)), "............"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderPatternAt(tt.trigger.Signal, 12, 8))
		})
	}
}

package mixloop

import "math"

// PeriodicGate opens for the first DutyCycle01 of every period.
type PeriodicGate struct {
	FreqHz      Sf64
	DutyCycle01 Sf64 // default 0.5
	Offset01    float64
}

type periodicGate struct {
	freq  Sf64
	duty  Sf64
	phase float64
}

func (p *periodicGate) Sample(ctx *Ctx) bool {
	f := p.freq.Sample(ctx)
	duty := p.duty.Sample(ctx)
	open := p.phase < duty
	if ctx.SampleRate > 0 && f > 0 {
		p.phase = math.Mod(p.phase+f/ctx.SampleRate, 1.0)
	}
	return open
}

func (c PeriodicGate) Build() Gate {
	phase := c.Offset01
	if phase < 0 || phase >= 1 {
		phase = 0
	}
	return Gate{Stateful[bool](&periodicGate{
		freq:  c.FreqHz,
		duty:  c.DutyCycle01.or(0.5),
		phase: phase,
	})}
}

func PeriodicGateHz(freqHz Sf64) Gate {
	return PeriodicGate{FreqHz: freqHz}.Build()
}

// PeriodicGateS is PeriodicGateHz with the period given in seconds.
func PeriodicGateS(periodS Sf64) Gate {
	return PeriodicGateHz(F64(1).Div(periodS))
}

type impulse struct {
	freq  Sf64
	phase float64
}

func (p *impulse) Sample(ctx *Ctx) bool {
	f := p.freq.Sample(ctx)
	if ctx.SampleRate <= 0 || f <= 0 {
		return false
	}
	p.phase += f / ctx.SampleRate
	if p.phase >= 1 {
		p.phase = math.Mod(p.phase, 1.0)
		return true
	}
	return false
}

// PeriodicTriggerHz fires once per period. The first pulse arrives one
// period after the start.
func PeriodicTriggerHz(freqHz Sf64) Trigger {
	return Trigger{Stateful[bool](&impulse{freq: freqHz})}
}

func PeriodicTriggerS(periodS Sf64) Trigger {
	return PeriodicTriggerHz(F64(1).Div(periodS))
}

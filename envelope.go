package mixloop

type adsrStage int

const (
	stageIdle adsrStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// ADSRLinear01 is a linear attack/decay/sustain/release envelope in 0..1
// driven by a gate. Times are in seconds and may be modulated.
//
// Defaults: attack 0, decay 0, sustain 1, release 0.
type ADSRLinear01 struct {
	Gate      Gate
	AttackS   Sf64
	DecayS    Sf64
	Sustain01 Sf64
	ReleaseS  Sf64
}

type adsr struct {
	gate     Gate
	attack   Sf64
	decay    Sf64
	sustain  Sf64
	release  Sf64
	stage    adsrStage
	value    float64
	prevGate bool

	// releaseStep is fixed when the release starts so the fall is linear
	// from wherever the envelope was.
	releaseStep float64
}

func (e *adsr) Sample(ctx *Ctx) float64 {
	open := e.gate.Sample(ctx)
	attackS := e.attack.Sample(ctx)
	decayS := e.decay.Sample(ctx)
	sustain := clamp(e.sustain.Sample(ctx), 0, 1)
	releaseS := e.release.Sample(ctx)

	if open && !e.prevGate {
		e.stage = stageAttack
	} else if !open && e.prevGate {
		e.stage = stageRelease
		e.releaseStep = perTick(e.value, releaseS, ctx.SampleRate)
	}
	e.prevGate = open

	switch e.stage {
	case stageAttack:
		e.value += perTick(1, attackS, ctx.SampleRate)
		if e.value >= 1 {
			e.value = 1
			e.stage = stageDecay
		}
	case stageDecay:
		e.value -= perTick(1-sustain, decayS, ctx.SampleRate)
		if e.value <= sustain {
			e.value = sustain
			e.stage = stageSustain
		}
	case stageSustain:
		e.value = sustain
	case stageRelease:
		e.value -= e.releaseStep
		if e.value <= 0 {
			e.value = 0
			e.stage = stageIdle
		}
	}
	return e.value
}

// perTick is the step needed to cover distance in seconds; a zero or
// negative time covers it in one tick.
func perTick(distance, seconds, sampleRate float64) float64 {
	ticks := seconds * sampleRate
	if ticks <= 1 {
		return max(distance, 0)
	}
	return max(distance, 0) / ticks
}

func (c ADSRLinear01) Build() Sf64 {
	return Sf64{Stateful[float64](&adsr{
		gate:    c.Gate,
		attack:  c.AttackS.or(0),
		decay:   c.DecayS.or(0),
		sustain: c.Sustain01.or(1),
		release: c.ReleaseS.or(0),
	})}
}

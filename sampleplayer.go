package mixloop

// Tape is a mono buffer of samples recorded at SampleRate.
type Tape struct {
	SampleRate float64
	Samples    []Smp
}

func (t *Tape) Len() int { return len(t.Samples) }

// DurationS returns the playing time of the tape.
func (t *Tape) DurationS() float64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return float64(len(t.Samples)) / t.SampleRate
}

type samplePlayer struct {
	tape    *Tape
	trigger Trigger
	pos     int
	playing bool
}

func (p *samplePlayer) Sample(ctx *Ctx) float64 {
	if p.trigger.Sample(ctx) {
		p.pos = 0
		p.playing = true
	}
	if !p.playing || p.pos >= len(p.tape.Samples) {
		p.playing = false
		return 0
	}
	v := p.tape.Samples[p.pos]
	p.pos++
	return v
}

// SamplePlayer plays the tape from its start on every trigger, restarting
// if it is still playing, and is silent otherwise. The tape must already
// be at the engine sample rate.
func SamplePlayer(tape *Tape, trigger Trigger) Sf64 {
	if tape == nil {
		tape = &Tape{}
	}
	return Sf64{Stateful[float64](&samplePlayer{tape: tape, trigger: trigger})}
}

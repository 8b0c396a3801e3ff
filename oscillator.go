package mixloop

import (
	"fmt"
	"math"
)

type Waveform int

const (
	WaveformSine Waveform = iota
	WaveformTriangle
	WaveformSaw
	WaveformPulse
	WaveformNoise
)

func (w Waveform) String() string {
	switch w {
	case WaveformSine:
		return "sine"
	case WaveformTriangle:
		return "triangle"
	case WaveformSaw:
		return "saw"
	case WaveformPulse:
		return "pulse"
	case WaveformNoise:
		return "noise"
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// ParseWaveform resolves a waveform by name.
func ParseWaveform(name string) (Waveform, error) {
	for w := WaveformSine; w <= WaveformNoise; w++ {
		if w.String() == name {
			return w, nil
		}
	}
	return 0, fmt.Errorf("invalid waveform: %s", name)
}

// Oscillator describes a periodic tone generator. All outputs are
// bipolar in [-1,1]; saw and triangle are read from band-limited
// wavetables.
type Oscillator struct {
	Waveform     Waveform
	FreqHz       Sf64
	PulseWidth01 Sf64 // pulse only, default 0.5

	// ResetTrigger snaps the phase back to ResetOffset01 when it fires.
	ResetTrigger  Trigger
	ResetOffset01 float64
}

type oscillator struct {
	waveform Waveform
	freq     Sf64
	pw       Sf64
	reset    Trigger
	offset   float64
	table    *Wavetable
	rng      *xorshift32
	phase    float64
}

func (o *oscillator) Sample(ctx *Ctx) float64 {
	f := o.freq.Sample(ctx)
	if o.reset.Sample(ctx) {
		o.phase = o.offset
	}
	var out float64
	switch o.waveform {
	case WaveformSine:
		out = math.Sin(o.phase * 2 * math.Pi)
	case WaveformTriangle, WaveformSaw:
		out = o.table.SampleMip(o.phase, f, ctx.SampleRate)
	case WaveformPulse:
		out = calcPulse(o.phase, clamp(o.pw.Sample(ctx), 0, 1))
	case WaveformNoise:
		out = o.rng.bipolar()
	}
	if ctx.SampleRate > 0 {
		o.phase = math.Mod(o.phase+f/ctx.SampleRate, 1.0)
		if o.phase < 0 {
			o.phase += 1.0
		}
	}
	return out
}

func (c Oscillator) Build() Sf64 {
	offset := c.ResetOffset01
	if offset < 0 || offset >= 1 {
		offset = math.Mod(offset, 1.0)
		if offset < 0 {
			offset += 1.0
		}
	}
	o := &oscillator{
		waveform: c.Waveform,
		freq:     c.FreqHz,
		pw:       c.PulseWidth01.or(0.5),
		reset:    c.ResetTrigger,
		offset:   offset,
		phase:    offset,
	}
	switch c.Waveform {
	case WaveformSaw:
		o.table = sawTable()
	case WaveformTriangle:
		o.table = triangleTable()
	case WaveformNoise:
		o.rng = newXorshift32(DefaultNoiseSeed)
	}
	return Sf64{Stateful[float64](o)}
}

// OscillatorHz is the shorthand for an oscillator with default settings.
func OscillatorHz(w Waveform, freqHz Sf64) Sf64 {
	return Oscillator{Waveform: w, FreqHz: freqHz}.Build()
}

// Unison stacks detuned copies of one oscillator and averages them.
type Unison struct {
	Waveform     Waveform
	FreqHz       Sf64
	PulseWidth01 Sf64
	ResetTrigger Trigger
	Voices       int
	DetuneCents  float64
}

func (c Unison) Build() Sf64 {
	ratios := computeDetuneRatios(max(c.Voices, 1), c.DetuneCents)
	freq := c.FreqHz.Cached()
	voices := make([]Sf64, len(ratios))
	for i, r := range ratios {
		voices[i] = Oscillator{
			Waveform:     c.Waveform,
			FreqHz:       freq.MulScalar(r),
			PulseWidth01: c.PulseWidth01,
			ResetTrigger: c.ResetTrigger,
			// spread the start phases so the voices do not sum coherently
			ResetOffset01: float64(i) / float64(len(ratios)),
		}.Build()
	}
	return Mean(voices...)
}

// computeDetuneRatios builds symmetric detune ratios around 1.0 using a spread in cents.
func computeDetuneRatios(voices int, cents float64) []float64 {
	if voices <= 1 {
		return []float64{1.0}
	}
	spread := max(cents, 0)
	step := (2 * spread) / float64(voices-1)
	ratios := make([]float64, voices)
	for i := range voices {
		c := -spread + float64(i)*step
		ratios[i] = math.Pow(2.0, c/1200.0)
	}
	return ratios
}

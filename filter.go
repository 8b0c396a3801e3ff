package mixloop

import "math"

// Filter transforms one input sample per tick. A Filter holds state and
// must be attached to exactly one input with Sf64.Filter.
type Filter interface {
	Run(x float64, ctx *Ctx) float64
}

type FilterFunc func(x float64, ctx *Ctx) float64

func (f FilterFunc) Run(x float64, ctx *Ctx) float64 { return f(x, ctx) }

type filtered struct {
	input  Sf64
	filter Filter
}

func (f *filtered) Sample(ctx *Ctx) float64 {
	return f.filter.Run(f.input.Sample(ctx), ctx)
}

// Filter runs s through f. The result is a stateful node and advances
// once per tick regardless of how many consumers share it.
func (s Sf64) Filter(f Filter) Sf64 {
	return Sf64{Stateful[float64](&filtered{input: s, filter: f})}
}

// cutoffToAlpha converts cutoff Hz to one-pole smoothing coefficient.
// Higher cutoff => smaller alpha (less smoothing).
func cutoffToAlpha(cutoff, sr float64) float64 {
	if sr <= 0 {
		return 1
	}
	alpha := math.Exp(-2 * math.Pi * max(cutoff, 0) / sr)
	return clamp(alpha, 0, 1)
}

type onePole struct {
	cutoff      Sf64
	highPass    bool
	lp          float64
	initialized bool
}

func (f *onePole) Run(x float64, ctx *Ctx) float64 {
	alpha := cutoffToAlpha(f.cutoff.Sample(ctx), ctx.SampleRate)
	if !f.initialized {
		f.lp = x
		f.initialized = true
	} else {
		f.lp = alpha*f.lp + (1-alpha)*x
	}
	if f.highPass {
		return x - f.lp
	}
	return f.lp
}

// LowPassOnePole is a first-order lowpass with cutoff in Hz.
func LowPassOnePole(cutoffHz Sf64) Filter {
	return &onePole{cutoff: cutoffHz}
}

func HighPassOnePole(cutoffHz Sf64) Filter {
	return &onePole{cutoff: cutoffHz, highPass: true}
}

type biquadKind int

const (
	biquadLowPass biquadKind = iota
	biquadHighPass
)

// biquadCoefficients follows the RBJ cookbook; q = 1/sqrt(2) gives the
// Butterworth response.
func biquadCoefficients(kind biquadKind, cutoffHz, q, sr float64) (b0, b1, b2, a1, a2 float64) {
	if sr <= 0 {
		return 1, 0, 0, 0, 0
	}
	if q < 1e-6 {
		q = 1e-6
	}
	ratio := clamp(cutoffHz/sr, 1e-6, 0.499)
	w0 := 2 * math.Pi * ratio
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	var bb0, bb1, bb2 float64
	switch kind {
	case biquadLowPass:
		bb0 = (1 - cosw0) / 2
		bb1 = 1 - cosw0
		bb2 = (1 - cosw0) / 2
	case biquadHighPass:
		bb0 = (1 + cosw0) / 2
		bb1 = -(1 + cosw0)
		bb2 = (1 + cosw0) / 2
	}
	aa0 := 1 + alpha
	aa1 := -2 * cosw0
	aa2 := 1 - alpha

	return bb0 / aa0, bb1 / aa0, bb2 / aa0, aa1 / aa0, aa2 / aa0
}

type biquad struct {
	kind   biquadKind
	cutoff Sf64
	q      float64

	// coefficients are only recomputed when the cutoff moves
	lastCutoff float64
	lastRate   float64
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2, y1, y2 float64
}

func (f *biquad) Run(x float64, ctx *Ctx) float64 {
	c := f.cutoff.Sample(ctx)
	if c != f.lastCutoff || ctx.SampleRate != f.lastRate {
		f.b0, f.b1, f.b2, f.a1, f.a2 = biquadCoefficients(f.kind, c, f.q, ctx.SampleRate)
		f.lastCutoff = c
		f.lastRate = ctx.SampleRate
	}
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2 = f.x1
	f.x1 = x
	f.y2 = f.y1
	f.y1 = y
	return y
}

func newButterworth(kind biquadKind, cutoffHz Sf64) *biquad {
	return &biquad{kind: kind, cutoff: cutoffHz, q: math.Sqrt2 / 2, lastCutoff: math.NaN()}
}

// LowPassButterworth is a second-order Butterworth lowpass.
func LowPassButterworth(cutoffHz Sf64) Filter {
	return newButterworth(biquadLowPass, cutoffHz)
}

// HighPassButterworth is a second-order Butterworth highpass.
func HighPassButterworth(cutoffHz Sf64) Filter {
	return newButterworth(biquadHighPass, cutoffHz)
}

// MoogLadder is a four-pole resonant lowpass. Resonance runs from 0
// (none) to about 4 (self-oscillation).
type MoogLadder struct {
	CutoffHz  Sf64
	Resonance Sf64
}

type moogLadder struct {
	cutoff    Sf64
	resonance Sf64
	in        [4]float64
	out       [4]float64
}

func (f *moogLadder) Run(x float64, ctx *Ctx) float64 {
	fc := 0.0
	if ctx.SampleRate > 0 {
		fc = clamp(f.cutoff.Sample(ctx)/(ctx.SampleRate/2), 0, 0.9)
	}
	res := clamp(f.resonance.Sample(ctx), 0, 4)
	k := fc * 1.16
	fb := res * (1.0 - 0.15*k*k)
	v := x - f.out[3]*fb
	v *= 0.35013 * (k * k) * (k * k)
	for i := range 4 {
		y := v + 0.3*f.in[i] + (1-k)*f.out[i]
		f.in[i] = v
		// keep the ladder bounded when resonance is driven hard
		f.out[i] = clamp(y, -4, 4)
		v = f.out[i]
	}
	return f.out[3]
}

func (c MoogLadder) Build() Filter {
	return &moogLadder{cutoff: c.CutoffHz, resonance: c.Resonance.or(0)}
}

func LowPassMoogLadder(cutoffHz Sf64) Filter {
	return MoogLadder{CutoffHz: cutoffHz}.Build()
}

// StateVariable is a TPT state variable filter. Blend sweeps from
// lowpass (-1) through bandpass (0) to highpass (+1).
type StateVariable struct {
	CutoffHz  Sf64
	Resonance Sf64 // Q, default 0.707
	Blend     Sf64 // default -1
}

type svf struct {
	cutoff    Sf64
	resonance Sf64
	blend     Sf64
	ic1eq     float64
	ic2eq     float64
}

// svfMix maps a blend in [-1,1] to low/band/high amounts
// blend < 0 favours lowpass, > 0 favours highpass, 0 gives bandpass.
func svfMix(blend Smp) (low, band, high Smp) {
	blend = clamp(blend, -1, 1)
	band = math.Sqrt(math.Max(0, 1-blend*blend))
	if blend < 0 {
		low = -blend
	} else {
		high = blend
	}
	return
}

func (f *svf) Run(x float64, ctx *Ctx) float64 {
	res := max(f.resonance.Sample(ctx), 1e-6)
	k := 1 / res
	g := 0.0
	if ctx.SampleRate > 0 {
		g = math.Tan(math.Pi * clamp(f.cutoff.Sample(ctx)/ctx.SampleRate, 0, 0.499))
	}
	a1 := 1 / (1 + g*(g+k))
	a2 := g * a1
	a3 := g * a2
	v3 := x - f.ic2eq
	v1 := a1*f.ic1eq + a2*v3
	v2 := f.ic2eq + a2*f.ic1eq + a3*v3
	f.ic1eq = 2*v1 - f.ic1eq
	f.ic2eq = 2*v2 - f.ic2eq
	lp, bp := v2, v1
	hp := x - k*bp - lp
	low, band, high := svfMix(f.blend.Sample(ctx))
	return low*lp + band*bp + high*hp
}

func (c StateVariable) Build() Filter {
	return &svf{
		cutoff:    c.CutoffHz,
		resonance: c.Resonance.or(math.Sqrt2 / 2),
		blend:     c.Blend.or(-1),
	}
}

// DCBlock is a one-pole highpass removing DC offset. alpha close to 1
// (0.995 is typical) gives a very low cutoff.
func DCBlock(alpha float64) Filter {
	var prevIn, prevOut float64
	return FilterFunc(func(x float64, _ *Ctx) float64 {
		y := x - prevIn + alpha*prevOut
		prevIn = x
		prevOut = y
		return y
	})
}

// SampleAndHold latches its input whenever trigger fires and holds it
// until the next firing. It outputs 0 until the first trigger.
func SampleAndHold(trigger Trigger) Filter {
	var held float64
	return FilterFunc(func(x float64, ctx *Ctx) float64 {
		if trigger.Sample(ctx) {
			held = x
		}
		return held
	})
}

// DownSample holds each input sample for factor ticks, reducing the
// effective sample rate.
func DownSample(factor Sf64) Filter {
	var held, count float64
	first := true
	return FilterFunc(func(x float64, ctx *Ctx) float64 {
		n := max(factor.Sample(ctx), 1)
		count++
		if first || count >= n {
			held = x
			count = 0
			first = false
		}
		return held
	})
}

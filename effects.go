package mixloop

import "math"

// delayLine is a circular buffer read at a fractional delay.
type delayLine struct {
	buf      []float64
	writeIdx int
}

func newDelayLine(size int) *delayLine {
	return &delayLine{buf: make([]float64, max(size, 4))}
}

// read returns the sample written d ticks ago, interpolating linearly.
func (dl *delayLine) read(d float64) float64 {
	size := len(dl.buf)
	d = clamp(d, 1, float64(size-2))
	di := int(math.Floor(d))
	frac := d - float64(di)
	r0 := (dl.writeIdx - di + size) % size
	r1 := (r0 - 1 + size) % size
	return dl.buf[r0] + frac*(dl.buf[r1]-dl.buf[r0])
}

func (dl *delayLine) write(x float64) {
	dl.buf[dl.writeIdx] = x
	dl.writeIdx++
	if dl.writeIdx == len(dl.buf) {
		dl.writeIdx = 0
	}
}

// Echo is a feedback delay: y = x + Scale * y(t - TimeS).
type Echo struct {
	TimeS    Sf64    // default 0.25
	Scale    Sf64    // feedback amount, default 0.5
	MaxTimeS float64 // default 4
}

type echo struct {
	time    Sf64
	scale   Sf64
	maxTime float64
	line    *delayLine
}

func (e *echo) Run(x float64, ctx *Ctx) float64 {
	if e.line == nil {
		// sized once, on the first tick, when the sample rate is known
		e.line = newDelayLine(int(e.maxTime*ctx.SampleRate) + 2)
	}
	d := e.time.Sample(ctx) * ctx.SampleRate
	// feedback above unity would grow without bound
	fb := clamp(e.scale.Sample(ctx), -0.999, 0.999)
	y := x + fb*e.line.read(d)
	e.line.write(y)
	return y
}

func (c Echo) Build() Filter {
	maxTime := c.MaxTimeS
	if maxTime <= 0 {
		maxTime = 4
	}
	return &echo{time: c.TimeS.or(0.25), scale: c.Scale.or(0.5), maxTime: maxTime}
}

// Reverb is a Schroeder/Moorer style network of eight damped feedback
// combs followed by four series allpasses.
type Reverb struct {
	RoomSize Sf64 // 0..1, default 0.5
	Damping  Sf64 // 0..1, default 0.5
	Wet      float64
}

// comb and allpass lengths in ticks at 44.1kHz
var (
	reverbCombTunings    = [8]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	reverbAllpassTunings = [4]int{556, 441, 341, 225}
)

type reverbComb struct {
	buf    []float64
	idx    int
	store  float64
	length int
}

func (c *reverbComb) process(x, feedback, damp float64) float64 {
	out := c.buf[c.idx]
	c.store = out*(1-damp) + c.store*damp
	c.buf[c.idx] = x + c.store*feedback
	c.idx++
	if c.idx == c.length {
		c.idx = 0
	}
	return out
}

type reverbAllpass struct {
	buf    []float64
	idx    int
	length int
}

func (a *reverbAllpass) process(x float64) float64 {
	bufout := a.buf[a.idx]
	out := bufout - x
	a.buf[a.idx] = x + bufout*0.5
	a.idx++
	if a.idx == a.length {
		a.idx = 0
	}
	return out
}

type reverb struct {
	roomSize  Sf64
	damping   Sf64
	wet       float64
	combs     []reverbComb
	allpasses []reverbAllpass
}

func (r *reverb) init(sr float64) {
	scale := sr / 44100
	r.combs = make([]reverbComb, len(reverbCombTunings))
	for i, n := range reverbCombTunings {
		l := max(int(float64(n)*scale), 1)
		r.combs[i] = reverbComb{buf: make([]float64, l), length: l}
	}
	r.allpasses = make([]reverbAllpass, len(reverbAllpassTunings))
	for i, n := range reverbAllpassTunings {
		l := max(int(float64(n)*scale), 1)
		r.allpasses[i] = reverbAllpass{buf: make([]float64, l), length: l}
	}
}

func (r *reverb) Run(x float64, ctx *Ctx) float64 {
	if r.combs == nil {
		r.init(ctx.SampleRate)
	}
	feedback := 0.7 + 0.28*clamp(r.roomSize.Sample(ctx), 0, 1)
	damp := 0.4 * clamp(r.damping.Sample(ctx), 0, 1)
	in := x * 0.015
	var acc float64
	for i := range r.combs {
		acc += r.combs[i].process(in, feedback, damp)
	}
	for i := range r.allpasses {
		acc = r.allpasses[i].process(acc)
	}
	return acc * r.wet
}

// Build returns a filter producing the wet signal only; mix it with the
// dry input yourself.
func (c Reverb) Build() Filter {
	wet := c.Wet
	if wet == 0 {
		wet = 3
	}
	return &reverb{roomSize: c.RoomSize.or(0.5), damping: c.Damping.or(0.5), wet: wet}
}

// Compress reduces the level of the part of the signal above Threshold
// by Ratio, then applies Scale as makeup gain.
type Compress struct {
	Threshold Sf64 // default 1
	Ratio     Sf64 // 0 flattens everything above threshold, 1 is a no-op; default 0.1
	Scale     Sf64 // default 1
}

func (c Compress) Build() Filter {
	threshold := c.Threshold.or(1)
	ratio := c.Ratio.or(0.1)
	scale := c.Scale.or(1)
	return FilterFunc(func(x float64, ctx *Ctx) float64 {
		t := math.Abs(threshold.Sample(ctx))
		r := ratio.Sample(ctx)
		s := scale.Sample(ctx)
		a := math.Abs(x)
		if a > t {
			a = t + (a-t)*r
		}
		return math.Copysign(a, x) * s
	})
}

// Saturate soft-clips with tanh: Threshold * tanh(x * Scale / Threshold).
type Saturate struct {
	Scale     Sf64 // default 1
	Threshold Sf64 // default 1
}

func (c Saturate) Build() Filter {
	scale := c.Scale.or(1)
	threshold := c.Threshold.or(1)
	return FilterFunc(func(x float64, ctx *Ctx) float64 {
		t := math.Max(math.Abs(threshold.Sample(ctx)), 1e-6)
		return t * math.Tanh(x*scale.Sample(ctx)/t)
	})
}

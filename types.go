package mixloop

// Smp is the sample type flowing through float signals.
type Smp = float64

type SmpUnOp func(x Smp) Smp

type SmpBinOp func(x, y Smp) Smp

// Ctx is the tick context handed to every node evaluation.
//
// SampleIndex starts at 0 and increases by exactly one per tick. A Ctx is
// owned by the render loop and must not be retained by nodes.
type Ctx struct {
	SampleIndex uint64
	SampleRate  float64
}

// NewCtx returns the context of the first tick at the given sample rate.
func NewCtx(sampleRate float64) *Ctx {
	return &Ctx{SampleRate: sampleRate}
}

// Advance moves the context to the next tick.
func (ctx *Ctx) Advance() {
	ctx.SampleIndex++
}

// SecondsToTicks converts a duration to a whole number of ticks at the
// context's sample rate.
func (ctx *Ctx) SecondsToTicks(seconds float64) uint64 {
	if seconds <= 0 || ctx.SampleRate <= 0 {
		return 0
	}
	return uint64(seconds*ctx.SampleRate + 0.5)
}

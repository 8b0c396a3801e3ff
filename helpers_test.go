package mixloop

import "strings"

// seq plays back values one per tick and then holds the zero value.
func seq[T any](values ...T) Signal[T] {
	return FromPureFn(func(ctx *Ctx) T {
		if ctx.SampleIndex < uint64(len(values)) {
			return values[ctx.SampleIndex]
		}
		var zero T
		return zero
	})
}

// pattern turns a string like "..##." into booleans, '#' meaning true.
func pattern(p string) []bool {
	out := make([]bool, len(p))
	for i, c := range p {
		out[i] = c == '#'
	}
	return out
}

func gatePattern(p string) Gate { return Gate{seq(pattern(p)...)} }

func triggerPattern(p string) Trigger { return Trigger{seq(pattern(p)...)} }

func render[T any](s Signal[T], n int, sampleRate float64) []T {
	ctx := NewCtx(sampleRate)
	out := make([]T, n)
	for i := range out {
		out[i] = s.Sample(ctx)
		ctx.Advance()
	}
	return out
}

func renderPattern(s Signal[bool], n int) string {
	return renderPatternAt(s, n, 1000)
}

func renderPatternAt(s Signal[bool], n int, sampleRate float64) string {
	var b strings.Builder
	for _, v := range render(s, n, sampleRate) {
		if v {
			b.WriteByte('#')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// counter is a stateful node counting its own evaluations.
type counter struct {
	calls int
}

func (c *counter) Sample(*Ctx) float64 {
	c.calls++
	return float64(c.calls)
}

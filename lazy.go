package mixloop

// ForceLazy returns s with other pinned to the tick: other is sampled
// (and so advanced and cached) before s on every tick, even when nothing
// else on the path taken this tick asks for its value.
func (s Sf64) ForceLazy(other Sf64) Sf64 {
	forced := other.Cached()
	return Sf64{FromPureFn(func(ctx *Ctx) float64 {
		forced.Sample(ctx)
		return s.Sample(ctx)
	})}
}

// MulLazy multiplies s by the cached multiplier by. The multiplier is
// sampled first; while it is exactly zero s is not evaluated at all, so an
// expensive voice behind a closed envelope costs nothing. Nodes inside s
// that must keep running regardless belong in ForceLazy.
func (s Sf64) MulLazy(by Sf64) Sf64 {
	factor := by.Cached()
	inner := s.Cached()
	return Sf64{FromPureFn(func(ctx *Ctx) float64 {
		k := factor.Sample(ctx)
		if k == 0 {
			return 0
		}
		return inner.Sample(ctx) * k
	})}
}

// ForceGate pins a gate the same way ForceLazy pins a float signal.
func (s Sf64) ForceGate(g Gate) Sf64 {
	forced := g.Cached()
	return Sf64{FromPureFn(func(ctx *Ctx) float64 {
		forced.Sample(ctx)
		return s.Sample(ctx)
	})}
}

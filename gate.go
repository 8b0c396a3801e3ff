package mixloop

// Gate is a sustained on/off condition, such as a key being held.
type Gate struct {
	Signal[bool]
}

// Trigger is true only on the ticks where a discrete event fires.
// Adjacent true ticks are separate events.
type Trigger struct {
	Signal[bool]
}

func GateOf(s Signal[bool]) Gate { return Gate{s} }

func TriggerOf(s Signal[bool]) Trigger { return Trigger{s} }

// GateConst returns a gate stuck open or closed.
func GateConst(open bool) Gate { return Gate{Const(open)} }

// Never returns a trigger that never fires.
func Never() Trigger { return Trigger{Const(false)} }

func (g Gate) Cached() Gate { return Gate{Cached(g.Signal)} }

func (t Trigger) Cached() Trigger { return Trigger{Cached(t.Signal)} }

func (g Gate) Not() Gate {
	return Gate{Map(g.Signal, func(v bool) bool { return !v })}
}

func (g Gate) And(other Gate) Gate {
	return Gate{Zip(g.Signal, other.Signal, func(a, b bool) bool { return a && b })}
}

func (g Gate) Or(other Gate) Gate {
	return Gate{Zip(g.Signal, other.Signal, func(a, b bool) bool { return a || b })}
}

// ToSf64 yields 1 while the gate is open and 0 otherwise.
func (g Gate) ToSf64() Sf64 {
	return Sf64{Map(g.Signal, boolToF64)}
}

func (t Trigger) ToSf64() Sf64 {
	return Sf64{Map(t.Signal, boolToF64)}
}

// ToGate treats the trigger as a gate that is open on trigger ticks only.
func (t Trigger) ToGate() Gate { return Gate{t.Signal} }

// Any fires whenever at least one of the triggers fires.
func Any(triggers ...Trigger) Trigger {
	inputs := append([]Trigger(nil), triggers...)
	return Trigger{FromPureFn(func(ctx *Ctx) bool {
		fired := false
		for _, t := range inputs {
			// every input is sampled so none of them skips a tick
			if t.Sample(ctx) {
				fired = true
			}
		}
		return fired
	})}
}

// ToGate opens the gate while s is at or above threshold.
func (s Sf64) ToGate(threshold float64) Gate {
	return Gate{Map(s.Signal, func(v float64) bool { return v >= threshold })}
}

type risingEdge struct {
	gate Gate
	prev bool
	seen bool
}

func (r *risingEdge) Sample(ctx *Ctx) bool {
	v := r.gate.Sample(ctx)
	fired := r.seen && v && !r.prev
	r.prev = v
	r.seen = true
	return fired
}

// ToTriggerRisingEdge fires on ticks where the gate goes from closed to
// open. The first tick never fires: a gate that starts out open has not
// been observed making a transition.
func (g Gate) ToTriggerRisingEdge() Trigger {
	return Trigger{Stateful[bool](&risingEdge{gate: g})}
}

type gateWithDuration struct {
	trigger   Trigger
	seconds   float64
	remaining uint64
}

func (g *gateWithDuration) Sample(ctx *Ctx) bool {
	if g.trigger.Sample(ctx) {
		g.remaining = max(ctx.SecondsToTicks(g.seconds), 1)
	}
	if g.remaining == 0 {
		return false
	}
	g.remaining--
	return true
}

// ToGateWithDurationS opens a gate for the given number of seconds at
// each trigger, counting the trigger tick itself. A trigger arriving
// while the gate is still open restarts the full duration.
func (t Trigger) ToGateWithDurationS(seconds float64) Gate {
	return Gate{Stateful[bool](&gateWithDuration{trigger: t, seconds: seconds})}
}

func boolToF64(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

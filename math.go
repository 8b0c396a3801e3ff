package mixloop

import (
	"math"
)

func AbsOp() SmpUnOp {
	return func(x Smp) Smp { return math.Abs(x) }
}

func ExpOp() SmpUnOp {
	return func(x Smp) Smp { return math.Exp(x) }
}

func FloorOp() SmpUnOp {
	return func(x Smp) Smp { return math.Floor(x) }
}

func RoundOp() SmpUnOp {
	return func(x Smp) Smp { return math.Round(x) }
}

func SinOp() SmpUnOp {
	return func(x Smp) Smp { return math.Sin(x) }
}

func TanhOp() SmpUnOp {
	return func(x Smp) Smp { return math.Tanh(x) }
}

// Exp01Op bends the 0..1 range with an exponential curve. k > 0 starts
// slow and ends fast, k < 0 the other way round, k == 0 is linear.
func Exp01Op(k float64) SmpUnOp {
	if k == 0 {
		return func(x Smp) Smp { return x }
	}
	denom := math.Exp(k) - 1
	return func(x Smp) Smp {
		return (math.Exp(k*x) - 1) / denom
	}
}

func AddOp() SmpBinOp {
	return func(x, y Smp) Smp { return x + y }
}

func SubOp() SmpBinOp {
	return func(x, y Smp) Smp { return x - y }
}

func MulOp() SmpBinOp {
	return func(x, y Smp) Smp { return x * y }
}

// DivOp yields 0 when dividing by zero so that a control signal passing
// through zero cannot inject NaN into the graph.
func DivOp() SmpBinOp {
	return func(x, y Smp) Smp {
		if y == 0 {
			return 0
		}
		return x / y
	}
}

func ModOp() SmpBinOp {
	return func(x, y Smp) Smp { return math.Mod(x, y) }
}

func PowOp() SmpBinOp {
	return func(x, y Smp) Smp { return math.Pow(x, y) }
}

func MinOp() SmpBinOp {
	return func(x, y Smp) Smp { return min(x, y) }
}

func MaxOp() SmpBinOp {
	return func(x, y Smp) Smp { return max(x, y) }
}

// Apply maps op over s.
func (s Sf64) Apply(op SmpUnOp) Sf64 {
	if v, ok := constValue(s.Signal); ok {
		return F64(op(v))
	}
	return Sf64{Map[float64, float64](s.Signal, op)}
}

// Combine merges s and other pointwise with op.
func (s Sf64) Combine(other Sf64, op SmpBinOp) Sf64 {
	lv, lconst := constValue(s.Signal)
	rv, rconst := constValue(other.Signal)
	if lconst && rconst {
		return F64(op(lv, rv))
	}
	return Sf64{Zip[float64, float64, float64](s.Signal, other.Signal, op)}
}

func (s Sf64) Add(other Sf64) Sf64 { return s.Combine(other, AddOp()) }

func (s Sf64) Sub(other Sf64) Sf64 { return s.Combine(other, SubOp()) }

func (s Sf64) Mul(other Sf64) Sf64 { return s.Combine(other, MulOp()) }

func (s Sf64) Div(other Sf64) Sf64 { return s.Combine(other, DivOp()) }

func (s Sf64) AddScalar(k float64) Sf64 {
	return s.Apply(func(x Smp) Smp { return x + k })
}

func (s Sf64) MulScalar(k float64) Sf64 {
	return s.Apply(func(x Smp) Smp { return x * k })
}

func (s Sf64) Neg() Sf64 { return s.MulScalar(-1) }

func (s Sf64) Exp01(k float64) Sf64 { return s.Apply(Exp01Op(k)) }

func (s Sf64) Inv01() Sf64 {
	return s.Apply(func(x Smp) Smp { return 1 - x })
}

// SignedTo01 maps a bipolar -1..1 signal onto 0..1.
func (s Sf64) SignedTo01() Sf64 {
	return s.Apply(func(x Smp) Smp { return (x + 1) / 2 })
}

func (s Sf64) Clamp(lo, hi float64) Sf64 {
	return s.Apply(func(x Smp) Smp { return clamp(x, lo, hi) })
}

func (s Sf64) Clamp01() Sf64 { return s.Clamp(0, 1) }

func (s Sf64) Tanh() Sf64 { return s.Apply(TanhOp()) }

// Sum adds all signals pointwise. Sum of nothing is silence.
func Sum(sigs ...Sf64) Sf64 {
	if len(sigs) == 0 {
		return F64(0)
	}
	inputs := append([]Sf64(nil), sigs...)
	return Sf64{FromPureFn(func(ctx *Ctx) float64 {
		var acc float64
		for _, s := range inputs {
			acc += s.Sample(ctx)
		}
		return acc
	})}
}

// Mean averages all signals pointwise.
func Mean(sigs ...Sf64) Sf64 {
	if len(sigs) == 0 {
		return F64(0)
	}
	return Sum(sigs...).MulScalar(1 / float64(len(sigs)))
}

// Product multiplies all signals pointwise.
func Product(sigs ...Sf64) Sf64 {
	if len(sigs) == 0 {
		return F64(1)
	}
	inputs := append([]Sf64(nil), sigs...)
	return Sf64{FromPureFn(func(ctx *Ctx) float64 {
		acc := 1.0
		for _, s := range inputs {
			acc *= s.Sample(ctx)
		}
		return acc
	})}
}

func clamp(value float64, lo float64, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

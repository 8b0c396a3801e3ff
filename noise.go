package mixloop

// DefaultNoiseSeed seeds Noise so that renders are reproducible.
const DefaultNoiseSeed = 1

type xorshift32 struct {
	state uint32
}

func newXorshift32(seed uint32) *xorshift32 {
	// a zero state would lock the generator at zero
	if seed == 0 {
		seed = 1
	}
	return &xorshift32{state: seed}
}

func (x *xorshift32) next() uint32 {
	x.state ^= x.state << 13
	x.state ^= x.state >> 17
	x.state ^= x.state << 5
	return x.state
}

// bipolar returns a uniform value in [-1,1].
func (x *xorshift32) bipolar() float64 {
	u := float64(x.next()) / float64(^uint32(0))
	return 2*u - 1
}

type noise struct {
	rng *xorshift32
}

func (n *noise) Sample(*Ctx) float64 {
	return n.rng.bipolar()
}

// Noise returns deterministic white noise in [-1,1].
func Noise() Sf64 {
	return NoiseSeeded(DefaultNoiseSeed)
}

func NoiseSeeded(seed uint32) Sf64 {
	return Sf64{Stateful[float64](&noise{rng: newXorshift32(seed)})}
}

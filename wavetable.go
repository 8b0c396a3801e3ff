package mixloop

import (
	"fmt"
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

// DefaultWaveSize is the length of the builtin single-cycle waves.
const DefaultWaveSize = 2048

// MaxMipLevel bounds the number of octave-reduced copies of a wave.
const MaxMipLevel = 8

// Wave is a single-cycle waveform.
type Wave []Smp

// removeDCInPlace subtracts the mean from the wave to center it at 0.
func (wave Wave) removeDCInPlace() {
	n := len(wave)
	if n == 0 {
		return
	}
	sum := 0.0
	for _, v := range wave {
		sum += v
	}
	mean := sum / float64(n)
	if math.Abs(mean) < 1e-12 {
		return
	}
	for i := range wave {
		wave[i] -= mean
	}
}

// sampleAt reads the wave at fractional phase [0,1) with 4-point
// Catmull-Rom interpolation, or linear interpolation for tiny waves.
func (wave Wave) sampleAt(phase float64) Smp {
	n := len(wave)
	if n == 0 {
		return 0
	}
	p := math.Mod(phase, 1.0)
	if p < 0 {
		p += 1.0
	}
	pos := p * float64(n)
	i0 := int(pos) % n
	t := pos - math.Floor(pos)
	if n < 4 {
		i1 := (i0 + 1) % n
		return wave[i0]*(1.0-t) + wave[i1]*t
	}
	im1 := (i0 - 1 + n) % n
	i1 := (i0 + 1) % n
	i2 := (i0 + 2) % n
	a0 := -0.5*wave[im1] + 1.5*wave[i0] - 1.5*wave[i1] + 0.5*wave[i2]
	a1 := wave[im1] - 2.5*wave[i0] + 2.0*wave[i1] - 0.5*wave[i2]
	a2 := -0.5*wave[im1] + 0.5*wave[i1]
	a3 := wave[i0]
	return ((a0*t+a1)*t+a2)*t + a3
}

// halfBand returns a half-size copy of the wave with every partial above
// the new Nyquist removed in the frequency domain.
func (wave Wave) halfBand() Wave {
	n := len(wave)
	if n <= 1 {
		return append(Wave(nil), wave...)
	}
	x := make([]complex128, n)
	for i, v := range wave {
		x[i] = complex(v, 0)
	}
	bins := fft.FFT(x)
	for k := n/4 + 1; k < n-(n/4); k++ {
		bins[k] = 0
	}
	xt := fft.IFFT(bins)
	out := make(Wave, n/2)
	for i := range out {
		out[i] = real(xt[2*i])
	}
	out.removeDCInPlace()
	return out
}

// Wavetable holds one wave and its band-limited octave copies. Every
// level is built up front so that reading never allocates.
type Wavetable struct {
	mips []Wave
}

func NewWavetable(base Wave) (*Wavetable, error) {
	if len(base) < 4 {
		return nil, fmt.Errorf("wavetable: wave too short: %d samples", len(base))
	}
	level0 := append(Wave(nil), base...)
	level0.removeDCInPlace()
	wt := &Wavetable{mips: []Wave{level0}}
	for len(wt.mips) <= MaxMipLevel {
		prev := wt.mips[len(wt.mips)-1]
		if len(prev) <= 16 {
			break
		}
		wt.mips = append(wt.mips, prev.halfBand())
	}
	return wt, nil
}

func (wt *Wavetable) Levels() int { return len(wt.mips) }

// mipLevel picks the continuous level for a frequency: the number of
// octaves the base wave has to lose to keep its partials under Nyquist.
func (wt *Wavetable) mipLevel(freq, sr float64) float64 {
	if freq <= 0 || sr <= 0 {
		return 0
	}
	h := (sr / 2.0) / freq
	if h <= 1 {
		return float64(len(wt.mips) - 1)
	}
	l := math.Log2(float64(len(wt.mips[0])) / h)
	return clamp(l, 0, float64(len(wt.mips)-1))
}

// SampleMip reads the table at phase for a tone at freq Hz, crossfading
// between the two nearest mip levels.
func (wt *Wavetable) SampleMip(phase, freq, sr float64) Smp {
	cl := wt.mipLevel(math.Abs(freq), sr)
	lvl := int(cl)
	s0 := wt.mips[lvl].sampleAt(phase)
	if lvl+1 >= len(wt.mips) {
		return s0
	}
	fade := cl - float64(lvl)
	if fade == 0 {
		return s0
	}
	s1 := wt.mips[lvl+1].sampleAt(phase)
	return (1-fade)*s0 + fade*s1
}

// sawWave rises from 0 to 1 over the first half cycle, jumps to -1 and
// rises back to 0.
func sawWave(size int) Wave {
	wave := make(Wave, size)
	for i := range size {
		p := float64(i) / float64(size)
		wave[i] = calcSaw(p)
	}
	return wave
}

func triangleWave(size int) Wave {
	wave := make(Wave, size)
	for i := range size {
		p := float64(i) / float64(size)
		wave[i] = calcTriangle(p)
	}
	return wave
}

func calcSaw(phase float64) float64 {
	if phase < 0.5 {
		return phase * 2.0
	}
	return -1.0 + (phase-0.5)*2.0
}

func calcTriangle(phase float64) float64 {
	if phase < 0.25 {
		return phase * 4.0
	} else if phase < 0.75 {
		return 1.0 - (phase-0.25)*4.0
	}
	return -1.0 + (phase-0.75)*4.0
}

func calcPulse(phase, width float64) float64 {
	if phase < width {
		return 1.0
	}
	return -1.0
}

func mustWavetable(w Wave) *Wavetable {
	wt, err := NewWavetable(w)
	if err != nil {
		panic(err)
	}
	return wt
}

var (
	sawTable      = sync.OnceValue(func() *Wavetable { return mustWavetable(sawWave(DefaultWaveSize)) })
	triangleTable = sync.OnceValue(func() *Wavetable { return mustWavetable(triangleWave(DefaultWaveSize)) })
)

package samples

import (
	"fmt"

	"github.com/cellux/mixloop"
	"github.com/dh1tw/gosamplerate"
)

const (
	resampleMaxRatio = 1.0 * 16
	resampleMinRatio = 1.0 / 16
)

// libsamplerate converter types.
const (
	ConverterSincBest = iota
	ConverterSincMedium
	ConverterSincFastest
	ConverterZeroOrderHold
	ConverterLinear
)

// DefaultConverter is the converter used by Load.
const DefaultConverter = ConverterSincMedium

func isValidRatio(ratio float64) bool {
	if !gosamplerate.IsValidRatio(ratio) {
		return false
	}
	if ratio < resampleMinRatio || ratio > resampleMaxRatio {
		return false
	}
	return true
}

// Resample converts tape to sampleRate. A tape already at that rate is
// returned as is.
func Resample(tape *mixloop.Tape, sampleRate float64, converterType int) (*mixloop.Tape, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive (got %v)", mixloop.ErrInvalidConfig, sampleRate)
	}
	if tape.SampleRate == sampleRate || len(tape.Samples) == 0 {
		return &mixloop.Tape{SampleRate: sampleRate, Samples: tape.Samples}, nil
	}
	if converterType < ConverterSincBest || converterType > ConverterLinear {
		return nil, fmt.Errorf("%w: invalid converter type %d", mixloop.ErrInvalidConfig, converterType)
	}
	ratio := sampleRate / tape.SampleRate
	if !isValidRatio(ratio) {
		return nil, fmt.Errorf("resample: invalid ratio: %f", ratio)
	}
	tempBuf := make([]float32, len(tape.Samples))
	for i, smp := range tape.Samples {
		tempBuf[i] = float32(smp)
	}
	resampledBuf, err := gosamplerate.Simple(tempBuf, ratio, 1, converterType)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	resampled := &mixloop.Tape{
		SampleRate: sampleRate,
		Samples:    make([]mixloop.Smp, len(resampledBuf)),
	}
	for i, smp := range resampledBuf {
		resampled.Samples[i] = mixloop.Smp(smp)
	}
	return resampled, nil
}

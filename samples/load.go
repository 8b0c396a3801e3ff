// Package samples loads audio files into tapes playable by the engine.
package samples

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cellux/mixloop"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mitchellh/go-homedir"
)

// ErrUnsupportedFormat is returned for files that are neither WAV nor MP3.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Load decodes a WAV or MP3 file, mixes it down to mono and resamples it
// to sampleRate. The path may start with ~.
func Load(path string, sampleRate float64) (*mixloop.Tape, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", path, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var tape *mixloop.Tape
	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".wav":
		tape, err = DecodeWAV(f)
	case ".mp3":
		tape, err = DecodeMP3(f)
	default:
		return nil, fmt.Errorf("%s: %w", expanded, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", expanded, err)
	}
	return Resample(tape, sampleRate, DefaultConverter)
}

// DecodeWAV reads an integer PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*mixloop.Tape, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file: %w", ErrUnsupportedFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	nch := int(d.NumChans)
	if nch < 1 || d.BitDepth == 0 {
		return nil, fmt.Errorf("wav has no channels or bit depth: %w", ErrUnsupportedFormat)
	}
	scale := 1 / float64(int(1)<<(d.BitDepth-1))
	// 8-bit PCM is unsigned and centred on 128
	var offset int
	if d.BitDepth == 8 {
		offset = 128
	}
	nframes := len(buf.Data) / nch
	tape := &mixloop.Tape{
		SampleRate: float64(d.SampleRate),
		Samples:    make([]mixloop.Smp, nframes),
	}
	for i := range nframes {
		var sum int
		for ch := range nch {
			sum += buf.Data[i*nch+ch] - offset
		}
		tape.Samples[i] = float64(sum) * scale / float64(nch)
	}
	return tape, nil
}

// DecodeMP3 reads an MP3 stream. The decoder always produces 16-bit
// stereo.
func DecodeMP3(r io.Reader) (*mixloop.Tape, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(d)
	if err != nil {
		return nil, err
	}
	const frameBytes = 4
	nframes := len(data) / frameBytes
	tape := &mixloop.Tape{
		SampleRate: float64(d.SampleRate()),
		Samples:    make([]mixloop.Smp, nframes),
	}
	for i := range nframes {
		off := i * frameBytes
		l := int16(uint16(data[off]) | uint16(data[off+1])<<8)
		r := int16(uint16(data[off+2]) | uint16(data[off+3])<<8)
		tape.Samples[i] = (float64(l) + float64(r)) / 2 / 32768
	}
	return tape, nil
}

// Normalize scales the tape so that its peak is at peak.
func Normalize(tape *mixloop.Tape, peak float64) {
	var m float64
	for _, v := range tape.Samples {
		m = max(m, max(v, -v))
	}
	if m == 0 {
		return
	}
	k := peak / m
	for i := range tape.Samples {
		tape.Samples[i] *= k
	}
}

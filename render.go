package mixloop

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bytesPerFloat32 = 4

// PlayerConfig describes how a Player turns the root signal into frames.
type PlayerConfig struct {
	SampleRate float64
	// Channels is 1 (mono) or 2 (stereo, equal-power panned).
	Channels int
	Gain     float64
	// Pan is -1 (left) .. 1 (right).
	Pan float64
}

func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 48000,
		Channels:   2,
		Gain:       1,
	}
}

func (c PlayerConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive (got %v)", ErrInvalidConfig, c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("%w: channels must be 1 or 2 (got %d)", ErrInvalidConfig, c.Channels)
	}
	if c.Gain < 0 {
		return fmt.Errorf("%w: gain must not be negative (got %v)", ErrInvalidConfig, c.Gain)
	}
	return nil
}

// Player owns the tick context of one graph and pulls its root signal
// one sample at a time.
type Player struct {
	root   Sf64
	forced []Sf64
	ctx    *Ctx
	cfg    PlayerConfig
	left   float64
	right  float64
	// frame holds the samples of a partially read frame
	frame    [2 * bytesPerFloat32]byte
	frameLen int
	frameOff int
}

func NewPlayer(root Sf64, cfg PlayerConfig) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Player{
		root: root,
		ctx:  NewCtx(cfg.SampleRate),
		cfg:  cfg,
	}
	if cfg.Channels == 2 {
		p.left, p.right = equalPowerPan(cfg.Pan)
	} else {
		p.left = 1
	}
	logger.Debug("player created", "sampleRate", cfg.SampleRate, "channels", cfg.Channels, "gain", cfg.Gain)
	return p, nil
}

// Force registers a signal that is sampled before the root on every tick,
// even if nothing downstream reads it.
func (p *Player) Force(s Sf64) {
	p.forced = append(p.forced, s)
}

func (p *Player) Ctx() *Ctx {
	return p.ctx
}

func (p *Player) Config() PlayerConfig {
	return p.cfg
}

// Tick samples the graph once and advances the clock.
func (p *Player) Tick() float64 {
	for _, s := range p.forced {
		s.Sample(p.ctx)
	}
	v := p.root.Sample(p.ctx)
	p.ctx.Advance()
	return v
}

// equalPowerPan returns gains for left/right given pan in [-1,1].
func equalPowerPan(pan float64) (float64, float64) {
	theta := (clamp(pan, -1, 1) + 1) * math.Pi / 4
	return math.Cos(theta), math.Sin(theta)
}

func (p *Player) nextFrame() {
	v := p.Tick() * p.cfg.Gain
	l := clamp(v*p.left, -1, 1)
	binary.LittleEndian.PutUint32(p.frame[0:], math.Float32bits(float32(l)))
	p.frameLen = bytesPerFloat32
	if p.cfg.Channels == 2 {
		r := clamp(v*p.right, -1, 1)
		binary.LittleEndian.PutUint32(p.frame[bytesPerFloat32:], math.Float32bits(float32(r)))
		p.frameLen = 2 * bytesPerFloat32
	}
	p.frameOff = 0
}

// Read fills buf with interleaved float32 little-endian frames. It never
// returns an error: a graph plays forever.
func (p *Player) Read(buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		if p.frameOff == p.frameLen {
			p.nextFrame()
		}
		c := copy(buf[n:], p.frame[p.frameOff:p.frameLen])
		p.frameOff += c
		n += c
	}
	return n, nil
}

var _ io.Reader = (*Player)(nil)

// RenderWAV writes frames ticks of the graph as 16-bit PCM.
func (p *Player) RenderWAV(w io.WriteSeeker, frames int) error {
	const bitDepth = 16
	nch := p.cfg.Channels
	enc := wav.NewEncoder(w, int(p.cfg.SampleRate), bitDepth, nch, 1)
	const block = 4096
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: nch, SampleRate: int(p.cfg.SampleRate)},
		Data:           make([]int, 0, block*nch),
		SourceBitDepth: bitDepth,
	}
	for done := 0; done < frames; {
		n := min(block, frames-done)
		buf.Data = buf.Data[:0]
		for range n {
			v := p.Tick() * p.cfg.Gain
			buf.Data = append(buf.Data, toPCM16(v*p.left))
			if nch == 2 {
				buf.Data = append(buf.Data, toPCM16(v*p.right))
			}
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
		done += n
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	logger.Info("rendered", "frames", frames, "seconds", float64(frames)/p.cfg.SampleRate)
	return nil
}

func toPCM16(v float64) int {
	return int(math.Round(clamp(v, -1, 1) * math.MaxInt16))
}

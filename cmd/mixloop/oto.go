package main

import (
	"fmt"
	"time"

	ml "github.com/cellux/mixloop"
	"github.com/ebitengine/oto/v3"
)

func newOtoContext(cfg ml.Config) (*oto.Context, error) {
	otoContextOptions := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(cfg.BufferFrames) * time.Second / time.Duration(cfg.SampleRate),
	}
	ctx, readyChan, err := oto.NewContext(otoContextOptions)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-readyChan
	return ctx, nil
}

// startPlayback streams the player to the audio device. The returned
// function stops playback.
func startPlayback(otoCtx *oto.Context, p *ml.Player) (func() error, error) {
	player := otoCtx.NewPlayer(p)
	player.Play()
	if err := otoCtx.Err(); err != nil {
		return nil, fmt.Errorf("audio device: %w", err)
	}
	return player.Close, nil
}

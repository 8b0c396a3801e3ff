package main

import (
	"fmt"

	ml "github.com/cellux/mixloop"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func listMidiInputs() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi driver: %w", err)
	}
	defer drv.Close()
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list midi inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

// openMidiInput connects input port number index to the player. The
// returned function disconnects it.
func openMidiInput(index int, mp *ml.MidiPlayer) (func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi driver: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("list midi inputs: %w", err)
	}
	if index < 0 || index >= len(ins) {
		drv.Close()
		return nil, fmt.Errorf("%w: midi input %d not found (%d available)", ml.ErrInvalidConfig, index, len(ins))
	}
	var in drivers.In = ins[index]
	name := in.String()
	logger.Info("opening MIDI input", "device", name)
	if err := in.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("open midi input %s: %w", name, err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		mp.HandleMessage(msg)
	}, midi.HandleError(func(listenErr error) {
		logger.Warn("MIDI listener error", "device", name, "err", listenErr)
		mp.AllNotesOff()
	}))
	if err != nil {
		_ = in.Close()
		drv.Close()
		return nil, fmt.Errorf("listen to %s: %w", name, err)
	}
	logger.Info("MIDI input connected", "device", name)
	return func() {
		stop()
		_ = in.Close()
		drv.Close()
		mp.AllNotesOff()
		logger.Info("MIDI input closed", "device", name)
	}, nil
}

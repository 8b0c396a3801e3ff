package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	ml "github.com/cellux/mixloop"
	"gitlab.com/gomidi/midi/v2"
	"go.bug.st/serial"
)

const serialReadTimeout = 100 * time.Millisecond

func listSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}

// runSerialMidi reads raw MIDI bytes from a serial port into the player
// until ctx is done or the port fails.
func runSerialMidi(ctx context.Context, portName string, baud int, mp *ml.MidiPlayer) error {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", portName, err)
	}
	defer port.Close()
	defer mp.AllNotesOff()
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		return fmt.Errorf("serial port %s: %w", portName, err)
	}
	logger.Info("serial MIDI connected", "port", portName, "baud", baud)
	var parser ml.MidiStreamParser
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n, err := port.Read(buf)
		if err != nil {
			var portErr *serial.PortError
			if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
				return nil
			}
			return fmt.Errorf("read serial port %s: %w", portName, err)
		}
		parser.Parse(buf[:n], func(msg midi.Message) {
			mp.HandleMessage(msg)
		})
	}
}

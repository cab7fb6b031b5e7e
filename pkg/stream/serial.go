package stream

import (
	"bufio"
	"context"
	"io"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/redbeacon-robotics/seekbot/internal/config"
	"github.com/redbeacon-robotics/seekbot/internal/log"
	"github.com/redbeacon-robotics/seekbot/pkg/perception"
)

// SerialBumper reads a contact sensor wired to a serial port. The sensor
// firmware writes one line per transition: "P" on press, "R" on release.
// Anything else on the line is ignored with a warning.
type SerialBumper struct {
	port    serial.Port
	r       io.Reader
	name    string
	monitor *perception.BumperMonitor
}

// OpenSerialBumper opens the configured port.
func OpenSerialBumper(cfg config.SerialConfig, monitor *perception.BumperMonitor) (*SerialBumper, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "open serial bumper %s", cfg.Port)
	}
	return &SerialBumper{port: port, r: port, name: cfg.Port, monitor: monitor}, nil
}

// Run pumps transitions into the bumper monitor until the context is
// cancelled or the port fails.
func (b *SerialBumper) Run(ctx context.Context) error {
	log.Info("serial bumper reading", "port", b.name)
	scanner := bufio.NewScanner(b.r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch scanner.Text() {
		case "P":
			b.monitor.HandleEvent(perception.BumperEvent{Pressed: true})
		case "R":
			b.monitor.HandleEvent(perception.BumperEvent{Pressed: false})
		case "":
		default:
			log.Warn("serial bumper: unknown line", "line", scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "serial bumper read")
	}
	return nil
}

// Close releases the port.
func (b *SerialBumper) Close() error {
	return b.port.Close()
}

// Package receiver brings a PmodGPS out of reset before decoding starts.
package receiver

import (
	"fmt"
	"time"

	"pmodgps/internal/source"
)

// Config describes the optional reset wiring.
//
// GPIO is the BCM number of the line connected to the module's RST pin.
// Chip may name a specific /dev/gpiochipN; empty tries the usual chips.
type Config struct {
	Enable       bool
	Chip         string
	GPIO         int
	Hold         time.Duration
	DiscardLines int
}

// DefaultDiscardLines covers the restart, start-up and two PGACK lines the
// receiver prints after a reset.
const DefaultDiscardLines = 4

const defaultHold = 10 * time.Millisecond

// resetLine is the piece of GPIO driving the RST pin.
type resetLine interface {
	SetValue(v int) error
	Close() error
}

var openResetLineFn = openResetLine

var sleepFn = time.Sleep

// Reset pulses the RST pin low for cfg.Hold and leaves it high.
func Reset(cfg Config) error {
	if !cfg.Enable {
		return nil
	}
	if cfg.GPIO <= 0 {
		return fmt.Errorf("receiver: invalid reset gpio %d", cfg.GPIO)
	}
	hold := cfg.Hold
	if hold <= 0 {
		hold = defaultHold
	}

	line, err := openResetLineFn(cfg.Chip, cfg.GPIO)
	if err != nil {
		return err
	}
	defer func() { _ = line.Close() }()

	if err := line.SetValue(0); err != nil {
		return fmt.Errorf("receiver: drive reset low: %w", err)
	}
	sleepFn(hold)
	if err := line.SetValue(1); err != nil {
		return fmt.Errorf("receiver: release reset: %w", err)
	}
	return nil
}

// DiscardStartup consumes the first n lines the receiver prints after
// coming out of reset.
func DiscardStartup(r source.SentenceReader, n int) error {
	for i := 0; i < n; i++ {
		if _, err := r.ReadSentence(); err != nil {
			return err
		}
	}
	return nil
}

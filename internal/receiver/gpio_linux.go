//go:build linux

package receiver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

// openResetLine requests the named BCM GPIO as an output, initially high so
// the receiver keeps running until Reset drives it.
func openResetLine(chipPath string, pin int) (resetLine, error) {
	lineName := fmt.Sprintf("GPIO%d", pin)

	chipCandidates := []string{}
	if chipPath != "" {
		chipCandidates = append(chipCandidates, chipPath)
	} else {
		chipCandidates = append(chipCandidates, "/dev/gpiochip0", "/dev/gpiochip4")
		entries, _ := os.ReadDir("/dev")
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, "gpiochip") {
				chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
			}
		}
	}

	for _, p := range chipCandidates {
		chip, err := gpiocdev.NewChip(p)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(1), gpiocdev.WithConsumer("pmodgps-reset"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &gpiodLine{chip: chip, line: line}, nil
	}
	return nil, fmt.Errorf("receiver: gpio line %q not found (or busy)", lineName)
}

type gpiodLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (g *gpiodLine) SetValue(v int) error {
	if g == nil || g.line == nil {
		return fmt.Errorf("receiver: gpio line not initialized")
	}
	return g.line.SetValue(v)
}

func (g *gpiodLine) Close() error {
	if g == nil || g.line == nil {
		return nil
	}
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}

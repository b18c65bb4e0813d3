//go:build !linux

package receiver

import "fmt"

func openResetLine(chipPath string, pin int) (resetLine, error) {
	return nil, fmt.Errorf("receiver: gpio unsupported on this platform")
}

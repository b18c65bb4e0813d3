//go:build !linux && !darwin && !windows

package source

import (
	"fmt"
	"io"
)

func OpenSerial(path string, baud int) (io.ReadWriteCloser, error) {
	return nil, fmt.Errorf("gps serial not supported on this platform")
}

//go:build darwin || windows

package source

import (
	"fmt"
	"io"

	"github.com/jacobsa/go-serial/serial"
)

// OpenSerial opens the port 8N1 through go-serial.
func OpenSerial(path string, baud int) (io.ReadWriteCloser, error) {
	if baud <= 0 {
		return nil, fmt.Errorf("unsupported baud %d", baud)
	}
	return serial.Open(serial.OpenOptions{
		PortName:        path,
		BaudRate:        uint(baud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
}

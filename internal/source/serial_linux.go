//go:build linux

package source

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var unixBauds = map[int]uint32{
	1200:   unix.B1200,
	2400:   unix.B2400,
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
}

func baudToUnix(baud int) (uint32, error) {
	spd, ok := unixBauds[baud]
	if !ok {
		return 0, fmt.Errorf("unsupported baud %d", baud)
	}
	return spd, nil
}

// makeRaw puts t into 8N1 raw mode at spd. Reads block until at least one
// byte arrives; the receiver talks every second.
func makeRaw(t *unix.Termios, spd uint32) {
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CBAUD
	t.Cflag |= unix.CS8 | unix.CLOCAL | unix.CREAD | spd
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	t.Ispeed = spd
	t.Ospeed = spd
}

// OpenSerial opens a tty in raw 8N1 mode and drops whatever the driver
// buffered before the open, so decoding starts on fresh lines.
func OpenSerial(path string, baud int) (io.ReadWriteCloser, error) {
	spd, err := baudToUnix(baud)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	ok := false
	defer func() {
		if !ok {
			_ = unix.Close(fd)
		}
	}()

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("tcgets %s: %w", path, err)
	}
	makeRaw(t, spd)
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return nil, fmt.Errorf("tcsets %s: %w", path, err)
	}
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH); err != nil {
		return nil, fmt.Errorf("flush %s: %w", path, err)
	}

	f := os.NewFile(uintptr(fd), path)
	if f == nil {
		return nil, fmt.Errorf("os.NewFile failed")
	}
	ok = true
	return f, nil
}

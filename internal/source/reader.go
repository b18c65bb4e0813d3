package source

import (
	"bufio"
	"errors"
	"io"

	"pmodgps/internal/nmea"
)

// SentenceReader supplies one complete NMEA line per call, terminator
// included. Failures are reported as *nmea.TransportError.
type SentenceReader interface {
	ReadSentence() ([]byte, error)
}

// LineReader implements SentenceReader over any byte stream.
//
// Lines longer than the configured bound are returned truncated (without a
// terminator) so the decoder rejects them; the rest of that line is skipped.
type LineReader struct {
	r    *bufio.Reader
	skip bool
}

// minLineBytes is the smallest buffer bufio accepts.
const minLineBytes = 16

func NewLineReader(r io.Reader, maxLineBytes int) *LineReader {
	if maxLineBytes <= 0 {
		maxLineBytes = nmea.DefaultMaxSentenceBytes
	}
	if maxLineBytes < minLineBytes {
		maxLineBytes = minLineBytes
	}
	return &LineReader{r: bufio.NewReaderSize(r, maxLineBytes)}
}

func (lr *LineReader) ReadSentence() ([]byte, error) {
	for lr.skip {
		_, err := lr.r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		lr.skip = false
		if err != nil {
			return nil, &nmea.TransportError{Op: "read", Err: err}
		}
	}

	line, err := lr.r.ReadSlice('\n')
	switch {
	case err == nil:
		return append([]byte(nil), line...), nil
	case errors.Is(err, bufio.ErrBufferFull):
		lr.skip = true
		return append([]byte(nil), line...), nil
	default:
		return nil, &nmea.TransportError{Op: "read", Err: err}
	}
}

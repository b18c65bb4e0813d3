package nmea

import (
	"bytes"
	"fmt"
)

// DefaultMaxSentenceBytes bounds how far Tokenize scans for the line
// terminator. The receiver never emits more than 82 characters per sentence.
const DefaultMaxSentenceBytes = 128

// RawSentence is one tokenized sentence. All strings are copies; nothing
// refers back to the input buffer.
type RawSentence struct {
	// Header is the talker ID plus type, e.g. "GPGGA".
	Header string
	// Fields are the comma separated tokens after the header, up to '*'.
	Fields []string
	// Checksum holds the two characters following '*'.
	Checksum string
	// End is the offset of the LF terminator in the input buffer.
	End int
}

// Tokenize splits buf, which must hold one complete "$...*CS\r\n" sentence,
// into its fields. The LF terminator must appear within the first maxLen
// bytes; bytes beyond maxLen are never inspected. maxLen <= 0 selects
// DefaultMaxSentenceBytes.
func Tokenize(buf []byte, maxLen int) (RawSentence, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxSentenceBytes
	}
	scan := buf
	if len(scan) > maxLen {
		scan = scan[:maxLen]
	}
	end := bytes.IndexByte(scan, '\n')
	if end < 0 {
		if len(buf) > maxLen {
			return RawSentence{}, fmt.Errorf("%w: no terminator within %d bytes", ErrMalformedSentence, maxLen)
		}
		return RawSentence{}, fmt.Errorf("%w: missing terminator", ErrMalformedSentence)
	}

	line := bytes.TrimSuffix(scan[:end], []byte{'\r'})
	if len(line) == 0 || line[0] != '$' {
		return RawSentence{}, fmt.Errorf("%w: missing '$'", ErrMalformedSentence)
	}
	body := line[1:]

	star := bytes.IndexByte(body, '*')
	if star < 0 {
		return RawSentence{}, fmt.Errorf("%w: missing checksum", ErrMalformedSentence)
	}
	ck := body[star+1:]
	if len(ck) < 2 {
		return RawSentence{}, fmt.Errorf("%w: short checksum", ErrMalformedSentence)
	}

	header, rest, hasFields := bytes.Cut(body[:star], []byte{','})
	out := RawSentence{
		Header:   string(header),
		Checksum: string(ck[:2]),
		End:      end,
	}
	if hasFields {
		parts := bytes.Split(rest, []byte{','})
		out.Fields = make([]string, len(parts))
		for i, p := range parts {
			out.Fields[i] = string(p)
		}
	}
	return out, nil
}

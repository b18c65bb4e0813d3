package nmea

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleGGA = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\r\n"

func TestTokenize_GGA(t *testing.T) {
	raw, err := Tokenize([]byte(sampleGGA), 0)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	want := RawSentence{
		Header:   "GPGGA",
		Fields:   []string{"123519", "4807.038", "N", "01131.000", "E", "1", "08", "0.9", "545.4", "M", "46.9", "M", "", ""},
		Checksum: "47",
		End:      len(sampleGGA) - 1,
	}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Fatalf("Tokenize() mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_LFOnly(t *testing.T) {
	raw, err := Tokenize([]byte("$GPVTG,054.7,T,034.4,M,005.5,N,010.2,K,A*25\n"), 0)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if raw.Checksum != "25" {
		t.Fatalf("checksum=%q want 25", raw.Checksum)
	}
	if got := raw.Fields[len(raw.Fields)-1]; got != "A" {
		t.Fatalf("last field=%q want A", got)
	}
}

func TestTokenize_HeaderOnly(t *testing.T) {
	raw, err := Tokenize([]byte("$GPGGA*56\r\n"), 0)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if raw.Header != "GPGGA" || len(raw.Fields) != 0 {
		t.Fatalf("unexpected raw: %+v", raw)
	}
}

func TestTokenize_Malformed(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{name: "Empty", in: ""},
		{name: "NoTerminator", in: "$GPGGA,123519*47"},
		{name: "NoDollar", in: "GPGGA,123519*47\r\n"},
		{name: "NoChecksum", in: "$GPGGA,123519,4807.038\r\n"},
		{name: "ShortChecksum", in: "$GPGGA,123519*4\r\n"},
		{name: "BlankLine", in: "\r\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize([]byte(tc.in), 0)
			if !errors.Is(err, ErrMalformedSentence) {
				t.Fatalf("err=%v want ErrMalformedSentence", err)
			}
		})
	}
}

// sentenceOfLength builds a GGA sentence of exactly n bytes, padding the
// age-of-corrections field.
func sentenceOfLength(t *testing.T, n int) []byte {
	t.Helper()
	prefix := "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,"
	suffix := "*47\r\n"
	pad := n - len(prefix) - len(suffix)
	if pad < 0 {
		t.Fatalf("n=%d too small", n)
	}
	b := []byte(prefix + strings.Repeat("0", pad) + suffix)
	if len(b) != n {
		t.Fatalf("built %d bytes want %d", len(b), n)
	}
	return b
}

func TestTokenize_AtLimit(t *testing.T) {
	buf := sentenceOfLength(t, DefaultMaxSentenceBytes)
	raw, err := Tokenize(buf, DefaultMaxSentenceBytes)
	if err != nil {
		t.Fatalf("Tokenize() error at limit: %v", err)
	}
	if raw.End != DefaultMaxSentenceBytes-1 {
		t.Fatalf("End=%d want %d", raw.End, DefaultMaxSentenceBytes-1)
	}
}

func TestTokenize_OneBeyondLimit(t *testing.T) {
	buf := sentenceOfLength(t, DefaultMaxSentenceBytes+1)
	_, err := Tokenize(buf, DefaultMaxSentenceBytes)
	if !errors.Is(err, ErrMalformedSentence) {
		t.Fatalf("err=%v want ErrMalformedSentence", err)
	}
}

func TestTokenize_DoesNotReadPastLength(t *testing.T) {
	// The terminator lives in the backing array but outside len(buf).
	backing := []byte(sampleGGA)
	buf := backing[:len(backing)-1]
	_, err := Tokenize(buf, 0)
	if !errors.Is(err, ErrMalformedSentence) {
		t.Fatalf("err=%v want ErrMalformedSentence", err)
	}
}

func TestTokenize_FieldsAreCopies(t *testing.T) {
	buf := []byte(sampleGGA)
	raw, err := Tokenize(buf, 0)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	copy(buf, bytes.Repeat([]byte{'X'}, len(buf)))
	if raw.Fields[0] != "123519" {
		t.Fatalf("field aliased input buffer: %q", raw.Fields[0])
	}
}

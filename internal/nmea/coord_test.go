package nmea

import (
	"errors"
	"math"
	"testing"
)

func TestFormatDMS(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"4807.038", `48°07'02.28"`},
		{"01131.000", `011°31'00.00"`},
		{"4404.14036", `44°04'08.42"`},
		{"12118.85961", `121°18'51.58"`},
		{"0000.0000", `00°00'00.00"`},
		{"4807", `48°07'00.00"`},
		// Rounding to hundredths of a second carries into the degrees.
		{"4759.99999", `48°00'00.00"`},
		{"", ""},
	}
	for _, tc := range cases {
		got, err := FormatDMS(tc.in)
		if err != nil {
			t.Fatalf("FormatDMS(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("FormatDMS(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDMS_Invalid(t *testing.T) {
	for _, in := range []string{"48", "4a07.038", "4807.0x8", "4860.000", "-4807.038"} {
		if _, err := FormatDMS(in); !errors.Is(err, ErrMalformedSentence) {
			t.Fatalf("FormatDMS(%q) err=%v want ErrMalformedSentence", in, err)
		}
	}
}

func TestFormatDMS_Pure(t *testing.T) {
	a, _ := FormatDMS("4807.038")
	b, _ := FormatDMS("4807.038")
	if a != b {
		t.Fatalf("FormatDMS not deterministic: %q vs %q", a, b)
	}
}

func TestDisplayCoordinate(t *testing.T) {
	if got := DisplayCoordinate("4807.038", 'N'); got != `48°07'02.28"N` {
		t.Fatalf("got %q", got)
	}
	if got := DisplayCoordinate("", 'N'); got != "" {
		t.Fatalf("empty token rendered %q", got)
	}
	if got := DisplayCoordinate("01131.000", 0); got != `011°31'00.00"` {
		t.Fatalf("got %q", got)
	}
}

func TestDegrees(t *testing.T) {
	lat, ok := Degrees("4807.038", 'N')
	if !ok || math.Abs(lat-48.1173) > 1e-6 {
		t.Fatalf("lat=%v ok=%v", lat, ok)
	}
	lon, ok := Degrees("12118.85961", 'W')
	if !ok || math.Abs(lon-(-121.3143268)) > 1e-6 {
		t.Fatalf("lon=%v ok=%v", lon, ok)
	}
	if _, ok := Degrees("4807.038", 'X'); ok {
		t.Fatalf("expected invalid hemisphere")
	}
	if _, ok := Degrees("", 'N'); ok {
		t.Fatalf("expected empty token to fail")
	}
}

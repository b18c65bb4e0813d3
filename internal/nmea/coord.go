package nmea

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatDMS renders a ddmm.mmmm (latitude) or dddmm.mmmm (longitude) token
// as DD°MM'SS.SS". The degree width is taken from the position of the
// decimal point: everything before the two minute digits is degrees.
// An empty token renders as "".
func FormatDMS(tok string) (string, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", nil
	}
	deg, mins, width, err := splitCoordinate(tok)
	if err != nil {
		return "", err
	}

	// Work in hundredths of a second so rounding carries into the minutes.
	centi := int64(math.Round(mins * 6000))
	m := centi / 6000
	rem := centi % 6000
	if m >= 60 {
		deg++
		m -= 60
	}
	return fmt.Sprintf("%0*d°%02d'%02d.%02d\"", width, deg, m, rem/100, rem%100), nil
}

// DisplayCoordinate is the combined value+hemisphere rendering stored in
// FixRecord, e.g. 48°07'02.28"N. An empty or unparsable token renders as "".
func DisplayCoordinate(tok string, hemi Char) string {
	s, err := FormatDMS(tok)
	if err != nil || s == "" {
		return ""
	}
	if hemi != 0 {
		s += hemi.String()
	}
	return s
}

// Degrees converts a ddmm.mmmm/dddmm.mmmm token plus hemisphere into signed
// decimal degrees. South and west are negative.
func Degrees(tok string, hemi Char) (float64, bool) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, false
	}
	switch hemi {
	case 'N', 'S', 'E', 'W', 'n', 's', 'e', 'w':
	default:
		return 0, false
	}
	deg, mins, _, err := splitCoordinate(tok)
	if err != nil {
		return 0, false
	}
	dec := float64(deg) + mins/60.0
	if hemi == 'S' || hemi == 'W' || hemi == 's' || hemi == 'w' {
		dec = -dec
	}
	return dec, true
}

func splitCoordinate(tok string) (deg int, mins float64, width int, err error) {
	intPart := tok
	if dot := strings.IndexByte(tok, '.'); dot != -1 {
		intPart = tok[:dot]
		if !allDigits(tok[dot+1:]) {
			return 0, 0, 0, fmt.Errorf("%w: coordinate %q", ErrMalformedSentence, tok)
		}
	}
	if len(intPart) < 3 || !allDigits(intPart) {
		return 0, 0, 0, fmt.Errorf("%w: coordinate %q", ErrMalformedSentence, tok)
	}
	width = len(intPart) - 2
	deg, err = strconv.Atoi(intPart[:width])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: coordinate %q", ErrMalformedSentence, tok)
	}
	mins, err = strconv.ParseFloat(tok[width:], 64)
	if err != nil || mins >= 60 {
		return 0, 0, 0, fmt.Errorf("%w: coordinate %q", ErrMalformedSentence, tok)
	}
	return deg, mins, width, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

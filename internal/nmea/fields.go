package nmea

import "math"

// Char is a single character field. The zero value means "not reported".
type Char byte

func (c Char) String() string {
	if c == 0 {
		return ""
	}
	return string(rune(c))
}

// MarshalText renders the character as a one-letter string ("" when unset).
func (c Char) MarshalText() ([]byte, error) {
	if c == 0 {
		return []byte{}, nil
	}
	return []byte{byte(c)}, nil
}

func (c *Char) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = 0
		return nil
	}
	*c = Char(b[0])
	return nil
}

type fieldKind uint8

const (
	stringField fieldKind = iota
	charField
	intField
	// coordField stores the raw ddmm.mmmm token and, when dms is set, its
	// degree/minute/second rendering.
	coordField
	// hemiField stores a hemisphere letter and, when dms is set, re-renders
	// the preceding coordinate with the letter appended.
	hemiField
)

// field describes one positional token of a sentence for record type R.
type field[R any] struct {
	kind fieldKind
	str  func(*R) *string
	chr  func(*R) *Char
	num  func(*R) *int
	dms  func(*R) *string
}

func strField[R any](p func(*R) *string) field[R] {
	return field[R]{kind: stringField, str: p}
}

func charFld[R any](p func(*R) *Char) field[R] {
	return field[R]{kind: charField, chr: p}
}

func intFld[R any](p func(*R) *int) field[R] {
	return field[R]{kind: intField, num: p}
}

func coordFld[R any](raw func(*R) *string, dms func(*R) *string) field[R] {
	return field[R]{kind: coordField, str: raw, dms: dms}
}

func hemiFld[R any](p func(*R) *Char, raw func(*R) *string, dms func(*R) *string) field[R] {
	return field[R]{kind: hemiField, chr: p, str: raw, dms: dms}
}

func (f field[R]) apply(rec *R, tok string) {
	switch f.kind {
	case stringField:
		*f.str(rec) = tok
	case charField:
		if tok != "" {
			*f.chr(rec) = Char(tok[0])
		}
	case intField:
		if tok != "" {
			*f.num(rec) = parseInt(tok)
		}
	case coordField:
		*f.str(rec) = tok
		if f.dms != nil {
			s, err := FormatDMS(tok)
			if err != nil {
				s = ""
			}
			*f.dms(rec) = s
		}
	case hemiField:
		if tok == "" {
			return
		}
		*f.chr(rec) = Char(tok[0])
		if f.dms != nil {
			*f.dms(rec) = DisplayCoordinate(*f.str(rec), Char(tok[0]))
		}
	}
}

// decodeFields walks toks against fields left to right and returns how many
// fields were filled. Fields without a token keep their current value; extra
// tokens are ignored.
func decodeFields[R any](rec *R, fields []field[R], toks []string) int {
	n := min(len(fields), len(toks))
	for i := 0; i < n; i++ {
		fields[i].apply(rec, toks[i])
	}
	return n
}

// parseInt reads an optional sign and leading decimal digits, ignoring
// anything after them. A token without digits yields 0.
func parseInt(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	v := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if v > (math.MaxInt-9)/10 {
			v = math.MaxInt
			continue
		}
		v = v*10 + int(s[i]-'0')
	}
	if neg {
		return -v
	}
	return v
}

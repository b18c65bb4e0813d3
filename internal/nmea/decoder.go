package nmea

import "fmt"

// Decoder holds the latest record of each sentence kind. Each successful
// Decode of a kind replaces that kind's record; other kinds are untouched.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	maxLen int

	fix FixRecord
	dop DOPRecord
	sky SkyViewRecord
	trk TrackRecord
	vec VectorRecord

	have [kindCount]bool
}

// NewDecoder returns a Decoder that scans at most maxSentenceBytes per
// sentence (DefaultMaxSentenceBytes when <= 0).
func NewDecoder(maxSentenceBytes int) *Decoder {
	if maxSentenceBytes <= 0 {
		maxSentenceBytes = DefaultMaxSentenceBytes
	}
	d := &Decoder{maxLen: maxSentenceBytes}
	d.Reset()
	return d
}

// Reset discards every decoded record, including the GSV table.
func (d *Decoder) Reset() {
	d.fix = FixRecord{}
	d.dop = DOPRecord{}
	d.sky = emptySkyView()
	d.trk = TrackRecord{}
	d.vec = VectorRecord{}
	d.have = [kindCount]bool{}
}

// Decode tokenizes buf, classifies it and updates the matching record.
//
// Sentences that end before all fields are present still update the record;
// the missing fields keep their zero value. On error the kind is returned
// when it is known, and no record of another kind is modified.
func (d *Decoder) Decode(buf []byte) (Kind, error) {
	raw, err := Tokenize(buf, d.maxLen)
	if err != nil {
		return Unrecognized, err
	}
	kind := Classify(buf)

	switch kind {
	case GGA:
		var rec FixRecord
		decodeFields(&rec, ggaFields, raw.Fields)
		rec.Checksum = raw.Checksum
		d.fix = rec
	case GSA:
		var rec DOPRecord
		decodeFields(&rec, gsaFields, raw.Fields)
		rec.Checksum = raw.Checksum
		d.dop = rec
	case GSV:
		rec, err := mergeGSV(d.sky, raw)
		if err != nil {
			return GSV, err
		}
		d.sky = rec
	case RMC:
		var rec TrackRecord
		decodeFields(&rec, rmcFields, raw.Fields)
		rec.Checksum = raw.Checksum
		d.trk = rec
	case VTG:
		var rec VectorRecord
		decodeFields(&rec, vtgFields, raw.Fields)
		rec.Checksum = raw.Checksum
		d.vec = rec
	default:
		return Unrecognized, fmt.Errorf("%w: unrecognized sentence %q", ErrMalformedSentence, raw.Header)
	}
	d.have[kind] = true
	return kind, nil
}

// Has reports whether a record of kind k was decoded since the last Reset.
func (d *Decoder) Has(k Kind) bool {
	if k <= Unrecognized || k >= kindCount {
		return false
	}
	return d.have[k]
}

// The accessors return copies; callers may keep and modify them freely.

func (d *Decoder) Fix() FixRecord         { return d.fix }
func (d *Decoder) DOP() DOPRecord         { return d.dop }
func (d *Decoder) SkyView() SkyViewRecord { return d.sky }
func (d *Decoder) Track() TrackRecord     { return d.trk }
func (d *Decoder) Vector() VectorRecord   { return d.vec }

// Record returns the typed value of a kind for generic consumers.
func (d *Decoder) Record(k Kind) (any, error) {
	if !d.Has(k) {
		return nil, fmt.Errorf("nmea: no %s decoded yet", k)
	}
	switch k {
	case GGA:
		return d.Fix(), nil
	case GSA:
		return d.DOP(), nil
	case GSV:
		return d.SkyView(), nil
	case RMC:
		return d.Track(), nil
	case VTG:
		return d.Vector(), nil
	}
	return nil, fmt.Errorf("nmea: unknown kind %s", k)
}

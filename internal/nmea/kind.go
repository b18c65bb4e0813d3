package nmea

import (
	"fmt"
	"strings"
)

// Kind identifies a sentence by the three type characters of its header.
type Kind int

const (
	Unrecognized Kind = iota
	GGA
	GSA
	GSV
	RMC
	VTG

	kindCount
)

// Kinds lists the supported sentence kinds in a stable order.
var Kinds = []Kind{GGA, GSA, GSV, RMC, VTG}

func (k Kind) String() string {
	switch k {
	case GGA:
		return "GGA"
	case GSA:
		return "GSA"
	case GSV:
		return "GSV"
	case RMC:
		return "RMC"
	case VTG:
		return "VTG"
	default:
		return "UNRECOGNIZED"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	if string(b) == "UNRECOGNIZED" {
		*k = Unrecognized
		return nil
	}
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind accepts a three letter type code in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GGA":
		return GGA, nil
	case "GSA":
		return GSA, nil
	case "GSV":
		return GSV, nil
	case "RMC":
		return RMC, nil
	case "VTG":
		return VTG, nil
	}
	return Unrecognized, fmt.Errorf("nmea: unknown sentence kind %q", s)
}

// Classify inspects the first six bytes of a sentence ('$', two talker ID
// characters, three type characters) and returns its kind. Only offsets 3-5
// are compared; any talker ID is accepted.
func Classify(prefix []byte) Kind {
	if len(prefix) < 6 {
		return Unrecognized
	}
	switch string(prefix[3:6]) {
	case "GGA":
		return GGA
	case "GSA":
		return GSA
	case "GSV":
		return GSV
	case "RMC":
		return RMC
	case "VTG":
		return VTG
	default:
		return Unrecognized
	}
}

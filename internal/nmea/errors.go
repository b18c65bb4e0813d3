package nmea

import "errors"

// ErrMalformedSentence is wrapped by every decode failure caused by the
// sentence bytes themselves. Use errors.Is to test for it.
var ErrMalformedSentence = errors.New("nmea: malformed sentence")

// TransportError reports a failure of the byte source feeding the decoder.
// The underlying error is kept as-is.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "nmea: transport error"
	}
	if e.Op == "" {
		return "nmea: transport: " + e.Err.Error()
	}
	return "nmea: transport " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

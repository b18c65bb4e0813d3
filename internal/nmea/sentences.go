package nmea

// Positional field tables, left to right as transmitted after the header.

var ggaFields = []field[FixRecord]{
	strField(func(r *FixRecord) *string { return &r.UTC }),
	coordFld(func(r *FixRecord) *string { return &r.Latitude }, func(r *FixRecord) *string { return &r.LatitudeDMS }),
	hemiFld(func(r *FixRecord) *Char { return &r.NS }, func(r *FixRecord) *string { return &r.Latitude }, func(r *FixRecord) *string { return &r.LatitudeDMS }),
	coordFld(func(r *FixRecord) *string { return &r.Longitude }, func(r *FixRecord) *string { return &r.LongitudeDMS }),
	hemiFld(func(r *FixRecord) *Char { return &r.EW }, func(r *FixRecord) *string { return &r.Longitude }, func(r *FixRecord) *string { return &r.LongitudeDMS }),
	charFld(func(r *FixRecord) *Char { return &r.FixFlag }),
	strField(func(r *FixRecord) *string { return &r.NumSats }),
	strField(func(r *FixRecord) *string { return &r.HDOP }),
	strField(func(r *FixRecord) *string { return &r.Altitude }),
	charFld(func(r *FixRecord) *Char { return &r.AltitudeUnit }),
	strField(func(r *FixRecord) *string { return &r.GeoidalSep }),
	charFld(func(r *FixRecord) *Char { return &r.GeoidalSepUnit }),
	strField(func(r *FixRecord) *string { return &r.AgeOfCorrections }),
}

var gsaFields = func() []field[DOPRecord] {
	f := []field[DOPRecord]{
		charFld(func(r *DOPRecord) *Char { return &r.Mode1 }),
		charFld(func(r *DOPRecord) *Char { return &r.Mode2 }),
	}
	for i := 0; i < dopSatelliteSlots; i++ {
		f = append(f, strField(func(r *DOPRecord) *string { return &r.Satellites[i] }))
	}
	return append(f,
		strField(func(r *DOPRecord) *string { return &r.PDOP }),
		strField(func(r *DOPRecord) *string { return &r.HDOP }),
		strField(func(r *DOPRecord) *string { return &r.VDOP }),
	)
}()

// gsvHeader holds the three leading GSV fields; the satellite quads
// follow and are placed by the accumulator.
type gsvHeader struct {
	numMessages      int
	messageIndex     int
	satellitesInView int
}

var gsvHeaderFields = []field[gsvHeader]{
	intFld(func(r *gsvHeader) *int { return &r.numMessages }),
	intFld(func(r *gsvHeader) *int { return &r.messageIndex }),
	intFld(func(r *gsvHeader) *int { return &r.satellitesInView }),
}

var satelliteFields = []field[Satellite]{
	intFld(func(r *Satellite) *int { return &r.ID }),
	intFld(func(r *Satellite) *int { return &r.Elevation }),
	intFld(func(r *Satellite) *int { return &r.Azimuth }),
	intFld(func(r *Satellite) *int { return &r.SNR }),
}

var rmcFields = []field[TrackRecord]{
	strField(func(r *TrackRecord) *string { return &r.UTC }),
	charFld(func(r *TrackRecord) *Char { return &r.Status }),
	coordFld(func(r *TrackRecord) *string { return &r.Latitude }, nil),
	hemiFld(func(r *TrackRecord) *Char { return &r.NS }, nil, nil),
	coordFld(func(r *TrackRecord) *string { return &r.Longitude }, nil),
	hemiFld(func(r *TrackRecord) *Char { return &r.EW }, nil, nil),
	strField(func(r *TrackRecord) *string { return &r.SpeedKnots }),
	strField(func(r *TrackRecord) *string { return &r.CourseDeg }),
	strField(func(r *TrackRecord) *string { return &r.Date }),
	strField(func(r *TrackRecord) *string { return &r.MagVar }),
	charFld(func(r *TrackRecord) *Char { return &r.MagVarDir }),
	charFld(func(r *TrackRecord) *Char { return &r.Mode }),
}

var vtgFields = []field[VectorRecord]{
	strField(func(r *VectorRecord) *string { return &r.CourseTrue }),
	charFld(func(r *VectorRecord) *Char { return &r.TrueRef }),
	strField(func(r *VectorRecord) *string { return &r.CourseMagnetic }),
	charFld(func(r *VectorRecord) *Char { return &r.MagneticRef }),
	strField(func(r *VectorRecord) *string { return &r.SpeedKnots }),
	charFld(func(r *VectorRecord) *Char { return &r.KnotsUnit }),
	strField(func(r *VectorRecord) *string { return &r.SpeedKmh }),
	charFld(func(r *VectorRecord) *Char { return &r.KmhUnit }),
	charFld(func(r *VectorRecord) *Char { return &r.Mode }),
}

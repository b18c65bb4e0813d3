package nmea

import (
	"strconv"
	"strings"
	"time"
)

// FixRecord is decoded from GGA.
type FixRecord struct {
	UTC string `json:"utc"`
	// Latitude is the raw ddmm.mmmm token; LatitudeDMS is its rendering
	// with the hemisphere appended, e.g. 48°07'02.28"N.
	Latitude     string `json:"lat"`
	LatitudeDMS  string `json:"lat_dms"`
	NS           Char   `json:"ns"`
	Longitude    string `json:"lon"`
	LongitudeDMS string `json:"lon_dms"`
	EW           Char   `json:"ew"`
	// FixFlag is the position fix indicator: '0' invalid, '1' GPS, '2' DGPS.
	FixFlag          Char   `json:"fix"`
	NumSats          string `json:"num_sats"`
	HDOP             string `json:"hdop"`
	Altitude         string `json:"alt"`
	AltitudeUnit     Char   `json:"alt_unit"`
	GeoidalSep       string `json:"geoidal_sep"`
	GeoidalSepUnit   Char   `json:"geoidal_sep_unit"`
	AgeOfCorrections string `json:"age_of_corr"`
	Checksum         string `json:"checksum"`
}

// Fixed reports whether the receiver claims a valid position.
func (r FixRecord) Fixed() bool {
	return r.FixFlag >= '1' && r.FixFlag <= '9'
}

func (r FixRecord) LatitudeDegrees() (float64, bool)  { return Degrees(r.Latitude, r.NS) }
func (r FixRecord) LongitudeDegrees() (float64, bool) { return Degrees(r.Longitude, r.EW) }

func (r FixRecord) NumSatellites() int { return parseInt(r.NumSats) }

func (r FixRecord) AltitudeMeters() (float64, bool) { return parseFloat(r.Altitude) }

// AltitudeString is the altitude followed by its unit, e.g. "545.4 M".
func (r FixRecord) AltitudeString() string {
	if r.Altitude == "" {
		return ""
	}
	if r.AltitudeUnit == 0 {
		return r.Altitude
	}
	return r.Altitude + " " + r.AltitudeUnit.String()
}

// TimeOfDay parses the hhmmss[.sss] UTC token as an offset from midnight.
func (r FixRecord) TimeOfDay() (time.Duration, bool) { return parseTimeOfDay(r.UTC) }

const dopSatelliteSlots = 12

// DOPRecord is decoded from GSA.
type DOPRecord struct {
	// Mode1 is 'M' (manual) or 'A' (automatic 2D/3D); Mode2 is '1' no fix,
	// '2' 2D, '3' 3D.
	Mode1 Char `json:"mode1"`
	Mode2 Char `json:"mode2"`
	// Satellites holds the IDs used in the fix; an empty slot is unused.
	Satellites [dopSatelliteSlots]string `json:"satellites"`
	PDOP       string                   `json:"pdop"`
	HDOP       string                   `json:"hdop"`
	VDOP       string                   `json:"vdop"`
	Checksum   string                   `json:"checksum"`
}

func (r DOPRecord) PositionDOP() (float64, bool) { return parseFloat(r.PDOP) }

// UsedSatellites returns the non-empty satellite slots in order.
func (r DOPRecord) UsedSatellites() []string {
	out := make([]string, 0, len(r.Satellites))
	for _, s := range r.Satellites {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Unknown marks a satellite table value that no GSV page has reported.
const Unknown = -1

// MaxSatellites is the capacity of the merged GSV table.
const MaxSatellites = 15

type Satellite struct {
	ID        int `json:"id"`
	Elevation int `json:"elv"`
	Azimuth   int `json:"azm"`
	SNR       int `json:"snr"`
}

// UnknownSatellite fills table slots that are not populated.
var UnknownSatellite = Satellite{ID: Unknown, Elevation: Unknown, Azimuth: Unknown, SNR: Unknown}

func (s Satellite) Known() bool { return s != UnknownSatellite }

// SkyViewRecord is the satellite table merged from successive GSV pages.
type SkyViewRecord struct {
	NumMessages      int                      `json:"num_messages"`
	MessageIndex     int                      `json:"message_index"`
	SatellitesInView int                      `json:"satellites_in_view"`
	Satellites       [MaxSatellites]Satellite `json:"satellites"`
	Checksum         string                   `json:"checksum"`
}

// Visible returns the populated table entries, at most SatellitesInView.
func (r SkyViewRecord) Visible() []Satellite {
	limit := min(r.SatellitesInView, MaxSatellites)
	out := make([]Satellite, 0, max(limit, 0))
	for i := 0; i < limit; i++ {
		if r.Satellites[i].Known() {
			out = append(out, r.Satellites[i])
		}
	}
	return out
}

// TrackRecord is decoded from RMC.
type TrackRecord struct {
	UTC string `json:"utc"`
	// Status is 'A' for valid data and 'V' for void.
	Status     Char   `json:"status"`
	Latitude   string `json:"lat"`
	NS         Char   `json:"ns"`
	Longitude  string `json:"lon"`
	EW         Char   `json:"ew"`
	SpeedKnots string `json:"sog"`
	CourseDeg  string `json:"cog"`
	// Date is ddmmyy.
	Date      string `json:"date"`
	MagVar    string `json:"mag_var"`
	MagVarDir Char   `json:"mag_var_dir"`
	// Mode is 'A' autonomous, 'D' differential or 'E' estimated.
	Mode     Char   `json:"mode"`
	Checksum string `json:"checksum"`
}

func (r TrackRecord) Valid() bool { return r.Status == 'A' }

func (r TrackRecord) LatitudeDegrees() (float64, bool)  { return Degrees(r.Latitude, r.NS) }
func (r TrackRecord) LongitudeDegrees() (float64, bool) { return Degrees(r.Longitude, r.EW) }

func (r TrackRecord) TimeOfDay() (time.Duration, bool) { return parseTimeOfDay(r.UTC) }

// DateString reorders the ddmmyy date as MM/DD/YY.
func (r TrackRecord) DateString() string {
	if len(r.Date) < 6 {
		return ""
	}
	d := r.Date
	return d[2:4] + "/" + d[0:2] + "/" + d[4:6]
}

// VectorRecord is decoded from VTG.
type VectorRecord struct {
	CourseTrue     string `json:"course_true"`
	TrueRef        Char   `json:"true_ref"`
	CourseMagnetic string `json:"course_mag"`
	MagneticRef    Char   `json:"mag_ref"`
	SpeedKnots     string `json:"speed_kn"`
	KnotsUnit      Char   `json:"kn_unit"`
	SpeedKmh       string `json:"speed_kmh"`
	KmhUnit        Char   `json:"kmh_unit"`
	Mode           Char   `json:"mode"`
	Checksum       string `json:"checksum"`
}

func (r VectorRecord) SpeedKnotsValue() (float64, bool) { return parseFloat(r.SpeedKnots) }
func (r VectorRecord) SpeedKmhValue() (float64, bool)   { return parseFloat(r.SpeedKmh) }
func (r VectorRecord) Heading() (float64, bool)         { return parseFloat(r.CourseTrue) }

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseTimeOfDay(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 6 || !allDigits(s[:6]) {
		return 0, false
	}
	hh, _ := strconv.Atoi(s[0:2])
	mm, _ := strconv.Atoi(s[2:4])
	ss, err := strconv.ParseFloat(s[4:], 64)
	if err != nil || hh > 23 || mm > 59 || ss >= 61 {
		return 0, false
	}
	d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	d += time.Duration(ss * float64(time.Second))
	return d, true
}

package nmea

import "fmt"

// satellitesPerPage is the number of satellite quads carried by one GSV
// sentence.
const satellitesPerPage = 4

// maxPages is the highest page index whose slice starts inside the table.
const maxPages = (MaxSatellites + satellitesPerPage - 1) / satellitesPerPage

func emptySkyView() SkyViewRecord {
	var r SkyViewRecord
	for i := range r.Satellites {
		r.Satellites[i] = UnknownSatellite
	}
	return r
}

// mergeGSV applies one GSV page to prev and returns the merged record.
// Page m owns slots [(m-1)*4, (m-1)*4+4); every other slot is carried over
// from prev. A quad whose satellite ID is missing resets its slot to
// UnknownSatellite. Slots past the table capacity are dropped.
func mergeGSV(prev SkyViewRecord, raw RawSentence) (SkyViewRecord, error) {
	var h gsvHeader
	n := decodeFields(&h, gsvHeaderFields, raw.Fields)
	if n < 2 || h.messageIndex < 1 || h.messageIndex > maxPages {
		return prev, fmt.Errorf("%w: gsv message index %d out of range", ErrMalformedSentence, h.messageIndex)
	}

	out := prev
	out.NumMessages = h.numMessages
	out.MessageIndex = h.messageIndex
	out.SatellitesInView = h.satellitesInView
	out.Checksum = raw.Checksum

	quads := raw.Fields[n:]
	base := (h.messageIndex - 1) * satellitesPerPage
	for q := 0; q < satellitesPerPage; q++ {
		slot := base + q
		if slot >= MaxSatellites {
			break
		}
		off := q * len(satelliteFields)
		if off >= len(quads) || quads[off] == "" {
			out.Satellites[slot] = UnknownSatellite
			continue
		}
		// Empty fields inside a quad with an ID read as 0.
		var sat Satellite
		decodeFields(&sat, satelliteFields, quads[off:])
		out.Satellites[slot] = sat
	}
	return out, nil
}

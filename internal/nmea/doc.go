// Package nmea decodes the NMEA-0183 sentences emitted by a PmodGPS-class
// receiver into typed records.
//
// Supported sentences:
// - GGA fix data (with a degree/minute/second rendering of the position)
// - GSA DOP and active satellites
// - GSV satellites in view, merged across up to four pages
// - RMC recommended minimum data
// - VTG course and speed over ground
//
// Checksums are captured into each record but not verified.
package nmea

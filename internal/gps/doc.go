// Package gps runs an NMEA decoder against a live or recorded receiver feed.
//
// A Service owns one nmea.Decoder, reads lines from the configured source
// (serial port, TCP feed or replay log) and hands every decoded record to
// its sinks.
package gps

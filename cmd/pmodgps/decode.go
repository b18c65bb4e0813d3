package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"pmodgps/internal/nmea"
)

type decodedLine struct {
	Line   int       `json:"line"`
	Kind   nmea.Kind `json:"kind"`
	Record any       `json:"record"`
}

type decodeStats struct {
	Lines     int
	Decoded   int
	Malformed int
	Kinds     map[nmea.Kind]int
}

// decodeStream decodes every line of r. Replay-log lines ("<t_ns>,$...")
// have their timestamp dropped; START markers and comments are skipped.
func decodeStream(r io.Reader, out, errOut io.Writer, maxLen int) (decodeStats, error) {
	st := decodeStats{Kinds: map[nmea.Kind]int{}}
	dec := nmea.NewDecoder(maxLen)
	enc := json.NewEncoder(out)

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 64*1024)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" || line == "START" || strings.HasPrefix(line, "#") {
			continue
		}
		line = stripTimestamp(line)
		st.Lines++

		kind, err := dec.Decode([]byte(line + "\r\n"))
		if err != nil {
			st.Malformed++
			fmt.Fprintf(errOut, "line %d: %v\n", lineNo, err)
			continue
		}
		rec, err := dec.Record(kind)
		if err != nil {
			return st, err
		}
		st.Decoded++
		st.Kinds[kind]++
		if err := enc.Encode(decodedLine{Line: lineNo, Kind: kind, Record: rec}); err != nil {
			return st, err
		}
	}
	return st, s.Err()
}

func stripTimestamp(line string) string {
	i := strings.Index(line, ",$")
	if i <= 0 {
		return line
	}
	for _, c := range line[:i] {
		if c < '0' || c > '9' {
			return line
		}
	}
	return line[i+1:]
}

func runDecodeFile(path string, stdout, stderr io.Writer) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "decode: %v\n", err)
		return 1
	}
	defer f.Close()

	st, err := decodeStream(f, stdout, stderr, nmea.DefaultMaxSentenceBytes)
	parts := make([]string, 0, len(nmea.Kinds))
	for _, k := range nmea.Kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, st.Kinds[k]))
	}
	fmt.Fprintf(stderr, "lines=%d decoded=%d malformed=%d %s\n", st.Lines, st.Decoded, st.Malformed, strings.Join(parts, " "))
	if err != nil {
		fmt.Fprintf(stderr, "decode: %v\n", err)
		return 1
	}
	return 0
}

// Package replay records received NMEA lines with their timing and plays
// them back.
//
// Log format, one entry per line:
//
//	START                  origin reset; later timestamps count from here
//	<t_ns>,<sentence>      sentence received t_ns nanoseconds after START
//	$...                   bare sentence, reuses the previous timestamp
//	# ...                  comment
//
// Sentences are stored without their CR/LF terminator. Raw receiver
// captures are therefore valid logs as-is.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Record struct {
	At time.Duration
	// Sentence is nil for START markers.
	Sentence []byte
}

// IsStart reports whether r is an origin reset.
func (r Record) IsStart() bool { return r.Sentence == nil }

// Line returns the sentence with a CR/LF terminator, ready for decoding.
func (r Record) Line() []byte {
	if r.IsStart() {
		return nil
	}
	out := make([]byte, 0, len(r.Sentence)+2)
	out = append(out, r.Sentence...)
	return append(out, '\r', '\n')
}

// ParseLine parses one log line. last is the timestamp of the previous
// record and is used for bare sentences. ok is false for blank lines and
// comments.
func ParseLine(line string, last time.Duration) (rec Record, ok bool, err error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "" || strings.HasPrefix(line, "#"):
		return Record{}, false, nil
	case line == "START":
		return Record{}, true, nil
	case strings.HasPrefix(line, "$"):
		return Record{At: last, Sentence: []byte(line)}, true, nil
	}

	tsStr, sentence, found := strings.Cut(line, ",")
	if !found {
		return Record{}, false, fmt.Errorf("missing comma: %q", line)
	}
	tsStr = strings.TrimSpace(tsStr)
	sentence = strings.TrimSpace(sentence)
	if !strings.HasPrefix(sentence, "$") {
		return Record{}, false, fmt.Errorf("sentence must start with '$': %q", line)
	}
	ns, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return Record{}, false, fmt.Errorf("invalid timestamp %q: %w", tsStr, err)
	}
	if ns < 0 {
		return Record{}, false, fmt.Errorf("invalid timestamp (negative): %d", ns)
	}
	return Record{At: time.Duration(ns), Sentence: []byte(sentence)}, true, nil
}

type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (rr *Reader) ReadAll() ([]Record, error) {
	s := bufio.NewScanner(rr.r)
	s.Buffer(make([]byte, 0, 4096), 64*1024)

	var recs []Record
	var last time.Duration
	for lineNo := 1; s.Scan(); lineNo++ {
		rec, ok, err := ParseLine(s.Text(), last)
		if err != nil {
			return nil, fmt.Errorf("replay line %d: %w", lineNo, err)
		}
		if !ok {
			continue
		}
		last = rec.At
		recs = append(recs, rec)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// ReadFile loads a whole log from disk.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewReader(f).ReadAll()
}

// Writer appends received lines to a log. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	w      *bufio.Writer
	start  time.Time
	lines  uint64
	closed bool
}

// CreateWriter truncates path and starts a new segment.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriterSize(f, 64*1024)
	if _, err := bw.WriteString("START\n"); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{f: f, w: bw, start: time.Now()}, nil
}

var errWriterClosed = errors.New("replay writer is closed")

// WriteLine records one received line at now. The terminator is dropped;
// lines that do not start with '$' are skipped since they can't be
// replayed.
func (ww *Writer) WriteLine(now time.Time, line []byte) error {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 || line[0] != '$' {
		return nil
	}
	if bytes.ContainsAny(line, "\r\n") {
		return fmt.Errorf("replay: embedded line break in sentence")
	}

	ww.mu.Lock()
	defer ww.mu.Unlock()
	if ww.closed {
		return errWriterClosed
	}
	d := max(now.Sub(ww.start), 0)
	if _, err := fmt.Fprintf(ww.w, "%d,%s\n", d.Nanoseconds(), line); err != nil {
		return err
	}
	ww.lines++
	return nil
}

// Lines reports how many sentences were written.
func (ww *Writer) Lines() uint64 {
	ww.mu.Lock()
	defer ww.mu.Unlock()
	return ww.lines
}

func (ww *Writer) Flush() error {
	ww.mu.Lock()
	defer ww.mu.Unlock()
	if ww.closed {
		return nil
	}
	return ww.w.Flush()
}

func (ww *Writer) Close() error {
	ww.mu.Lock()
	defer ww.mu.Unlock()
	if ww.closed {
		return nil
	}
	ww.closed = true
	ferr := ww.w.Flush()
	cerr := ww.f.Close()
	return errors.Join(ferr, cerr)
}

// Sleeper waits for d or until ctx ends; it reports whether the full wait
// elapsed.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) bool
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Play hands each sentence to cb, terminator included, spaced by the
// recorded gaps divided by speed. The first sentence after a START is
// delivered without waiting. With loop set, playback restarts until ctx
// ends or cb fails.
func Play(ctx context.Context, records []Record, speed float64, loop bool, sleeper Sleeper, cb func(line []byte) error) error {
	switch {
	case speed <= 0:
		return fmt.Errorf("replay speed must be > 0")
	case cb == nil:
		return errors.New("callback is nil")
	case len(records) == 0:
		return errors.New("no records")
	}
	if sleeper == nil {
		sleeper = timerSleeper{}
	}

	for {
		if err := playOnce(ctx, records, speed, sleeper, cb); err != nil {
			return err
		}
		if !loop {
			return nil
		}
	}
}

func playOnce(ctx context.Context, records []Record, speed float64, sleeper Sleeper, cb func([]byte) error) error {
	var prev time.Duration
	fresh := true
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.IsStart() {
			fresh = true
			continue
		}
		if !fresh {
			if gap := time.Duration(float64(max(r.At-prev, 0)) / speed); gap > 0 {
				if !sleeper.Sleep(ctx, gap) {
					return ctx.Err()
				}
			}
		}
		if err := cb(r.Line()); err != nil {
			return err
		}
		prev = r.At
		fresh = false
	}
	return nil
}

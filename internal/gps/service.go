package gps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"pmodgps/internal/metrics"
	"pmodgps/internal/nmea"
	"pmodgps/internal/receiver"
	"pmodgps/internal/replay"
	"pmodgps/internal/source"
)

const (
	SourceSerial = "serial"
	SourceTCP    = "tcp"
	SourceReplay = "replay"
)

var (
	openSerialFn    = source.OpenSerial
	resetReceiverFn = receiver.Reset
)

// Config controls where sentences come from.
//
// Device may be empty to auto-detect. Reset only applies to the serial
// source, where the receiver is wired to this host.
type Config struct {
	Source string

	Device string
	Baud   int

	Addr           string
	ReconnectDelay time.Duration

	ReplayPath  string
	ReplaySpeed float64
	ReplayLoop  bool

	MaxSentenceBytes int

	Reset receiver.Config

	// RecordPath, when set, captures every received line to a replay log.
	RecordPath string

	HistorySize int
}

// Update is one decoded record handed to sinks.
type Update struct {
	Kind   nmea.Kind `json:"kind"`
	At     time.Time `json:"at"`
	Record any       `json:"record"`
}

// Sink receives every decoded record. Publish runs on the decoding
// goroutine and should not block for long.
type Sink interface {
	Name() string
	Publish(u Update) error
}

type Snapshot struct {
	Source     string `json:"source"`
	Device     string `json:"device,omitempty"`
	Baud       int    `json:"baud,omitempty"`
	Addr       string `json:"addr,omitempty"`
	ReplayPath string `json:"replay_path,omitempty"`
	RecordPath string `json:"record_path,omitempty"`
	Running    bool   `json:"running"`

	Lines           uint64            `json:"lines"`
	Decoded         map[string]uint64 `json:"decoded"`
	Malformed       uint64            `json:"malformed"`
	TransportErrors uint64            `json:"transport_errors"`
	SinkErrors      uint64            `json:"sink_errors"`

	Fixed            bool `json:"fixed"`
	SatellitesInView int  `json:"satellites_in_view"`

	// Records holds the latest record of every kind decoded so far.
	Records map[string]any `json:"records,omitempty"`

	TCP *source.TCPSnapshot `json:"tcp,omitempty"`

	LastSentenceUTC string `json:"last_sentence_utc,omitempty"`
	LastError       string `json:"last_error,omitempty"`
}

type Service struct {
	cfg     Config
	sinks   []Sink
	metrics *metrics.Metrics
	history *History
	now     func() time.Time

	mu        sync.Mutex
	dec       *nmea.Decoder
	lines     uint64
	decoded   map[nmea.Kind]uint64
	malformed uint64
	transport uint64
	sinkErrs  uint64
	lastAt    time.Time
	lastErr   string
	device    string
	running   bool
	cancel    context.CancelFunc
	closer    io.Closer
	tcp       *source.TCPClient
	rec       *replay.Writer
	wg        sync.WaitGroup
}

func New(cfg Config, sinks ...Sink) *Service {
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	if cfg.Source == "" {
		cfg.Source = SourceSerial
	}
	if cfg.Baud == 0 {
		cfg.Baud = source.DefaultBaud
	}
	if cfg.MaxSentenceBytes <= 0 {
		cfg.MaxSentenceBytes = nmea.DefaultMaxSentenceBytes
	}
	if cfg.ReplaySpeed <= 0 {
		cfg.ReplaySpeed = 1
	}
	out := make([]Sink, 0, len(sinks))
	for _, sk := range sinks {
		if sk != nil {
			out = append(out, sk)
		}
	}
	return &Service{
		cfg:     cfg,
		sinks:   out,
		history: NewHistory(cfg.HistorySize),
		now:     time.Now,
		dec:     nmea.NewDecoder(cfg.MaxSentenceBytes),
		decoded: make(map[nmea.Kind]uint64),
		device:  cfg.Device,
	}
}

// SetMetrics attaches counters. Call before Start.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()
}

func (s *Service) History() *History {
	if s == nil {
		return nil
	}
	return s.history
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	if s.cfg.RecordPath != "" {
		w, err := replay.CreateWriter(s.cfg.RecordPath)
		if err != nil {
			return fmt.Errorf("gps record open failed path=%s: %w", s.cfg.RecordPath, err)
		}
		s.rec = w
		log.Printf("gps recording path=%s", s.cfg.RecordPath)
	}

	var err error
	switch s.cfg.Source {
	case SourceSerial:
		err = s.startSerialLocked(ctx)
	case SourceTCP:
		err = s.startTCPLocked(ctx)
	case SourceReplay:
		err = s.startReplayLocked(ctx)
	default:
		err = fmt.Errorf("gps source %q not supported", s.cfg.Source)
	}
	if err != nil {
		if s.rec != nil {
			_ = s.rec.Close()
			s.rec = nil
		}
		s.setErrorLocked(err.Error())
		return err
	}
	s.running = true
	return nil
}

func (s *Service) startSerialLocked(ctx context.Context) error {
	device := strings.TrimSpace(s.cfg.Device)
	if device == "" {
		device = source.AutoDetectDevice()
		if device == "" {
			return fmt.Errorf("gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
		}
	}
	s.device = device

	// The port is open before the reset pulse so the receiver's start-up
	// output is buffered for DiscardStartup rather than flushed by the open.
	port, err := openSerialFn(device, s.cfg.Baud)
	if err != nil {
		return fmt.Errorf("gps open failed device=%s baud=%d: %w", device, s.cfg.Baud, err)
	}
	if err := resetReceiverFn(s.cfg.Reset); err != nil {
		_ = port.Close()
		return fmt.Errorf("gps reset failed: %w", err)
	}
	s.closer = port

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { _ = port.Close() }()

		log.Printf("gps enabled source=serial device=%s baud=%d", device, s.cfg.Baud)
		lr := source.NewLineReader(port, s.cfg.MaxSentenceBytes)

		if s.cfg.Reset.Enable {
			n := s.cfg.Reset.DiscardLines
			if n <= 0 {
				n = receiver.DefaultDiscardLines
			}
			if err := receiver.DiscardStartup(lr, n); err != nil {
				s.transportError(childCtx, err)
				return
			}
		}
		s.readLoop(childCtx, lr)
	}()
	return nil
}

func (s *Service) startTCPLocked(ctx context.Context) error {
	c, err := source.NewTCPClient(source.TCPConfig{
		Addr:           s.cfg.Addr,
		ReconnectDelay: s.cfg.ReconnectDelay,
		MaxLineBytes:   s.cfg.MaxSentenceBytes,
	})
	if err != nil {
		return err
	}
	childCtx, cancel := context.WithCancel(ctx)
	if err := c.Start(childCtx, func(line []byte) { _, _ = s.HandleLine(line) }); err != nil {
		cancel()
		return err
	}
	s.cancel = cancel
	s.tcp = c
	s.closer = closerFunc(func() error { c.Close(); return nil })
	log.Printf("gps enabled source=tcp addr=%s", s.cfg.Addr)
	return nil
}

func (s *Service) startReplayLocked(ctx context.Context) error {
	recs, err := replay.ReadFile(s.cfg.ReplayPath)
	if err != nil {
		return fmt.Errorf("gps replay load failed path=%s: %w", s.cfg.ReplayPath, err)
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Printf("gps enabled source=replay path=%s speed=%.2f loop=%t records=%d", s.cfg.ReplayPath, s.cfg.ReplaySpeed, s.cfg.ReplayLoop, len(recs))
		err := replay.Play(childCtx, recs, s.cfg.ReplaySpeed, s.cfg.ReplayLoop, nil, func(line []byte) error {
			_, _ = s.HandleLine(line)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.setError(fmt.Sprintf("gps replay stopped: %v", err))
			log.Printf("gps replay stopped: %v", err)
		}
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()
	return nil
}

func (s *Service) readLoop(ctx context.Context, r source.SentenceReader) {
	for {
		if ctx.Err() != nil {
			return
		}
		line, err := r.ReadSentence()
		if err != nil {
			s.transportError(ctx, err)
			return
		}
		_, _ = s.HandleLine(line)
	}
}

func (s *Service) transportError(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	s.transport++
	s.running = false
	m := s.metrics
	s.setErrorLocked(fmt.Sprintf("gps read stopped: %v", err))
	s.mu.Unlock()
	m.TransportError()
	log.Printf("gps read stopped: %v", err)
}

// HandleLine decodes one received line, updates counters and publishes the
// resulting record. It is safe for concurrent use.
func (s *Service) HandleLine(line []byte) (nmea.Kind, error) {
	if s == nil {
		return nmea.Unrecognized, fmt.Errorf("gps service is nil")
	}
	now := s.now().UTC()

	s.mu.Lock()
	s.lines++
	s.lastAt = now
	kind, err := s.dec.Decode(line)
	var upd Update
	if err != nil {
		s.malformed++
		s.lastErr = err.Error()
	} else {
		s.decoded[kind]++
		rec, _ := s.dec.Record(kind)
		upd = Update{Kind: kind, At: now, Record: rec}
	}
	fixed := s.dec.Has(nmea.GGA) && s.dec.Fix().Fixed()
	inView := 0
	if s.dec.Has(nmea.GSV) {
		inView = s.dec.SkyView().SatellitesInView
	}
	m := s.metrics
	rw := s.rec
	if rw != nil {
		if werr := rw.WriteLine(now, line); werr != nil {
			s.lastErr = fmt.Sprintf("gps record write failed: %v", werr)
		}
	}
	s.mu.Unlock()

	e := Entry{At: now, Line: printable(line), Kind: kind.String()}
	if err != nil {
		e.Error = err.Error()
		m.Malformed()
	} else {
		m.Decoded(kind)
		m.SetFixed(fixed)
		m.SetSatellitesInView(inView)
	}
	s.history.Add(e)

	if err != nil {
		return kind, err
	}
	for _, sk := range s.sinks {
		if perr := sk.Publish(upd); perr != nil {
			m.SinkError(sk.Name())
			s.mu.Lock()
			s.sinkErrs++
			s.lastErr = fmt.Sprintf("%s publish failed: %v", sk.Name(), perr)
			s.mu.Unlock()
		}
	}
	return kind, nil
}

// Record returns a copy of the latest record of kind k.
func (s *Service) Record(k nmea.Kind) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dec.Has(k) {
		return nil, false
	}
	rec, err := s.dec.Record(k)
	if err != nil {
		return nil, false
	}
	return rec, true
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	closer := s.closer
	s.cancel = nil
	s.closer = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer != nil {
		_ = closer.Close()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.running = false
	if s.rec != nil {
		if err := s.rec.Close(); err != nil {
			log.Printf("gps record close failed: %v", err)
		}
		s.rec = nil
	}
	s.mu.Unlock()
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Snapshot{
		Source:          s.cfg.Source,
		Device:          s.device,
		Running:         s.running,
		Lines:           s.lines,
		Decoded:         make(map[string]uint64, len(nmea.Kinds)),
		Malformed:       s.malformed,
		TransportErrors: s.transport,
		SinkErrors:      s.sinkErrs,
		RecordPath:      s.cfg.RecordPath,
		LastError:       s.lastErr,
	}
	switch s.cfg.Source {
	case SourceSerial:
		out.Baud = s.cfg.Baud
	case SourceTCP:
		out.Addr = s.cfg.Addr
		if s.tcp != nil {
			ts := s.tcp.Snapshot()
			out.TCP = &ts
		}
	case SourceReplay:
		out.ReplayPath = s.cfg.ReplayPath
	}
	for _, k := range nmea.Kinds {
		out.Decoded[k.String()] = s.decoded[k]
		if s.dec.Has(k) {
			if out.Records == nil {
				out.Records = make(map[string]any, len(nmea.Kinds))
			}
			rec, _ := s.dec.Record(k)
			out.Records[k.String()] = rec
		}
	}
	if s.dec.Has(nmea.GGA) {
		out.Fixed = s.dec.Fix().Fixed()
	}
	if s.dec.Has(nmea.GSV) {
		out.SatellitesInView = s.dec.SkyView().SatellitesInView
	}
	if !s.lastAt.IsZero() {
		out.LastSentenceUTC = s.lastAt.Format(time.RFC3339Nano)
	}
	return out
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(msg)
}

func (s *Service) setErrorLocked(msg string) {
	s.lastErr = msg
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// printable trims the terminator so history entries read cleanly.
func printable(line []byte) string {
	return string(bytes.TrimRight(line, "\r\n"))
}

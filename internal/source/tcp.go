package source

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

// TCPConfig describes a network NMEA feed (ser2net, a GNSS bridge, ...).
//
// After a failed dial or a dropped connection the client waits
// ReconnectDelay, doubling the wait on each consecutive failure up to
// MaxReconnectDelay.
type TCPConfig struct {
	Addr string

	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	DialTimeout       time.Duration
	MaxLineBytes      int
}

const (
	tcpStopped      = "stopped"
	tcpConnecting   = "connecting"
	tcpConnected    = "connected"
	tcpDisconnected = "disconnected"
	tcpError        = "error"
)

// TCPClient reads NMEA lines from a TCP endpoint and reconnects on loss.
type TCPClient struct {
	cfg TCPConfig

	mu       sync.Mutex
	started  bool
	closed   bool
	state    string
	lastErr  string
	lastSeen time.Time
	lines    uint64
	connects uint64

	cancel context.CancelFunc
	done   chan struct{}
}

type TCPSnapshot struct {
	Addr        string `json:"addr"`
	State       string `json:"state"`
	Connects    uint64 `json:"connects"`
	Lines       uint64 `json:"lines"`
	LastSeenUTC string `json:"last_seen_utc,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

func NewTCPClient(cfg TCPConfig) (*TCPClient, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("tcp source addr is required")
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 1 * time.Second
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = max(30*time.Second, cfg.ReconnectDelay)
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	return &TCPClient{cfg: cfg, state: tcpStopped, done: make(chan struct{})}, nil
}

// Start connects in the background and calls onLine for every line read,
// terminator included. onLine runs on the reader goroutine.
func (c *TCPClient) Start(ctx context.Context, onLine func(line []byte)) error {
	if c == nil {
		return fmt.Errorf("tcp source is nil")
	}
	if onLine == nil {
		return fmt.Errorf("tcp source onLine is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return fmt.Errorf("tcp source is closed")
	case c.started:
		return fmt.Errorf("tcp source already started")
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = tcpConnecting

	go func() {
		defer close(c.done)
		c.run(runCtx, onLine)
		c.setState(tcpStopped, nil)
	}()
	return nil
}

func (c *TCPClient) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	started := c.started
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-c.done
	}
}

func (c *TCPClient) Snapshot() TCPSnapshot {
	if c == nil {
		return TCPSnapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := TCPSnapshot{
		Addr:      c.cfg.Addr,
		State:     c.state,
		Connects:  c.connects,
		Lines:     c.lines,
		LastError: c.lastErr,
	}
	if !c.lastSeen.IsZero() {
		out.LastSeenUTC = c.lastSeen.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (c *TCPClient) run(ctx context.Context, onLine func(line []byte)) {
	dialer := &net.Dialer{Timeout: c.cfg.DialTimeout}
	wait := c.cfg.ReconnectDelay

	for ctx.Err() == nil {
		c.setState(tcpConnecting, nil)
		conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.setState(tcpError, err)
		} else {
			wait = c.cfg.ReconnectDelay
			c.mu.Lock()
			c.connects++
			c.mu.Unlock()
			c.setState(tcpConnected, nil)
			log.Printf("gps tcp connected addr=%s", c.cfg.Addr)

			err = c.readConn(ctx, conn, onLine)
			if ctx.Err() != nil {
				return
			}
			c.setState(tcpDisconnected, err)
			log.Printf("gps tcp disconnected addr=%s: %v", c.cfg.Addr, err)
		}

		if !sleepCtx(ctx, wait) {
			return
		}
		wait = min(wait*2, c.cfg.MaxReconnectDelay)
	}
}

// readConn reads until the connection fails; the error is never nil.
func (c *TCPClient) readConn(ctx context.Context, conn net.Conn, onLine func(line []byte)) error {
	// Unblock the read when the context ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	reader := NewLineReader(conn, c.cfg.MaxLineBytes)
	for {
		line, err := reader.ReadSentence()
		if err != nil {
			return err
		}
		onLine(line)

		now := time.Now()
		c.mu.Lock()
		c.lastSeen = now
		c.lines++
		c.mu.Unlock()
	}
}

func (c *TCPClient) setState(state string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	switch {
	case err != nil:
		c.lastErr = err.Error()
	case state == tcpConnected:
		c.lastErr = ""
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Package udp sends decoded records as JSON datagrams.
package udp

import (
	"encoding/json"
	"fmt"
	"net"

	"pmodgps/internal/gps"
)

type udpConn interface {
	Write(p []byte) (int, error)
	Close() error
}

type resolveFunc func(network, address string) (*net.UDPAddr, error)

type dialFunc func(network string, laddr, raddr *net.UDPAddr) (udpConn, error)

// Broadcaster writes one datagram per decoded sentence to dest.
type Broadcaster struct {
	dest string
	conn udpConn
}

func NewBroadcaster(dest string) (*Broadcaster, error) {
	return newBroadcaster(dest, net.ResolveUDPAddr, func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return net.DialUDP(network, laddr, raddr)
	})
}

func newBroadcaster(dest string, resolve resolveFunc, dial dialFunc) (*Broadcaster, error) {
	addr, err := resolve("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("resolve dest: %w", err)
	}

	// DialUDP selects a suitable local address automatically.
	conn, err := dial("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp: %w", err)
	}

	return &Broadcaster{dest: dest, conn: conn}, nil
}

func (b *Broadcaster) Name() string { return "udp" }

func (b *Broadcaster) Dest() string { return b.dest }

// Publish implements gps.Sink.
func (b *Broadcaster) Publish(u gps.Update) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", u.Kind, err)
	}
	return b.Send(payload)
}

func (b *Broadcaster) Send(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	_, err := b.conn.Write(payload)
	return err
}

func (b *Broadcaster) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}

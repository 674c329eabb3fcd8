// Package netprobe reports whether local TCP ports are accepting connections.
//
// The validator exposes no push-based readiness signal, so callers poll the
// well-known ports instead. The wait helpers retry immediately without
// sleeping; bounding them is the caller's job via the supplied context.
package netprobe

import (
	"context"
	"net"
	"strconv"
)

// Prober performs synchronous TCP reachability checks against a single host.
type Prober struct {
	host   string
	dialer func(ctx context.Context, network, address string) (net.Conn, error)
}

// New returns a prober targeting the local host.
func New() *Prober {
	return &Prober{
		host:   "127.0.0.1",
		dialer: (&net.Dialer{}).DialContext,
	}
}

// NewWithDialer returns a prober using a custom dial function. Tests use this
// to fake port state without binding sockets.
func NewWithDialer(host string, dialer func(ctx context.Context, network, address string) (net.Conn, error)) *Prober {
	if host == "" {
		host = "127.0.0.1"
	}
	return &Prober{host: host, dialer: dialer}
}

// Scan reports whether something is currently listening on the port. Any
// dial failure, whatever the reason, counts as "not listening".
func (p *Prober) Scan(ctx context.Context, port int) bool {
	conn, err := p.dialer(ctx, "tcp", net.JoinHostPort(p.host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// WaitOpen blocks until the port accepts a connection or the context ends.
func (p *Prober) WaitOpen(ctx context.Context, port int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.Scan(ctx, port) {
			return nil
		}
	}
}

// WaitClosed blocks until the port stops accepting connections or the
// context ends.
func (p *Prober) WaitClosed(ctx context.Context, port int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.Scan(ctx, port) {
			return nil
		}
	}
}

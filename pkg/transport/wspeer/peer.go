// Package wspeer connects the plugin to its embedding host over a WebSocket.
// The host is the peer that sends open/error requests and receives
// ready/close messages.
package wspeer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-formplugin/pkg/gateway"
)

// ErrOriginMismatch is returned when a message targets an origin other than
// the connected peer's.
var ErrOriginMismatch = errors.New("wspeer: target origin does not match peer")

// Options configures Accept.
type Options struct {
	// OriginPatterns lists host patterns allowed to connect.
	OriginPatterns []string
	// Rate throttles inbound frames per second. Zero disables throttling.
	Rate float64
	// Burst is the limiter burst; defaults to 1 when Rate is set.
	Burst int
	// ReadLimit caps a single inbound frame in bytes.
	ReadLimit int64
}

// Peer is an accepted host connection.
type Peer struct {
	conn    *websocket.Conn
	origin  string
	limiter *rate.Limiter

	mu sync.Mutex
}

// Accept upgrades the request and returns the connected peer.
func Accept(w http.ResponseWriter, r *http.Request, opts Options) (*Peer, error) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: opts.OriginPatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("wspeer: accept: %w", err)
	}
	if opts.ReadLimit > 0 {
		conn.SetReadLimit(opts.ReadLimit)
	}

	peer := &Peer{
		conn:   conn,
		origin: normalizeOrigin(r.Header.Get("Origin")),
	}
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		peer.limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}
	return peer, nil
}

// Origin returns the peer's origin as scheme://host, empty when the client
// sent none.
func (p *Peer) Origin() string {
	return p.origin
}

// PostMessage writes data as a text frame when targetOrigin is "*" or matches
// the peer origin.
func (p *Peer) PostMessage(ctx context.Context, data []byte, targetOrigin string) error {
	if targetOrigin != "*" && normalizeOrigin(targetOrigin) != p.origin {
		return fmt.Errorf("%w: %q vs %q", ErrOriginMismatch, targetOrigin, p.origin)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("wspeer: write: %w", err)
	}
	return nil
}

// Serve reads frames until the peer disconnects or ctx ends, handing each
// frame to recv. A normal closure returns nil.
func (p *Peer) Serve(ctx context.Context, recv func(context.Context, gateway.Event)) error {
	for {
		_, data, err := p.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wspeer: read: %w", err)
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		recv(ctx, gateway.Event{Data: data, Origin: p.origin})
	}
}

// Close ends the connection with a normal closure.
func (p *Peer) Close() error {
	return p.conn.Close(websocket.StatusNormalClosure, "")
}

// CloseNow drops the connection without a handshake.
func (p *Peer) CloseNow() error {
	return p.conn.CloseNow()
}

func normalizeOrigin(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

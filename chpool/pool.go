// Package chpool provides a round-robin pool of ch.Client handles across
// multiple ClickHouse HTTP endpoints. Since *ch.Client already wraps a
// shared, connection-pooling *http.Client, there is no single TCP
// connection to check in/out here; instead Acquire round-robins across
// configured hosts and hands back a thin PoolConn with the familiar
// Acquire/Release/Ping/Close shape.
package chpool

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/multierr"

	"github.com/kokizzu/ch"
)

// Config lists the endpoints this pool round-robins over, plus the
// ch.Options applied to every one of them.
type Config struct {
	BaseURLs []string
	Options  []ch.Option
}

// Pool is a round-robin set of ch.Client handles, one per configured host.
type Pool struct {
	mu      sync.Mutex
	clients []*ch.Client
	next    int
	closed  bool
}

// New dials (lazily; ch.New never blocks on the network) one ch.Client per
// configured base URL.
func New(cfg Config) (*Pool, error) {
	if len(cfg.BaseURLs) == 0 {
		return nil, errors.New("chpool: at least one base URL is required")
	}
	p := &Pool{clients: make([]*ch.Client, 0, len(cfg.BaseURLs))}
	for _, url := range cfg.BaseURLs {
		c, err := ch.New(url, cfg.Options...)
		if err != nil {
			return nil, errors.Wrapf(err, "chpool: open %s", url)
		}
		p.clients = append(p.clients, c)
	}
	return p, nil
}

// PoolConn is a handle to one of the pool's underlying clients, borrowed
// for the duration of one logical unit of work.
type PoolConn struct {
	pool *Pool
	c    *ch.Client
}

// Acquire returns the next client in round-robin order. Unlike a
// connection-level pool there is nothing to block on: every client shares
// its own internally-pooled *http.Transport, so Acquire never blocks for
// network I/O the way the native-protocol chpool.Acquire could.
func (p *Pool) Acquire(ctx context.Context) (*PoolConn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ch.ErrClosed
	}
	c := p.clients[p.next]
	p.next = (p.next + 1) % len(p.clients)
	return &PoolConn{pool: p, c: c}, nil
}

// Release returns the handle to the pool. Since PoolConn doesn't own a
// dedicated connection, Release is a no-op, so calling it more than once
// is harmless.
func (pc *PoolConn) Release() {}

// Ping proxies to the underlying client's Ping.
func (pc *PoolConn) Ping(ctx context.Context) error { return pc.c.Ping(ctx) }

// Close closes the underlying client. Closing one PoolConn's client does
// not affect the other hosts in the pool.
func (pc *PoolConn) Close() error { return pc.c.Close() }

// client exposes the underlying *ch.Client for tests that need to assert
// on its state directly.
func (pc *PoolConn) client() *ch.Client { return pc.c }

// Close closes every client in the pool, joining any errors via multierr.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	var err error
	for _, c := range p.clients {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// Len reports how many hosts this pool round-robins over.
func (p *Pool) Len() int { return len(p.clients) }

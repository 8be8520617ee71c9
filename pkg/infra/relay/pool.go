// Package relay implements the caller-owned connection pool for the relay
// network. Connections open lazily on first use, are shared across concurrent
// calls, and reopen automatically after Close or a connection failure.
package relay

import (
	"context"
	"sync"
	"time"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nbd-wtf/go-nostr"
)

const defaultTimeout = 10 * time.Second

// Pool is a set of relay connections keyed by URL.
type Pool struct {
	mu      sync.Mutex
	conns   map[string]*nostr.Relay
	timeout time.Duration
}

// Option configures a Pool.
type Option func(*Pool)

// WithTimeout bounds each per-relay query or publish attempt. Expiry counts
// as an ordinary per-relay failure.
func WithTimeout(d time.Duration) Option {
	return func(p *Pool) {
		p.timeout = d
	}
}

// New creates an empty pool. No connections are opened until the first
// Query or Publish.
func New(opts ...Option) *Pool {
	p := &Pool{
		conns:   map[string]*nostr.Relay{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// connect returns a pooled connection to url, dialing if needed.
func (p *Pool) connect(ctx context.Context, url string) (*nostr.Relay, error) {
	p.mu.Lock()
	if rl, ok := p.conns[url]; ok {
		p.mu.Unlock()
		return rl, nil
	}
	p.mu.Unlock()

	rl, err := nostr.RelayConnect(ctx, url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to relay", goerr.V("relay", url))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.conns[url]; ok {
		// another goroutine won the dial race
		_ = rl.Close()
		return existing, nil
	}
	p.conns[url] = rl
	return rl, nil
}

// drop removes a connection after a failure so the next call redials.
func (p *Pool) drop(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rl, ok := p.conns[url]; ok {
		_ = rl.Close()
		delete(p.conns, url)
	}
}

// Close tears down every pooled connection. The pool stays usable: a later
// Query or Publish reconnects.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for url, rl := range p.conns {
		_ = rl.Close()
		delete(p.conns, url)
	}
}

// Query sends the filter to every relay concurrently and merges the results,
// deduplicating by event id (first arrival wins). Individual relay failures
// degrade silently into a smaller result; only total failure is an error.
func (p *Pool) Query(ctx context.Context, relays []string, filter nostr.Filter) ([]*nostr.Event, error) {
	if len(relays) == 0 {
		return nil, nil
	}

	logger := ctxlog.From(ctx)

	type result struct {
		relay  string
		events []*nostr.Event
		err    error
	}

	results := make(chan result, len(relays))
	for _, url := range relays {
		go func(url string) {
			evs, err := p.queryOne(ctx, url, filter)
			results <- result{relay: url, events: evs, err: err}
		}(url)
	}

	var lists [][]*nostr.Event
	failures := 0
	var lastErr error

	for range relays {
		res := <-results
		if res.err != nil {
			logger.Debug("relay query failed", "relay", res.relay, "error", res.err)
			failures++
			lastErr = res.err
			continue
		}
		lists = append(lists, res.events)
	}

	if failures == len(relays) {
		return nil, goerr.Wrap(lastErr, "all relays failed",
			goerr.T(types.ErrTagAllRelaysUnreachable), goerr.V("relays", relays))
	}
	return Merge(lists...), nil
}

// Merge flattens per-relay result lists into one, deduplicating by event id.
// The first arrival of an id wins; relative order within a list is kept.
func Merge(lists ...[]*nostr.Event) []*nostr.Event {
	var merged []*nostr.Event
	seen := map[string]bool{}
	for _, list := range lists {
		for _, ev := range list {
			if ev == nil || seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			merged = append(merged, ev)
		}
	}
	return merged
}

func (p *Pool) queryOne(ctx context.Context, url string, filter nostr.Filter) ([]*nostr.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rl, err := p.connect(ctx, url)
	if err != nil {
		return nil, err
	}
	evs, err := rl.QuerySync(ctx, filter)
	if err != nil {
		p.drop(url)
		return nil, err
	}
	return evs, nil
}

// Publish sends the signed event to every relay and waits for all attempts to
// settle. Individual rejections are reported in the ack list, never as an
// overall error.
func (p *Pool) Publish(ctx context.Context, relays []string, ev *nostr.Event) ([]model.PublishAck, error) {
	if len(relays) == 0 {
		return []model.PublishAck{}, nil
	}
	if ev == nil {
		return nil, goerr.New("event is required", goerr.T(types.ErrTagMissingField))
	}

	logger := ctxlog.From(ctx)

	acks := make(chan model.PublishAck, len(relays))
	for _, url := range relays {
		go func(url string) {
			ack := model.PublishAck{Relay: url, OK: true}
			if err := p.publishOne(ctx, url, ev); err != nil {
				ack.OK = false
				ack.Error = err.Error()
			}
			acks <- ack
		}(url)
	}

	out := make([]model.PublishAck, 0, len(relays))
	for range relays {
		ack := <-acks
		if !ack.OK {
			logger.Debug("relay rejected publish", "relay", ack.Relay, "error", ack.Error)
		}
		out = append(out, ack)
	}
	return out, nil
}

func (p *Pool) publishOne(ctx context.Context, url string, ev *nostr.Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rl, err := p.connect(ctx, url)
	if err != nil {
		return err
	}
	if err := rl.Publish(ctx, *ev); err != nil {
		p.drop(url)
		return err
	}
	return nil
}

package interfaces

import (
	"context"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/nbd-wtf/go-nostr"
)

// RelayClient is the seam to the relay network. Implementations hold a lazily
// opened connection pool; Close tears it down and a later call reopens it.
type RelayClient interface {
	// Query fans the filter out to every relay, merges results and dedupes
	// by event id. An empty relay set yields an empty result without error;
	// the call fails only when every relay fails.
	Query(ctx context.Context, relays []string, filter nostr.Filter) ([]*nostr.Event, error)

	// Publish sends the signed event to every relay best-effort and reports
	// per-relay acceptance. An empty relay set yields an empty ack list.
	Publish(ctx context.Context, relays []string, ev *nostr.Event) ([]model.PublishAck, error)

	// Close tears down all pooled connections.
	Close()
}

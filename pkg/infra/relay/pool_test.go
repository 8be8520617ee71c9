package relay_test

import (
	"context"
	"testing"
	"time"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/infra/relay"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nbd-wtf/go-nostr"
)

func TestQueryEmptyRelaySet(t *testing.T) {
	pool := relay.New()
	defer pool.Close()

	events, err := pool.Query(context.Background(), nil, nostr.Filter{Kinds: []int{30617}})
	if err != nil {
		t.Fatalf("Query with empty relay set returned error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Query with empty relay set returned %d events, want 0", len(events))
	}
}

func TestPublishEmptyRelaySet(t *testing.T) {
	pool := relay.New()
	defer pool.Close()

	ev := &nostr.Event{Kind: 1, CreatedAt: nostr.Now()}
	acks, err := pool.Publish(context.Background(), nil, ev)
	if err != nil {
		t.Fatalf("Publish with empty relay set returned error: %v", err)
	}
	if len(acks) != 0 {
		t.Errorf("Publish with empty relay set returned %d acks, want 0", len(acks))
	}
}

func TestPublishNilEvent(t *testing.T) {
	pool := relay.New()
	defer pool.Close()

	if _, err := pool.Publish(context.Background(), []string{"wss://example.invalid"}, nil); err == nil {
		t.Error("Publish with nil event should fail")
	}
}

func TestMergeDeduplicatesByID(t *testing.T) {
	a := &nostr.Event{ID: "aaa"}
	b := &nostr.Event{ID: "bbb"}
	c := &nostr.Event{ID: "ccc"}

	// same relay answering the same filter twice must not duplicate ids
	merged := relay.Merge([]*nostr.Event{a, b}, []*nostr.Event{a, b}, []*nostr.Event{c, nil})
	if len(merged) != 3 {
		t.Fatalf("Merge returned %d events, want 3", len(merged))
	}
	if merged[0].ID != "aaa" || merged[1].ID != "bbb" || merged[2].ID != "ccc" {
		t.Errorf("Merge order wrong: %v %v %v", merged[0].ID, merged[1].ID, merged[2].ID)
	}
}

func TestQueryAllRelaysUnreachable(t *testing.T) {
	pool := relay.New(relay.WithTimeout(200 * time.Millisecond))
	defer pool.Close()

	// reserved TLD guarantees no relay answers
	relays := []string{"wss://a.invalid", "wss://b.invalid"}
	_, err := pool.Query(context.Background(), relays, nostr.Filter{Kinds: []int{1}})
	if err == nil {
		t.Fatal("Query against unreachable relays should fail")
	}
	if !goerr.HasTag(err, types.ErrTagAllRelaysUnreachable) {
		t.Errorf("error should carry AllRelaysUnreachable tag: %v", err)
	}
}

func TestPublishUnreachableRelaysDegrade(t *testing.T) {
	pool := relay.New(relay.WithTimeout(200 * time.Millisecond))
	defer pool.Close()

	ev := &nostr.Event{Kind: 1, CreatedAt: nostr.Now()}
	acks, err := pool.Publish(context.Background(), []string{"wss://a.invalid"}, ev)
	if err != nil {
		t.Fatalf("Publish must not escalate per-relay failure: %v", err)
	}
	if len(acks) != 1 || acks[0].OK {
		t.Errorf("expected one failed ack, got %+v", acks)
	}
}

package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/event"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/nbd-wtf/go-nostr"
)

// ReactionParams identifies the repository a reaction targets.
type ReactionParams struct {
	Owner     string
	RepoID    string
	Relays    []string
	SecretKey string
}

func (uc *UseCase) publishReaction(ctx context.Context, p ReactionParams, content, action string) (*model.ReactionResult, error) {
	owner, err := keys.NormalizePublicKey(p.Owner)
	if err != nil {
		return nil, err
	}
	secret, err := uc.resolveSecret(ctx, p.SecretKey)
	if err != nil {
		return nil, err
	}

	ev, err := event.Reaction(owner, p.RepoID, content, secret)
	if err != nil {
		return nil, err
	}
	acks, err := uc.relay.Publish(ctx, uc.relaysOrDefault(p.Relays), ev)
	if err != nil {
		return nil, err
	}
	return &model.ReactionResult{
		Success: anyOK(acks),
		Action:  action,
		Repo:    p.RepoID,
		Event:   ev,
		Acks:    acks,
	}, nil
}

// StarRepo publishes a star reaction on a repository.
func (uc *UseCase) StarRepo(ctx context.Context, p ReactionParams) (*model.ReactionResult, error) {
	return uc.publishReaction(ctx, p, event.StarContent, "star")
}

// UnstarRepo publishes an empty reaction, which consumers resolve as removing
// a prior star. The old star event itself is never deleted.
func (uc *UseCase) UnstarRepo(ctx context.Context, p ReactionParams) (*model.ReactionResult, error) {
	return uc.publishReaction(ctx, p, "", "unstar")
}

// WatchRepo publishes a watch marker on a repository.
func (uc *UseCase) WatchRepo(ctx context.Context, p ReactionParams) (*model.ReactionResult, error) {
	owner, err := keys.NormalizePublicKey(p.Owner)
	if err != nil {
		return nil, err
	}
	secret, err := uc.resolveSecret(ctx, p.SecretKey)
	if err != nil {
		return nil, err
	}

	ev, err := event.Watch(owner, p.RepoID, secret)
	if err != nil {
		return nil, err
	}
	acks, err := uc.relay.Publish(ctx, uc.relaysOrDefault(p.Relays), ev)
	if err != nil {
		return nil, err
	}
	return &model.ReactionResult{
		Success: anyOK(acks),
		Action:  "watch",
		Repo:    p.RepoID,
		Event:   ev,
		Acks:    acks,
	}, nil
}

// ListStars resolves the repositories a pubkey currently stars. Reactions are
// append-only, so per repository only the newest reaction counts: a newer
// empty reaction cancels an older star.
func (uc *UseCase) ListStars(ctx context.Context, relays []string, pubkey, secretKey string) ([]model.Star, error) {
	var err error
	if pubkey == "" {
		_, pubkey, err = uc.resolvePubkey(ctx, secretKey)
		if err != nil {
			return nil, err
		}
	} else if pubkey, err = keys.NormalizePublicKey(pubkey); err != nil {
		return nil, err
	}

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(relays), nostr.Filter{
		Kinds:   []int{event.KindReaction},
		Authors: []string{pubkey},
		Limit:   200,
	})
	if err != nil {
		return nil, err
	}

	repoPrefix := "30617:"
	latest := map[string]*nostr.Event{}
	for _, ev := range events {
		addr := firstTagValue(ev, "a")
		if !strings.HasPrefix(addr, repoPrefix) {
			continue
		}
		if prev, ok := latest[addr]; !ok || ev.CreatedAt > prev.CreatedAt {
			latest[addr] = ev
		}
	}

	var stars []model.Star
	for addr, ev := range latest {
		if ev.Content != event.StarContent {
			continue
		}
		parts := strings.SplitN(addr, ":", 3)
		if len(parts) != 3 {
			continue
		}
		stars = append(stars, model.Star{
			OwnerPubkey: parts[1],
			RepoID:      parts[2],
			StarredAt:   int64(ev.CreatedAt),
		})
	}
	sort.Slice(stars, func(i, j int) bool { return stars[i].StarredAt > stars[j].StarredAt })
	return stars, nil
}

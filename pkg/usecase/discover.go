package usecase

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/event"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nbd-wtf/go-nostr"
)

// bountyLabels mark an issue as carrying a reward.
var bountyLabels = []string{"bounty", "reward", "paid"}

// ListBountiesParams filters the bounty scan.
type ListBountiesParams struct {
	Relays    []string
	MinAmount int64
	Limit     int
}

// ListBounties scans for issues labeled as bounties. The amount is read from
// an amount tag when present; issues without one pass any minimum filter
// since their reward is simply unknown.
func (uc *UseCase) ListBounties(ctx context.Context, p ListBountiesParams) ([]model.Bounty, error) {
	relays := uc.relaysOrDefault(p.Relays)
	if len(relays) == 0 {
		return []model.Bounty{}, nil
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 30
	}

	events, err := uc.relay.Query(ctx, relays, nostr.Filter{
		Kinds: []int{event.KindIssue},
		Tags:  nostr.TagMap{"t": bountyLabels},
		Limit: limit * 2,
	})
	if err != nil {
		return nil, err
	}

	bounties := make([]model.Bounty, 0, len(events))
	for _, ev := range events {
		b := model.Bounty{
			ID:        ev.ID,
			Author:    ev.PubKey,
			CreatedAt: int64(ev.CreatedAt),
			Subject:   firstTagValue(ev, "subject"),
			Content:   ev.Content,
			Labels:    allTagValues(ev, "t"),
		}
		if raw := firstTagValue(ev, "amount"); raw != "" {
			if amount, err := strconv.ParseInt(raw, 10, 64); err == nil {
				b.Amount = amount
			}
		}
		if p.MinAmount > 0 && b.Amount > 0 && b.Amount < p.MinAmount {
			continue
		}
		bounties = append(bounties, b)
	}

	sort.Slice(bounties, func(i, j int) bool { return bounties[i].CreatedAt > bounties[j].CreatedAt })
	if len(bounties) > limit {
		bounties = bounties[:limit]
	}
	return bounties, nil
}

// SubmitBountyClaimParams links a PR to the bounty issue it resolves.
type SubmitBountyClaimParams struct {
	IssueID   string
	PRURL     string
	Evidence  string
	Relays    []string
	SecretKey string
}

// SubmitBountyClaim publishes a claim that references the bounty issue and
// points at the pull request carrying the work.
func (uc *UseCase) SubmitBountyClaim(ctx context.Context, p SubmitBountyClaimParams) (*model.PublishResult, error) {
	secret, err := uc.resolveSecret(ctx, p.SecretKey)
	if err != nil {
		return nil, err
	}

	ev, err := event.BountyClaim(p.IssueID, p.PRURL, p.Evidence, secret)
	if err != nil {
		return nil, err
	}
	acks, err := uc.relay.Publish(ctx, uc.relaysOrDefault(p.Relays), ev)
	if err != nil {
		return nil, err
	}
	return &model.PublishResult{Success: anyOK(acks), Event: ev, Acks: acks}, nil
}

// CreateBounty records a funded bounty on an issue via the bridge API.
func (uc *UseCase) CreateBounty(ctx context.Context, req *model.BountyRequest) (map[string]any, error) {
	if req.IssueID == "" {
		return nil, goerr.New("issueId is required", goerr.T(types.ErrTagMissingField))
	}
	if req.Amount <= 0 {
		return nil, goerr.New("amount must be positive", goerr.T(types.ErrTagMissingField))
	}
	return uc.bridge.CreateBounty(ctx, req)
}

// TrendingRepos returns the repositories announced within the given window,
// newest first. Relay-side sorting is unreliable, so the window is fetched
// wide and trimmed locally.
func (uc *UseCase) TrendingRepos(ctx context.Context, relays []string, days, limit int) ([]model.Repository, error) {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 20
	}
	since := nostr.Timestamp(time.Now().AddDate(0, 0, -days).Unix())

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(relays), nostr.Filter{
		Kinds: []int{event.KindRepository},
		Since: &since,
		Limit: limit * 3,
	})
	if err != nil {
		return nil, err
	}

	repos := make([]model.Repository, 0, len(events))
	for _, ev := range events {
		if firstTagValue(ev, "d") == "" {
			continue
		}
		repos = append(repos, repoFromEvent(ev))
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].CreatedAt > repos[j].CreatedAt })
	if len(repos) > limit {
		repos = repos[:limit]
	}
	return repos, nil
}

// Contributors aggregates PR and issue authorship for one repository.
func (uc *UseCase) Contributors(ctx context.Context, relays []string, owner, repoID string) ([]model.Contributor, error) {
	ownerHex, err := keys.NormalizePublicKey(owner)
	if err != nil {
		return nil, err
	}
	addr := event.RepoAddress(ownerHex, repoID)
	relaySet := uc.relaysOrDefault(relays)

	prEvents, err := uc.relay.Query(ctx, relaySet, nostr.Filter{
		Kinds: []int{event.KindPullRequest},
		Tags:  nostr.TagMap{"a": []string{addr}},
		Limit: 200,
	})
	if err != nil {
		return nil, err
	}
	issueEvents, err := uc.relay.Query(ctx, relaySet, nostr.Filter{
		Kinds: []int{event.KindIssue},
		Tags:  nostr.TagMap{"a": []string{addr}},
		Limit: 200,
	})
	if err != nil {
		return nil, err
	}

	byPubkey := map[string]*model.Contributor{}
	get := func(pubkey string) *model.Contributor {
		if c, ok := byPubkey[pubkey]; ok {
			return c
		}
		c := &model.Contributor{Pubkey: pubkey, IsOwner: pubkey == ownerHex}
		byPubkey[pubkey] = c
		return c
	}
	for _, ev := range prEvents {
		get(ev.PubKey).PRs++
	}
	for _, ev := range issueEvents {
		get(ev.PubKey).Issues++
	}

	out := make([]model.Contributor, 0, len(byPubkey))
	for _, c := range byPubkey {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PRs+out[i].Issues > out[j].PRs+out[j].Issues
	})
	return out, nil
}

// exploreCategories are the browsable topics offered when no category is
// requested.
var exploreCategories = []model.Category{
	{Name: "bitcoin", Description: "Bitcoin and Lightning projects"},
	{Name: "nostr", Description: "Nostr clients, relays, and tooling"},
	{Name: "web", Description: "Web applications and frontends"},
	{Name: "cli", Description: "Command line tools"},
	{Name: "library", Description: "Reusable libraries and SDKs"},
	{Name: "game", Description: "Games and game engines"},
}

// ExploreResult is either the category index or the repositories matching one
// category.
type ExploreResult struct {
	Categories []model.Category   `json:"categories,omitempty"`
	Repos      []model.Repository `json:"repos,omitempty"`
}

// ExploreRepos browses repositories by topic. With no category it returns the
// category index; with one it searches announcements for that topic.
func (uc *UseCase) ExploreRepos(ctx context.Context, relays []string, category string, limit int) (*ExploreResult, error) {
	if category == "" {
		return &ExploreResult{Categories: exploreCategories}, nil
	}
	repos, err := uc.SearchRepos(ctx, relays, category, limit)
	if err != nil {
		return nil, err
	}
	return &ExploreResult{Repos: repos}, nil
}

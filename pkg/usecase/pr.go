package usecase

import (
	"context"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/event"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/m-mizutani/ctxlog"
	"github.com/nbd-wtf/go-nostr"
)

func prFromEvent(ev *nostr.Event) model.PullRequest {
	return model.PullRequest{
		ID:         ev.ID,
		Author:     ev.PubKey,
		CreatedAt:  int64(ev.CreatedAt),
		Subject:    firstTagValue(ev, "subject"),
		Content:    ev.Content,
		Commit:     firstTagValue(ev, "c"),
		Clone:      allTagValues(ev, "clone"),
		BranchName: firstTagValue(ev, "branch-name"),
		Event:      ev,
	}
}

// ListPRsParams scopes a pull request query to one repository.
type ListPRsParams struct {
	Relays []string
	Owner  string
	RepoID string
	Limit  int
}

// ListPRs fetches the pull requests referencing a repository. When the
// primary relay set returns nothing, the repository's own combined servers
// are tried as a fallback, since PRs are often published only there.
func (uc *UseCase) ListPRs(ctx context.Context, p ListPRsParams) ([]model.PullRequest, error) {
	owner, err := keys.NormalizePublicKey(p.Owner)
	if err != nil {
		return nil, err
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	filter := nostr.Filter{
		Kinds: []int{event.KindPullRequest},
		Tags:  nostr.TagMap{"a": []string{event.RepoAddress(owner, p.RepoID)}},
		Limit: limit,
	}

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(p.Relays), filter)
	if err != nil {
		return nil, err
	}

	if len(events) == 0 {
		if fallback := uc.repoRelayFallback(ctx, p.Relays, owner, p.RepoID); len(fallback) > 0 {
			ctxlog.From(ctx).Debug("no PRs on primary relays, trying repo relays", "relays", fallback)
			events, err = uc.relay.Query(ctx, fallback, filter)
			if err != nil {
				return nil, err
			}
		}
	}

	prs := make([]model.PullRequest, 0, len(events))
	for _, ev := range events {
		prs = append(prs, prFromEvent(ev))
	}
	return prs, nil
}

// repoRelayFallback derives extra relay URLs from the repository's own
// announcement: its combined servers reached over websocket.
func (uc *UseCase) repoRelayFallback(ctx context.Context, relays []string, owner, repoID string) []string {
	repo, err := uc.GetRepo(ctx, relays, owner, repoID)
	if err != nil {
		return nil
	}
	primary := map[string]bool{}
	for _, r := range uc.relaysOrDefault(relays) {
		primary[hostOf(r)] = true
	}
	var out []string
	for _, server := range repo.CombinedServers {
		if h := hostOf(server); h != "" && !primary[h] {
			out = append(out, "wss://"+h)
		}
	}
	return out
}

// repoEUC looks up the repository's earliest-unique-commit from its
// announcement, where it rides as an r-tag marked "euc".
func (uc *UseCase) repoEUC(ctx context.Context, relays []string, owner, repoID string) string {
	repo, err := uc.GetRepo(ctx, relays, owner, repoID)
	if err != nil || repo.Event == nil {
		return ""
	}
	for _, tag := range repo.Event.Tags {
		if len(tag) >= 3 && tag[0] == "r" && tag[2] == "euc" {
			return tag[1]
		}
	}
	return ""
}

// CreatePRParams holds a new pull request.
type CreatePRParams struct {
	Owner      string
	RepoID     string
	Subject    string
	Content    string
	CommitID   string
	BranchName string
	CloneURLs  []string
	Labels     []string
	Relays     []string
	SecretKey  string
}

// CreatePR signs and publishes a pull request. The repository's
// earliest-unique-commit is attached when discoverable so relays that
// validate PR ancestry accept the event.
func (uc *UseCase) CreatePR(ctx context.Context, p CreatePRParams) (*model.PublishResult, error) {
	owner, err := keys.NormalizePublicKey(p.Owner)
	if err != nil {
		return nil, err
	}
	secret, err := uc.resolveSecret(ctx, p.SecretKey)
	if err != nil {
		return nil, err
	}

	ev, err := event.PullRequest(event.PullRequestParams{
		OwnerPubkey: owner,
		RepoID:      p.RepoID,
		Subject:     p.Subject,
		Content:     p.Content,
		CommitID:    p.CommitID,
		BranchName:  p.BranchName,
		CloneURLs:   p.CloneURLs,
		Labels:      p.Labels,
		EUC:         uc.repoEUC(ctx, p.Relays, owner, p.RepoID),
	}, secret)
	if err != nil {
		return nil, err
	}

	acks, err := uc.relay.Publish(ctx, uc.relaysOrDefault(p.Relays), ev)
	if err != nil {
		return nil, err
	}
	return &model.PublishResult{Success: anyOK(acks), Event: ev, Acks: acks}, nil
}

package usecase

import (
	"context"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/event"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/nbd-wtf/go-nostr"
)

func issueFromEvent(ev *nostr.Event) model.Issue {
	return model.Issue{
		ID:        ev.ID,
		Author:    ev.PubKey,
		CreatedAt: int64(ev.CreatedAt),
		Subject:   firstTagValue(ev, "subject"),
		Content:   ev.Content,
		Labels:    allTagValues(ev, "t"),
		Event:     ev,
	}
}

// ListIssuesParams scopes an issue query to one repository.
type ListIssuesParams struct {
	Relays []string
	Owner  string
	RepoID string
	Limit  int
}

// ListIssues fetches the issues referencing a repository.
func (uc *UseCase) ListIssues(ctx context.Context, p ListIssuesParams) ([]model.Issue, error) {
	owner, err := keys.NormalizePublicKey(p.Owner)
	if err != nil {
		return nil, err
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(p.Relays), nostr.Filter{
		Kinds: []int{event.KindIssue},
		Tags:  nostr.TagMap{"a": []string{event.RepoAddress(owner, p.RepoID)}},
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	issues := make([]model.Issue, 0, len(events))
	for _, ev := range events {
		issues = append(issues, issueFromEvent(ev))
	}
	return issues, nil
}

// CreateIssueParams holds a new issue.
type CreateIssueParams struct {
	Owner     string
	RepoID    string
	Subject   string
	Content   string
	Labels    []string
	Relays    []string
	SecretKey string
}

// CreateIssue signs and publishes an issue on a repository.
func (uc *UseCase) CreateIssue(ctx context.Context, p CreateIssueParams) (*model.PublishResult, error) {
	owner, err := keys.NormalizePublicKey(p.Owner)
	if err != nil {
		return nil, err
	}
	secret, err := uc.resolveSecret(ctx, p.SecretKey)
	if err != nil {
		return nil, err
	}

	ev, err := event.Issue(event.IssueParams{
		OwnerPubkey: owner,
		RepoID:      p.RepoID,
		Subject:     p.Subject,
		Content:     p.Content,
		Labels:      p.Labels,
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

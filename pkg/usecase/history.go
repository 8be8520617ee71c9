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

// Branches derives the branch list from repository state events. The default
// branches are always present, since many repositories only ever publish a
// head commit for them.
func (uc *UseCase) Branches(ctx context.Context, relays []string, owner, repoID string) ([]model.Branch, error) {
	ownerHex, err := keys.NormalizePublicKey(owner)
	if err != nil {
		return nil, err
	}

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(relays), nostr.Filter{
		Kinds:   []int{event.KindRepositoryState},
		Authors: []string{ownerHex},
		Tags:    nostr.TagMap{"d": []string{repoID}},
		Limit:   20,
	})
	if err != nil {
		return nil, err
	}

	names := map[string]bool{"main": true, "master": true}
	for _, ev := range events {
		for _, tag := range ev.Tags {
			if len(tag) < 2 {
				continue
			}
			if strings.HasPrefix(tag[0], "refs/heads/") {
				names[strings.TrimPrefix(tag[0], "refs/heads/")] = true
			}
			if tag[0] == "b" {
				names[tag[1]] = true
			}
		}
	}

	var extra []string
	for name := range names {
		if name != "main" && name != "master" {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	branches := []model.Branch{{Name: "main"}, {Name: "master"}}
	for _, name := range extra {
		branches = append(branches, model.Branch{Name: name})
	}
	return branches, nil
}

// CommitHistory derives the commit timeline of one branch from state events.
// Each state event contributes the branch head it recorded, newest first.
func (uc *UseCase) CommitHistory(ctx context.Context, relays []string, owner, repoID, branch string, limit int) ([]model.Commit, error) {
	ownerHex, err := keys.NormalizePublicKey(owner)
	if err != nil {
		return nil, err
	}
	if branch == "" {
		branch = "main"
	}
	if limit <= 0 {
		limit = 30
	}

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(relays), nostr.Filter{
		Kinds:   []int{event.KindRepositoryState},
		Authors: []string{ownerHex},
		Tags:    nostr.TagMap{"d": []string{repoID}},
		Limit:   limit * 2,
	})
	if err != nil {
		return nil, err
	}

	ref := "refs/heads/" + branch
	var commits []model.Commit
	for _, ev := range events {
		for _, tag := range ev.Tags {
			if len(tag) < 2 {
				continue
			}
			matches := tag[0] == ref ||
				(tag[0] == "c" && firstTagValue(ev, "b") == branch)
			if !matches {
				continue
			}
			commits = append(commits, model.Commit{
				SHA:       tag[1],
				Ref:       ref,
				Timestamp: int64(ev.CreatedAt),
				EventID:   ev.ID,
			})
			break
		}
	}

	sort.Slice(commits, func(i, j int) bool { return commits[i].Timestamp > commits[j].Timestamp })
	if len(commits) > limit {
		commits = commits[:limit]
	}
	return commits, nil
}

// CreateReleaseParams holds a new release announcement.
type CreateReleaseParams struct {
	RepoID       string
	Version      string
	TagName      string
	TargetCommit string
	ReleaseNotes string
	Relays       []string
	SecretKey    string
}

// CreateRelease publishes a release announcement for a repository.
func (uc *UseCase) CreateRelease(ctx context.Context, p CreateReleaseParams) (*model.PublishResult, error) {
	secret, err := uc.resolveSecret(ctx, p.SecretKey)
	if err != nil {
		return nil, err
	}

	ev, err := event.Release(event.ReleaseParams{
		RepoID:       p.RepoID,
		Version:      p.Version,
		TagName:      p.TagName,
		TargetCommit: p.TargetCommit,
		ReleaseNotes: p.ReleaseNotes,
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

// ListReleases fetches the release announcements of a repository. Releases
// share the repository kind, distinguished by their version tag.
func (uc *UseCase) ListReleases(ctx context.Context, relays []string, owner, repoID string) ([]model.Release, error) {
	ownerHex, err := keys.NormalizePublicKey(owner)
	if err != nil {
		return nil, err
	}

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(relays), nostr.Filter{
		Kinds:   []int{event.KindRepository},
		Authors: []string{ownerHex},
		Tags:    nostr.TagMap{"d": []string{repoID}},
		Limit:   50,
	})
	if err != nil {
		return nil, err
	}

	var releases []model.Release
	for _, ev := range events {
		version := firstTagValue(ev, "version")
		if version == "" {
			continue
		}
		releases = append(releases, model.Release{
			Version:      version,
			ReleaseNotes: ev.Content,
			Commit:       firstTagValue(ev, "commit"),
			CreatedAt:    int64(ev.CreatedAt),
			EventID:      ev.ID,
		})
	}
	sort.Slice(releases, func(i, j int) bool { return releases[i].CreatedAt > releases[j].CreatedAt })
	return releases, nil
}

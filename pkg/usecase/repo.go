package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/event"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/grasp"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nbd-wtf/go-nostr"
)

// firstTagValue returns the second element of the first tag named name.
func firstTagValue(ev *nostr.Event, name string) string {
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1]
		}
	}
	return ""
}

// allTagValues collects every value of the named tag, expanding multi-value
// tags.
func allTagValues(ev *nostr.Event, name string) []string {
	var out []string
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == name {
			out = append(out, tag[1:]...)
		}
	}
	return out
}

// repoFromEvent derives the repository view from an announcement event.
func repoFromEvent(ev *nostr.Event) model.Repository {
	det := grasp.FromTags(ev.Tags)
	name := firstTagValue(ev, "name")
	if name == "" {
		name = firstTagValue(ev, "d")
	}
	return model.Repository{
		ID:              firstTagValue(ev, "d"),
		Name:            name,
		Description:     firstTagValue(ev, "description"),
		Owner:           ev.PubKey,
		Web:             allTagValues(ev, "web"),
		Clone:           det.CloneURLs,
		CombinedServers: det.CombinedServers,
		Relays:          allTagValues(ev, "relays"),
		CreatedAt:       int64(ev.CreatedAt),
		Event:           ev,
	}
}

// anyOK reports whether at least one relay accepted the publish.
func anyOK(acks []model.PublishAck) bool {
	for _, ack := range acks {
		if ack.OK {
			return true
		}
	}
	return false
}

// ListReposParams selects which repository announcements to fetch.
type ListReposParams struct {
	Relays []string
	Owner  string
	Limit  int
}

// ListRepos fetches repository announcements, optionally scoped to one owner.
func (uc *UseCase) ListRepos(ctx context.Context, p ListReposParams) ([]model.Repository, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	filter := nostr.Filter{
		Kinds: []int{event.KindRepository},
		Limit: limit,
	}
	if p.Owner != "" {
		owner, err := keys.NormalizePublicKey(p.Owner)
		if err != nil {
			return nil, err
		}
		filter.Authors = []string{owner}
	}

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(p.Relays), filter)
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
	return repos, nil
}

// SearchRepos runs a relay-side text search over repository announcements.
func (uc *UseCase) SearchRepos(ctx context.Context, relays []string, query string, limit int) ([]model.Repository, error) {
	if query == "" {
		return nil, goerr.New("search query is required", goerr.T(types.ErrTagMissingField))
	}
	if limit <= 0 {
		limit = 30
	}

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(relays), nostr.Filter{
		Kinds:  []int{event.KindRepository},
		Search: query,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	repos := make([]model.Repository, 0, len(events))
	for _, ev := range events {
		repos = append(repos, repoFromEvent(ev))
	}
	return repos, nil
}

// MyRepos lists the repositories announced by the stored identity.
func (uc *UseCase) MyRepos(ctx context.Context, relays []string, secretKey string) ([]model.Repository, error) {
	_, pubkey, err := uc.resolvePubkey(ctx, secretKey)
	if err != nil {
		return nil, err
	}
	return uc.ListRepos(ctx, ListReposParams{Relays: relays, Owner: pubkey})
}

// GetRepo fetches one repository announcement by owner and repo id.
func (uc *UseCase) GetRepo(ctx context.Context, relays []string, owner, repoID string) (*model.Repository, error) {
	if owner == "" {
		return nil, goerr.New("owner is required", goerr.T(types.ErrTagMissingField))
	}
	if repoID == "" {
		return nil, goerr.New("repoId is required", goerr.T(types.ErrTagMissingField))
	}
	ownerHex, err := keys.NormalizePublicKey(owner)
	if err != nil {
		return nil, err
	}

	events, err := uc.relay.Query(ctx, uc.relaysOrDefault(relays), nostr.Filter{
		Kinds:   []int{event.KindRepository},
		Authors: []string{ownerHex},
		Tags:    nostr.TagMap{"d": []string{repoID}},
		Limit:   5,
	})
	if err != nil {
		return nil, err
	}

	// addressable events replace by (author, d); keep the newest
	var latest *nostr.Event
	for _, ev := range events {
		if latest == nil || ev.CreatedAt > latest.CreatedAt {
			latest = ev
		}
	}
	if latest == nil {
		return nil, goerr.New("repository not found",
			goerr.T(types.ErrTagNotFound), goerr.V("owner", ownerHex), goerr.V("repoId", repoID))
	}
	repo := repoFromEvent(latest)
	return &repo, nil
}

// cloneURLs builds the git clone endpoints for a repository hosted on the
// configured combined servers.
func (uc *UseCase) cloneURLs(pubkey, repoID string) []string {
	urls := make([]string, 0, len(uc.cfg.GraspServers))
	for _, server := range uc.cfg.GraspServers {
		if h := hostOf(server); h != "" {
			urls = append(urls, fmt.Sprintf("https://%s/%s/%s.git", h, pubkey, repoID))
		}
	}
	return urls
}

// relayURLs are the websocket endpoints matching cloneURLs plus the default
// relay set.
func (uc *UseCase) announceRelays(relays []string) []string {
	out := append([]string{}, uc.relaysOrDefault(relays)...)
	for _, server := range uc.cfg.GraspServers {
		if h := hostOf(server); h != "" {
			url := "wss://" + h
			found := false
			for _, existing := range out {
				if existing == url {
					found = true
					break
				}
			}
			if !found {
				out = append(out, url)
			}
		}
	}
	return out
}

func (uc *UseCase) webURL(pubkey, repoID string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(uc.cfg.WebBase, "/"), pubkey, repoID)
}

// CreateRepoParams holds the compound create-repository request.
type CreateRepoParams struct {
	RepoID      string
	Name        string
	Description string
	Files       []model.File
	Branch      string
	Relays      []string
	SecretKey   string
}

// CreateRepo pushes initial files to the bridge, then announces the
// repository on the relay network. The push comes first: a failed push aborts
// before anything is published, so the network never references a repository
// the bridge does not have. A failed state publish after a successful
// announcement is not an error; the result reports it via Indexed.
func (uc *UseCase) CreateRepo(ctx context.Context, p CreateRepoParams) (*model.CreateRepoResult, error) {
	if p.RepoID == "" {
		return nil, goerr.New("repoId is required", goerr.T(types.ErrTagMissingField))
	}
	logger := ctxlog.From(ctx)

	secret, pubkey, err := uc.resolvePubkey(ctx, p.SecretKey)
	if err != nil {
		return nil, err
	}

	branch := p.Branch
	if branch == "" {
		branch = "main"
	}

	var pushResult *model.PushResult
	if len(p.Files) > 0 {
		pushResult, err = uc.bridge.Push(ctx, &model.PushRequest{
			OwnerPubkey:   pubkey,
			Repo:          p.RepoID,
			Branch:        branch,
			Files:         p.Files,
			CommitMessage: "Initial commit",
			SecretKey:     secret,
		})
		if err != nil {
			return nil, err
		}
	}

	clone := uc.cloneURLs(pubkey, p.RepoID)
	relays := uc.announceRelays(p.Relays)

	annEv, err := event.RepoAnnouncement(event.RepoAnnouncementParams{
		RepoID:      p.RepoID,
		Name:        p.Name,
		Description: p.Description,
		Web:         []string{uc.webURL(pubkey, p.RepoID)},
		Clone:       clone,
		Relays:      relays,
	}, secret)
	if err != nil {
		return nil, err
	}
	annAcks, err := uc.relay.Publish(ctx, relays, annEv)
	if err != nil {
		return nil, err
	}
	if !anyOK(annAcks) {
		logger.Warn("no relay accepted the announcement", "repo", p.RepoID)
	}

	result := &model.CreateRepoResult{
		Success:           true,
		RepoID:            p.RepoID,
		Name:              p.Name,
		Description:       p.Description,
		WebURL:            uc.webURL(pubkey, p.RepoID),
		Pubkey:            pubkey,
		Indexed:           anyOK(annAcks),
		AnnouncementEvent: annEv,
	}
	if len(clone) > 0 {
		result.CloneURL = clone[0]
	}

	if pushResult != nil {
		result.PushedFiles = pushResult.PushedFiles
		if len(pushResult.Refs) > 0 {
			result.Commit = pushResult.Refs[0].Commit
		}

		stateEv, err := event.RepoState(p.RepoID, pushResult.Refs, secret)
		if err != nil {
			return nil, err
		}
		stateAcks, err := uc.relay.Publish(ctx, relays, stateEv)
		if err != nil || !anyOK(stateAcks) {
			// announcement already landed; the repo exists without an index
			logger.Warn("state publish failed after announcement", "repo", p.RepoID, "error", err)
			result.Indexed = false
			return result, nil
		}
		result.StateEvent = stateEv
		result.Indexed = true
	}

	return result, nil
}

// ForkRepoParams identifies a source repository and the fork's own id.
type ForkRepoParams struct {
	SourceOwner string
	SourceRepo  string
	ForkID      string
	Relays      []string
	SecretKey   string
}

// ForkRepo announces a fork of an existing repository under the caller's key.
// The source must exist on the queried relays; nothing is published when it
// does not.
func (uc *UseCase) ForkRepo(ctx context.Context, p ForkRepoParams) (*model.CreateRepoResult, error) {
	source, err := uc.GetRepo(ctx, p.Relays, p.SourceOwner, p.SourceRepo)
	if err != nil {
		if goerr.HasTag(err, types.ErrTagNotFound) {
			return nil, goerr.Wrap(err, "fork source does not exist",
				goerr.T(types.ErrTagSourceNotFound),
				goerr.V("sourceOwner", p.SourceOwner), goerr.V("sourceRepo", p.SourceRepo))
		}
		return nil, err
	}

	forkID := p.ForkID
	if forkID == "" {
		forkID = source.ID
	}
	description := fmt.Sprintf("Fork of %s", source.Name)
	if source.Description != "" {
		description += ": " + source.Description
	}

	return uc.CreateRepo(ctx, CreateRepoParams{
		RepoID:      forkID,
		Name:        source.Name,
		Description: description,
		Relays:      p.Relays,
		SecretKey:   p.SecretKey,
	})
}

// knownForges maps well-known git hosting domains to a display name.
var knownForges = map[string]string{
	"github.com":    "GitHub",
	"gitlab.com":    "GitLab",
	"codeberg.org":  "Codeberg",
	"bitbucket.org": "Bitbucket",
	"sr.ht":         "SourceHut",
	"git.sr.ht":     "SourceHut",
}

// MirrorRepoParams announces an externally hosted repository.
type MirrorRepoParams struct {
	SourceURL   string
	RepoID      string
	Description string
	Relays      []string
	SecretKey   string
}

// MirrorRepo announces a repository whose git data lives on an external
// forge. Only the announcement is published; the clone tag points at the
// source, and nothing is pushed to the bridge.
func (uc *UseCase) MirrorRepo(ctx context.Context, p MirrorRepoParams) (*model.MirrorResult, error) {
	if p.SourceURL == "" {
		return nil, goerr.New("sourceUrl is required", goerr.T(types.ErrTagMissingField))
	}

	secret, pubkey, err := uc.resolvePubkey(ctx, p.SecretKey)
	if err != nil {
		return nil, err
	}

	repoID := p.RepoID
	if repoID == "" {
		trimmed := strings.TrimSuffix(strings.TrimRight(p.SourceURL, "/"), ".git")
		if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
			repoID = trimmed[i+1:]
		}
	}
	if repoID == "" {
		return nil, goerr.New("could not derive repoId from source URL",
			goerr.T(types.ErrTagMissingField), goerr.V("sourceUrl", p.SourceURL))
	}

	description := p.Description
	if description == "" {
		if forge, ok := knownForges[hostOf(p.SourceURL)]; ok {
			description = fmt.Sprintf("Mirror of a %s repository", forge)
		} else {
			description = "Mirror of " + p.SourceURL
		}
	}

	relays := uc.relaysOrDefault(p.Relays)
	annEv, err := event.RepoAnnouncement(event.RepoAnnouncementParams{
		RepoID:      repoID,
		Name:        repoID,
		Description: description,
		Web:         []string{strings.TrimSuffix(p.SourceURL, ".git")},
		Clone:       []string{p.SourceURL},
		Relays:      relays,
	}, secret)
	if err != nil {
		return nil, err
	}
	acks, err := uc.relay.Publish(ctx, relays, annEv)
	if err != nil {
		return nil, err
	}

	return &model.MirrorResult{
		Success:           anyOK(acks),
		RepoID:            repoID,
		CloneURL:          p.SourceURL,
		SourceURL:         p.SourceURL,
		WebURL:            uc.webURL(pubkey, repoID),
		AnnouncementEvent: annEv,
	}, nil
}

// AnnounceParams holds a raw announcement publish, for callers that manage
// their own clone and relay tags.
type AnnounceParams struct {
	RepoID      string
	Name        string
	Description string
	Web         []string
	Clone       []string
	Relays      []string
	Maintainers []string
	SecretKey   string
}

// PublishAnnouncement signs and publishes a repository announcement as given,
// without touching the bridge.
func (uc *UseCase) PublishAnnouncement(ctx context.Context, p AnnounceParams) (*model.PublishResult, error) {
	secret, err := uc.resolveSecret(ctx, p.SecretKey)
	if err != nil {
		return nil, err
	}

	ev, err := event.RepoAnnouncement(event.RepoAnnouncementParams{
		RepoID:      p.RepoID,
		Name:        p.Name,
		Description: p.Description,
		Web:         p.Web,
		Clone:       p.Clone,
		Relays:      p.Relays,
		Maintainers: p.Maintainers,
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

// PublishState signs and publishes a repository state event carrying the
// given refs.
func (uc *UseCase) PublishState(ctx context.Context, relays []string, repoID string, refs []model.Ref, secretKey string) (*model.PublishResult, error) {
	secret, err := uc.resolveSecret(ctx, secretKey)
	if err != nil {
		return nil, err
	}

	ev, err := event.RepoState(repoID, refs, secret)
	if err != nil {
		return nil, err
	}
	acks, err := uc.relay.Publish(ctx, uc.relaysOrDefault(relays), ev)
	if err != nil {
		return nil, err
	}
	return &model.PublishResult{Success: anyOK(acks), Event: ev, Acks: acks}, nil
}

// AddCollaborator republishes the repository announcement with the new
// maintainer added. Announcements are addressable, so the rewrite replaces
// the prior event for every consumer.
func (uc *UseCase) AddCollaborator(ctx context.Context, relays []string, repoID, collaborator, secretKey string) (*model.PublishResult, error) {
	if repoID == "" {
		return nil, goerr.New("repoId is required", goerr.T(types.ErrTagMissingField))
	}
	collabHex, err := keys.NormalizePublicKey(collaborator)
	if err != nil {
		return nil, err
	}

	secret, pubkey, err := uc.resolvePubkey(ctx, secretKey)
	if err != nil {
		return nil, err
	}
	repo, err := uc.GetRepo(ctx, relays, pubkey, repoID)
	if err != nil {
		return nil, err
	}

	maintainers := allTagValues(repo.Event, "maintainers")
	if len(maintainers) == 0 {
		maintainers = []string{pubkey}
	}
	for _, m := range maintainers {
		if m == collabHex {
			collabHex = "" // already present
			break
		}
	}
	if collabHex != "" {
		maintainers = append(maintainers, collabHex)
	}

	annEv, err := event.RepoAnnouncement(event.RepoAnnouncementParams{
		RepoID:      repo.ID,
		Name:        repo.Name,
		Description: repo.Description,
		Web:         repo.Web,
		Clone:       repo.Clone,
		Relays:      repo.Relays,
		Maintainers: maintainers,
	}, secret)
	if err != nil {
		return nil, err
	}

	acks, err := uc.relay.Publish(ctx, uc.relaysOrDefault(relays), annEv)
	if err != nil {
		return nil, err
	}
	return &model.PublishResult{Success: anyOK(acks), Event: annEv, Acks: acks}, nil
}

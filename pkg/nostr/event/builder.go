package event

import (
	"fmt"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nbd-wtf/go-nostr"
)

// RepoAddress encodes the addressable reference to a repository announcement:
// "30617:<owner pubkey>:<repo id>". It is the value of the `a` tag on every
// event that points at a repository.
func RepoAddress(ownerPubkey, repoID string) string {
	return fmt.Sprintf("%d:%s:%s", KindRepository, ownerPubkey, repoID)
}

func sign(ev *nostr.Event, secret string) (*nostr.Event, error) {
	sk, err := keys.NormalizeSecret(secret)
	if err != nil {
		return nil, err
	}
	if err := ev.Sign(sk); err != nil {
		return nil, goerr.Wrap(err, "failed to sign event",
			goerr.T(types.ErrTagSigning), goerr.V("kind", ev.Kind))
	}
	return ev, nil
}

func missing(field string) error {
	return goerr.New("required field is missing",
		goerr.T(types.ErrTagMissingField), goerr.V("field", field))
}

// RepoAnnouncementParams holds the fields of a kind-30617 announcement.
// Multi-URL values collapse into a single tag per the NIP-34 wire convention.
type RepoAnnouncementParams struct {
	RepoID      string
	Name        string
	Description string
	Web         []string
	Clone       []string
	Relays      []string
	Maintainers []string
}

// RepoAnnouncement builds and signs a repository announcement. Publishing a
// new announcement with the same (author, repo id) replaces the prior one.
func RepoAnnouncement(p RepoAnnouncementParams, secret string) (*nostr.Event, error) {
	if p.RepoID == "" {
		return nil, missing("repoId")
	}
	if p.Name == "" {
		p.Name = p.RepoID
	}

	tags := nostr.Tags{
		{"d", p.RepoID},
		{"name", p.Name},
		{"description", p.Description},
	}
	for _, url := range p.Web {
		tags = append(tags, nostr.Tag{"web", url})
	}
	if len(p.Clone) > 0 {
		tags = append(tags, append(nostr.Tag{"clone"}, p.Clone...))
	}
	if len(p.Relays) > 0 {
		tags = append(tags, append(nostr.Tag{"relays"}, p.Relays...))
	}
	if len(p.Maintainers) > 0 {
		tags = append(tags, append(nostr.Tag{"maintainers"}, p.Maintainers...))
	}

	return sign(&nostr.Event{
		Kind:      KindRepository,
		CreatedAt: nostr.Now(),
		Tags:      tags,
		Content:   "",
	}, secret)
}

// RepoState builds a kind-30618 state event carrying one [refName, commit]
// tag per ref.
func RepoState(repoID string, refs []model.Ref, secret string) (*nostr.Event, error) {
	if repoID == "" {
		return nil, missing("repoId")
	}

	tags := nostr.Tags{{"d", repoID}}
	for _, ref := range refs {
		tags = append(tags, nostr.Tag{ref.Ref, ref.Commit})
	}

	return sign(&nostr.Event{
		Kind:      KindRepositoryState,
		CreatedAt: nostr.Now(),
		Tags:      tags,
		Content:   "",
	}, secret)
}

// IssueParams holds the fields of a kind-1621 issue.
type IssueParams struct {
	OwnerPubkey string
	RepoID      string
	Subject     string
	Content     string
	Labels      []string
}

// Issue builds and signs an issue referencing its repository.
func Issue(p IssueParams, secret string) (*nostr.Event, error) {
	switch {
	case p.OwnerPubkey == "":
		return nil, missing("ownerPubkey")
	case p.RepoID == "":
		return nil, missing("repoId")
	case p.Subject == "":
		return nil, missing("subject")
	}

	tags := nostr.Tags{
		{"a", RepoAddress(p.OwnerPubkey, p.RepoID)},
		{"p", p.OwnerPubkey},
		{"subject", p.Subject},
	}
	for _, label := range p.Labels {
		tags = append(tags, nostr.Tag{"t", label})
	}

	return sign(&nostr.Event{
		Kind:      KindIssue,
		CreatedAt: nostr.Now(),
		Tags:      tags,
		Content:   p.Content,
	}, secret)
}

// PullRequestParams holds the fields of a kind-1618 pull request.
type PullRequestParams struct {
	OwnerPubkey string
	RepoID      string
	Subject     string
	Content     string
	CommitID    string
	BranchName  string
	CloneURLs   []string
	Labels      []string
	// EUC is the repository's earliest-unique-commit, included as an r-tag
	// when known because some relays validate PRs against it.
	EUC string
}

// PullRequest builds and signs a pull request referencing its repository.
func PullRequest(p PullRequestParams, secret string) (*nostr.Event, error) {
	switch {
	case p.OwnerPubkey == "":
		return nil, missing("ownerPubkey")
	case p.RepoID == "":
		return nil, missing("repoId")
	case p.Subject == "":
		return nil, missing("subject")
	}
	if p.CommitID == "" {
		p.CommitID = "HEAD"
	}
	if p.BranchName == "" {
		p.BranchName = "main"
	}

	tags := nostr.Tags{
		{"a", RepoAddress(p.OwnerPubkey, p.RepoID)},
		{"p", p.OwnerPubkey},
		{"subject", p.Subject},
		{"c", p.CommitID},
		{"branch-name", p.BranchName},
	}
	if p.EUC != "" {
		tags = append(tags, nostr.Tag{"r", p.EUC, "euc"})
	}
	if len(p.CloneURLs) > 0 {
		tags = append(tags, append(nostr.Tag{"clone"}, p.CloneURLs...))
	}
	for _, label := range p.Labels {
		tags = append(tags, nostr.Tag{"t", label})
	}

	return sign(&nostr.Event{
		Kind:      KindPullRequest,
		CreatedAt: nostr.Now(),
		Tags:      tags,
		Content:   p.Content,
	}, secret)
}

// StarContent is the reaction content marking a starred repository.
const StarContent = "⭐"

// Reaction builds a kind-7 reaction on a repository. Empty content removes a
// prior reaction; the old event is never mutated, consumers resolve by
// latest-event-wins.
func Reaction(ownerPubkey, repoID, content string, secret string) (*nostr.Event, error) {
	switch {
	case ownerPubkey == "":
		return nil, missing("ownerPubkey")
	case repoID == "":
		return nil, missing("repoId")
	}

	return sign(&nostr.Event{
		Kind:      KindReaction,
		CreatedAt: nostr.Now(),
		Tags: nostr.Tags{
			{"p", ownerPubkey},
			{"a", RepoAddress(ownerPubkey, repoID)},
		},
		Content: content,
	}, secret)
}

// Watch builds a kind-10001 watch marker on a repository.
func Watch(ownerPubkey, repoID string, secret string) (*nostr.Event, error) {
	switch {
	case ownerPubkey == "":
		return nil, missing("ownerPubkey")
	case repoID == "":
		return nil, missing("repoId")
	}

	return sign(&nostr.Event{
		Kind:      KindWatch,
		CreatedAt: nostr.Now(),
		Tags: nostr.Tags{
			{"a", RepoAddress(ownerPubkey, repoID)},
		},
		Content: fmt.Sprintf("Watching %s", repoID),
	}, secret)
}

// ReleaseParams holds the fields of a release announcement.
type ReleaseParams struct {
	RepoID       string
	Version      string
	TagName      string
	TargetCommit string
	ReleaseNotes string
}

// Release builds a release announcement for a repository. The version rides
// on the repository kind with version/t tags, following the platform
// convention rather than a dedicated kind.
func Release(p ReleaseParams, secret string) (*nostr.Event, error) {
	if p.RepoID == "" {
		return nil, missing("repoId")
	}
	version := p.Version
	if version == "" {
		version = p.TagName
	}
	if version == "" {
		return nil, missing("version")
	}
	tagName := p.TagName
	if tagName == "" {
		tagName = version
	}
	notes := p.ReleaseNotes
	if notes == "" {
		notes = fmt.Sprintf("Release %s", version)
	}

	tags := nostr.Tags{
		{"d", p.RepoID},
		{"version", version},
		{"t", tagName},
	}
	if p.TargetCommit != "" {
		tags = append(tags, nostr.Tag{"commit", p.TargetCommit})
	}

	return sign(&nostr.Event{
		Kind:      KindRepository,
		CreatedAt: nostr.Now(),
		Tags:      tags,
		Content:   notes,
	}, secret)
}

// Commit builds a kind-30620 commit record published after a bridge push.
func Commit(ownerPubkey, repoID, commit, branch, message string, secret string) (*nostr.Event, error) {
	switch {
	case ownerPubkey == "":
		return nil, missing("ownerPubkey")
	case repoID == "":
		return nil, missing("repoId")
	case commit == "":
		return nil, missing("commit")
	}
	if message == "" {
		message = fmt.Sprintf("Commit to %s", branch)
	}

	return sign(&nostr.Event{
		Kind:      KindCommit,
		CreatedAt: nostr.Now(),
		Tags: nostr.Tags{
			{"d", repoID},
			{"r", RepoAddress(ownerPubkey, repoID)},
			{"c", commit},
			{"b", branch},
			{"m", "commit"},
		},
		Content: message,
	}, secret)
}

// StateAfterPush builds the kind-30618 state event that follows a bridge
// push, recording the head commit of the pushed branch.
func StateAfterPush(ownerPubkey, repoID, commit, branch string, secret string) (*nostr.Event, error) {
	switch {
	case ownerPubkey == "":
		return nil, missing("ownerPubkey")
	case repoID == "":
		return nil, missing("repoId")
	case commit == "":
		return nil, missing("commit")
	}

	short := commit
	if len(short) > 8 {
		short = short[:8]
	}

	return sign(&nostr.Event{
		Kind:      KindRepositoryState,
		CreatedAt: nostr.Now(),
		Tags: nostr.Tags{
			{"d", repoID},
			{"r", RepoAddress(ownerPubkey, repoID)},
			{"c", commit},
			{"b", branch},
		},
		Content: fmt.Sprintf("State: %s at %s", branch, short),
	}, secret)
}

// BountyClaim builds a kind-1617 claim that references an issue and points at
// the PR carrying the work.
func BountyClaim(issueID, prURL, evidence string, secret string) (*nostr.Event, error) {
	switch {
	case issueID == "":
		return nil, missing("issueId")
	case prURL == "":
		return nil, missing("prUrl")
	}

	return sign(&nostr.Event{
		Kind:      KindPatch,
		CreatedAt: nostr.Now(),
		Tags: nostr.Tags{
			{"a", issueID},
			{"r", prURL},
			{"status", "open"},
		},
		Content: evidence,
	}, secret)
}

// BridgeAuth builds the kind-24242 assertion over a bridge push challenge.
func BridgeAuth(challenge string, secret string) (*nostr.Event, error) {
	if challenge == "" {
		return nil, missing("challenge")
	}

	return sign(&nostr.Event{
		Kind:      KindBridgeAuth,
		CreatedAt: nostr.Now(),
		Tags: nostr.Tags{
			{"challenge", challenge},
		},
		Content: "gittr bridge auth",
	}, secret)
}

package model

import "github.com/nbd-wtf/go-nostr"

// Repository is the derived view of a repository announcement event (kind
// 30617). It is recomputed on every query and never cached.
type Repository struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Owner           string       `json:"owner"`
	Web             []string     `json:"web"`
	Clone           []string     `json:"clone"`
	CombinedServers []string     `json:"combinedServers"`
	Relays          []string     `json:"relays"`
	CreatedAt       int64        `json:"created_at"`
	Event           *nostr.Event `json:"event,omitempty"`
}

// Ref is a git ref name and its commit, as returned by the bridge and carried
// in repository state events (kind 30618).
type Ref struct {
	Ref    string `json:"ref"`
	Commit string `json:"commit"`
}

// Branch is a branch name extracted from repository state events.
type Branch struct {
	Name string `json:"name"`
}

// Commit is one entry of the commit history derived from state events.
type Commit struct {
	SHA       string `json:"sha"`
	Ref       string `json:"ref"`
	Timestamp int64  `json:"timestamp"`
	EventID   string `json:"eventId"`
}

// Contributor aggregates PR and issue authorship for one pubkey.
type Contributor struct {
	Pubkey  string `json:"pubkey"`
	PRs     int    `json:"prs"`
	Issues  int    `json:"issues"`
	IsOwner bool   `json:"isOwner,omitempty"`
}

// Category is a browsable repository topic returned by explore when no
// category is given.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateRepoResult is the outcome of the compound create-repository flow.
// Indexed reports whether the post-push relay publications (commit and state
// events) landed; the bridge push is the durable fact either way.
type CreateRepoResult struct {
	Success           bool         `json:"success"`
	RepoID            string       `json:"repoId"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	CloneURL          string       `json:"cloneUrl"`
	WebURL            string       `json:"webUrl"`
	PushedFiles       int          `json:"pushedFiles"`
	Commit            string       `json:"commit,omitempty"`
	Indexed           bool         `json:"indexed"`
	Pubkey            string       `json:"pubkey"`
	AnnouncementEvent *nostr.Event `json:"announcementEvent,omitempty"`
	StateEvent        *nostr.Event `json:"stateEvent,omitempty"`
}

// MirrorResult is the outcome of announcing an externally hosted repository.
type MirrorResult struct {
	Success           bool         `json:"success"`
	RepoID            string       `json:"repoId"`
	CloneURL          string       `json:"cloneUrl"`
	SourceURL         string       `json:"sourceUrl"`
	WebURL            string       `json:"webUrl,omitempty"`
	AnnouncementEvent *nostr.Event `json:"announcementEvent,omitempty"`
}

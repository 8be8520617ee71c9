package model

import "github.com/nbd-wtf/go-nostr"

// Star records that a pubkey starred a repository. Derived from kind-7
// reaction events with the latest event per (actor, target) winning, so the
// value is approximate by protocol design.
type Star struct {
	OwnerPubkey string `json:"ownerPubkey"`
	RepoID      string `json:"repoId"`
	StarredAt   int64  `json:"starredAt"`
}

// ReactionResult is the outcome of a star/unstar/watch publish.
type ReactionResult struct {
	Success bool         `json:"success"`
	Action  string       `json:"action"`
	Repo    string       `json:"repo"`
	Event   *nostr.Event `json:"event,omitempty"`
	Acks    []PublishAck `json:"acks,omitempty"`
}

// Release is the derived view of a release announcement.
type Release struct {
	Version      string `json:"version"`
	ReleaseNotes string `json:"releaseNotes"`
	Commit       string `json:"commit,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	EventID      string `json:"eventId"`
}

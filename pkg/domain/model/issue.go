package model

import "github.com/nbd-wtf/go-nostr"

// Issue is the derived view of a kind-1621 event.
type Issue struct {
	ID        string       `json:"id"`
	Author    string       `json:"author"`
	CreatedAt int64        `json:"created_at"`
	Subject   string       `json:"subject"`
	Content   string       `json:"content"`
	Labels    []string     `json:"labels"`
	Event     *nostr.Event `json:"event,omitempty"`
}

// PullRequest is the derived view of a kind-1618 event.
type PullRequest struct {
	ID         string       `json:"id"`
	Author     string       `json:"author"`
	CreatedAt  int64        `json:"created_at"`
	Subject    string       `json:"subject"`
	Content    string       `json:"content"`
	Commit     string       `json:"commit,omitempty"`
	Clone      []string     `json:"clone,omitempty"`
	BranchName string       `json:"branchName,omitempty"`
	Event      *nostr.Event `json:"event,omitempty"`
}

// PublishResult wraps a signed event plus the per-relay acks of its publish.
type PublishResult struct {
	Success bool         `json:"success"`
	Event   *nostr.Event `json:"event"`
	Acks    []PublishAck `json:"acks,omitempty"`
}

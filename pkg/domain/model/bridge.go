package model

// File is one file in a bridge push request.
type File struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	IsBinary bool   `json:"isBinary,omitempty"`
}

// PushRequest carries everything the bridge needs for a single commit-push.
// SecretKey authenticates the push via the signed-challenge handshake; it is
// never sent to the bridge itself.
type PushRequest struct {
	OwnerPubkey   string `json:"ownerPubkey"`
	Repo          string `json:"repo"`
	Branch        string `json:"branch"`
	Files         []File `json:"files"`
	CommitMessage string `json:"commitMessage"`
	SecretKey     string `json:"-"`
}

// PushResult is the bridge's response to a push.
type PushResult struct {
	Refs        []Ref `json:"refs"`
	PushedFiles int   `json:"pushedFiles"`
}

// PushFilesResult is the tool-facing push outcome. Indexed reports whether
// the follow-up commit/state events reached any relay.
type PushFilesResult struct {
	Refs        []Ref `json:"refs"`
	PushedFiles int   `json:"pushedFiles"`
	Indexed     bool  `json:"indexed"`
}

// FileContent is the result of a raw file fetch.
type FileContent struct {
	Content string `json:"content"`
	Path    string `json:"path"`
	Repo    string `json:"repo"`
	Branch  string `json:"branch"`
	Source  string `json:"source"`
	URL     string `json:"url,omitempty"`
}

// BountyRequest creates a bounty record via the bridge HTTP API.
type BountyRequest struct {
	OwnerPubkey string `json:"ownerPubkey"`
	RepoID      string `json:"repoId"`
	IssueID     string `json:"issueId"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Bounty is an issue that advertises a reward, discovered heuristically by
// label convention. Amount may be absent when no amount tag was found.
type Bounty struct {
	ID        string   `json:"id"`
	Author    string   `json:"author"`
	CreatedAt int64    `json:"created_at"`
	Subject   string   `json:"subject"`
	Content   string   `json:"content"`
	Labels    []string `json:"labels"`
	Amount    int64    `json:"amount,omitempty"`
}

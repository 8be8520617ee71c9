package usecase

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/event"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// PushFilesParams carries a file push plus the relay set used to index it.
type PushFilesParams struct {
	RepoID        string
	Branch        string
	Files         []model.File
	CommitMessage string
	Relays        []string
	SecretKey     string
}

// PushFiles pushes files through the bridge and then best-effort publishes
// the commit and state events that make the new head discoverable. The bridge
// push is the durable fact; Indexed reports whether the relay side landed.
func (uc *UseCase) PushFiles(ctx context.Context, p PushFilesParams) (*model.PushFilesResult, error) {
	if p.RepoID == "" {
		return nil, goerr.New("repoId is required", goerr.T(types.ErrTagMissingField))
	}
	if len(p.Files) == 0 {
		return nil, goerr.New("at least one file is required", goerr.T(types.ErrTagMissingField))
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
	message := p.CommitMessage
	if message == "" {
		message = fmt.Sprintf("Update %d file(s)", len(p.Files))
	}

	pushed, err := uc.bridge.Push(ctx, &model.PushRequest{
		OwnerPubkey:   pubkey,
		Repo:          p.RepoID,
		Branch:        branch,
		Files:         p.Files,
		CommitMessage: message,
		SecretKey:     secret,
	})
	if err != nil {
		return nil, err
	}

	result := &model.PushFilesResult{
		Refs:        pushed.Refs,
		PushedFiles: pushed.PushedFiles,
	}

	commit := ""
	if len(pushed.Refs) > 0 {
		commit = pushed.Refs[0].Commit
	}
	if commit == "" {
		return result, nil
	}

	relays := uc.announceRelays(p.Relays)
	indexed := true

	commitEv, err := event.Commit(pubkey, p.RepoID, commit, branch, message, secret)
	if err != nil {
		return nil, err
	}
	if acks, err := uc.relay.Publish(ctx, relays, commitEv); err != nil || !anyOK(acks) {
		logger.Warn("commit event did not reach any relay", "repo", p.RepoID, "error", err)
		indexed = false
	}

	stateEv, err := event.StateAfterPush(pubkey, p.RepoID, commit, branch, secret)
	if err != nil {
		return nil, err
	}
	if acks, err := uc.relay.Publish(ctx, relays, stateEv); err != nil || !anyOK(acks) {
		logger.Warn("state event did not reach any relay", "repo", p.RepoID, "error", err)
		indexed = false
	}

	result.Indexed = indexed
	return result, nil
}

// GetFileParams identifies one file in a repository.
type GetFileParams struct {
	Owner  string
	RepoID string
	Branch string
	Path   string
	Relays []string
}

// GetFile fetches a file's content, preferring the bridge and falling back to
// the combined servers named in the repository's own announcement.
func (uc *UseCase) GetFile(ctx context.Context, p GetFileParams) (*model.FileContent, error) {
	switch {
	case p.Owner == "":
		return nil, goerr.New("owner is required", goerr.T(types.ErrTagMissingField))
	case p.RepoID == "":
		return nil, goerr.New("repoId is required", goerr.T(types.ErrTagMissingField))
	case p.Path == "":
		return nil, goerr.New("path is required", goerr.T(types.ErrTagMissingField))
	}
	logger := ctxlog.From(ctx)

	owner, err := keys.NormalizePublicKey(p.Owner)
	if err != nil {
		return nil, err
	}
	branch := p.Branch
	if branch == "" {
		branch = "main"
	}

	data, url, err := uc.bridge.RawFile(ctx, owner, p.RepoID, branch, p.Path)
	if err == nil {
		return &model.FileContent{
			Content: string(data),
			Path:    p.Path,
			Repo:    p.RepoID,
			Branch:  branch,
			Source:  "bridge",
			URL:     url,
		}, nil
	}
	logger.Debug("bridge raw fetch failed, trying combined servers", "error", err)

	repo, repoErr := uc.GetRepo(ctx, p.Relays, owner, p.RepoID)
	if repoErr == nil {
		for _, server := range repo.CombinedServers {
			h := hostOf(server)
			if h == "" {
				continue
			}
			url := fmt.Sprintf("https://%s/%s/%s/raw/%s/%s", h, owner, p.RepoID, branch, p.Path)
			if data, ok := uc.fetchRaw(ctx, url); ok {
				return &model.FileContent{
					Content: string(data),
					Path:    p.Path,
					Repo:    p.RepoID,
					Branch:  branch,
					Source:  "combined-server",
					URL:     url,
				}, nil
			}
		}
	}

	return nil, goerr.Wrap(err, "file not found on bridge or combined servers",
		goerr.T(types.ErrTagNotFound),
		goerr.V("repo", p.RepoID), goerr.V("path", p.Path))
}

func (uc *UseCase) fetchRaw(ctx context.Context, url string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false
	}
	resp, err := uc.httpClient.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}
	return data, true
}

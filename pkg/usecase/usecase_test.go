package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/event"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nbd-wtf/go-nostr"
)

// stubRelay serves canned query results by kind and records every publish.
type stubRelay struct {
	results   map[int][]*nostr.Event
	published []*nostr.Event
	rejectAll bool
}

func (s *stubRelay) Query(_ context.Context, _ []string, filter nostr.Filter) ([]*nostr.Event, error) {
	var out []*nostr.Event
	for _, kind := range filter.Kinds {
		out = append(out, s.results[kind]...)
	}
	return out, nil
}

func (s *stubRelay) Publish(_ context.Context, relays []string, ev *nostr.Event) ([]model.PublishAck, error) {
	s.published = append(s.published, ev)
	acks := make([]model.PublishAck, 0, len(relays))
	for _, url := range relays {
		acks = append(acks, model.PublishAck{Relay: url, OK: !s.rejectAll})
	}
	return acks, nil
}

func (s *stubRelay) Close() {}

// stubBridge returns a fixed push result or error and serves raw files from
// a map.
type stubBridge struct {
	pushResult *model.PushResult
	pushErr    error
	pushes     []*model.PushRequest
	raw        map[string][]byte
}

func (s *stubBridge) Push(_ context.Context, req *model.PushRequest) (*model.PushResult, error) {
	s.pushes = append(s.pushes, req)
	if s.pushErr != nil {
		return nil, s.pushErr
	}
	return s.pushResult, nil
}

func (s *stubBridge) RawFile(_ context.Context, owner, repo, branch, path string) ([]byte, string, error) {
	key := fmt.Sprintf("%s/%s/%s/%s", owner, repo, branch, path)
	if data, ok := s.raw[key]; ok {
		return data, "https://bridge.test/raw/" + key, nil
	}
	return nil, "", goerr.New("not found", goerr.T(types.ErrTagNotFound))
}

func (s *stubBridge) CreateBounty(_ context.Context, _ *model.BountyRequest) (map[string]any, error) {
	return map[string]any{"id": "bounty-1"}, nil
}

func testConfig() usecase.Config {
	return usecase.Config{
		Relays:       []string{"wss://relay.test"},
		GraspServers: []string{"relay.ngit.test"},
		WebBase:      "https://web.test",
	}
}

func TestCreateRepoPushesThenAnnounces(t *testing.T) {
	secret := keys.Generate()
	pubkey, _ := keys.DerivePublicKey(secret)

	rl := &stubRelay{}
	br := &stubBridge{pushResult: &model.PushResult{
		Refs:        []model.Ref{{Ref: "refs/heads/main", Commit: "abc123"}},
		PushedFiles: 2,
	}}
	uc := usecase.New(rl, br, testConfig())

	result, err := uc.CreateRepo(context.Background(), usecase.CreateRepoParams{
		RepoID:      "demo",
		Name:        "Demo",
		Description: "a demo repository",
		Files: []model.File{
			{Path: "README.md", Content: "# demo"},
			{Path: "main.go", Content: "package main"},
		},
		SecretKey: secret,
	})
	if err != nil {
		t.Fatalf("CreateRepo failed: %v", err)
	}

	if result.Commit != "abc123" {
		t.Errorf("Commit = %q, want abc123", result.Commit)
	}
	if result.PushedFiles != 2 || !result.Indexed || !result.Success {
		t.Errorf("unexpected result: %+v", result)
	}
	wantClone := "https://relay.ngit.test/" + pubkey + "/demo.git"
	if result.CloneURL != wantClone {
		t.Errorf("CloneURL = %q, want %q", result.CloneURL, wantClone)
	}

	// announcement and state, nothing else
	if len(rl.published) != 2 {
		t.Fatalf("published %d events, want 2", len(rl.published))
	}
	ann, state := rl.published[0], rl.published[1]
	if ann.Kind != event.KindRepository {
		t.Errorf("first publish kind = %d, want %d", ann.Kind, event.KindRepository)
	}
	if state.Kind != event.KindRepositoryState {
		t.Errorf("second publish kind = %d, want %d", state.Kind, event.KindRepositoryState)
	}
	if ok, _ := ann.CheckSignature(); !ok {
		t.Error("announcement is not validly signed")
	}

	if len(br.pushes) != 1 || br.pushes[0].Branch != "main" {
		t.Errorf("unexpected bridge pushes: %+v", br.pushes)
	}
}

func TestCreateRepoPushFailureAbortsBeforePublish(t *testing.T) {
	rl := &stubRelay{}
	br := &stubBridge{pushErr: goerr.New("disk full", goerr.T(types.ErrTagBridgePushFailed))}
	uc := usecase.New(rl, br, testConfig())

	_, err := uc.CreateRepo(context.Background(), usecase.CreateRepoParams{
		RepoID:    "demo",
		Files:     []model.File{{Path: "README.md", Content: "x"}},
		SecretKey: keys.Generate(),
	})
	if err == nil {
		t.Fatal("CreateRepo should fail when the bridge push fails")
	}
	if !goerr.HasTag(err, types.ErrTagBridgePushFailed) {
		t.Errorf("error should carry BridgePushFailed tag: %v", err)
	}
	if len(rl.published) != 0 {
		t.Errorf("nothing may be published after a failed push, got %d events", len(rl.published))
	}
}

func TestForkMissingSource(t *testing.T) {
	rl := &stubRelay{}
	uc := usecase.New(rl, &stubBridge{}, testConfig())

	owner := nostr.GeneratePrivateKey() // any 64-hex value works as a pubkey
	_, err := uc.ForkRepo(context.Background(), usecase.ForkRepoParams{
		SourceOwner: owner,
		SourceRepo:  "ghost",
		SecretKey:   keys.Generate(),
	})
	if err == nil {
		t.Fatal("forking a missing repository should fail")
	}
	if !goerr.HasTag(err, types.ErrTagSourceNotFound) {
		t.Errorf("error should carry SourceNotFound tag: %v", err)
	}
	if len(rl.published) != 0 {
		t.Errorf("fork of missing source must have no side effects, got %d events", len(rl.published))
	}
}

func TestMirrorRepoSuccessFollowsAcks(t *testing.T) {
	secret := keys.Generate()

	rl := &stubRelay{}
	uc := usecase.New(rl, &stubBridge{}, testConfig())
	result, err := uc.MirrorRepo(context.Background(), usecase.MirrorRepoParams{
		SourceURL: "https://github.com/example/widget.git",
		SecretKey: secret,
	})
	if err != nil {
		t.Fatalf("MirrorRepo failed: %v", err)
	}
	if !result.Success || result.RepoID != "widget" {
		t.Errorf("unexpected mirror result: %+v", result)
	}

	rejected := &stubRelay{rejectAll: true}
	uc = usecase.New(rejected, &stubBridge{}, testConfig())
	result, err = uc.MirrorRepo(context.Background(), usecase.MirrorRepoParams{
		SourceURL: "https://github.com/example/widget.git",
		SecretKey: secret,
	})
	if err != nil {
		t.Fatalf("MirrorRepo with rejecting relays failed: %v", err)
	}
	if result.Success {
		t.Error("Success must be false when no relay accepted the announcement")
	}
}

func announcement(t *testing.T, secret, repoID string, extra ...nostr.Tag) *nostr.Event {
	t.Helper()
	ev, err := event.RepoAnnouncement(event.RepoAnnouncementParams{
		RepoID: repoID,
		Name:   repoID,
	}, secret)
	if err != nil {
		t.Fatalf("building announcement: %v", err)
	}
	ev.Tags = append(ev.Tags, extra...)
	return ev
}

func TestGetRepoPicksNewestAnnouncement(t *testing.T) {
	secret := keys.Generate()
	pubkey, _ := keys.DerivePublicKey(secret)

	old := announcement(t, secret, "demo")
	old.CreatedAt = 100
	newer := announcement(t, secret, "demo")
	newer.CreatedAt = 200
	newer.Tags = append(newer.Tags, nostr.Tag{"description", "fresh"})

	rl := &stubRelay{results: map[int][]*nostr.Event{
		event.KindRepository: {old, newer},
	}}
	uc := usecase.New(rl, &stubBridge{}, testConfig())

	repo, err := uc.GetRepo(context.Background(), nil, pubkey, "demo")
	if err != nil {
		t.Fatalf("GetRepo failed: %v", err)
	}
	if repo.CreatedAt != 200 {
		t.Errorf("GetRepo returned event at %d, want the newest (200)", repo.CreatedAt)
	}
}

func reaction(t *testing.T, secret, owner, repoID, content string, at nostr.Timestamp) *nostr.Event {
	t.Helper()
	ev, err := event.Reaction(owner, repoID, content, secret)
	if err != nil {
		t.Fatalf("building reaction: %v", err)
	}
	ev.CreatedAt = at
	return ev
}

func TestListStarsResolvesLatestReaction(t *testing.T) {
	secret := keys.Generate()
	pubkey, _ := keys.DerivePublicKey(secret)
	owner := nostr.GeneratePrivateKey()

	rl := &stubRelay{results: map[int][]*nostr.Event{
		event.KindReaction: {
			reaction(t, secret, owner, "starred-then-unstarred", event.StarContent, 100),
			reaction(t, secret, owner, "starred-then-unstarred", "", 200),
			reaction(t, secret, owner, "still-starred", event.StarContent, 150),
		},
	}}
	uc := usecase.New(rl, &stubBridge{}, testConfig())

	stars, err := uc.ListStars(context.Background(), nil, pubkey, "")
	if err != nil {
		t.Fatalf("ListStars failed: %v", err)
	}
	if len(stars) != 1 {
		t.Fatalf("ListStars returned %d stars, want 1: %+v", len(stars), stars)
	}
	if stars[0].RepoID != "still-starred" {
		t.Errorf("remaining star = %q, want still-starred", stars[0].RepoID)
	}
}

func TestStarThenUnstarPublishShapes(t *testing.T) {
	secret := keys.Generate()
	owner := nostr.GeneratePrivateKey()

	rl := &stubRelay{}
	uc := usecase.New(rl, &stubBridge{}, testConfig())

	p := usecase.ReactionParams{Owner: owner, RepoID: "demo", SecretKey: secret}
	if _, err := uc.StarRepo(context.Background(), p); err != nil {
		t.Fatalf("StarRepo failed: %v", err)
	}
	if _, err := uc.UnstarRepo(context.Background(), p); err != nil {
		t.Fatalf("UnstarRepo failed: %v", err)
	}

	if len(rl.published) != 2 {
		t.Fatalf("published %d events, want 2", len(rl.published))
	}
	if rl.published[0].Content != event.StarContent {
		t.Errorf("star content = %q", rl.published[0].Content)
	}
	if rl.published[1].Content != "" {
		t.Errorf("unstar must publish empty content, got %q", rl.published[1].Content)
	}
}

func TestGetFilePrefersBridge(t *testing.T) {
	owner := nostr.GeneratePrivateKey()
	br := &stubBridge{raw: map[string][]byte{
		owner + "/demo/main/README.md": []byte("# hello"),
	}}
	uc := usecase.New(&stubRelay{}, br, testConfig())

	fc, err := uc.GetFile(context.Background(), usecase.GetFileParams{
		Owner: owner, RepoID: "demo", Path: "README.md",
	})
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if fc.Content != "# hello" || fc.Source != "bridge" || fc.Branch != "main" {
		t.Errorf("unexpected file content: %+v", fc)
	}
}

func bountyIssue(t *testing.T, secret, owner string, amount string, at nostr.Timestamp) *nostr.Event {
	t.Helper()
	ev, err := event.Issue(event.IssueParams{
		OwnerPubkey: owner,
		RepoID:      "demo",
		Subject:     "fix the thing",
		Labels:      []string{"bounty"},
	}, secret)
	if err != nil {
		t.Fatalf("building issue: %v", err)
	}
	if amount != "" {
		ev.Tags = append(ev.Tags, nostr.Tag{"amount", amount})
	}
	ev.CreatedAt = at
	return ev
}

func TestListBountiesMinAmountKeepsUnknown(t *testing.T) {
	secret := keys.Generate()
	owner := nostr.GeneratePrivateKey()

	rl := &stubRelay{results: map[int][]*nostr.Event{
		event.KindIssue: {
			bountyIssue(t, secret, owner, "1000", 100),
			bountyIssue(t, secret, owner, "50000", 200),
			bountyIssue(t, secret, owner, "", 300),
		},
	}}
	uc := usecase.New(rl, &stubBridge{}, testConfig())

	bounties, err := uc.ListBounties(context.Background(), usecase.ListBountiesParams{MinAmount: 5000})
	if err != nil {
		t.Fatalf("ListBounties failed: %v", err)
	}
	// the 1000-sat bounty is filtered out; the unknown-amount one stays
	if len(bounties) != 2 {
		t.Fatalf("ListBounties returned %d, want 2: %+v", len(bounties), bounties)
	}
	for _, b := range bounties {
		if b.Amount == 1000 {
			t.Errorf("bounty below the minimum must be filtered: %+v", b)
		}
	}
}

func TestCreateIssuePublishesToRepoAddress(t *testing.T) {
	secret := keys.Generate()
	owner := nostr.GeneratePrivateKey()

	rl := &stubRelay{}
	uc := usecase.New(rl, &stubBridge{}, testConfig())

	result, err := uc.CreateIssue(context.Background(), usecase.CreateIssueParams{
		Owner:     owner,
		RepoID:    "demo",
		Subject:   "something broke",
		Content:   "details",
		SecretKey: secret,
	})
	if err != nil {
		t.Fatalf("CreateIssue failed: %v", err)
	}
	if !result.Success {
		t.Error("CreateIssue should report success when a relay acked")
	}
	addr := event.RepoAddress(owner, "demo")
	if got := result.Event.Tags.GetFirst([]string{"a"}); got == nil || (*got)[1] != addr {
		t.Errorf("issue a-tag = %v, want %s", got, addr)
	}
}

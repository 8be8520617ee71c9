package event_test

import (
	"testing"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/event"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/m-mizutani/gt"
	"github.com/nbd-wtf/go-nostr"
)

func tagValues(ev *nostr.Event, name string) [][]string {
	var out [][]string
	for _, tag := range ev.Tags {
		if len(tag) > 0 && tag[0] == name {
			out = append(out, tag[1:])
		}
	}
	return out
}

func TestRepoAnnouncementTagShape(t *testing.T) {
	secret := keys.Generate()

	ev := gt.R1(event.RepoAnnouncement(event.RepoAnnouncementParams{
		RepoID:      "demo",
		Name:        "demo",
		Description: "a demo",
		Web:         []string{"https://gittr.space/x/demo"},
		Clone:       []string{"https://git.gittr.space/x/demo.git", "https://relay.ngit.dev/x/demo.git"},
		Relays:      []string{"wss://relay.ngit.dev", "wss://nostr.wine"},
	}, secret)).NoError(t)

	gt.Value(t, ev.Kind).Equal(event.KindRepository)
	gt.Value(t, ev.Tags[0]).Equal(nostr.Tag{"d", "demo"})

	// multi-URL values collapse into a single tag
	clones := tagValues(ev, "clone")
	gt.Array(t, clones).Length(1)
	gt.Value(t, clones[0]).Equal([]string{
		"https://git.gittr.space/x/demo.git",
		"https://relay.ngit.dev/x/demo.git",
	})
	relays := tagValues(ev, "relays")
	gt.Array(t, relays).Length(1)
	gt.Array(t, relays[0]).Length(2)

	ok, err := ev.CheckSignature()
	gt.NoError(t, err)
	gt.Value(t, ok).Equal(true)
}

func TestSignatureBreaksOnMutation(t *testing.T) {
	secret := keys.Generate()

	ev := gt.R1(event.Issue(event.IssueParams{
		OwnerPubkey: gt.R1(keys.DerivePublicKey(secret)).NoError(t),
		RepoID:      "demo",
		Subject:     "bug: it breaks",
		Content:     "steps to reproduce",
		Labels:      []string{"bug"},
	}, secret)).NoError(t)

	ok, err := ev.CheckSignature()
	gt.NoError(t, err)
	gt.Value(t, ok).Equal(true)

	mutated := *ev
	mutated.Content = "tampered"
	// the id no longer matches the canonical hash of the mutated fields
	gt.Value(t, mutated.GetID() == ev.ID).Equal(false)

	// and the signature no longer verifies against the mutated content
	ok, err = mutated.CheckSignature()
	gt.NoError(t, err)
	gt.Value(t, ok).Equal(false)

	// while the untouched original still verifies
	ok, err = ev.CheckSignature()
	gt.NoError(t, err)
	gt.Value(t, ok).Equal(true)
}

func TestIssueTags(t *testing.T) {
	secret := keys.Generate()
	owner := gt.R1(keys.DerivePublicKey(secret)).NoError(t)

	ev := gt.R1(event.Issue(event.IssueParams{
		OwnerPubkey: owner,
		RepoID:      "demo",
		Subject:     "feature request",
		Labels:      []string{"enhancement", "help-wanted"},
	}, secret)).NoError(t)

	a := tagValues(ev, "a")
	gt.Array(t, a).Length(1)
	gt.Value(t, a[0][0]).Equal("30617:" + owner + ":demo")

	// one t-tag per label
	gt.Array(t, tagValues(ev, "t")).Length(2)
}

func TestPullRequestDefaultsAndEUC(t *testing.T) {
	secret := keys.Generate()
	owner := gt.R1(keys.DerivePublicKey(secret)).NoError(t)

	ev := gt.R1(event.PullRequest(event.PullRequestParams{
		OwnerPubkey: owner,
		RepoID:      "demo",
		Subject:     "fix typo",
		EUC:         "deadbeef",
	}, secret)).NoError(t)

	gt.Value(t, tagValues(ev, "c")[0][0]).Equal("HEAD")
	gt.Value(t, tagValues(ev, "branch-name")[0][0]).Equal("main")

	r := tagValues(ev, "r")
	gt.Array(t, r).Length(1)
	gt.Value(t, r[0]).Equal([]string{"deadbeef", "euc"})
}

func TestRepoStateRefTags(t *testing.T) {
	secret := keys.Generate()

	ev := gt.R1(event.RepoState("demo", []model.Ref{
		{Ref: "refs/heads/main", Commit: "abc123"},
		{Ref: "refs/heads/dev", Commit: "def456"},
	}, secret)).NoError(t)

	gt.Value(t, ev.Kind).Equal(event.KindRepositoryState)
	gt.Value(t, ev.Tags[1]).Equal(nostr.Tag{"refs/heads/main", "abc123"})
	gt.Value(t, ev.Tags[2]).Equal(nostr.Tag{"refs/heads/dev", "def456"})
}

func TestReactionStarAndRemove(t *testing.T) {
	secret := keys.Generate()
	owner := gt.R1(keys.DerivePublicKey(secret)).NoError(t)

	star := gt.R1(event.Reaction(owner, "demo", event.StarContent, secret)).NoError(t)
	gt.Value(t, star.Content).Equal("⭐")

	unstar := gt.R1(event.Reaction(owner, "demo", "", secret)).NoError(t)
	gt.Value(t, unstar.Content).Equal("")
	gt.Value(t, unstar.Kind).Equal(event.KindReaction)
}

func TestMissingFieldErrors(t *testing.T) {
	secret := keys.Generate()

	tests := []struct {
		name string
		run  func() error
	}{
		{"announcement without repoId", func() error {
			_, err := event.RepoAnnouncement(event.RepoAnnouncementParams{}, secret)
			return err
		}},
		{"issue without subject", func() error {
			_, err := event.Issue(event.IssueParams{OwnerPubkey: "ab", RepoID: "x"}, secret)
			return err
		}},
		{"pr without owner", func() error {
			_, err := event.PullRequest(event.PullRequestParams{RepoID: "x", Subject: "s"}, secret)
			return err
		}},
		{"auth without challenge", func() error {
			_, err := event.BridgeAuth("", secret)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); err == nil {
				t.Error("expected MissingField error, got nil")
			}
		})
	}
}

func TestBuildersRejectMalformedKey(t *testing.T) {
	if _, err := event.RepoState("demo", nil, "not-a-key"); err == nil {
		t.Error("expected key error, got nil")
	}
}

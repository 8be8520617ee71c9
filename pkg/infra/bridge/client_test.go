package bridge_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/infra/bridge"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/keys"
	"github.com/m-mizutani/goerr/v2"
)

func newPushRequest(secret string) *model.PushRequest {
	pubkey, _ := keys.DerivePublicKey(secret)
	return &model.PushRequest{
		OwnerPubkey:   pubkey,
		Repo:          "demo",
		Branch:        "main",
		Files:         []model.File{{Path: "README.md", Content: "hi"}},
		CommitMessage: "initial commit",
		SecretKey:     secret,
	}
}

func TestPushWithChallenge(t *testing.T) {
	secret := keys.Generate()
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/nostr/repo/push-challenge":
			json.NewEncoder(w).Encode(map[string]string{"challenge": "one-time-nonce"})
		case "/api/nostr/repo/push":
			gotAuth = r.Header.Get("Authorization")
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("push body decode: %v", err)
			}
			if body["repo"] != "demo" || body["branch"] != "main" {
				t.Errorf("unexpected push body: %v", body)
			}
			json.NewEncoder(w).Encode(model.PushResult{
				Refs:        []model.Ref{{Ref: "refs/heads/main", Commit: "abc123"}},
				PushedFiles: 1,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := bridge.New(srv.URL)
	result, err := client.Push(context.Background(), newPushRequest(secret))
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if result.PushedFiles != 1 || result.Refs[0].Commit != "abc123" {
		t.Errorf("unexpected push result: %+v", result)
	}

	if !strings.HasPrefix(gotAuth, "Nostr ") {
		t.Fatalf("Authorization header = %q, want Nostr scheme", gotAuth)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(gotAuth, "Nostr "))
	if err != nil {
		t.Fatalf("auth header is not base64: %v", err)
	}
	var assertion struct {
		Pubkey    string `json:"pubkey"`
		Sig       string `json:"sig"`
		CreatedAt int64  `json:"created_at"`
	}
	if err := json.Unmarshal(raw, &assertion); err != nil {
		t.Fatalf("auth header is not JSON: %v", err)
	}
	pubkey, _ := keys.DerivePublicKey(secret)
	if assertion.Pubkey != pubkey {
		t.Errorf("assertion pubkey = %s, want %s", assertion.Pubkey, pubkey)
	}
	if assertion.Sig == "" || assertion.CreatedAt == 0 {
		t.Errorf("assertion incomplete: %+v", assertion)
	}
}

func TestPushChallengeUnsupportedFallsBack(t *testing.T) {
	secret := keys.Generate()
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/nostr/repo/push-challenge":
			http.NotFound(w, r)
		case "/api/nostr/repo/push":
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(model.PushResult{
				Refs:        []model.Ref{{Ref: "refs/heads/main", Commit: "abc123"}},
				PushedFiles: 1,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := bridge.New(srv.URL)
	if _, err := client.Push(context.Background(), newPushRequest(secret)); err != nil {
		t.Fatalf("Push with unsupported challenge endpoint failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header on fallback, got %q", gotAuth)
	}
}

func TestPushWithoutSecret(t *testing.T) {
	client := bridge.New("http://bridge.invalid")
	req := newPushRequest(keys.Generate())
	req.SecretKey = ""

	_, err := client.Push(context.Background(), req)
	if err == nil {
		t.Fatal("Push without secret should fail")
	}
	if !goerr.HasTag(err, types.ErrTagAuthRequired) {
		t.Errorf("error should carry AuthenticationRequired tag: %v", err)
	}
}

func TestPushSurfacesBridgeError(t *testing.T) {
	secret := keys.Generate()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/nostr/repo/push-challenge":
			http.NotFound(w, r)
		case "/api/nostr/repo/push":
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "pubkey not allowed"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := bridge.New(srv.URL)
	_, err := client.Push(context.Background(), newPushRequest(secret))
	if err == nil {
		t.Fatal("Push should surface bridge rejection")
	}
	if !goerr.HasTag(err, types.ErrTagBridgePushFailed) {
		t.Errorf("error should carry BridgePushFailed tag: %v", err)
	}
	if !strings.Contains(err.Error(), "pubkey not allowed") {
		t.Errorf("bridge error text should be surfaced: %v", err)
	}
}

func TestRawFileTriesLegacyPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// only the oldest path variant serves the file
		if r.URL.Path == "/raw/owner/demo/main/README.md" {
			w.Write([]byte("hello"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := bridge.New(srv.URL)
	data, url, err := client.RawFile(context.Background(), "owner", "demo", "main", "README.md")
	if err != nil {
		t.Fatalf("RawFile failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("RawFile content = %q", data)
	}
	if !strings.HasSuffix(url, "/raw/owner/demo/main/README.md") {
		t.Errorf("RawFile served from unexpected URL %q", url)
	}
}

func TestRawFileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := bridge.New(srv.URL)
	_, _, err := client.RawFile(context.Background(), "owner", "demo", "main", "missing.txt")
	if err == nil {
		t.Fatal("RawFile should fail for missing file")
	}
	if !goerr.HasTag(err, types.ErrTagNotFound) {
		t.Errorf("error should carry NotFound tag: %v", err)
	}
}

func TestCreateBounty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bounty/create" {
			http.NotFound(w, r)
			return
		}
		var req model.BountyRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{"id": "bounty-1", "amount": req.Amount})
	}))
	defer srv.Close()

	client := bridge.New(srv.URL)
	result, err := client.CreateBounty(context.Background(), &model.BountyRequest{
		OwnerPubkey: "ab", RepoID: "demo", IssueID: "issue-1", Amount: 5000,
	})
	if err != nil {
		t.Fatalf("CreateBounty failed: %v", err)
	}
	if result["id"] != "bounty-1" {
		t.Errorf("unexpected bounty result: %v", result)
	}
}

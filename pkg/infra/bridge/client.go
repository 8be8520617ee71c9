// Package bridge is the HTTP client for the external git bridge, which owns
// actual file storage and git operations. Pushes authenticate via a signed
// challenge; the relay network only indexes what the bridge stores.
package bridge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/interfaces"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/nostr/event"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

const defaultTimeout = 30 * time.Second

type client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the bridge client.
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client (tests inject a
// httptest transport here).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a bridge client for the given base URL.
func New(baseURL string, opts ...Option) interfaces.BridgeClient {
	c := &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// challengeResponse is the body of the push-challenge endpoint.
type challengeResponse struct {
	Challenge string `json:"challenge"`
}

// challenge requests a single-use push challenge. A 404 means the bridge does
// not implement the endpoint; that is reported as an empty challenge, and the
// push proceeds unauthenticated for compatibility with old bridges.
func (c *client) challenge(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/nostr/repo/push-challenge", nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build challenge request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to reach bridge", goerr.T(types.ErrTagBridgeUnreachable))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("challenge request failed",
			goerr.T(types.ErrTagBridgeUnreachable), goerr.V("status", resp.StatusCode))
	}

	var body challengeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", goerr.Wrap(err, "failed to decode challenge response")
	}
	return body.Challenge, nil
}

// authAssertion is the transported proof: the signature fields of the signed
// kind-24242 event over the challenge.
type authAssertion struct {
	Pubkey    string `json:"pubkey"`
	Sig       string `json:"sig"`
	CreatedAt int64  `json:"created_at"`
}

// SignChallenge signs a bridge challenge and encodes the assertion for the
// Authorization header.
func SignChallenge(challenge, secret string) (string, error) {
	ev, err := event.BridgeAuth(challenge, secret)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(authAssertion{
		Pubkey:    ev.PubKey,
		Sig:       ev.Sig,
		CreatedAt: int64(ev.CreatedAt),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode auth assertion")
	}
	return "Nostr " + base64.StdEncoding.EncodeToString(payload), nil
}

// pushBody is the single request carrying all files plus commit metadata.
type pushBody struct {
	OwnerPubkey   string       `json:"ownerPubkey"`
	Repo          string       `json:"repo"`
	Branch        string       `json:"branch"`
	Files         []model.File `json:"files"`
	CommitMessage string       `json:"commitMessage"`
}

type bridgeError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Push performs an authenticated file push against the bridge.
func (c *client) Push(ctx context.Context, req *model.PushRequest) (*model.PushResult, error) {
	if req.SecretKey == "" {
		return nil, goerr.New("bridge push requires a secret key",
			goerr.T(types.ErrTagAuthRequired))
	}
	logger := ctxlog.From(ctx)

	challenge, err := c.challenge(ctx)
	if err != nil {
		return nil, err
	}

	var authHeader string
	if challenge != "" {
		authHeader, err = SignChallenge(challenge, req.SecretKey)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("bridge does not support push challenges, pushing without auth header")
	}

	branch := req.Branch
	if branch == "" {
		branch = "main"
	}
	body, err := json.Marshal(pushBody{
		OwnerPubkey:   req.OwnerPubkey,
		Repo:          req.Repo,
		Branch:        branch,
		Files:         req.Files,
		CommitMessage: req.CommitMessage,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode push request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/nostr/repo/push", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build push request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		httpReq.Header.Set("Authorization", authHeader)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reach bridge", goerr.T(types.ErrTagBridgeUnreachable))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read bridge response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody bridgeError
		message := "bridge push failed"
		if json.Unmarshal(raw, &errBody) == nil {
			if errBody.Error != "" {
				message = errBody.Error
			} else if errBody.Details != "" {
				message = errBody.Details
			}
		}
		return nil, goerr.New(message,
			goerr.T(types.ErrTagBridgePushFailed),
			goerr.V("status", resp.StatusCode),
			goerr.V("repo", req.Repo))
	}

	var result model.PushResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode push result")
	}
	return &result, nil
}

// rawFilePaths lists the raw endpoint variants, newest first. Old bridges
// exposed the file under different prefixes.
func rawFilePaths(owner, repo, branch, path string) []string {
	suffix := fmt.Sprintf("%s/%s/%s/%s", owner, repo, branch, path)
	return []string{
		"/api/nostr/repo/raw/" + suffix,
		"/api/raw/" + suffix,
		"/raw/" + suffix,
	}
}

// RawFile fetches one file's raw bytes, trying the endpoint variants in
// order. Returns the content and the URL that served it.
func (c *client) RawFile(ctx context.Context, owner, repo, branch, path string) ([]byte, string, error) {
	var lastErr error
	for _, p := range rawFilePaths(owner, repo, branch, path) {
		url := c.baseURL + p
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to build raw file request")
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, "", goerr.Wrap(err, "failed to read raw file")
			}
			return data, url, nil
		}
		resp.Body.Close()
	}

	if lastErr != nil {
		return nil, "", goerr.Wrap(lastErr, "file not found on bridge",
			goerr.T(types.ErrTagNotFound),
			goerr.V("repo", repo), goerr.V("path", path))
	}
	return nil, "", goerr.New("file not found on bridge",
		goerr.T(types.ErrTagNotFound),
		goerr.V("repo", repo), goerr.V("path", path))
}

// CreateBounty creates a bounty record via the bridge API.
func (c *client) CreateBounty(ctx context.Context, req *model.BountyRequest) (map[string]any, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode bounty request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bounty/create", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build bounty request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reach bridge", goerr.T(types.ErrTagBridgeUnreachable))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read bridge response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("bounty creation failed",
			goerr.T(types.ErrTagBridgePushFailed),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(raw)))
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode bounty response")
	}
	return result, nil
}

// Package usecase implements the compound git-over-Nostr operations: each one
// is a fixed sequence of event building, relay queries/publishes, and bridge
// calls, with defaulting and credential auto-resolution on top.
package usecase

import (
	"net/http"
	"strings"
	"time"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/interfaces"
)

// Config carries the environment-provided settings, consumed read-only.
type Config struct {
	// Relays is the default relay set used when a caller supplies none.
	Relays []string
	// GraspServers are combined git+relay hosts used to build clone URLs for
	// newly created repositories.
	GraspServers []string
	// WebBase is the web frontend used to build browse URLs.
	WebBase string
	// KeyFile overrides the credential file search path when set.
	KeyFile string
}

// UseCase wires the relay and bridge clients behind the tool surface.
type UseCase struct {
	relay      interfaces.RelayClient
	bridge     interfaces.BridgeClient
	cfg        Config
	httpClient *http.Client
}

// Option configures a UseCase.
type Option func(*UseCase)

// WithHTTPClient replaces the HTTP client used for direct combined-server
// file fetches.
func WithHTTPClient(hc *http.Client) Option {
	return func(uc *UseCase) {
		uc.httpClient = hc
	}
}

// New creates a UseCase with the given clients and configuration.
func New(relayClient interfaces.RelayClient, bridgeClient interfaces.BridgeClient, cfg Config, opts ...Option) *UseCase {
	if cfg.WebBase == "" {
		cfg.WebBase = "https://gittr.space"
	}
	uc := &UseCase{
		relay:      relayClient,
		bridge:     bridgeClient,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// relaysOrDefault falls back to the configured relay set.
func (uc *UseCase) relaysOrDefault(relays []string) []string {
	if len(relays) > 0 {
		return relays
	}
	return uc.cfg.Relays
}

// hostOf strips the scheme and path from a server value.
func hostOf(server string) string {
	s := server
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}

// Package http exposes the tool registry over plain HTTP, for agents that
// speak REST rather than MCP stdio.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/controller/toolset"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
)

// config holds internal HTTP server configuration
type config struct {
	addr string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates an HTTP server over the tool registry.
func NewServer(ctx context.Context, registry *toolset.Registry, opts ...Option) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)
	router.Get("/api/tools", handleListTools(registry))
	router.Post("/api/tools/{name}", handleInvokeTool(registry))

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}

// handleListTools returns the tool names and schemas.
func handleListTools(registry *toolset.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"tools": registry.Tools(),
		})
	}
}

// handleInvokeTool decodes the argument object and executes one tool. Handler
// errors become the uniform tagged payload with a 200 status; agents inspect
// the body, not the status line.
func handleInvokeTool(registry *toolset.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var args map[string]any
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
				writeError(w, r, err, http.StatusBadRequest)
				return
			}
		}

		result, err := registry.Execute(r.Context(), name, args)
		if err != nil {
			ctxlog.From(r.Context()).Warn("tool call failed", "tool", name, "error", err)
			writeJSON(w, http.StatusOK, toolset.ErrorPayload(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"result":  result,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctxlog.From(context.Background()).Error("Failed to encode response", "error", err)
	}
}

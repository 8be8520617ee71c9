package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
)

// LoggingMiddleware injects the server logger into each request context and
// writes one access line per request. The injection is load-bearing: tool
// handlers log through the request context, which carries no logger unless
// it is attached here.
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	logger := ctxlog.From(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqCtx := ctxlog.With(r.Context(), logger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(reqCtx))

			ctxlog.From(reqCtx).Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(reqCtx),
			)
		})
	}
}

// writeError reports a transport-level failure such as a malformed request
// body. Tool errors never come through here; they ride in a 200 payload.
func writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if encErr := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); encErr != nil {
		ctxlog.From(r.Context()).Error("Failed to encode error response", "error", encErr)
	}
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/sagarc03/contentd"
)

// RequestIDHeader carries the per-request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestVerifier decides whether a request may read content. It is
// consulted before the identifier is resolved. Returning an error that
// wraps contentd.ErrUnauthorized rejects the request with 401.
type RequestVerifier interface {
	Verify(r *http.Request) error
}

// RequestVerifierFunc adapts a function to RequestVerifier.
type RequestVerifierFunc func(r *http.Request) error

func (f RequestVerifierFunc) Verify(r *http.Request) error {
	return f(r)
}

// AuthMiddleware creates middleware that consults verifier before the
// wrapped handler runs. Pass nil to disable verification (public access).
func AuthMiddleware(verifier RequestVerifier) func(http.Handler) http.Handler {
	if verifier == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := verifier.Verify(r); err != nil {
				slog.InfoContext(r.Context(), "request rejected",
					"request_id", contentd.RequestIDFromContext(r.Context()), "err", err)
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger assigns a request id, stores it in the request context and
// logs one record per request once the response is written. An incoming
// X-Request-ID header is reused.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := contentd.WithRequestID(r.Context(), id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		slog.InfoContext(ctx, "http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

package tenant

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/veritrack/veritrack/internal/listview"
)

// ErrMissing indicates that no tenant could be resolved for a request.
// Every API call is scoped to one company's data partition; a missing
// tenant is a configuration error, never silently tolerated.
var ErrMissing = errors.New("tenant: company id missing")

type contextKey struct{}

// FromRequest resolves the tenant id from the request query, falling back
// to the configured default when the parameter is absent.
func FromRequest(r *http.Request, fallback int64) (int64, error) {
	raw := r.URL.Query().Get(listview.TenantKey)
	if raw == "" {
		if fallback > 0 {
			return fallback, nil
		}
		return 0, ErrMissing
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, ErrMissing
	}
	return id, nil
}

// ContextWith stores the resolved tenant id in the context.
func ContextWith(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the tenant id resolved by the middleware.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok
}

// Middleware resolves the tenant for every request and rejects requests
// without one before any handler work happens.
func Middleware(fallback int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := FromRequest(r, fallback)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"company_id is required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWith(r.Context(), id)))
		})
	}
}

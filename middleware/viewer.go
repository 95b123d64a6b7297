// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/sabc/auth"
)

// ViewerLoader looks up the viewer for a session's user ID. It returns
// auth.ErrInvalidSession when the user no longer exists or is inactive.
type ViewerLoader func(ctx context.Context, userID string) (auth.Viewer, error)

// WithViewer resolves the session cookie into an auth.Viewer on the
// request context. Requests without a valid session continue as
// anonymous, and a stale cookie is cleared.
func WithViewer(secret string, load ViewerLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := auth.ParseSession(cookie.Value, secret)
			if err != nil {
				auth.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			viewer, err := load(r.Context(), userID)
			if errors.Is(err, auth.ErrInvalidSession) {
				auth.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("failed to load viewer", "user_id", userID, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithViewer(r.Context(), viewer)))
		})
	}
}

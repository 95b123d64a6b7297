// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/models"
)

const testSecret = "middleware-test-secret"

func viewerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(auth.ViewerFrom(r.Context()).UserID))
	})
}

func sessionRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}
	return req
}

func TestWithViewer(t *testing.T) {
	loader := func(ctx context.Context, userID string) (auth.Viewer, error) {
		switch userID {
		case "u1":
			return auth.Viewer{UserID: "u1", AnglerType: models.AnglerMember}, nil
		case "gone":
			return auth.Viewer{}, auth.ErrInvalidSession
		}
		return auth.Viewer{}, errors.New("database is down")
	}
	handler := WithViewer(testSecret, loader)(viewerEcho())

	valid, err := auth.IssueSession("u1", testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	gone, err := auth.IssueSession("gone", testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	broken, err := auth.IssueSession("boom", testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	forged, err := auth.IssueSession("u1", "some-other-secret-value", time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		wantStatus  int
		wantBody    string
		wantCleared bool
	}{
		{"no cookie", "", http.StatusOK, "", false},
		{"valid session", valid, http.StatusOK, "u1", false},
		{"forged session", forged, http.StatusOK, "", true},
		{"garbage", "not-a-jwt", http.StatusOK, "", true},
		{"deleted user", gone, http.StatusOK, "", true},
		{"loader failure", broken, http.StatusInternalServerError, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, sessionRequest(t, tt.token))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}

			cleared := false
			for _, c := range w.Result().Cookies() {
				if c.Name == auth.SessionCookie && c.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tt.wantCleared, cleared)
		})
	}
}

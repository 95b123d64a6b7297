// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/middleware"
	"github.com/danielhkuo/sabc/models"
	"github.com/danielhkuo/sabc/views"
)

// anglerNameSQL is "First Last", or the username when both are blank.
// Needs users aliased as u.
const anglerNameSQL = `CASE WHEN TRIM(u.first_name || ' ' || u.last_name) = '' THEN u.username ELSE TRIM(u.first_name || ' ' || u.last_name) END`

const anglerColumns = `
	a.user_id, a.type, a.phone, a.office,
	u.username, u.email, u.first_name, u.last_name, u.is_superuser, u.date_joined`

const anglerOrder = `ORDER BY u.last_name, u.first_name, u.username`

// ViewerLoader loads the viewer for a session's user from the database
func ViewerLoader(db *sqlx.DB) middleware.ViewerLoader {
	return func(ctx context.Context, userID string) (auth.Viewer, error) {
		var row struct {
			ID          string         `db:"id"`
			Username    string         `db:"username"`
			FirstName   string         `db:"first_name"`
			LastName    string         `db:"last_name"`
			IsSuperuser bool           `db:"is_superuser"`
			IsActive    bool           `db:"is_active"`
			Type        sql.NullString `db:"type"`
		}
		err := db.GetContext(ctx, &row, db.Rebind(`
			SELECT u.id, u.username, u.first_name, u.last_name, u.is_superuser, u.is_active, a.type
			FROM users u
			LEFT JOIN anglers a ON a.user_id = u.id
			WHERE u.id = ?
		`), userID)
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Viewer{}, auth.ErrInvalidSession
		}
		if err != nil {
			return auth.Viewer{}, fmt.Errorf("failed to load viewer: %w", err)
		}
		if !row.IsActive {
			return auth.Viewer{}, auth.ErrInvalidSession
		}

		anglerType := models.AnglerGuest
		if row.Type.Valid {
			anglerType = row.Type.String
		}
		return auth.Viewer{
			UserID:      row.ID,
			Username:    row.Username,
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			AnglerType:  anglerType,
			IsSuperuser: row.IsSuperuser,
		}, nil
	}
}

// render writes a page with status 200
func render(w http.ResponseWriter, r *http.Request, v *views.Renderer, name, title string, data any) {
	renderStatus(w, r, v, http.StatusOK, name, title, data)
}

func renderStatus(w http.ResponseWriter, r *http.Request, v *views.Renderer, status int, name, title string, data any) {
	if err := v.Render(w, r, status, name, title, data); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
	}
}

// serverError logs err and shows the generic error page
func serverError(w http.ResponseWriter, r *http.Request, v *views.Renderer, msg string, err error) {
	slog.Error(msg, "path", r.URL.Path, "error", err)
	v.RenderError(w, r, http.StatusInternalServerError, "Something went wrong on our end. Please try again.")
}

func notFound(w http.ResponseWriter, r *http.Request, v *views.Renderer, what string) {
	v.RenderError(w, r, http.StatusNotFound, what+" not found.")
}

// requireLogin sends anonymous viewers to the login page and reports
// whether the request may continue
func requireLogin(w http.ResponseWriter, r *http.Request, v *views.Renderer) (auth.Viewer, bool) {
	viewer := auth.ViewerFrom(r.Context())
	if viewer.IsAuthenticated() {
		return viewer, true
	}

	login, err := v.URL("login")
	if err != nil {
		serverError(w, r, v, "failed to reverse login route", err)
		return viewer, false
	}
	next := r.URL.Path
	if r.Method != http.MethodGet {
		next = ""
	}
	if next != "" {
		login += "?next=" + url.QueryEscape(next)
	}
	http.Redirect(w, r, login, http.StatusSeeOther)
	return viewer, false
}

// requireManager allows officers and superusers
func requireManager(w http.ResponseWriter, r *http.Request, v *views.Renderer) (auth.Viewer, bool) {
	viewer, ok := requireLogin(w, r, v)
	if !ok {
		return viewer, false
	}
	if !viewer.CanManage() {
		v.RenderError(w, r, http.StatusForbidden, "Only club officers can do that.")
		return viewer, false
	}
	return viewer, true
}

// redirectRoute sends a 303 to a named route
func redirectRoute(w http.ResponseWriter, r *http.Request, v *views.Renderer, name string, pairs ...string) {
	u, err := v.URL(name, pairs...)
	if err != nil {
		serverError(w, r, v, "failed to reverse route", err)
		return
	}
	http.Redirect(w, r, u, http.StatusSeeOther)
}

// safeNext returns next when it is a local path, otherwise ""
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return ""
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return next
}

// parseYear reads a ?year= value, falling back when it is missing or
// out of range
func parseYear(raw string, fallback int) int {
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return fallback
	}
	return year
}

// yearBounds is [Jan 1 year, Jan 1 year+1) in UTC, matching how dates
// are stored
func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// parseDate turns a form date (YYYY-MM-DD) into the stored UTC midnight
func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", raw, time.UTC)
}

func loadAnglers(ctx context.Context, db *sqlx.DB) ([]models.Angler, error) {
	var anglers []models.Angler
	err := db.SelectContext(ctx, &anglers, `
		SELECT `+anglerColumns+`
		FROM anglers a
		JOIN users u ON u.id = a.user_id
		WHERE u.is_active = TRUE
		`+anglerOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to query anglers: %w", err)
	}
	return anglers, nil
}

func loadAngler(ctx context.Context, db *sqlx.DB, userID string) (models.Angler, error) {
	var angler models.Angler
	err := db.GetContext(ctx, &angler, db.Rebind(`
		SELECT `+anglerColumns+`
		FROM anglers a
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = ?
	`), userID)
	return angler, err
}

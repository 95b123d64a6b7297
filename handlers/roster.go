// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/models"
	"github.com/danielhkuo/sabc/views"
)

type RosterHandler struct {
	db    *sqlx.DB
	cfg   cliparse.Config
	views *views.Renderer
}

func NewRosterHandler(db *sqlx.DB, cfg cliparse.Config, v *views.Renderer) *RosterHandler {
	return &RosterHandler{db: db, cfg: cfg, views: v}
}

type rosterView struct {
	Officers []models.Angler
	Members  []models.Angler
	Guests   []models.Angler
	CanEdit  bool
	Types    []string
}

// Roster handles GET /roster
func (h *RosterHandler) Roster(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireLogin(w, r, h.views)
	if !ok {
		return
	}

	anglers, err := loadAnglers(r.Context(), h.db)
	if err != nil {
		serverError(w, r, h.views, "failed to load roster", err)
		return
	}

	view := rosterView{
		CanEdit: viewer.IsSuperuser,
		Types:   []string{models.AnglerMember, models.AnglerOfficer, models.AnglerGuest},
	}
	for _, a := range anglers {
		switch a.Type {
		case models.AnglerOfficer:
			view.Officers = append(view.Officers, a)
		case models.AnglerMember:
			view.Members = append(view.Members, a)
		default:
			view.Guests = append(view.Guests, a)
		}
	}

	render(w, r, h.views, "roster", "Roster", view)
}

// UpdateType handles POST /roster/{id}/type (superusers only)
func (h *RosterHandler) UpdateType(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireLogin(w, r, h.views)
	if !ok {
		return
	}
	if !viewer.IsSuperuser {
		h.views.RenderError(w, r, http.StatusForbidden, "Only an administrator can change angler types.")
		return
	}

	anglerType := r.PostFormValue("type")
	if !models.ValidAnglerType(anglerType) {
		h.views.RenderError(w, r, http.StatusBadRequest, "Unknown angler type.")
		return
	}

	userID := mux.Vars(r)["id"]
	res, err := h.db.ExecContext(r.Context(), h.db.Rebind(`UPDATE anglers SET type = ? WHERE user_id = ?`), anglerType, userID)
	if err != nil {
		serverError(w, r, h.views, "failed to update angler type", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		notFound(w, r, h.views, "Angler")
		return
	}

	slog.Info("angler type changed", "user_id", userID, "type", anglerType, "changed_by", viewer.UserID)
	redirectRoute(w, r, h.views, "roster")
}

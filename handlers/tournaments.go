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
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/forms"
	"github.com/danielhkuo/sabc/models"
	"github.com/danielhkuo/sabc/views"
)

// TournamentHandler serves tournament pages and weigh-in results
type TournamentHandler struct {
	db    *sqlx.DB
	cfg   cliparse.Config
	views *views.Renderer
}

func NewTournamentHandler(db *sqlx.DB, cfg cliparse.Config, v *views.Renderer) *TournamentHandler {
	return &TournamentHandler{db: db, cfg: cfg, views: v}
}

type tournamentForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Lake        string `form:"lake" validate:"required,max=100"`
	Ramp        string `form:"ramp" validate:"max=100"`
	EventDate   string `form:"event_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `form:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime     string `form:"end_time" validate:"omitempty,datetime=15:04"`
	Description string `form:"description" validate:"max=2000"`
	PointsCount bool   `form:"points_count"`
}

type tournamentFormView struct {
	Form   tournamentForm
	Errors forms.Errors
}

type resultForm struct {
	AnglerID     string  `form:"angler_id" validate:"required"`
	NumFish      int     `form:"num_fish" validate:"min=0"`
	TotalWeight  float64 `form:"total_weight" validate:"min=0,max=200"`
	BigBass      float64 `form:"big_bass" validate:"min=0,ltefield=TotalWeight"`
	Disqualified bool    `form:"disqualified"`
}

type tournamentView struct {
	FishLimit  int
	Tournament models.Tournament
	Results    []models.RankedResult
	CanManage  bool
	Anglers    []models.Angler
	Form       resultForm
	Errors     forms.Errors
}

func (h *TournamentHandler) load(ctx context.Context, id string) (models.Tournament, error) {
	var t models.Tournament
	err := h.db.GetContext(ctx, &t, h.db.Rebind(`SELECT * FROM tournaments WHERE id = ?`), id)
	return t, err
}

// loadOr404 fetches the tournament in the URL and writes the error page
// when it cannot
func (h *TournamentHandler) loadOr404(w http.ResponseWriter, r *http.Request) (models.Tournament, bool) {
	t, err := h.load(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, sql.ErrNoRows) {
		notFound(w, r, h.views, "Tournament")
		return t, false
	}
	if err != nil {
		serverError(w, r, h.views, "failed to query tournament", err)
		return t, false
	}
	return t, true
}

func (h *TournamentHandler) results(ctx context.Context, t models.Tournament) ([]models.RankedResult, error) {
	var results []models.Result
	err := h.db.SelectContext(ctx, &results, h.db.Rebind(`
		SELECT r.id, r.tournament_id, r.angler_id, `+anglerNameSQL+` AS angler_name,
			r.num_fish, r.total_weight, r.big_bass, r.disqualified
		FROM results r
		JOIN users u ON u.id = r.angler_id
		WHERE r.tournament_id = ?
	`), t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	return RankResults(results, t.PointsCount), nil
}

func (h *TournamentHandler) renderDetail(w http.ResponseWriter, r *http.Request, status int, t models.Tournament, form resultForm, errs forms.Errors) {
	ctx := r.Context()

	results, err := h.results(ctx, t)
	if err != nil {
		serverError(w, r, h.views, "failed to load results", err)
		return
	}

	view := tournamentView{
		FishLimit:  models.FishLimit,
		Tournament: t,
		Results:    results,
		CanManage:  auth.ViewerFrom(ctx).CanManage(),
		Form:       form,
		Errors:     errs,
	}
	if view.CanManage && !t.Complete {
		if view.Anglers, err = loadAnglers(ctx, h.db); err != nil {
			serverError(w, r, h.views, "failed to load anglers", err)
			return
		}
	}

	renderStatus(w, r, h.views, status, "tournament_detail", t.Name, view)
}

// Detail handles GET /tournaments/{id}
func (h *TournamentHandler) Detail(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadOr404(w, r)
	if !ok {
		return
	}
	h.renderDetail(w, r, http.StatusOK, t, resultForm{}, nil)
}

// Create handles GET and POST /tournaments/new
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireManager(w, r, h.views)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		render(w, r, h.views, "tournament_form", "New Tournament", tournamentFormView{
			Form: tournamentForm{PointsCount: true},
		})
		return
	}
	if err := r.ParseForm(); err != nil {
		h.views.RenderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	var form tournamentForm
	errs := forms.Validate(&form, forms.Decode(r.PostForm, &form))
	if form.StartTime != "" && form.EndTime != "" && form.EndTime < form.StartTime && !errs.Has("end_time") {
		errs.Add("end_time", "Must be after the start time.")
	}
	if errs.Any() {
		renderStatus(w, r, h.views, http.StatusBadRequest, "tournament_form", "New Tournament", tournamentFormView{Form: form, Errors: errs})
		return
	}

	eventDate, err := parseDate(form.EventDate)
	if err != nil {
		serverError(w, r, h.views, "validated date did not parse", err)
		return
	}

	id := auth.NewID()
	_, err = h.db.ExecContext(r.Context(), h.db.Rebind(`
		INSERT INTO tournaments (id, name, lake, ramp, event_date, start_time, end_time, description, points_count, complete, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, form.Name, form.Lake, form.Ramp, eventDate, form.StartTime, form.EndTime, form.Description,
		form.PointsCount, false, viewer.UserID, time.Now().UTC())
	if err != nil {
		serverError(w, r, h.views, "failed to insert tournament", err)
		return
	}

	slog.Info("tournament created", "tournament_id", id, "created_by", viewer.UserID)
	redirectRoute(w, r, h.views, "tournament-detail", "id", id)
}

// AddResult handles POST /tournaments/{id}/results
func (h *TournamentHandler) AddResult(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireManager(w, r, h.views)
	if !ok {
		return
	}
	t, ok := h.loadOr404(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.views.RenderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	var form resultForm
	errs := forms.Validate(&form, forms.Decode(r.PostForm, &form))

	if t.Complete {
		errs = forms.Errors{}
		errs.Add("_", "Results for this tournament are final.")
		h.renderDetail(w, r, http.StatusConflict, t, form, errs)
		return
	}

	if form.NumFish > models.FishLimit {
		errs.Add("num_fish", fmt.Sprintf("Must be at most %d.", models.FishLimit))
	}
	if form.NumFish == 0 && (form.TotalWeight > 0 || form.BigBass > 0) {
		errs.Add("total_weight", "An angler with no fish cannot have a weight.")
	}
	if form.NumFish > 0 && form.TotalWeight == 0 && !form.Disqualified {
		errs.Add("total_weight", "Enter the weight of the fish.")
	}

	ctx := r.Context()
	if !errs.Has("angler_id") {
		var count int
		err := h.db.GetContext(ctx, &count, h.db.Rebind(`SELECT COUNT(*) FROM anglers WHERE user_id = ?`), form.AnglerID)
		if err != nil {
			serverError(w, r, h.views, "failed to check angler", err)
			return
		}
		if count == 0 {
			errs.Add("angler_id", "Choose an angler from the list.")
		}
	}
	if errs.Any() {
		h.renderDetail(w, r, http.StatusBadRequest, t, form, errs)
		return
	}

	var existing int
	err := h.db.GetContext(ctx, &existing, h.db.Rebind(`
		SELECT COUNT(*) FROM results WHERE tournament_id = ? AND angler_id = ?
	`), t.ID, form.AnglerID)
	if err != nil {
		serverError(w, r, h.views, "failed to check for duplicate result", err)
		return
	}
	if existing > 0 {
		errs.Add("angler_id", "This angler already has a result.")
		h.renderDetail(w, r, http.StatusConflict, t, form, errs)
		return
	}

	resultID := auth.NewID()
	_, err = h.db.ExecContext(ctx, h.db.Rebind(`
		INSERT INTO results (id, tournament_id, angler_id, num_fish, total_weight, big_bass, disqualified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), resultID, t.ID, form.AnglerID, form.NumFish, form.TotalWeight, form.BigBass, form.Disqualified)
	if err != nil {
		serverError(w, r, h.views, "failed to insert result", err)
		return
	}

	slog.Info("result added",
		"tournament_id", t.ID,
		"angler_id", form.AnglerID,
		"num_fish", form.NumFish,
		"total_weight", form.TotalWeight,
		"entered_by", viewer.UserID,
	)
	redirectRoute(w, r, h.views, "tournament-detail", "id", t.ID)
}

// Complete handles POST /tournaments/{id}/complete. Completed
// tournaments count toward the annual awards and take no more results.
func (h *TournamentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireManager(w, r, h.views)
	if !ok {
		return
	}
	t, ok := h.loadOr404(w, r)
	if !ok {
		return
	}
	if t.Complete {
		h.views.RenderError(w, r, http.StatusConflict, "Results for this tournament are already final.")
		return
	}

	_, err := h.db.ExecContext(r.Context(), h.db.Rebind(`UPDATE tournaments SET complete = ? WHERE id = ?`), true, t.ID)
	if err != nil {
		serverError(w, r, h.views, "failed to complete tournament", err)
		return
	}

	slog.Info("tournament completed", "tournament_id", t.ID, "completed_by", viewer.UserID)
	redirectRoute(w, r, h.views, "tournament-detail", "id", t.ID)
}

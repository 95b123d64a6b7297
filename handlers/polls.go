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
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/forms"
	"github.com/danielhkuo/sabc/middleware"
	"github.com/danielhkuo/sabc/models"
	"github.com/danielhkuo/sabc/paginate"
	"github.com/danielhkuo/sabc/views"
)

// PollHandler serves lake polls and voting
type PollHandler struct {
	db    *sqlx.DB
	cfg   cliparse.Config
	views *views.Renderer
}

func NewPollHandler(db *sqlx.DB, cfg cliparse.Config, v *views.Renderer) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, views: v}
}

type pollListItem struct {
	models.LakePoll
	Votes int  `db:"votes"`
	Open  bool `db:"-"`
}

type pollsView struct {
	Polls     []pollListItem
	Page      paginate.Page
	CanManage bool
}

// List handles GET /polls with the newest polls first
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireLogin(w, r, h.views)
	if !ok {
		return
	}
	ctx := r.Context()

	var total int
	if err := h.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM lake_polls`); err != nil {
		serverError(w, r, h.views, "failed to count polls", err)
		return
	}

	page := paginate.New(total, h.cfg.PageSize, paginate.ParsePage(r.URL.Query().Get("page")))

	var polls []pollListItem
	err := h.db.SelectContext(ctx, &polls, h.db.Rebind(`
		SELECT p.id, p.name, p.description, p.ends_at, p.complete, p.created_by, p.created_at,
			COUNT(v.angler_id) AS votes
		FROM lake_polls p
		LEFT JOIN lake_votes v ON v.poll_id = p.id
		GROUP BY p.id, p.name, p.description, p.ends_at, p.complete, p.created_by, p.created_at
		ORDER BY p.created_at DESC, p.id
		LIMIT ? OFFSET ?
	`), page.Limit(), page.Offset())
	if err != nil {
		serverError(w, r, h.views, "failed to query polls", err)
		return
	}

	now := time.Now()
	for i := range polls {
		polls[i].Open = polls[i].IsOpen(now)
	}

	render(w, r, h.views, "polls", "Lake Polls", pollsView{
		Polls:     polls,
		Page:      page,
		CanManage: viewer.CanManage(),
	})
}

type pollView struct {
	Poll          models.LakePoll
	Choices       []models.LakePollChoice
	TotalVotes    int
	Open          bool
	VotedChoiceID string
	CanVote       bool
	Error         string
}

func (h *PollHandler) load(ctx context.Context, id string) (models.LakePoll, error) {
	var poll models.LakePoll
	err := h.db.GetContext(ctx, &poll, h.db.Rebind(`SELECT * FROM lake_polls WHERE id = ?`), id)
	return poll, err
}

// choices returns a poll's lakes with their vote counts, most votes first
func (h *PollHandler) choices(ctx context.Context, pollID string) ([]models.LakePollChoice, int, error) {
	var choices []models.LakePollChoice
	err := h.db.SelectContext(ctx, &choices, h.db.Rebind(`
		SELECT c.id, c.poll_id, c.lake, COUNT(v.angler_id) AS votes
		FROM lake_poll_choices c
		LEFT JOIN lake_votes v ON v.choice_id = c.id
		WHERE c.poll_id = ?
		GROUP BY c.id, c.poll_id, c.lake
		ORDER BY votes DESC, c.lake
	`), pollID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query choices: %w", err)
	}

	total := 0
	for _, c := range choices {
		total += c.Votes
	}
	return choices, total, nil
}

func (h *PollHandler) votedChoice(ctx context.Context, pollID, anglerID string) (string, error) {
	var choiceID string
	err := h.db.GetContext(ctx, &choiceID, h.db.Rebind(`
		SELECT choice_id FROM lake_votes WHERE poll_id = ? AND angler_id = ?
	`), pollID, anglerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query vote: %w", err)
	}
	return choiceID, nil
}

func (h *PollHandler) renderPoll(w http.ResponseWriter, r *http.Request, status int, poll models.LakePoll, message string) {
	ctx := r.Context()
	viewer := auth.ViewerFrom(ctx)

	choices, total, err := h.choices(ctx, poll.ID)
	if err != nil {
		serverError(w, r, h.views, "failed to load choices", err)
		return
	}
	voted, err := h.votedChoice(ctx, poll.ID, viewer.UserID)
	if err != nil {
		serverError(w, r, h.views, "failed to load vote", err)
		return
	}

	renderStatus(w, r, h.views, status, "poll_detail", poll.Name, pollView{
		Poll:          poll,
		Choices:       choices,
		TotalVotes:    total,
		Open:          poll.IsOpen(time.Now()),
		VotedChoiceID: voted,
		CanVote:       viewer.CanVote(),
		Error:         message,
	})
}

func (h *PollHandler) loadOr404(w http.ResponseWriter, r *http.Request) (models.LakePoll, bool) {
	poll, err := h.load(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, sql.ErrNoRows) {
		notFound(w, r, h.views, "Poll")
		return poll, false
	}
	if err != nil {
		serverError(w, r, h.views, "failed to query poll", err)
		return poll, false
	}
	return poll, true
}

// Detail handles GET /polls/{id}
func (h *PollHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireLogin(w, r, h.views); !ok {
		return
	}
	poll, ok := h.loadOr404(w, r)
	if !ok {
		return
	}
	h.renderPoll(w, r, http.StatusOK, poll, "")
}

// Vote handles POST /polls/{id}/vote. Members and officers get one vote
// per poll while it is open.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireLogin(w, r, h.views)
	if !ok {
		return
	}
	poll, ok := h.loadOr404(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if !viewer.CanVote() {
		h.renderPoll(w, r, http.StatusForbidden, poll, "Only club members can vote.")
		return
	}
	if !poll.IsOpen(time.Now()) {
		h.renderPoll(w, r, http.StatusConflict, poll, "Voting has closed for this poll.")
		return
	}

	voted, err := h.votedChoice(ctx, poll.ID, viewer.UserID)
	if err != nil {
		serverError(w, r, h.views, "failed to check vote", err)
		return
	}
	if voted != "" {
		h.renderPoll(w, r, http.StatusConflict, poll, "You have already voted in this poll.")
		return
	}

	choiceID := r.PostFormValue("choice")
	var count int
	err = h.db.GetContext(ctx, &count, h.db.Rebind(`
		SELECT COUNT(*) FROM lake_poll_choices WHERE id = ? AND poll_id = ?
	`), choiceID, poll.ID)
	if err != nil {
		serverError(w, r, h.views, "failed to check choice", err)
		return
	}
	if count == 0 {
		h.renderPoll(w, r, http.StatusBadRequest, poll, "Choose one of the lakes.")
		return
	}

	_, err = h.db.ExecContext(ctx, h.db.Rebind(`
		INSERT INTO lake_votes (poll_id, angler_id, choice_id, voted_at)
		VALUES (?, ?, ?, ?)
	`), poll.ID, viewer.UserID, choiceID, time.Now().UTC())
	if err != nil {
		// A concurrent vote from the same angler loses on the primary key
		if again, checkErr := h.votedChoice(ctx, poll.ID, viewer.UserID); checkErr == nil && again != "" {
			h.renderPoll(w, r, http.StatusConflict, poll, "You have already voted in this poll.")
			return
		}
		serverError(w, r, h.views, "failed to insert vote", err)
		return
	}

	middleware.RecordVote()
	slog.Info("vote cast", "poll_id", poll.ID, "angler_id", viewer.UserID)
	redirectRoute(w, r, h.views, "lakepoll-detail", "id", poll.ID)
}

type pollForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Description string `form:"description" validate:"max=2000"`
	Choices     string `form:"choices" validate:"required"`
	EndsDate    string `form:"ends_date" validate:"required,datetime=2006-01-02"`
	EndsTime    string `form:"ends_time" validate:"required,datetime=15:04"`
}

type pollFormView struct {
	Form   pollForm
	Errors forms.Errors
}

// parseChoices splits one lake per line, dropping blanks and repeats
// (case-insensitive, first spelling wins)
func parseChoices(raw string) []string {
	seen := make(map[string]bool)
	var lakes []string
	for _, line := range strings.Split(raw, "\n") {
		lake := strings.Join(strings.Fields(line), " ")
		if lake == "" {
			continue
		}
		key := strings.ToLower(lake)
		if seen[key] {
			continue
		}
		seen[key] = true
		lakes = append(lakes, lake)
	}
	return lakes
}

// Create handles GET and POST /polls/new. The closing time is entered in
// the club's time zone.
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireManager(w, r, h.views)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		render(w, r, h.views, "poll_form", "New Lake Poll", pollFormView{})
		return
	}
	if err := r.ParseForm(); err != nil {
		h.views.RenderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	var form pollForm
	errs := forms.Validate(&form, forms.Decode(r.PostForm, &form))

	lakes := parseChoices(form.Choices)
	if !errs.Has("choices") && len(lakes) < 2 {
		errs.Add("choices", "Enter at least two different lakes, one per line.")
	}
	for _, lake := range lakes {
		if len(lake) > 100 {
			errs.Add("choices", "Lake names must be at most 100 characters.")
		}
	}

	var endsAt time.Time
	if !errs.Has("ends_date") && !errs.Has("ends_time") {
		local, err := time.ParseInLocation("2006-01-02 15:04", form.EndsDate+" "+form.EndsTime, h.cfg.Location())
		if err != nil {
			errs.Add("ends_date", "Enter a valid closing date and time.")
		} else if !local.After(time.Now()) {
			errs.Add("ends_date", "The poll must close in the future.")
		}
		endsAt = local.UTC()
	}

	if errs.Any() {
		renderStatus(w, r, h.views, http.StatusBadRequest, "poll_form", "New Lake Poll", pollFormView{Form: form, Errors: errs})
		return
	}

	ctx := r.Context()
	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		serverError(w, r, h.views, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	pollID := auth.NewID()
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO lake_polls (id, name, description, ends_at, complete, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), pollID, form.Name, form.Description, endsAt, false, viewer.UserID, time.Now().UTC())
	if err != nil {
		serverError(w, r, h.views, "failed to insert poll", err)
		return
	}

	for _, lake := range lakes {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO lake_poll_choices (id, poll_id, lake) VALUES (?, ?, ?)
		`), auth.NewID(), pollID, lake)
		if err != nil {
			serverError(w, r, h.views, "failed to insert choice", err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		serverError(w, r, h.views, "failed to commit poll", err)
		return
	}

	slog.Info("poll created", "poll_id", pollID, "choices", len(lakes), "created_by", viewer.UserID)
	redirectRoute(w, r, h.views, "lakepoll-detail", "id", pollID)
}

// ResultsAPI handles GET /api/polls/{id}/results
func (h *PollHandler) ResultsAPI(w http.ResponseWriter, r *http.Request) {
	if !auth.ViewerFrom(r.Context()).IsAuthenticated() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Log in to see poll results")
		return
	}
	ctx := r.Context()

	poll, err := h.load(ctx, mux.Vars(r)["id"])
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	choices, total, err := h.choices(ctx, poll.ID)
	if err != nil {
		slog.Error("failed to load choices", "poll_id", poll.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.PollResultsResponse{
		PollID:     poll.ID,
		Name:       poll.Name,
		Complete:   !poll.IsOpen(time.Now()),
		EndsAt:     poll.EndsAt,
		TotalVotes: total,
		Choices:    make([]models.ChoiceResult, 0, len(choices)),
	}
	for _, c := range choices {
		resp.Choices = append(resp.Choices, models.ChoiceResult{ChoiceID: c.ID, Lake: c.Lake, Votes: c.Votes})
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

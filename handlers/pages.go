// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/models"
	"github.com/danielhkuo/sabc/paginate"
	"github.com/danielhkuo/sabc/views"
)

// PageHandler serves the public pages
type PageHandler struct {
	db    *sqlx.DB
	cfg   cliparse.Config
	views *views.Renderer
}

func NewPageHandler(db *sqlx.DB, cfg cliparse.Config, v *views.Renderer) *PageHandler {
	return &PageHandler{db: db, cfg: cfg, views: v}
}

type homeView struct {
	Tournaments []models.Tournament
	Page        paginate.Page
}

// Home handles GET / with the newest tournaments first
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var total int
	if err := h.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tournaments`); err != nil {
		serverError(w, r, h.views, "failed to count tournaments", err)
		return
	}

	page := paginate.New(total, h.cfg.PageSize, paginate.ParsePage(r.URL.Query().Get("page")))

	var tournaments []models.Tournament
	err := h.db.SelectContext(ctx, &tournaments, h.db.Rebind(`
		SELECT * FROM tournaments
		ORDER BY event_date DESC, created_at DESC
		LIMIT ? OFFSET ?
	`), page.Limit(), page.Offset())
	if err != nil {
		serverError(w, r, h.views, "failed to query tournaments", err)
		return
	}

	render(w, r, h.views, "home", "Tournaments", homeView{Tournaments: tournaments, Page: page})
}

type aboutView struct {
	Officers []models.Angler
}

// About handles GET /about
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	var officers []models.Angler
	err := h.db.SelectContext(r.Context(), &officers, h.db.Rebind(`
		SELECT `+anglerColumns+`
		FROM anglers a
		JOIN users u ON u.id = a.user_id
		WHERE a.type = ? AND u.is_active = TRUE
		`+anglerOrder), models.AnglerOfficer)
	if err != nil {
		serverError(w, r, h.views, "failed to query officers", err)
		return
	}

	render(w, r, h.views, "about", "About", aboutView{Officers: officers})
}

// Bylaws handles GET /bylaws
func (h *PageHandler) Bylaws(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.views, "bylaws", "Bylaws", nil)
}

type calendarView struct {
	Year      int
	PrevYear  int
	NextYear  int
	Months    []models.CalendarMonth
	CanManage bool
}

// Calendar handles GET /calendar?year=
func (h *PageHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year := parseYear(r.URL.Query().Get("year"), time.Now().In(h.cfg.Location()).Year())
	start, end := yearBounds(year)

	var tournaments []models.Tournament
	err := h.db.SelectContext(ctx, &tournaments, h.db.Rebind(`
		SELECT * FROM tournaments
		WHERE event_date >= ? AND event_date < ?
		ORDER BY event_date
	`), start, end)
	if err != nil {
		serverError(w, r, h.views, "failed to query tournaments", err)
		return
	}

	var events []models.Event
	err = h.db.SelectContext(ctx, &events, h.db.Rebind(`
		SELECT * FROM events
		WHERE event_date >= ? AND event_date < ?
		ORDER BY event_date
	`), start, end)
	if err != nil {
		serverError(w, r, h.views, "failed to query events", err)
		return
	}

	render(w, r, h.views, "calendar", "Calendar", calendarView{
		Year:      year,
		PrevYear:  year - 1,
		NextYear:  year + 1,
		Months:    buildCalendar(tournaments, events),
		CanManage: auth.ViewerFrom(ctx).CanManage(),
	})
}

// buildCalendar merges tournaments and events into months, skipping
// months with nothing on them
func buildCalendar(tournaments []models.Tournament, events []models.Event) []models.CalendarMonth {
	entries := make([]models.CalendarEntry, 0, len(tournaments)+len(events))
	for _, t := range tournaments {
		entries = append(entries, models.CalendarEntry{
			Date:         t.EventDate.UTC(),
			Name:         t.Name,
			Kind:         "tournament",
			Location:     t.Lake,
			StartTime:    t.StartTime,
			TournamentID: t.ID,
		})
	}
	for _, e := range events {
		entries = append(entries, models.CalendarEntry{
			Date:      e.EventDate.UTC(),
			Name:      e.Name,
			Kind:      e.Kind,
			Location:  e.Location,
			StartTime: e.StartTime,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.Name < b.Name
	})

	var months []models.CalendarMonth
	for _, e := range entries {
		if n := len(months); n == 0 || months[n-1].Month != e.Date.Month() {
			months = append(months, models.CalendarMonth{Month: e.Date.Month()})
		}
		last := &months[len(months)-1]
		last.Entries = append(last.Entries, e)
	}
	return months
}

type awardsView struct {
	Awards   models.AnnualAwards
	PrevYear int
	NextYear int
}

// AnnualAwards handles GET /awards?year=
func (h *PageHandler) AnnualAwards(w http.ResponseWriter, r *http.Request) {
	year := parseYear(r.URL.Query().Get("year"), time.Now().In(h.cfg.Location()).Year())

	rows, err := loadAwardRows(r.Context(), h.db, year)
	if err != nil {
		serverError(w, r, h.views, "failed to load award rows", err)
		return
	}

	render(w, r, h.views, "awards", "Annual Awards", awardsView{
		Awards:   AnnualAwards(year, rows),
		PrevYear: year - 1,
		NextYear: year + 1,
	})
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/forms"
	"github.com/danielhkuo/sabc/models"
	"github.com/danielhkuo/sabc/views"
)

// EventHandler adds meetings and other non-tournament dates to the calendar
type EventHandler struct {
	db    *sqlx.DB
	cfg   cliparse.Config
	views *views.Renderer
}

func NewEventHandler(db *sqlx.DB, cfg cliparse.Config, v *views.Renderer) *EventHandler {
	return &EventHandler{db: db, cfg: cfg, views: v}
}

type eventForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Kind        string `form:"kind" validate:"required"`
	EventDate   string `form:"event_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `form:"start_time" validate:"omitempty,datetime=15:04"`
	Location    string `form:"location" validate:"max=200"`
	Description string `form:"description" validate:"max=2000"`
}

type eventFormView struct {
	Form   eventForm
	Errors forms.Errors
	Kinds  []string
}

var eventKinds = []string{models.EventMeeting, models.EventHoliday, models.EventOther}

// Create handles GET and POST /events/new
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireManager(w, r, h.views)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		render(w, r, h.views, "event_form", "New Event", eventFormView{
			Form:  eventForm{Kind: models.EventMeeting},
			Kinds: eventKinds,
		})
		return
	}
	if err := r.ParseForm(); err != nil {
		h.views.RenderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	var form eventForm
	errs := forms.Validate(&form, forms.Decode(r.PostForm, &form))
	if !errs.Has("kind") && !models.ValidEventKind(form.Kind) {
		errs.Add("kind", "Choose one of: "+strings.Join(eventKinds, ", ")+".")
	}
	if errs.Any() {
		renderStatus(w, r, h.views, http.StatusBadRequest, "event_form", "New Event", eventFormView{
			Form:   form,
			Errors: errs,
			Kinds:  eventKinds,
		})
		return
	}

	eventDate, err := parseDate(form.EventDate)
	if err != nil {
		serverError(w, r, h.views, "validated date did not parse", err)
		return
	}

	id := auth.NewID()
	_, err = h.db.ExecContext(r.Context(), h.db.Rebind(`
		INSERT INTO events (id, name, kind, event_date, start_time, location, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), id, form.Name, form.Kind, eventDate, form.StartTime, form.Location, form.Description, time.Now().UTC())
	if err != nil {
		serverError(w, r, h.views, "failed to insert event", err)
		return
	}

	slog.Info("event created", "event_id", id, "kind", form.Kind, "created_by", viewer.UserID)

	calendar, err := h.views.URL("calendar")
	if err != nil {
		serverError(w, r, h.views, "failed to reverse calendar route", err)
		return
	}
	http.Redirect(w, r, calendar+"?year="+strconv.Itoa(eventDate.Year()), http.StatusSeeOther)
}

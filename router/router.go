// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/handlers"
	"github.com/danielhkuo/sabc/middleware"
	"github.com/danielhkuo/sabc/views"
)

func NewRouter(db *sqlx.DB, cfg cliparse.Config, limiter *middleware.RateLimiter) (*mux.Router, error) {
	r := mux.NewRouter()

	renderer, err := views.New(reverse(r), cfg.ClubName, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(db, cfg, renderer)
	accountHandler := handlers.NewAccountHandler(db, cfg, renderer)
	tournamentHandler := handlers.NewTournamentHandler(db, cfg, renderer)
	pollHandler := handlers.NewPollHandler(db, cfg, renderer)
	rosterHandler := handlers.NewRosterHandler(db, cfg, renderer)
	eventHandler := handlers.NewEventHandler(db, cfg, renderer)

	withViewer := middleware.WithViewer(cfg.SessionSecret, handlers.ViewerLoader(db))
	r.Use(middleware.Instrument, middleware.Logging, withViewer)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet).Name("health")
	r.Handle("/metrics", middleware.MetricsHandler()).Methods(http.MethodGet).Name("metrics")
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", views.StaticHandler())).Methods(http.MethodGet, http.MethodHead)

	// Public pages
	r.HandleFunc("/", pageHandler.Home).Methods(http.MethodGet).Name("sabc-home")
	r.HandleFunc("/about", pageHandler.About).Methods(http.MethodGet).Name("about")
	r.HandleFunc("/bylaws", pageHandler.Bylaws).Methods(http.MethodGet).Name("bylaws")
	r.HandleFunc("/calendar", pageHandler.Calendar).Methods(http.MethodGet).Name("calendar")
	r.HandleFunc("/awards", pageHandler.AnnualAwards).Methods(http.MethodGet).Name("annual-awards")

	// Accounts (form posts are rate limited per IP)
	r.Handle("/login", limiter.Limit(http.HandlerFunc(accountHandler.Login))).Methods(http.MethodGet, http.MethodPost).Name("login")
	r.HandleFunc("/logout", accountHandler.Logout).Methods(http.MethodGet, http.MethodPost).Name("logout")
	r.Handle("/register", limiter.Limit(http.HandlerFunc(accountHandler.Register))).Methods(http.MethodGet, http.MethodPost).Name("register")
	r.HandleFunc("/profile", accountHandler.Profile).Methods(http.MethodGet, http.MethodPost).Name("profile")

	// Tournaments (/new before /{id})
	r.HandleFunc("/tournaments/new", tournamentHandler.Create).Methods(http.MethodGet, http.MethodPost).Name("tournament-create")
	r.HandleFunc("/tournaments/{id}", tournamentHandler.Detail).Methods(http.MethodGet).Name("tournament-detail")
	r.HandleFunc("/tournaments/{id}/results", tournamentHandler.AddResult).Methods(http.MethodPost).Name("result-create")
	r.HandleFunc("/tournaments/{id}/complete", tournamentHandler.Complete).Methods(http.MethodPost).Name("tournament-complete")

	// Lake polls
	r.HandleFunc("/polls", pollHandler.List).Methods(http.MethodGet).Name("polls")
	r.HandleFunc("/polls/new", pollHandler.Create).Methods(http.MethodGet, http.MethodPost).Name("lakepoll-create")
	r.HandleFunc("/polls/{id}", pollHandler.Detail).Methods(http.MethodGet).Name("lakepoll-detail")
	r.HandleFunc("/polls/{id}/vote", pollHandler.Vote).Methods(http.MethodPost).Name("lakepoll-vote")
	r.HandleFunc("/api/polls/{id}/results", pollHandler.ResultsAPI).Methods(http.MethodGet).Name("lakepoll-results-api")

	// Roster and calendar management
	r.HandleFunc("/roster", rosterHandler.Roster).Methods(http.MethodGet).Name("roster")
	r.HandleFunc("/roster/{id}/type", rosterHandler.UpdateType).Methods(http.MethodPost).Name("angler-update")
	r.HandleFunc("/events/new", eventHandler.Create).Methods(http.MethodGet, http.MethodPost).Name("event-create")

	// Middleware registered with Use only runs for matched routes
	r.NotFoundHandler = middleware.Instrument(middleware.Logging(withViewer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		renderer.RenderError(w, req, http.StatusNotFound, "That page does not exist.")
	}))))

	return r, nil
}

// reverse builds URLs from route names for the templates
func reverse(r *mux.Router) views.URLFunc {
	return func(name string, pairs ...string) (string, error) {
		route := r.Get(name)
		if route == nil {
			return "", fmt.Errorf("no route named %q", name)
		}
		u, err := route.URLPath(pairs...)
		if err != nil {
			return "", fmt.Errorf("failed to build URL for %q: %w", name, err)
		}
		return u.Path, nil
	}
}

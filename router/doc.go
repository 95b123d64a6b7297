// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the site's routes.

# Route Registration

NewRouter creates a gorilla/mux router with every page registered under a
name, loads the templates and wires the middleware:

	r, err := router.NewRouter(db, cfg, middleware.NewRateLimiter(cfg.LoginRatePerMinute))

Templates build links from route names ({{url "tournament-detail" "id" .ID}}),
so paths can change here without touching a template.

# Routes

Public:

	GET  /                  sabc-home      tournaments, ?page=
	GET  /about             about
	GET  /bylaws            bylaws
	GET  /calendar          calendar       ?year=
	GET  /awards            annual-awards  ?year=
	GET  /tournaments/{id}  tournament-detail

Accounts:

	GET|POST /login     login     (POST rate limited)
	GET|POST /logout    logout
	GET|POST /register  register  (POST rate limited)
	GET|POST /profile   profile   (login)

Members (login; anonymous viewers are sent to login?next=):

	GET  /polls                    polls
	GET  /polls/{id}               lakepoll-detail
	POST /polls/{id}/vote          lakepoll-vote
	GET  /api/polls/{id}/results   lakepoll-results-api (JSON, 401 when anonymous)
	GET  /roster                   roster

Officers and superusers:

	GET|POST /tournaments/new             tournament-create
	POST     /tournaments/{id}/results    result-create
	POST     /tournaments/{id}/complete   tournament-complete
	GET|POST /polls/new                   lakepoll-create
	GET|POST /events/new                  event-create

Superusers:

	POST /roster/{id}/type  angler-update

Operational:

	GET /health   health
	GET /metrics  metrics (Prometheus)
	GET /static/  embedded stylesheet

# Middleware

Matched routes run through Instrument, Logging and WithViewer in that
order. The 404 handler is wrapped separately so the error page still
shows the viewer's navigation. Wrong methods get 405.
*/
package router

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

All middleware has the func(http.Handler) http.Handler shape so it can be
installed with mux.Router.Use.

# Request Logging

	r.Use(middleware.Logging)

Logs request start at debug level and completion (method, path, status,
duration_ms) at info.

# Metrics

	r.Use(middleware.Instrument)
	r.Handle("/metrics", middleware.MetricsHandler())

Requests are counted by method, route template and status on a private
Prometheus registry. Handlers record domain events with RecordLogin,
RecordVote and RecordPollsClosed.

# Viewer

	r.Use(middleware.WithViewer(cfg.SessionSecret, handlers.ViewerLoader(db)))

Resolves the session cookie into an auth.Viewer on the request context.
Invalid or stale sessions are cleared and the request continues as
anonymous.

# Rate Limiting

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute)
	r.Handle("/login", limiter.Limit(loginHandler))

Throttles POSTs per client IP with golang.org/x/time/rate and answers
429 Too Many Requests when a client runs out. Call Cleanup periodically
to forget idle clients.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "poll not found")

# Client IP Extraction

GetClientIP reads X-Forwarded-For and X-Real-IP as sent and is only
used for logging. Rate limiting uses ClientIP, which believes those
headers only from trusted proxies:

	ip := middleware.ClientIP(r, cfg.ProxyPrefixes())
*/
package middleware

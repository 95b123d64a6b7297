// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the South Austin Bass Club website.

The site serves server-rendered pages for club members: tournaments and
their weigh-in results, lake polls, the club calendar, the annual awards
and the member roster.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=sabc.db SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -session-secret ...

A .env file in the working directory is read when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - SESSION_SECRET (-session-secret): Secret for signing session cookies

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TIME_ZONE: Club time zone (default: America/Chicago)
  - PAGE_SIZE: Items per list page (default: 4)
  - ADMIN_USERNAME, ADMIN_PASSWORD: Bootstrap superuser
  - POLL_SWEEP_SCHEDULE: How often expired polls are closed (default: @every 1m)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: Page and form handlers (tournaments, polls, roster, account)
  - router: Named routes using gorilla/mux
  - views: Embedded HTML templates and navigation
  - middleware: Logging, metrics, sessions, rate limiting
  - jobs: Scheduled background work
  - models: Domain and JSON types
  - auth: Passwords, session tokens and the viewer
  - forms: Form decoding and validation
  - paginate: Page windows for list views
  - db: Connections, migrations and seeding
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Values are resolved in this order, first match wins:

  - CLI flags (-p, -d, -t, -session-secret)
  - Environment variables
  - A dotenv file (-env-file, default ".env"; missing file is fine)
  - Defaults from the envDefault struct tags

# Environment Variables

	PORT                   → -p (default 3318)
	DATABASE_URL           → -d (required)
	DATABASE_TYPE          → -t (sqlite or postgres, default sqlite)
	SESSION_SECRET         → -session-secret (required, 16+ bytes)
	SESSION_TTL            session lifetime (default 336h)
	PAGE_SIZE              list page size (default 4)
	CLUB_NAME              shown in page titles
	TIME_ZONE              club time zone (default America/Chicago)
	ADMIN_USERNAME         bootstrap superuser
	ADMIN_PASSWORD         bootstrap superuser password
	LOGIN_RATE_PER_MINUTE  login/register attempts per IP (default 10)
	TRUSTED_PROXIES        comma-separated proxy IPs/CIDRs allowed to set X-Forwarded-For
	POLL_SWEEP_SCHEDULE    cron spec for closing polls (default "@every 1m")
	LOG_LEVEL              debug, info, warn, error

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg)
	// ...
	mux := router.NewRouter(conn, cfg)
*/
package cliparse

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"false"`

	PageSize int    `env:"PAGE_SIZE" envDefault:"4"`
	ClubName string `env:"CLUB_NAME" envDefault:"South Austin Bass Club"`
	TimeZone string `env:"TIME_ZONE" envDefault:"America/Chicago"`

	// Bootstrap superuser, created on startup when both are set
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	// Reverse proxies whose X-Forwarded-For is believed (IPs or CIDRs)
	TrustedProxies    []string `env:"TRUSTED_PROXIES" envSeparator:","`
	PollSweepSchedule string   `env:"POLL_SWEEP_SCHEDULE" envDefault:"@every 1m"`
	LogLevel          string   `env:"LOG_LEVEL" envDefault:"info"`

	location *time.Location
	proxies  []netip.Prefix
}

// Location returns the club's time zone, falling back to UTC
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ProxyPrefixes returns TrustedProxies parsed by ParseFlags
func (c Config) ProxyPrefixes() []netip.Prefix {
	return c.proxies
}

// SlogLevel maps LogLevel onto a slog.Level
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseFlags reads configuration from CLI flags, the environment and an
// optional .env file, in that order of precedence.
func ParseFlags(args []string) (Config, error) {
	var (
		port          int
		databaseURL   string
		databaseType  string
		sessionSecret string
		envFile       string
	)

	flags := flag.NewFlagSet("sabc", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&port, "p", 0, "Server port")
	flags.StringVar(&databaseURL, "d", "", "Database URL")
	flags.StringVar(&databaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&sessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	flags.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = port
		case "d":
			cfg.DatabaseURL = databaseURL
		case "t":
			cfg.DatabaseType = databaseType
		case "session-secret":
			cfg.SessionSecret = sessionSecret
		}
	})

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("invalid port")
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	c.DatabaseType = strings.ToLower(c.DatabaseType)
	if c.DatabaseType != DatabaseSQLite && c.DatabaseType != DatabasePostgres {
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET required")
	}
	if len(c.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 bytes")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}

	if c.PageSize <= 0 {
		return errors.New("PAGE_SIZE must be positive")
	}
	if c.LoginRatePerMinute <= 0 {
		return errors.New("LOGIN_RATE_PER_MINUTE must be positive")
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	c.location = loc

	c.proxies = c.proxies[:0]
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		prefix, err := parseProxy(raw)
		if err != nil {
			return fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
		}
		c.proxies = append(c.proxies, prefix)
	}

	return nil
}

// parseProxy accepts a CIDR or a single address
func parseProxy(raw string) (netip.Prefix, error) {
	if strings.Contains(raw, "/") {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return netip.Prefix{}, err
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

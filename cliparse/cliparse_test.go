// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

// noEnvFile points ParseFlags at a dotenv file that does not exist
func noEnvFile(t *testing.T) string {
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("PAGE_SIZE", "10")
	t.Setenv("TIME_ZONE", "UTC")

	cfg, err := ParseFlags([]string{noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.Equal(t, DatabaseSQLite, cfg.DatabaseType)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := ParseFlags([]string{noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, 3318, cfg.Port)
	assert.Equal(t, 4, cfg.PageSize)
	assert.Equal(t, 336*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "South Austin Bass Club", cfg.ClubName)
	assert.Equal(t, "@every 1m", cfg.PollSweepSchedule)
	assert.Equal(t, "America/Chicago", cfg.Location().String())
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "file:env.db")
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := ParseFlags([]string{noEnvFile(t), "-p", "8080", "-d", "postgres://x", "-t", "POSTGRES"})
	require.NoError(t, err)

	// CLI should override env
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "postgres://x", cfg.DatabaseURL)
	assert.Equal(t, DatabasePostgres, cfg.DatabaseType)
}

func TestParseFlags_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	contents := "DATABASE_URL=file:dotenv.db\nSESSION_SECRET=" + testSecret + "\nCLUB_NAME=Test Club\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	// Keep the process environment clean of what the file sets
	for _, k := range []string{"DATABASE_URL", "SESSION_SECRET", "CLUB_NAME"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := ParseFlags([]string{"-env-file", path})
	require.NoError(t, err)

	assert.Equal(t, "file:dotenv.db", cfg.DatabaseURL)
	assert.Equal(t, "Test Club", cfg.ClubName)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{
			name: "missing database url",
			env:  map[string]string{"DATABASE_URL": "", "SESSION_SECRET": testSecret},
		},
		{
			name: "missing session secret",
			env:  map[string]string{"DATABASE_URL": "file:x.db", "SESSION_SECRET": ""},
		},
		{
			name: "short session secret",
			env:  map[string]string{"DATABASE_URL": "file:x.db", "SESSION_SECRET": "short"},
		},
		{
			name: "unknown database type",
			env:  map[string]string{"DATABASE_URL": "file:x.db", "SESSION_SECRET": testSecret},
			args: []string{"-t", "mysql"},
		},
		{
			name: "bad page size",
			env:  map[string]string{"DATABASE_URL": "file:x.db", "SESSION_SECRET": testSecret, "PAGE_SIZE": "0"},
		},
		{
			name: "bad time zone",
			env:  map[string]string{"DATABASE_URL": "file:x.db", "SESSION_SECRET": testSecret, "TIME_ZONE": "Mars/Olympus"},
		},
		{
			name: "bad trusted proxy",
			env:  map[string]string{"DATABASE_URL": "file:x.db", "SESSION_SECRET": testSecret, "TRUSTED_PROXIES": "10.0.0.0/8,proxy.local"},
		},
		{
			name: "bad port env",
			env:  map[string]string{"DATABASE_URL": "file:x.db", "SESSION_SECRET": testSecret, "PORT": "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := append([]string{noEnvFile(t)}, tt.args...)
			_, err := ParseFlags(args)
			assert.Error(t, err)
		})
	}
}

func TestParseFlags_TrustedProxies(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("TRUSTED_PROXIES", "10.1.2.3/8, 127.0.0.1,,::1")

	cfg, err := ParseFlags([]string{noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, cfg.ProxyPrefixes())
}

func TestParseFlags_NoTrustedProxies(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := ParseFlags([]string{noEnvFile(t)})
	require.NoError(t, err)
	assert.Empty(t, cfg.ProxyPrefixes())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", Config{LogLevel: "debug"}.SlogLevel().String())
	assert.Equal(t, "INFO", Config{LogLevel: "nonsense"}.SlogLevel().String())
}

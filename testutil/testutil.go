// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/db"
	"github.com/danielhkuo/sabc/models"
)

// TestPassword is the password of every fixture user
const TestPassword = "password123"

var (
	hashOnce     sync.Once
	testPassHash string
)

// SetupTestDB opens a private in-memory SQLite database migrated with the
// real migrations. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = "file:" + auth.NewID() + "?mode=memory&cache=shared"

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn, cfg.DatabaseType); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "file::memory:",
		DatabaseType:       cliparse.DatabaseSQLite,
		SessionSecret:      "test-session-secret-0123456789",
		SessionTTL:         time.Hour,
		PageSize:           4,
		ClubName:           "South Austin Bass Club",
		TimeZone:           "UTC",
		LoginRatePerMinute: 1000,
		PollSweepSchedule:  "@every 1m",
		LogLevel:           "error",
	}
}

func passwordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		hash, err := auth.HashPassword(TestPassword)
		if err != nil {
			panic(err)
		}
		testPassHash = hash
	})
	return testPassHash
}

// CreateAngler creates an active user with an angler profile of the given
// type and returns the user ID. The first name is the capitalized username.
func CreateAngler(t *testing.T, conn *sqlx.DB, username, anglerType string) string {
	t.Helper()
	return createUser(t, conn, username, anglerType, false)
}

// CreateSuperuser creates a superuser whose angler profile is a guest, so
// tests can tell superuser rights apart from officer rights
func CreateSuperuser(t *testing.T, conn *sqlx.DB, username string) string {
	t.Helper()
	return createUser(t, conn, username, models.AnglerGuest, true)
}

func createUser(t *testing.T, conn *sqlx.DB, username, anglerType string, superuser bool) string {
	t.Helper()

	id := auth.NewID()
	first := strings.ToUpper(username[:1]) + username[1:]
	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_superuser, is_active, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, username, username+"@example.com", first, "Tester", passwordHash(t), superuser, true, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	_, err = conn.Exec(conn.Rebind(`INSERT INTO anglers (user_id, type) VALUES (?, ?)`), id, anglerType)
	if err != nil {
		t.Fatalf("Failed to create test angler: %v", err)
	}
	return id
}

// CreateTournament inserts a tournament on date (UTC midnight) and returns its ID
func CreateTournament(t *testing.T, conn *sqlx.DB, name string, date time.Time, pointsCount, complete bool) string {
	t.Helper()

	id := auth.NewID()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO tournaments (id, name, lake, ramp, event_date, start_time, end_time, points_count, complete, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, name, "lake travis", "Mansfield Dam", day, "06:00", "14:00", pointsCount, complete, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test tournament: %v", err)
	}
	return id
}

// AddResult records a weigh-in
func AddResult(t *testing.T, conn *sqlx.DB, tournamentID, anglerID string, fish int, weight, bigBass float64, dq bool) {
	t.Helper()

	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO results (id, tournament_id, angler_id, num_fish, total_weight, big_bass, disqualified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), auth.NewID(), tournamentID, anglerID, fish, weight, bigBass, dq)
	if err != nil {
		t.Fatalf("Failed to add test result: %v", err)
	}
}

// CreatePoll inserts a lake poll with one choice per lake and returns the
// poll ID and the choice IDs in lake order
func CreatePoll(t *testing.T, conn *sqlx.DB, name string, endsAt time.Time, lakes ...string) (string, []string) {
	t.Helper()

	pollID := auth.NewID()
	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO lake_polls (id, name, description, ends_at, complete, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), pollID, name, "", endsAt.UTC(), false, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	choiceIDs := make([]string, len(lakes))
	for i, lake := range lakes {
		choiceIDs[i] = auth.NewID()
		_, err := conn.Exec(conn.Rebind(`
			INSERT INTO lake_poll_choices (id, poll_id, lake) VALUES (?, ?, ?)
		`), choiceIDs[i], pollID, lake)
		if err != nil {
			t.Fatalf("Failed to create test choice: %v", err)
		}
	}
	return pollID, choiceIDs
}

// CastVote records a vote directly
func CastVote(t *testing.T, conn *sqlx.DB, pollID, anglerID, choiceID string) {
	t.Helper()

	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO lake_votes (poll_id, angler_id, choice_id, voted_at) VALUES (?, ?, ?, ?)
	`), pollID, anglerID, choiceID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// CreateEvent inserts a calendar event and returns its ID
func CreateEvent(t *testing.T, conn *sqlx.DB, name, kind string, date time.Time) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO events (id, name, kind, event_date, created_at) VALUES (?, ?, ?, ?, ?)
	`), id, name, kind, date.UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return id
}

// SessionCookie returns a valid session cookie for userID
func SessionCookie(t *testing.T, cfg cliparse.Config, userID string) *http.Cookie {
	t.Helper()

	token, err := auth.IssueSession(userID, cfg.SessionSecret, cfg.SessionTTL, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

// MakeRequest builds a request; a non-nil form is sent url-encoded
func MakeRequest(method, path string, form url.Values, cookie *http.Cookie) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

// Serve runs a request through h and returns the recorder
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 303 to location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	AssertStatus(t, w, http.StatusSeeOther)
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

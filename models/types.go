// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strings"
	"time"
)

// Angler types
const (
	AnglerMember  = "member"
	AnglerOfficer = "officer"
	AnglerGuest   = "guest"
)

// Event kinds
const (
	EventMeeting = "meeting"
	EventHoliday = "holiday"
	EventOther   = "other"
)

// Club rules
const (
	FishLimit     = 5
	BigBassMinLbs = 5.0
)

// ValidAnglerType reports whether t is one of the angler types
func ValidAnglerType(t string) bool {
	switch t {
	case AnglerMember, AnglerOfficer, AnglerGuest:
		return true
	}
	return false
}

// ValidEventKind reports whether k is one of the event kinds
func ValidEventKind(k string) bool {
	switch k {
	case EventMeeting, EventHoliday, EventOther:
		return true
	}
	return false
}

// Domain types

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsSuperuser  bool      `db:"is_superuser"`
	IsActive     bool      `db:"is_active"`
	DateJoined   time.Time `db:"date_joined"`
}

// Angler is a user's club profile joined with the user row
type Angler struct {
	UserID      string    `db:"user_id"`
	Type        string    `db:"type"`
	Phone       string    `db:"phone"`
	Office      string    `db:"office"`
	Username    string    `db:"username"`
	Email       string    `db:"email"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	IsSuperuser bool      `db:"is_superuser"`
	DateJoined  time.Time `db:"date_joined"`
}

// Name returns "First Last", or the username when no name is set
func (a Angler) Name() string {
	return displayName(a.FirstName, a.LastName, a.Username)
}

type Tournament struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Lake        string    `db:"lake"`
	Ramp        string    `db:"ramp"`
	EventDate   time.Time `db:"event_date"`
	StartTime   string    `db:"start_time"`
	EndTime     string    `db:"end_time"`
	Description string    `db:"description"`
	PointsCount bool      `db:"points_count"`
	Complete    bool      `db:"complete"`
	CreatedBy   *string   `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}

// Result is one angler's weigh-in at a tournament
type Result struct {
	ID           string  `db:"id"`
	TournamentID string  `db:"tournament_id"`
	AnglerID     string  `db:"angler_id"`
	AnglerName   string  `db:"angler_name"`
	NumFish      int     `db:"num_fish"`
	TotalWeight  float64 `db:"total_weight"`
	BigBass      float64 `db:"big_bass"`
	Disqualified bool    `db:"disqualified"`
}

// RankedResult is a Result with its computed place and points.
// Place is zero for disqualified anglers.
type RankedResult struct {
	Result
	Place  int
	Points int
}

type LakePoll struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	EndsAt      time.Time `db:"ends_at"`
	Complete    bool      `db:"complete"`
	CreatedBy   *string   `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}

// IsOpen reports whether votes are accepted at now
func (p LakePoll) IsOpen(now time.Time) bool {
	return !p.Complete && now.Before(p.EndsAt)
}

type LakePollChoice struct {
	ID     string `db:"id"`
	PollID string `db:"poll_id"`
	Lake   string `db:"lake"`
	Votes  int    `db:"votes"`
}

type LakeVote struct {
	PollID   string    `db:"poll_id"`
	AnglerID string    `db:"angler_id"`
	ChoiceID string    `db:"choice_id"`
	VotedAt  time.Time `db:"voted_at"`
}

// Event is a calendar entry that is not a tournament (meetings, holidays)
type Event struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Kind        string    `db:"kind"`
	EventDate   time.Time `db:"event_date"`
	StartTime   string    `db:"start_time"`
	Location    string    `db:"location"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// CalendarEntry is a tournament or an event placed on the calendar
type CalendarEntry struct {
	Date      time.Time
	Name      string
	Kind      string
	Location  string
	StartTime string
	// TournamentID is set for tournaments so the entry can link to them
	TournamentID string
}

// CalendarMonth groups the entries of one month
type CalendarMonth struct {
	Month   time.Month
	Entries []CalendarEntry
}

// Award types

// AwardRow is a single scored result used as input for the annual awards
type AwardRow struct {
	AnglerID     string  `db:"angler_id"`
	AnglerName   string  `db:"angler_name"`
	TournamentID string  `db:"tournament_id"`
	Tournament   string  `db:"tournament_name"`
	NumFish      int     `db:"num_fish"`
	TotalWeight  float64 `db:"total_weight"`
	BigBass      float64 `db:"big_bass"`
	Points       int     `db:"-"`
}

// AnglerOfYear is one line of the angler-of-the-year standings
type AnglerOfYear struct {
	AnglerID    string
	AnglerName  string
	Points      int
	TotalFish   int
	TotalWeight float64
	Events      int
	Rank        int
}

type AnnualAwards struct {
	Year          int
	AnglerOfYear  []AnglerOfYear
	HeavyStringer *AwardRow
	BigBass       *AwardRow
}

// SeasonStats summarizes an angler's year for the profile page
type SeasonStats struct {
	Year        int
	Events      int
	TotalFish   int
	TotalWeight float64
	Points      int
	BigBass     float64
}

// JSON types

type ChoiceResult struct {
	ChoiceID string `json:"choice_id"`
	Lake     string `json:"lake"`
	Votes    int    `json:"votes"`
}

type PollResultsResponse struct {
	PollID     string         `json:"poll_id"`
	Name       string         `json:"name"`
	Complete   bool           `json:"complete"`
	EndsAt     time.Time      `json:"ends_at"`
	TotalVotes int            `json:"total_votes"`
	Choices    []ChoiceResult `json:"choices"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func displayName(first, last, username string) string {
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return username
	}
	return name
}

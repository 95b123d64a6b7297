// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the club's domain types and the few JSON shapes
the site exposes.

# Domain Types

Rows scanned with sqlx (db struct tags):

  - User: login identity (bcrypt hash, superuser flag)
  - Angler: club profile joined with its user (type, phone, office)
  - Tournament, Result: events and their weigh-ins
  - LakePoll, LakePollChoice, LakeVote: "where do we fish next" polls
  - Event: meetings and other calendar entries

Computed types:

  - RankedResult: a Result with place and points
  - AnglerOfYear, AnnualAwards: season standings
  - CalendarMonth, CalendarEntry: the calendar page
  - SeasonStats: profile page summary

# Constants

Angler types:

	AnglerMember  = "member"
	AnglerOfficer = "officer"
	AnglerGuest   = "guest"

Event kinds:

	EventMeeting = "meeting"
	EventHoliday = "holiday"
	EventOther   = "other"

Club rules:

	FishLimit     = 5   // fish weighed per angler
	BigBassMinLbs = 5.0 // smallest fish eligible for the big bass award
*/
package models

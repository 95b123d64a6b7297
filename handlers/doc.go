// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers for the club site.

# Handler Types

Each handler is a struct with database, config and renderer dependencies:

  - PageHandler: home, about, bylaws, calendar, annual awards
  - AccountHandler: login, logout, registration, profile
  - TournamentHandler: tournament pages, weigh-in results, completion
  - PollHandler: lake polls, voting, results API
  - RosterHandler: roster and angler types
  - EventHandler: meetings and other calendar dates

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(db, cfg, renderer)

# Access

Pages check the viewer themselves. Anonymous viewers are redirected to
the login page (303) for member pages; signed-in viewers without the
right role get 403. Officers and superusers manage tournaments, polls and
events; only superusers change angler types.

# Forms

Forms post back to their own route. Invalid input re-renders the form
with 400 and a message per field; state conflicts (a second vote, a
closed poll, a duplicate result) answer 409. Successful posts redirect
with 303.

# Standings

RankResults places a tournament's anglers by weight: ties share a place,
first place earns 100 points and each place after one less, anglers with
no fish share the place after the last weigher and earn one point less
than that place, and disqualified anglers get nothing. AnnualAwards
totals completed points tournaments into angler of the year, heavy
stringer and big bass (at least five pounds).

# Database Access

Queries are written with ? placeholders and passed through Rebind, so
the same SQL runs on SQLite and PostgreSQL.
*/
package handlers

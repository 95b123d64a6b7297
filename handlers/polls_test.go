// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/sabc/models"
	"github.com/danielhkuo/sabc/testutil"
)

func voteCount(t *testing.T, s *site, pollID string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.Get(&n, s.db.Rebind(`SELECT COUNT(*) FROM lake_votes WHERE poll_id = ?`), pollID))
	return n
}

func TestPollList(t *testing.T) {
	s := newSite(t)
	member, _ := s.login("mike", models.AnglerMember)
	officer, _ := s.login("olive", models.AnglerOfficer)

	testutil.CreatePoll(t, s.db, "Spring Lake", time.Now().Add(48*time.Hour), "travis", "lbj")
	testutil.CreatePoll(t, s.db, "Winter Lake", time.Now().Add(-48*time.Hour), "buchanan", "inks")

	t.Run("anonymous", func(t *testing.T) {
		testutil.AssertRedirect(t, s.get("/polls", nil), "/login?next=%2Fpolls")
	})

	t.Run("member", func(t *testing.T) {
		w := s.get("/polls", member)
		testutil.AssertStatus(t, w, http.StatusOK)
		body := w.Body.String()
		assert.Contains(t, body, "Spring Lake")
		assert.Contains(t, body, "Winter Lake")
		assert.Contains(t, body, `badge open`)
		assert.NotContains(t, body, `class="button" href="/polls/new"`)
	})

	t.Run("officer sees create link", func(t *testing.T) {
		w := s.get("/polls", officer)
		assert.Contains(t, w.Body.String(), `class="button" href="/polls/new"`)
	})
}

func TestVote(t *testing.T) {
	s := newSite(t)
	member, _ := s.login("mike", models.AnglerMember)
	guest, _ := s.login("gary", models.AnglerGuest)

	pollID, choices := testutil.CreatePoll(t, s.db, "Summer Lake", time.Now().Add(24*time.Hour), "travis", "lbj", "canyon")
	closedID, closedChoices := testutil.CreatePoll(t, s.db, "Old Lake", time.Now().Add(-time.Hour), "travis", "lbj")
	_, otherChoices := testutil.CreatePoll(t, s.db, "Other Lake", time.Now().Add(24*time.Hour), "inks", "buchanan")

	detail := "/polls/" + pollID
	vote := detail + "/vote"

	t.Run("anonymous", func(t *testing.T) {
		testutil.AssertRedirect(t, s.post(vote, url.Values{"choice": {choices[0]}}, nil), "/login")
	})

	t.Run("guest", func(t *testing.T) {
		w := s.post(vote, url.Values{"choice": {choices[0]}}, guest)
		testutil.AssertStatus(t, w, http.StatusForbidden)
		assert.Contains(t, w.Body.String(), "Only club members can vote.")
	})

	t.Run("closed poll", func(t *testing.T) {
		w := s.post("/polls/"+closedID+"/vote", url.Values{"choice": {closedChoices[0]}}, member)
		testutil.AssertStatus(t, w, http.StatusConflict)
		assert.Contains(t, w.Body.String(), "Voting has closed for this poll.")
	})

	t.Run("choice from another poll", func(t *testing.T) {
		w := s.post(vote, url.Values{"choice": {otherChoices[0]}}, member)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
		assert.Contains(t, w.Body.String(), "Choose one of the lakes.")
	})

	t.Run("missing choice", func(t *testing.T) {
		testutil.AssertStatus(t, s.post(vote, url.Values{}, member), http.StatusBadRequest)
	})

	t.Run("missing poll", func(t *testing.T) {
		w := s.post("/polls/nope/vote", url.Values{"choice": {choices[0]}}, member)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	assert.Zero(t, voteCount(t, s, pollID))

	t.Run("success", func(t *testing.T) {
		testutil.AssertRedirect(t, s.post(vote, url.Values{"choice": {choices[1]}}, member), detail)
		assert.Equal(t, 1, voteCount(t, s, pollID))

		w := s.get(detail, member)
		testutil.AssertStatus(t, w, http.StatusOK)
		body := w.Body.String()
		assert.Contains(t, body, "You have voted in this poll.")
		assert.Contains(t, body, `class="voted"`)
		assert.NotContains(t, body, `name="choice"`)
	})

	t.Run("second vote", func(t *testing.T) {
		w := s.post(vote, url.Values{"choice": {choices[0]}}, member)
		testutil.AssertStatus(t, w, http.StatusConflict)
		assert.Contains(t, w.Body.String(), "You have already voted in this poll.")
		assert.Equal(t, 1, voteCount(t, s, pollID))
	})
}

func TestPollDetailForms(t *testing.T) {
	s := newSite(t)
	member, _ := s.login("mike", models.AnglerMember)
	guest, _ := s.login("gary", models.AnglerGuest)
	pollID, _ := testutil.CreatePoll(t, s.db, "Summer Lake", time.Now().Add(24*time.Hour), "travis", "lbj")

	w := s.get("/polls/"+pollID, member)
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `name="choice"`)
	assert.Contains(t, w.Body.String(), "Travis")

	w = s.get("/polls/"+pollID, guest)
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.NotContains(t, w.Body.String(), `name="choice"`)
	assert.Contains(t, w.Body.String(), "Only club members can vote.")

	w = s.get("/polls/missing", member)
	testutil.AssertStatus(t, w, http.StatusNotFound)
	assert.Contains(t, w.Body.String(), "Poll not found.")
}

func TestCreatePoll(t *testing.T) {
	s := newSite(t)
	officer, _ := s.login("olive", models.AnglerOfficer)
	member, _ := s.login("mike", models.AnglerMember)

	future := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	form := func(choices, date string) url.Values {
		return url.Values{
			"name":        {"June Lake"},
			"description": {"Where do we fish in June?"},
			"choices":     {choices},
			"ends_date":   {date},
			"ends_time":   {"18:00"},
		}
	}

	t.Run("members cannot create", func(t *testing.T) {
		testutil.AssertStatus(t, s.get("/polls/new", member), http.StatusForbidden)
		testutil.AssertStatus(t, s.post("/polls/new", form("travis\nlbj", future), member), http.StatusForbidden)
	})

	t.Run("form", func(t *testing.T) {
		testutil.AssertStatus(t, s.get("/polls/new", officer), http.StatusOK)
	})

	t.Run("one lake", func(t *testing.T) {
		w := s.post("/polls/new", form("Travis\ntravis\n\n", future), officer)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
		assert.Contains(t, w.Body.String(), "Enter at least two different lakes, one per line.")
	})

	t.Run("closes in the past", func(t *testing.T) {
		w := s.post("/polls/new", form("Travis\nLBJ", "2020-01-01"), officer)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
		assert.Contains(t, w.Body.String(), "The poll must close in the future.")
	})

	t.Run("bad date", func(t *testing.T) {
		w := s.post("/polls/new", form("Travis\nLBJ", "June 1"), officer)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
		assert.Contains(t, w.Body.String(), "Enter a date as YYYY-MM-DD.")
	})

	t.Run("success", func(t *testing.T) {
		w := s.post("/polls/new", form("Travis\r\nLBJ\r\n  lake   Austin \r\ntravis", future), officer)
		testutil.AssertStatus(t, w, http.StatusSeeOther)
		location := w.Header().Get("Location")
		require.True(t, strings.HasPrefix(location, "/polls/"), location)
		pollID := strings.TrimPrefix(location, "/polls/")

		var lakes []string
		require.NoError(t, s.db.Select(&lakes, s.db.Rebind(`
			SELECT lake FROM lake_poll_choices WHERE poll_id = ? ORDER BY lake
		`), pollID))
		assert.Equal(t, []string{"LBJ", "Travis", "lake Austin"}, lakes)

		var poll models.LakePoll
		require.NoError(t, s.db.Get(&poll, s.db.Rebind(`SELECT * FROM lake_polls WHERE id = ?`), pollID))
		assert.False(t, poll.Complete)
		assert.Equal(t, 18, poll.EndsAt.UTC().Hour())
		assert.True(t, poll.IsOpen(time.Now()))
	})
}

func TestPollResultsAPI(t *testing.T) {
	s := newSite(t)
	member, memberID := s.login("mike", models.AnglerMember)
	otherID := testutil.CreateAngler(t, s.db, "mary", models.AnglerMember)

	pollID, choices := testutil.CreatePoll(t, s.db, "Fall Lake", time.Now().Add(time.Hour), "travis", "lbj")
	testutil.CastVote(t, s.db, pollID, memberID, choices[1])
	testutil.CastVote(t, s.db, pollID, otherID, choices[1])

	t.Run("anonymous", func(t *testing.T) {
		w := s.get("/api/polls/"+pollID+"/results", nil)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)

		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, "Unauthorized", resp.Error)
		assert.Equal(t, "Log in to see poll results", resp.Message)
	})

	t.Run("missing poll", func(t *testing.T) {
		testutil.AssertStatus(t, s.get("/api/polls/nope/results", member), http.StatusNotFound)
	})

	t.Run("counts", func(t *testing.T) {
		w := s.get("/api/polls/"+pollID+"/results", member)
		testutil.AssertStatus(t, w, http.StatusOK)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp models.PollResultsResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, pollID, resp.PollID)
		assert.False(t, resp.Complete)
		assert.Equal(t, 2, resp.TotalVotes)
		require.Len(t, resp.Choices, 2)
		assert.Equal(t, "lbj", resp.Choices[0].Lake)
		assert.Equal(t, 2, resp.Choices[0].Votes)
		assert.Equal(t, 0, resp.Choices[1].Votes)
	})
}

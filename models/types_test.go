// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnglerName(t *testing.T) {
	tests := []struct {
		name   string
		angler Angler
		want   string
	}{
		{"full name", Angler{FirstName: "Jane", LastName: "Doe", Username: "jdoe"}, "Jane Doe"},
		{"first only", Angler{FirstName: "Jane", Username: "jdoe"}, "Jane"},
		{"no name", Angler{Username: "jdoe"}, "jdoe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.angler.Name())
		})
	}
}

func TestLakePollIsOpen(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, LakePoll{EndsAt: now.Add(time.Hour)}.IsOpen(now))
	assert.False(t, LakePoll{EndsAt: now}.IsOpen(now), "poll closes at its end time")
	assert.False(t, LakePoll{EndsAt: now.Add(-time.Hour)}.IsOpen(now))
	assert.False(t, LakePoll{EndsAt: now.Add(time.Hour), Complete: true}.IsOpen(now))
}

func TestValidAnglerType(t *testing.T) {
	for _, typ := range []string{AnglerMember, AnglerOfficer, AnglerGuest} {
		assert.True(t, ValidAnglerType(typ), typ)
	}
	assert.False(t, ValidAnglerType("admin"))
	assert.False(t, ValidAnglerType(""))
}

func TestValidEventKind(t *testing.T) {
	assert.True(t, ValidEventKind(EventMeeting))
	assert.False(t, ValidEventKind("tournament"))
}

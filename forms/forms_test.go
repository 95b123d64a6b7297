// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package forms

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleForm struct {
	Name     string  `form:"name" validate:"required,max=10"`
	Email    string  `form:"email" validate:"omitempty,email"`
	Count    int     `form:"count" validate:"min=0,max=5"`
	Weight   float64 `form:"weight" validate:"min=0"`
	Part     float64 `form:"part" validate:"min=0,ltefield=Weight"`
	Kind     string  `form:"kind" validate:"omitempty,oneof=meeting holiday"`
	Date     string  `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Checked  bool    `form:"checked"`
	Password string  `form:"password"`
	Confirm  string  `form:"confirm" validate:"eqfield=Password"`
	Ignored  string
}

func TestDecode(t *testing.T) {
	values := url.Values{
		"name":    {"  Lake Travis  "},
		"count":   {"3"},
		"weight":  {"12.5"},
		"checked": {"on"},
		"Ignored": {"x"},
	}

	var f sampleForm
	errs := Decode(values, &f)

	assert.False(t, errs.Any())
	assert.Equal(t, "Lake Travis", f.Name)
	assert.Equal(t, 3, f.Count)
	assert.Equal(t, 12.5, f.Weight)
	assert.True(t, f.Checked)
	assert.Empty(t, f.Ignored, "untagged fields are not decoded")
}

func TestDecodeBadNumbers(t *testing.T) {
	values := url.Values{"count": {"three"}, "weight": {"heavy"}}

	var f sampleForm
	errs := Decode(values, &f)

	assert.Equal(t, "Enter a whole number.", errs.Get("count"))
	assert.Equal(t, "Enter a number.", errs.Get("weight"))
}

func TestDecodeBool(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   bool
	}{
		{"absent", url.Values{}, false},
		{"on", url.Values{"checked": {"on"}}, true},
		{"true", url.Values{"checked": {"true"}}, true},
		{"false", url.Values{"checked": {"false"}}, false},
		{"empty value", url.Values{"checked": {""}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f sampleForm
			Decode(tt.values, &f)
			assert.Equal(t, tt.want, f.Checked)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		form      sampleForm
		wantField string
		wantMsg   string
	}{
		{"missing name", sampleForm{}, "name", "This field is required."},
		{"long name", sampleForm{Name: "abcdefghijk"}, "name", "Must be at most 10 characters."},
		{"bad email", sampleForm{Name: "a", Email: "nope"}, "email", "Enter a valid email address."},
		{"too many", sampleForm{Name: "a", Count: 6}, "count", "Must be at most 5."},
		{"part over weight", sampleForm{Name: "a", Weight: 2, Part: 3}, "part", "Cannot be more than the total weight."},
		{"bad kind", sampleForm{Name: "a", Kind: "party"}, "kind", "Choose one of: meeting, holiday."},
		{"bad date", sampleForm{Name: "a", Date: "03/01/2025"}, "date", "Enter a date as YYYY-MM-DD."},
		{"mismatch", sampleForm{Name: "a", Password: "x", Confirm: "y"}, "confirm", "Does not match."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.form, nil)
			assert.Equal(t, tt.wantMsg, errs.Get(tt.wantField), "errors: %v", errs)
		})
	}
}

func TestValidateKeepsDecodeErrors(t *testing.T) {
	errs := Errors{"count": "Enter a whole number."}
	errs = Validate(sampleForm{Name: "ok", Count: 9}, errs)

	assert.Equal(t, "Enter a whole number.", errs.Get("count"), "first message wins")
}

func TestValidatePasses(t *testing.T) {
	f := sampleForm{Name: "ok", Email: "a@b.co", Count: 2, Weight: 4, Part: 3, Kind: "meeting", Date: "2025-03-01"}
	assert.False(t, Validate(f, nil).Any())
}

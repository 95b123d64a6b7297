// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package forms decodes and validates HTML form posts.

Form structs tag each field with its input name and its rules
(go-playground/validator):

	type eventForm struct {
		Name string `form:"name" validate:"required,max=100"`
		Date string `form:"date" validate:"required,datetime=2006-01-02"`
	}

	var f eventForm
	errs := forms.Decode(r.PostForm, &f)
	errs = forms.Validate(f, errs)
	if errs.Any() {
		// re-render the form with errs
	}

Errors are keyed by input name so templates can show them next to the
field: {{.Errors.Get "name"}}.
*/
package forms

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package views renders the site's HTML pages.

# Templates

Templates are embedded from templates/. Every page in templates/pages is
parsed together with templates/layout.html and templates/partials, so
each page only defines "content":

	{{define "content"}}<h1>{{.Title}}</h1>{{end}}

Pages receive a Page with the title, club name, the request's Viewer,
its navigation links and the handler's Data.

	renderer.Render(w, r, http.StatusOK, "home", "Tournaments", homeView{...})
	renderer.RenderError(w, r, http.StatusNotFound, "Tournament not found.")

Output is buffered; a failing template never sends a partial page.

# Navigation

Nav builds the links for a viewer. Everyone sees the public pages;
anonymous viewers get login and register, signed-in anglers get polls,
roster, profile and logout, and officers (or superusers) also get
"+ Tournament" and "+ Poll".

# Template Functions

	url       reverse a named route: {{url "tournament-detail" "id" .ID}}
	ago       humanized relative time (go-humanize)
	ordinal   1st, 2nd, 3rd
	title     title-case a lake or type name
	weight    pounds to two decimals
	date      calendar date (stored as UTC midnight)
	localtime timestamp in the club's time zone
	pager     pair a paginate.Page with its list URL for the "pagination" partial
	dict      key/value map for sub-templates
	percent   integer share for vote bars
*/
package views

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import "github.com/danielhkuo/sabc/auth"

// NavLink is a navigation bar entry pointing at a named route
type NavLink struct {
	Route string
	Label string
}

// Nav returns the navigation links the viewer is allowed to see
func Nav(v auth.Viewer) []NavLink {
	links := []NavLink{
		{Route: "sabc-home", Label: "Home"},
		{Route: "about", Label: "About"},
		{Route: "bylaws", Label: "Bylaws"},
		{Route: "calendar", Label: "Calendar"},
		{Route: "annual-awards", Label: "Awards"},
	}

	if !v.IsAuthenticated() {
		return append(links,
			NavLink{Route: "login", Label: "Login"},
			NavLink{Route: "register", Label: "Register"},
		)
	}

	links = append(links,
		NavLink{Route: "polls", Label: "Polls"},
		NavLink{Route: "roster", Label: "Roster"},
	)
	if v.CanManage() {
		links = append(links,
			NavLink{Route: "tournament-create", Label: "+ Tournament"},
			NavLink{Route: "lakepoll-create", Label: "+ Poll"},
		)
	}
	return append(links,
		NavLink{Route: "profile", Label: "Profile"},
		NavLink{Route: "logout", Label: "Logout"},
	)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides passwords, session tokens and role checks.

# Passwords

Passwords are hashed with bcrypt and must be at least MinPasswordLen
characters:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt) // ErrInvalidCredentials on mismatch

Usernames are compared after NormalizeUsername (trimmed, lower case).

# Sessions

A session is an HS256 JWT stored in the SessionCookie cookie:

	token, err := auth.IssueSession(userID, secret, ttl, time.Now())
	userID, err := auth.ParseSession(token, secret) // ErrInvalidSession

Nothing is stored server side; logging out clears the cookie.

# Viewer

Viewer describes who is making a request. Handlers read it from the
request context:

	v := auth.ViewerFrom(r.Context())
	if !v.CanManage() { ... }

Role predicates:

  - IsAuthenticated: logged in
  - IsOfficer: angler type officer
  - CanManage: officer or superuser (create tournaments, polls, events)
  - CanVote: member or officer

# ID Generation

Record IDs are random UUIDs:

	id := auth.NewID()
*/
package auth

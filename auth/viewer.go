// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"strings"

	"github.com/danielhkuo/sabc/models"
)

// Viewer is the identity behind a request. The zero value is anonymous.
type Viewer struct {
	UserID      string
	Username    string
	FirstName   string
	LastName    string
	AnglerType  string
	IsSuperuser bool
}

func (v Viewer) IsAuthenticated() bool {
	return v.UserID != ""
}

func (v Viewer) IsOfficer() bool {
	return v.IsAuthenticated() && v.AnglerType == models.AnglerOfficer
}

// CanManage gates tournament, poll and event creation
func (v Viewer) CanManage() bool {
	return v.IsOfficer() || (v.IsAuthenticated() && v.IsSuperuser)
}

// CanVote is true for members and officers; guests only watch
func (v Viewer) CanVote() bool {
	if !v.IsAuthenticated() {
		return false
	}
	return v.AnglerType == models.AnglerMember || v.AnglerType == models.AnglerOfficer
}

func (v Viewer) DisplayName() string {
	name := strings.TrimSpace(v.FirstName + " " + v.LastName)
	if name == "" {
		return v.Username
	}
	return name
}

type viewerKey struct{}

// WithViewer stores v in ctx
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFrom returns the request's viewer, anonymous if none was set
func ViewerFrom(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerKey{}).(Viewer)
	return v
}

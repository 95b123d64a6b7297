// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/sabc/auth"
	"github.com/danielhkuo/sabc/cliparse"
	"github.com/danielhkuo/sabc/forms"
	"github.com/danielhkuo/sabc/middleware"
	"github.com/danielhkuo/sabc/models"
	"github.com/danielhkuo/sabc/views"
)

// AccountHandler serves login, logout, registration and the profile page
type AccountHandler struct {
	db    *sqlx.DB
	cfg   cliparse.Config
	views *views.Renderer
}

func NewAccountHandler(db *sqlx.DB, cfg cliparse.Config, v *views.Renderer) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg, views: v}
}

type loginView struct {
	Username string
	Next     string
	Error    string
}

// Login handles GET and POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		render(w, r, h.views, "login", "Log in", loginView{Next: safeNext(r.URL.Query().Get("next"))})
		return
	}

	username := auth.NormalizeUsername(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	view := loginView{Username: username, Next: safeNext(r.PostFormValue("next"))}

	var user models.User
	err := h.db.GetContext(r.Context(), &user, h.db.Rebind(`SELECT * FROM users WHERE username = ?`), username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		serverError(w, r, h.views, "failed to query user", err)
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		err = auth.CheckMissingUser(password)
	} else {
		err = auth.CheckPassword(user.PasswordHash, password)
	}
	if err != nil {
		middleware.RecordLogin("failure")
		slog.Info("login failed", "username", username)
		view.Error = "Invalid username or password."
		renderStatus(w, r, h.views, http.StatusBadRequest, "login", "Log in", view)
		return
	}
	if !user.IsActive {
		middleware.RecordLogin("failure")
		view.Error = "This account has been disabled."
		renderStatus(w, r, h.views, http.StatusBadRequest, "login", "Log in", view)
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		serverError(w, r, h.views, "failed to issue session", err)
		return
	}
	middleware.RecordLogin("success")
	slog.Info("user logged in", "user_id", user.ID)

	if view.Next != "" {
		http.Redirect(w, r, view.Next, http.StatusSeeOther)
		return
	}
	redirectRoute(w, r, h.views, "sabc-home")
}

func (h *AccountHandler) startSession(w http.ResponseWriter, userID string) error {
	token, err := auth.IssueSession(userID, h.cfg.SessionSecret, h.cfg.SessionTTL, time.Now())
	if err != nil {
		return err
	}
	auth.SetSessionCookie(w, token, h.cfg.SessionTTL, h.cfg.SecureCookies)
	return nil
}

// Logout handles GET and POST /logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if viewer := auth.ViewerFrom(r.Context()); viewer.IsAuthenticated() {
		slog.Info("user logged out", "user_id", viewer.UserID)
	}
	auth.ClearSessionCookie(w)
	redirectRoute(w, r, h.views, "sabc-home")
}

type registerForm struct {
	Username        string `form:"username" validate:"required,alphanum,min=3,max=30"`
	Email           string `form:"email" validate:"required,email,max=254"`
	FirstName       string `form:"first_name" validate:"max=50"`
	LastName        string `form:"last_name" validate:"max=50"`
	Password        string `form:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `form:"password_confirm" validate:"eqfield=Password"`
}

type registerView struct {
	Form   registerForm
	Errors forms.Errors
}

// Register handles GET and POST /register. New accounts start as guests
// until an officer changes their type.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		render(w, r, h.views, "register", "Register", registerView{})
		return
	}
	if err := r.ParseForm(); err != nil {
		h.views.RenderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	var form registerForm
	errs := forms.Validate(&form, forms.Decode(r.PostForm, &form))
	form.Username = auth.NormalizeUsername(form.Username)

	ctx := r.Context()
	if !errs.Has("username") {
		var taken int
		err := h.db.GetContext(ctx, &taken, h.db.Rebind(`SELECT COUNT(*) FROM users WHERE username = ?`), form.Username)
		if err != nil {
			serverError(w, r, h.views, "failed to check username", err)
			return
		}
		if taken > 0 {
			errs.Add("username", "That username is taken.")
		}
	}

	if errs.Any() {
		form.Password, form.PasswordConfirm = "", ""
		renderStatus(w, r, h.views, http.StatusBadRequest, "register", "Register", registerView{Form: form, Errors: errs})
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		serverError(w, r, h.views, "failed to hash password", err)
		return
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		serverError(w, r, h.views, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	userID := auth.NewID()
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_superuser, is_active, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), userID, form.Username, form.Email, form.FirstName, form.LastName, hash, false, true, time.Now().UTC())
	if err != nil {
		serverError(w, r, h.views, "failed to insert user", err)
		return
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO anglers (user_id, type) VALUES (?, ?)`), userID, models.AnglerGuest)
	if err != nil {
		serverError(w, r, h.views, "failed to insert angler", err)
		return
	}

	if err := tx.Commit(); err != nil {
		serverError(w, r, h.views, "failed to commit registration", err)
		return
	}

	slog.Info("user registered", "user_id", userID, "username", form.Username)

	if err := h.startSession(w, userID); err != nil {
		serverError(w, r, h.views, "failed to issue session", err)
		return
	}
	redirectRoute(w, r, h.views, "sabc-home")
}

type profileForm struct {
	FirstName string `form:"first_name" validate:"max=50"`
	LastName  string `form:"last_name" validate:"max=50"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Phone     string `form:"phone" validate:"max=20"`
}

type profileView struct {
	Angler models.Angler
	Stats  models.SeasonStats
	Form   profileForm
	Errors forms.Errors
	Saved  bool
}

// Profile handles GET and POST /profile
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireLogin(w, r, h.views)
	if !ok {
		return
	}
	ctx := r.Context()

	angler, err := loadAngler(ctx, h.db, viewer.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		notFound(w, r, h.views, "Angler profile")
		return
	}
	if err != nil {
		serverError(w, r, h.views, "failed to load angler", err)
		return
	}

	year := time.Now().In(h.cfg.Location()).Year()
	rows, err := loadAwardRows(ctx, h.db, year)
	if err != nil {
		serverError(w, r, h.views, "failed to load season", err)
		return
	}

	view := profileView{
		Angler: angler,
		Stats:  SeasonStats(year, angler.UserID, rows),
		Form: profileForm{
			FirstName: angler.FirstName,
			LastName:  angler.LastName,
			Email:     angler.Email,
			Phone:     angler.Phone,
		},
		Saved: r.URL.Query().Get("saved") == "1",
	}

	if r.Method != http.MethodPost {
		render(w, r, h.views, "profile", "Profile", view)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.views.RenderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	view.Saved = false
	view.Form = profileForm{}
	view.Errors = forms.Validate(&view.Form, forms.Decode(r.PostForm, &view.Form))
	if view.Errors.Any() {
		renderStatus(w, r, h.views, http.StatusBadRequest, "profile", "Profile", view)
		return
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		serverError(w, r, h.views, "failed to begin transaction", err)
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE users SET first_name = ?, last_name = ?, email = ? WHERE id = ?
	`), view.Form.FirstName, view.Form.LastName, view.Form.Email, viewer.UserID)
	if err != nil {
		serverError(w, r, h.views, "failed to update user", err)
		return
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE anglers SET phone = ? WHERE user_id = ?`), view.Form.Phone, viewer.UserID)
	if err != nil {
		serverError(w, r, h.views, "failed to update angler", err)
		return
	}
	if err := tx.Commit(); err != nil {
		serverError(w, r, h.views, "failed to commit profile", err)
		return
	}

	slog.Info("profile updated", "user_id", viewer.UserID)

	profile, err := h.views.URL("profile")
	if err != nil {
		serverError(w, r, h.views, "failed to reverse profile route", err)
		return
	}
	http.Redirect(w, r, profile+"?saved=1", http.StatusSeeOther)
}

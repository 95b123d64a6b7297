// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 8
	bcryptCost     = bcrypt.DefaultCost
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
)

// NewID creates a random UUID for a database record
func NewID() string {
	return uuid.NewString()
}

// NormalizeUsername lower-cases and trims a username so lookups are
// case-insensitive
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// HashPassword bcrypt-hashes a password after checking its length
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password against its bcrypt hash
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// CheckMissingUser burns the same bcrypt work as CheckPassword for a
// username that does not exist, so response time does not reveal which
// usernames are registered. It always returns ErrInvalidCredentials.
func CheckMissingUser(password string) error {
	dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(NewID()), bcryptCost)
		if err != nil {
			panic(fmt.Sprintf("auth: failed to hash dummy password: %v", err))
		}
		dummyHash = hash
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return ErrInvalidCredentials
}

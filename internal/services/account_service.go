// Package services – AccountService
//
// This file implements AccountService, which owns signup and login. The
// credential scheme is the product's documented contract: passwords are
// stored as an unsalted SHA-256 hex digest and login compares digests for
// equality. Username availability is pre-checked before insert; the unique
// index on username backstops the race between check and insert.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mindease/go-journal-backend/internal/domain"
	"github.com/mindease/go-journal-backend/internal/journal"
	"github.com/mindease/go-journal-backend/internal/repo"
)

// MinPasswordLen is the minimum accepted password length at signup.
const MinPasswordLen = 6

// HashPassword returns the hex-encoded SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// AccountService provides signup and login on top of the user repository.
type AccountService struct {
	DB *gorm.DB
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{DB: db}
}

// Signup validates the submitted fields and creates the account.
// Validation failures surface as sentinel errors for inline display;
// none of them is fatal to the caller.
func (s *AccountService) Signup(ctx context.Context, username, password, confirm, email string) (*domain.User, error) {
	tr := otel.Tracer("services/AccountService")
	ctx, span := tr.Start(ctx, "Signup",
		trace.WithAttributes(attribute.String("user.name", username)),
	)
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if len(password) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}

	taken, err := repo.UsernameExists(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	u, err := repo.CreateUser(ctx, s.DB, username, HashPassword(password), strings.TrimSpace(email))
	if err != nil {
		// Lost the race between the pre-check and the insert.
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "unique constraint") || strings.Contains(low, "constraint failed") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// Login verifies the credentials and returns the account. An unknown
// username and a wrong password both yield ErrBadCredentials.
//
// Because the streak lives on the user row, login also re-evaluates it for
// the new session: a last-entry date older than yesterday means the chain is
// already broken, so the stored counter drops to zero before it is shown.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	tr := otel.Tracer("services/AccountService")
	ctx, span := tr.Start(ctx, "Login",
		trace.WithAttributes(attribute.String("user.name", username)),
	)
	defer span.End()

	u, err := repo.GetUserByUsername(ctx, s.DB, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if u.PasswordHash != HashPassword(password) {
		return nil, ErrBadCredentials
	}

	if refreshed, changed := refreshStreak(u.Streak, u.LastEntryDate, time.Now()); changed {
		if err := repo.UpdateStreak(ctx, s.DB, u.ID, refreshed, u.LastEntryDate); err != nil {
			return nil, err
		}
		u.Streak = refreshed
	}
	return u, nil
}

// refreshStreak zeroes a stale counter. The last-entry date is left alone:
// only an actual check-in moves it.
func refreshStreak(streak int, lastEntryDate string, now time.Time) (int, bool) {
	if streak == 0 || lastEntryDate == "" {
		return streak, false
	}
	last, err := time.ParseInLocation(journal.DateLayout, lastEntryDate, now.Location())
	if err != nil {
		return 0, true
	}
	if journal.DaysBetween(last, now) > 1 {
		return 0, true
	}
	return streak, false
}

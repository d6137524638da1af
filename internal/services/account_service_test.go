package services

import (
	"context"
	"testing"
	"time"

	"github.com/mindease/go-journal-backend/internal/domain"
	"github.com/mindease/go-journal-backend/internal/journal"
	"github.com/mindease/go-journal-backend/internal/repo"
)

func TestAccountService_Signup_Validation(t *testing.T) {
	db := newSvcDB(t, &domain.User{})
	s := NewAccountService(db)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		confirm  string
		want     error
	}{
		{"blank username", "  ", "secret1", "secret1", ErrMissingFields},
		{"blank password", "ada", "", "", ErrMissingFields},
		{"mismatch", "ada", "secret1", "secret2", ErrPasswordMismatch},
		{"too short", "ada", "abc", "abc", ErrPasswordTooShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Signup(ctx, tc.username, tc.password, tc.confirm, ""); err != tc.want {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAccountService_Signup_StoresSHA256Hex(t *testing.T) {
	db := newSvcDB(t, &domain.User{})
	s := NewAccountService(db)

	u, err := s.Signup(context.Background(), "ada", "secret1", "secret1", "ada@example.com")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if len(u.PasswordHash) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(u.PasswordHash))
	}
	if u.PasswordHash != HashPassword("secret1") {
		t.Fatalf("stored hash does not match HashPassword output")
	}
	if u.PasswordHash == HashPassword("secret2") {
		t.Fatalf("hash should depend on the password")
	}
}

func TestAccountService_Signup_DuplicateUsername(t *testing.T) {
	db := newSvcDB(t, &domain.User{})
	s := NewAccountService(db)
	ctx := context.Background()

	if _, err := s.Signup(ctx, "ada", "secret1", "secret1", ""); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := s.Signup(ctx, "ada", "secret2", "secret2", ""); err != ErrUsernameTaken {
		t.Fatalf("duplicate signup: want ErrUsernameTaken, got %v", err)
	}
}

func TestAccountService_Login_BadCredentials(t *testing.T) {
	db := newSvcDB(t, &domain.User{})
	s := NewAccountService(db)
	ctx := context.Background()

	if _, err := s.Login(ctx, "ghost", "whatever"); err != ErrBadCredentials {
		t.Fatalf("unknown user: want ErrBadCredentials, got %v", err)
	}

	if _, err := s.Signup(ctx, "ada", "secret1", "secret1", ""); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := s.Login(ctx, "ada", "wrong"); err != ErrBadCredentials {
		t.Fatalf("wrong password: want ErrBadCredentials, got %v", err)
	}
	u, err := s.Login(ctx, "ada", "secret1")
	if err != nil || u.Username != "ada" {
		t.Fatalf("valid login: got %+v, err %v", u, err)
	}
}

func TestAccountService_Login_ZeroesStaleStreak(t *testing.T) {
	db := newSvcDB(t, &domain.User{})
	s := NewAccountService(db)
	ctx := context.Background()

	u, err := s.Signup(ctx, "ada", "secret1", "secret1", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	// Chain broken three days ago.
	stale := time.Now().AddDate(0, 0, -3).Format(journal.DateLayout)
	if err := repo.UpdateStreak(ctx, db, u.ID, 7, stale); err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	got, err := s.Login(ctx, "ada", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.Streak != 0 {
		t.Fatalf("stale streak shown as %d, want 0", got.Streak)
	}
	if got.LastEntryDate != stale {
		t.Fatalf("last entry date moved without a check-in: %q", got.LastEntryDate)
	}
}

func TestAccountService_Login_KeepsFreshStreak(t *testing.T) {
	db := newSvcDB(t, &domain.User{})
	s := NewAccountService(db)
	ctx := context.Background()

	u, err := s.Signup(ctx, "ada", "secret1", "secret1", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	yesterday := time.Now().AddDate(0, 0, -1).Format(journal.DateLayout)
	if err := repo.UpdateStreak(ctx, db, u.ID, 4, yesterday); err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	got, err := s.Login(ctx, "ada", "secret1")
	if err != nil || got.Streak != 4 {
		t.Fatalf("fresh streak: got %d, err %v; want 4", got.Streak, err)
	}
}

func TestRefreshStreak_GapAcrossSpringForwardZeroes(t *testing.T) {
	// US DST starts 2026-03-08, so Mar 7 to Mar 9 is 47 wall-clock hours.
	// A two-calendar-day gap still breaks the chain.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2026, time.March, 9, 8, 30, 0, 0, loc)

	refreshed, changed := refreshStreak(5, "2026-03-07", now)
	if !changed || refreshed != 0 {
		t.Fatalf("refreshStreak across spring-forward = (%d, %v); want (0, true)", refreshed, changed)
	}

	// One-day gap across fall-back (25 wall-clock hours) keeps the counter.
	nov := time.Date(2026, time.November, 1, 8, 30, 0, 0, loc)
	refreshed, changed = refreshStreak(5, "2026-10-31", nov)
	if changed || refreshed != 5 {
		t.Fatalf("refreshStreak across fall-back = (%d, %v); want (5, false)", refreshed, changed)
	}
}

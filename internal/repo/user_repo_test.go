package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mindease/go-journal-backend/internal/domain"
)

func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateUser_Success_PersistsAndSetsFields(t *testing.T) {
	db := newRepoDB(t, &domain.User{})

	u, err := CreateUser(context.Background(), db, "ada", "0123456789abcdef", "ada@example.com")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" || u.Username != "ada" || u.PasswordHash != "0123456789abcdef" {
		t.Fatalf("unexpected User fields: %+v", u)
	}
	if u.Streak != 0 || u.LastEntryDate != "" {
		t.Fatalf("new user should start with no streak state: %+v", u)
	}

	var got domain.User
	if err := db.First(&got, "id = ?", u.ID).Error; err != nil {
		t.Fatalf("load created user: %v", err)
	}
	if got.Email != "ada@example.com" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestCreateUser_DuplicateUsername_Fails(t *testing.T) {
	db := newRepoDB(t, &domain.User{})
	ctx := context.Background()

	if _, err := CreateUser(ctx, db, "ada", "h1", ""); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	if _, err := CreateUser(ctx, db, "ada", "h2", ""); err == nil {
		t.Fatalf("expected unique constraint error for duplicate username")
	}
}

func TestGetUserByUsername_AndExists(t *testing.T) {
	db := newRepoDB(t, &domain.User{})
	ctx := context.Background()

	if _, err := GetUserByUsername(ctx, db, "ghost"); err != ErrNotFound {
		t.Fatalf("missing user: want ErrNotFound, got %v", err)
	}
	ok, err := UsernameExists(ctx, db, "ghost")
	if err != nil || ok {
		t.Fatalf("UsernameExists(ghost) = %v, %v; want false, nil", ok, err)
	}

	if _, err := CreateUser(ctx, db, "ada", "h", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := GetUserByUsername(ctx, db, "ada")
	if err != nil || got.Username != "ada" {
		t.Fatalf("GetUserByUsername: got %+v, err %v", got, err)
	}
	ok, err = UsernameExists(ctx, db, "ada")
	if err != nil || !ok {
		t.Fatalf("UsernameExists(ada) = %v, %v; want true, nil", ok, err)
	}
}

func TestUpdateStreak_PersistsAndEnforcesExistence(t *testing.T) {
	db := newRepoDB(t, &domain.User{})
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "ada", "h", "")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdateStreak(ctx, db, u.ID, 3, "2026-08-29"); err != nil {
		t.Fatalf("UpdateStreak: %v", err)
	}
	got, err := GetUserByUsername(ctx, db, "ada")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Streak != 3 || got.LastEntryDate != "2026-08-29" {
		t.Fatalf("streak state not persisted: %+v", got)
	}

	if err := UpdateStreak(ctx, db, "nope", 1, "2026-08-29"); err != ErrNotFound {
		t.Fatalf("missing user: want ErrNotFound, got %v", err)
	}
}

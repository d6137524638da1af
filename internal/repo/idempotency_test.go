package repo

import (
	"context"
	"testing"
	"time"

	"github.com/mindease/go-journal-backend/internal/domain"
)

func TestIdempotency_CreateGetAndDuplicate(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := GetIdempotency(ctx, db, "u1", "entries.reflect", "k1", now); err != ErrNotFound {
		t.Fatalf("missing record: want ErrNotFound, got %v", err)
	}

	rec, err := CreateIdempotency(ctx, db, "u1", "entries.reflect", "k1", "entry-1", 201, true, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.EntryID != "entry-1" || rec.Status != 201 || !rec.AssistantOK {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "u1", "entries.reflect", "k1", now)
	if err != nil || got.EntryID != "entry-1" || !got.AssistantOK {
		t.Fatalf("GetIdempotency: got %+v, err %v", got, err)
	}

	if _, err := CreateIdempotency(ctx, db, "u1", "entries.reflect", "k1", "entry-2", 201, true, time.Hour); err != ErrDuplicate {
		t.Fatalf("duplicate tuple: want ErrDuplicate, got %v", err)
	}

	// Same key in a different scope is a distinct record.
	if _, err := CreateIdempotency(ctx, db, "u1", "threads.message", "k1", "entry-3", 201, false, time.Hour); err != nil {
		t.Fatalf("distinct scope: %v", err)
	}
}

func TestIdempotency_ExpiryAndEmptyScope(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "entries.reflect", "k1", "e", 201, true, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	later := time.Now().UTC().Add(time.Second)
	if _, err := GetIdempotency(ctx, db, "u1", "entries.reflect", "k1", later); err != ErrNotFound {
		t.Fatalf("expired record: want ErrNotFound, got %v", err)
	}

	if _, err := GetIdempotency(ctx, db, "u1", "  ", "k1", time.Now()); err != ErrNotFound {
		t.Fatalf("blank scope: want ErrNotFound, got %v", err)
	}
}

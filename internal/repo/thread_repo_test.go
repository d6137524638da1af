package repo

import (
	"context"
	"testing"
	"time"

	"github.com/mindease/go-journal-backend/internal/domain"
)

func TestCreateThread_AndGet(t *testing.T) {
	db := newRepoDB(t, &domain.Thread{})
	ctx := context.Background()

	th, err := CreateThread(ctx, db, "2026-08-29_09:15", "ada", "Morning check-in")
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if th.ID != "2026-08-29_09:15" || th.Username != "ada" {
		t.Fatalf("unexpected Thread fields: %+v", th)
	}

	got, err := GetThread(ctx, db, th.ID, "ada")
	if err != nil || got.Title != "Morning check-in" {
		t.Fatalf("GetThread: got %+v, err %v", got, err)
	}
	if _, err := GetThread(ctx, db, th.ID, "eve"); err != ErrNotFound {
		t.Fatalf("cross-user get: want ErrNotFound, got %v", err)
	}
}

func TestCreateThread_SameIDDifferentUsers(t *testing.T) {
	db := newRepoDB(t, &domain.Thread{})
	ctx := context.Background()

	// The primary key is (id, username), so two users can share a time key.
	if _, err := CreateThread(ctx, db, "2026-08-29_09:15", "ada", "A"); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := CreateThread(ctx, db, "2026-08-29_09:15", "eve", "B"); err != nil {
		t.Fatalf("second user, same id: %v", err)
	}
	if _, err := CreateThread(ctx, db, "2026-08-29_09:15", "ada", "dup"); err == nil {
		t.Fatalf("expected constraint error for duplicate (id, username)")
	}
}

func TestListThreads_OrderDescending(t *testing.T) {
	db := newRepoDB(t, &domain.Thread{})
	ctx := context.Background()

	t1 := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	seed := []domain.Thread{
		{ID: "2026-08-27_10:00", Username: "ada", Title: "A", CreatedAt: t1},
		{ID: "2026-08-28_10:00", Username: "ada", Title: "B", CreatedAt: t1.Add(24 * time.Hour)},
		{ID: "2026-08-29_10:00", Username: "eve", Title: "X", CreatedAt: t1.Add(48 * time.Hour)},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed %s: %v", seed[i].ID, err)
		}
	}

	out, err := ListThreads(ctx, db, "ada")
	if err != nil {
		t.Fatalf("ListThreads: %v", err)
	}
	if len(out) != 2 || out[0].ID != "2026-08-28_10:00" || out[1].ID != "2026-08-27_10:00" {
		t.Fatalf("unexpected order: %+v", out)
	}

	total, err := CountThreads(ctx, db, "ada")
	if err != nil || total != 2 {
		t.Fatalf("CountThreads = %d, %v; want 2", total, err)
	}
}

func TestThreadMessages_SeqOrderingAndCounts(t *testing.T) {
	db := newRepoDB(t, &domain.Thread{}, &domain.ThreadMessage{})
	ctx := context.Background()

	if _, err := CreateThread(ctx, db, "2026-08-29_09:15", "ada", "t"); err != nil {
		t.Fatalf("seed thread: %v", err)
	}

	for i, m := range []struct{ role, content string }{
		{"user", "Mood: ok"},
		{"assistant", "Thanks for sharing."},
		{"system", "Please respond warmly."},
	} {
		seq, err := NextSeq(ctx, db, "2026-08-29_09:15", "ada")
		if err != nil {
			t.Fatalf("NextSeq %d: %v", i, err)
		}
		if seq != i+1 {
			t.Fatalf("NextSeq = %d, want %d", seq, i+1)
		}
		if _, err := CreateThreadMessage(ctx, db, "2026-08-29_09:15", "ada", m.role, m.content, seq); err != nil {
			t.Fatalf("CreateThreadMessage %d: %v", i, err)
		}
	}

	msgs, err := ListThreadMessages(ctx, db, "2026-08-29_09:15", "ada")
	if err != nil {
		t.Fatalf("ListThreadMessages: %v", err)
	}
	if len(msgs) != 3 || msgs[0].Role != "user" || msgs[2].Role != "system" {
		t.Fatalf("unexpected sequence: %+v", msgs)
	}

	first, err := FirstThreadMessage(ctx, db, "2026-08-29_09:15", "ada")
	if err != nil || first.Content != "Mood: ok" {
		t.Fatalf("FirstThreadMessage: got %+v, err %v", first, err)
	}
	if _, err := FirstThreadMessage(ctx, db, "empty", "ada"); err != ErrNotFound {
		t.Fatalf("empty thread: want ErrNotFound, got %v", err)
	}

	n, err := CountThreadMessages(ctx, db, "2026-08-29_09:15", "ada")
	if err != nil || n != 3 {
		t.Fatalf("CountThreadMessages = %d, %v; want 3", n, err)
	}
	all, err := CountUserMessages(ctx, db, "ada")
	if err != nil || all != 3 {
		t.Fatalf("CountUserMessages = %d, %v; want 3", all, err)
	}
}

func TestDeleteThread_RemovesMessages_AndIsIdempotent(t *testing.T) {
	db := newRepoDB(t, &domain.Thread{}, &domain.ThreadMessage{})
	ctx := context.Background()

	if _, err := CreateThread(ctx, db, "2026-08-29_09:15", "ada", "t"); err != nil {
		t.Fatalf("seed thread: %v", err)
	}
	if _, err := CreateThreadMessage(ctx, db, "2026-08-29_09:15", "ada", "user", "hi", 1); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	if err := DeleteThread(ctx, db, "2026-08-29_09:15", "ada"); err != nil {
		t.Fatalf("DeleteThread: %v", err)
	}
	if _, err := GetThread(ctx, db, "2026-08-29_09:15", "ada"); err != ErrNotFound {
		t.Fatalf("thread still readable after delete: %v", err)
	}
	if n, err := CountThreadMessages(ctx, db, "2026-08-29_09:15", "ada"); err != nil || n != 0 {
		t.Fatalf("messages survived delete: %d, %v", n, err)
	}

	// Deleting a thread that never existed is a no-op.
	if err := DeleteThread(ctx, db, "never", "ada"); err != nil {
		t.Fatalf("DeleteThread(missing): %v", err)
	}
}

func TestUpdateThreadTitle(t *testing.T) {
	db := newRepoDB(t, &domain.Thread{})
	ctx := context.Background()

	if _, err := CreateThread(ctx, db, "2026-08-29_09:15", "ada", "New conversation"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdateThreadTitle(ctx, db, "2026-08-29_09:15", "ada", "Sleep worries"); err != nil {
		t.Fatalf("UpdateThreadTitle: %v", err)
	}
	got, err := GetThread(ctx, db, "2026-08-29_09:15", "ada")
	if err != nil || got.Title != "Sleep worries" {
		t.Fatalf("title not updated: %+v, err %v", got, err)
	}
	if err := UpdateThreadTitle(ctx, db, "missing", "ada", "x"); err != ErrNotFound {
		t.Fatalf("missing thread: want ErrNotFound, got %v", err)
	}
}

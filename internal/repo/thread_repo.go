// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Thread and
// ThreadMessage models.
//
// Threads are keyed by the (id, username) pair, where id is the "date_time"
// key of the originating journal entry. Messages carry a per-thread sequence
// number so their order is stable even when several rows share a creation
// timestamp (a reflect submission writes two messages in one transaction).
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mindease/go-journal-backend/internal/domain"
)

// CreateThread inserts a new Thread row owned by username with the given
// id and title. The id is caller-assigned ("date_time" of the seeding entry).
func CreateThread(ctx context.Context, db *gorm.DB, id, username, title string) (*domain.Thread, error) {
	t := &domain.Thread{
		ID:       id,
		Username: username,
		Title:    title,
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// ListThreads returns all threads belonging to username, ordered by creation
// time descending (most recent first).
func ListThreads(ctx context.Context, db *gorm.DB, username string) ([]domain.Thread, error) {
	var out []domain.Thread
	err := db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// CountThreads returns the total number of threads owned by username.
func CountThreads(ctx context.Context, db *gorm.DB, username string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Thread{}).
		Where("username = ?", username).
		Count(&total).Error
	return total, err
}

// GetThread fetches a single thread by ID/username, or ErrNotFound if missing.
func GetThread(ctx context.Context, db *gorm.DB, id, username string) (*domain.Thread, error) {
	var t domain.Thread
	err := db.WithContext(ctx).
		Where("id = ? AND username = ?", id, username).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateThreadTitle updates the title of a thread, enforcing user ownership.
// Returns ErrNotFound if the thread does not exist.
func UpdateThreadTitle(ctx context.Context, db *gorm.DB, id, username, title string) error {
	res := db.WithContext(ctx).
		Model(&domain.Thread{}).
		Where("id = ? AND username = ?", id, username).
		Update("title", title)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteThread removes a thread and all of its messages. Deleting a thread
// that does not exist is not an error: entry deletion cascades through here
// and some entries never seeded a thread.
func DeleteThread(ctx context.Context, db *gorm.DB, id, username string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ? AND username = ?", id, username).
			Delete(&domain.ThreadMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND username = ?", id, username).
			Delete(&domain.Thread{}).Error
	})
}

// NextSeq returns the sequence number that the next message in the thread
// should carry (max existing + 1, starting at 1).
func NextSeq(ctx context.Context, db *gorm.DB, threadID, username string) (int, error) {
	var max int
	err := db.WithContext(ctx).
		Model(&domain.ThreadMessage{}).
		Where("thread_id = ? AND username = ?", threadID, username).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&max).Error
	return max + 1, err
}

// CreateThreadMessage inserts a new message row with the given sequence
// number. The message ID is a randomly generated UUID.
func CreateThreadMessage(ctx context.Context, db *gorm.DB, threadID, username, role, content string, seq int) (*domain.ThreadMessage, error) {
	m := &domain.ThreadMessage{
		ID:       uuid.NewString(),
		ThreadID: threadID,
		Username: username,
		Seq:      seq,
		Role:     role,
		Content:  content,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListThreadMessages returns all messages of a thread in sequence order.
func ListThreadMessages(ctx context.Context, db *gorm.DB, threadID, username string) ([]domain.ThreadMessage, error) {
	var out []domain.ThreadMessage
	err := db.WithContext(ctx).
		Where("thread_id = ? AND username = ?", threadID, username).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

// FirstThreadMessage returns the earliest message of a thread, or ErrNotFound
// for an empty thread. Used for list previews.
func FirstThreadMessage(ctx context.Context, db *gorm.DB, threadID, username string) (*domain.ThreadMessage, error) {
	var m domain.ThreadMessage
	err := db.WithContext(ctx).
		Where("thread_id = ? AND username = ?", threadID, username).
		Order("seq ASC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountThreadMessages returns the number of messages in a thread.
func CountThreadMessages(ctx context.Context, db *gorm.DB, threadID, username string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ThreadMessage{}).
		Where("thread_id = ? AND username = ?", threadID, username).
		Count(&total).Error
	return total, err
}

// CountUserMessages returns the number of messages across all of the user's
// threads. Used for engagement analytics.
func CountUserMessages(ctx context.Context, db *gorm.DB, username string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ThreadMessage{}).
		Where("username = ?", username).
		Count(&total).Error
	return total, err
}

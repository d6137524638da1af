// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mindease/go-journal-backend/internal/domain"
)

// EntriesStats returns aggregate metadata for a user's journal entries: the
// total number of rows and the maximum UpdatedAt timestamp among those rows.
//
// When the user has no entries, the returned count is 0 and maxUpdatedAt is
// nil.
func EntriesStats(ctx context.Context, db *gorm.DB, username string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Entry{}).Where("username = ?", username)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// ThreadMessagesStats returns aggregate metadata for messages within a given
// thread: the total number of rows and the maximum UpdatedAt timestamp among
// those rows. When the thread has no messages, the returned count is 0 and
// maxUpdatedAt is nil.
func ThreadMessagesStats(ctx context.Context, db *gorm.DB, threadID, username string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ThreadMessage{}).
		Where("thread_id = ? AND username = ?", threadID, username)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Entry model.
//
// Each journal entry is a keyed row: creation inserts exactly one record and
// deletion removes exactly one record by primary key. Filters compose on top
// of the username scope, so every query here is per-user.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mindease/go-journal-backend/internal/domain"
)

// entryScope composes the per-user filter with the optional mood and tag
// filters. Tags are stored as a JSON array in a TEXT column, so the tag
// filter matches the quoted element inside the serialized list.
func entryScope(db *gorm.DB, username, mood, tag string) *gorm.DB {
	q := db.Where("username = ?", username)
	if mood != "" {
		q = q.Where("mood = ?", mood)
	}
	if tag != "" {
		q = q.Where("tags LIKE ?", `%"`+tag+`"%`)
	}
	return q
}

// CreateEntry inserts a new journal entry row. The entry ID is assigned here
// as a randomly generated UUID; all other fields come from the caller.
func CreateEntry(ctx context.Context, db *gorm.DB, e *domain.Entry) error {
	e.ID = uuid.NewString()
	return db.WithContext(ctx).Create(e).Error
}

// ListEntries returns all entries for username ordered most recent first
// (date descending, then time descending). Optional mood and tag filters
// narrow the result; pass "" to skip a filter.
func ListEntries(ctx context.Context, db *gorm.DB, username, mood, tag string) ([]domain.Entry, error) {
	var out []domain.Entry
	err := entryScope(db.WithContext(ctx), username, mood, tag).
		Order("date DESC, time DESC").
		Find(&out).Error
	return out, err
}

// CountEntries returns the number of entries matching the scope.
func CountEntries(ctx context.Context, db *gorm.DB, username, mood, tag string) (int64, error) {
	var total int64
	err := entryScope(db.WithContext(ctx).Model(&domain.Entry{}), username, mood, tag).
		Count(&total).Error
	return total, err
}

// ListEntriesPage returns a paginated slice of entries ordered most recent
// first. Use CountEntries to obtain the total for pagination metadata.
func ListEntriesPage(ctx context.Context, db *gorm.DB, username, mood, tag string, offset, limit int) ([]domain.Entry, error) {
	var out []domain.Entry
	err := entryScope(db.WithContext(ctx), username, mood, tag).
		Order("date DESC, time DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListRecentEntries returns up to limit entries for username ordered most
// recent first. Callers that need chronological order reverse the slice.
func ListRecentEntries(ctx context.Context, db *gorm.DB, username string, limit int) ([]domain.Entry, error) {
	var out []domain.Entry
	err := db.WithContext(ctx).
		Where("username = ?", username).
		Order("date DESC, time DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetEntry fetches a single entry by ID, enforcing user ownership.
// Returns ErrNotFound if the entry does not exist or belongs to another user.
func GetEntry(ctx context.Context, db *gorm.DB, id, username string) (*domain.Entry, error) {
	var e domain.Entry
	err := db.WithContext(ctx).
		Where("id = ? AND username = ?", id, username).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEntry removes a single entry by ID, enforcing user ownership.
// Returns ErrNotFound if no row was deleted.
func DeleteEntry(ctx context.Context, db *gorm.DB, id, username string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND username = ?", id, username).
		Delete(&domain.Entry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency represents a recorded result of a previously processed request,
// keyed by (user_id, scope, key). It makes retried reflect submissions safe:
// a replayed request returns the originally created entry instead of
// producing a duplicate check-in (and a duplicate remote call).
type Idempotency struct {
	ID      string `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID  string `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:1"`
	Scope   string `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:2"`
	Key     string `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:3"`
	EntryID string `gorm:"type:TEXT NOT NULL"`
	Status  int    `gorm:"type:INTEGER NOT NULL"`
	// AssistantOK records whether the original response carried a live
	// assistant reflection, so a replay can report the same provenance.
	AssistantOK bool      `gorm:"type:BOOLEAN NOT NULL"`
	CreatedAt   time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt   time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

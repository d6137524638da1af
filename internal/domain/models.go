// Package domain defines the persistence models for user accounts, journal
// entries, and conversation threads. These types are mapped with GORM and
// form the core data layer of the journal application.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Mood anchor labels. The emoji prefix is part of the stored value; history
// filters match on the full label.
const (
	MoodVeryLow = "😔 Very Low"
	MoodLow     = "😟 Low"
	MoodNeutral = "😐 Neutral"
	MoodGood    = "🙂 Good"
	MoodGreat   = "😊 Great"
)

// MoodLabels lists the five check-in levels in ascending order.
var MoodLabels = []string{MoodVeryLow, MoodLow, MoodNeutral, MoodGood, MoodGreat}

// StringList is a []string stored as a JSON text column. Used for entry tags
// and thread focus areas.
type StringList []string

// Value implements driver.Valuer by JSON-encoding the list.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, accepting TEXT or BLOB JSON.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(l))
	case []byte:
		return json.Unmarshal(v, (*[]string)(l))
	default:
		return errors.New("StringList: unsupported source type")
	}
}

// User is a journal account. Passwords are stored as an unsalted SHA-256 hex
// digest and compared by equality; this mirrors the product's documented
// login contract. Streak bookkeeping lives on the user row so it survives
// restarts.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username: unique account name; uniqueness is pre-checked before insert.
//   - PasswordHash: sha256 hex of the password.
//   - Email: optional contact address.
//   - Streak: consecutive-day journaling counter (>= 0).
//   - LastEntryDate: "2006-01-02" of the most recent check-in, empty if none.
type User struct {
	ID            string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Username      string         `json:"username"   gorm:"type:varchar(64);not null;uniqueIndex:ux_users_username"`
	PasswordHash  string         `json:"-"          gorm:"type:char(64);not null"`
	Email         string         `json:"email,omitempty" gorm:"type:varchar(255)"`
	Streak        int            `json:"streak"     gorm:"not null;default:0"`
	LastEntryDate string         `json:"last_entry_date,omitempty" gorm:"type:varchar(10)"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Entry represents one journal check-in. Created on a reflect submission,
// deleted individually by user action, and never otherwise mutated: both
// Reflection and MoodScore are set once at creation.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Username: owner key; indexed for per-user retrieval.
//   - Date / Time: local wall-clock "2006-01-02" and "15:04" at creation.
//   - Mood: one of the five labeled levels (see MoodLabels).
//   - MoodInput: free text describing the mood.
//   - Journal: free-text journal body.
//   - Reflection: assistant-generated empathic reply, set once.
//   - MoodScore: integer 1-10 blended from the anchor and text sentiment.
//   - Tags: user-selected labels plus an optional custom tag.
type Entry struct {
	ID         string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Username   string         `json:"username"   gorm:"type:varchar(64);not null;index:idx_user_entries"`
	Date       string         `json:"date"       gorm:"type:varchar(10);not null;index"`
	Time       string         `json:"time"       gorm:"type:varchar(5);not null"`
	Mood       string         `json:"mood"       gorm:"type:varchar(32);not null"`
	MoodInput  string         `json:"mood_input" gorm:"type:text"`
	Journal    string         `json:"journal"    gorm:"type:text"`
	Reflection string         `json:"reflection" gorm:"type:text"`
	MoodScore  int            `json:"mood_score" gorm:"not null;check:mood_score BETWEEN 1 AND 10"`
	Tags       StringList     `json:"tags"       gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Entry.
func (Entry) TableName() string { return "journal_entries" }

// ChatID derives the thread key of the entry ("date_time").
func (e *Entry) ChatID() string { return e.Date + "_" + e.Time }

// Thread is a conversation seeded from a journal entry. Its ID is the
// "date_time" key of the originating entry, so an entry maps to at most one
// thread per user and the two can be joined without a foreign key column.
type Thread struct {
	ID        string         `json:"id"         gorm:"type:varchar(32);primaryKey"`
	Username  string         `json:"username"   gorm:"type:varchar(64);primaryKey;index:idx_user_threads"`
	Title     string         `json:"title"      gorm:"type:varchar(255);not null;default:'New conversation'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Thread.
func (Thread) TableName() string { return "threads" }

// ThreadMessage is a single utterance within a thread. Role is "user",
// "assistant", or "system" (therapy-settings instructions are appended as
// hidden system messages). Seq fixes the in-thread order even when several
// messages share a creation timestamp.
type ThreadMessage struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	ThreadID  string         `json:"thread_id" gorm:"type:varchar(32);not null;index:idx_thread_msgs,priority:1"`
	Username  string         `json:"-"         gorm:"type:varchar(64);not null;index"`
	Seq       int            `json:"seq"       gorm:"not null;index:idx_thread_msgs,priority:2"`
	Role      string         `json:"role"      gorm:"type:varchar(16);not null;check:role IN ('user','assistant','system')"`
	Content   string         `json:"content"   gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

// TableName returns the database table name for ThreadMessage.
func (ThreadMessage) TableName() string { return "thread_messages" }

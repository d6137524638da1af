// Package services – EntryService
//
// This file implements EntryService, the application-level component that
// owns the journal check-in lifecycle. A reflect submission is the product's
// core write path: it scores the mood, requests the assistant reflection,
// and persists the entry, its seeded conversation thread, and the updated
// streak in one transaction. Listing, deletion, and export build on the same
// per-user scope.
//
// Observability: public methods are OpenTelemetry-instrumented; spans
// include user identifiers and pagination parameters where applicable.
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mindease/go-journal-backend/internal/assistant"
	"github.com/mindease/go-journal-backend/internal/domain"
	"github.com/mindease/go-journal-backend/internal/filestore"
	"github.com/mindease/go-journal-backend/internal/journal"
	"github.com/mindease/go-journal-backend/internal/repo"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"

	timeLayout = "15:04"
)

// ReflectInput carries one check-in submission.
type ReflectInput struct {
	Mood      string
	MoodInput string
	Journal   string
	Tags      []string
	CustomTag string
}

// ReflectResult is the outcome of a processed check-in.
type ReflectResult struct {
	Entry       *domain.Entry
	Reflection  string
	Streak      int
	AssistantOK bool
}

// EntryService coordinates mood scoring, assistant reflections, and entry
// persistence.
type EntryService struct {
	DB        *gorm.DB
	Assistant Assistant

	// Files, when non-nil, receives a best-effort per-user snapshot after
	// every successful mutation.
	Files *filestore.Store
	Log   zerolog.Logger

	// MaxJournalRunes caps the journal body by rune length; 0 disables.
	MaxJournalRunes int
}

// NewEntryService constructs an EntryService.
func NewEntryService(db *gorm.DB, a Assistant, files *filestore.Store, log zerolog.Logger) *EntryService {
	return &EntryService{
		DB:              db,
		Assistant:       a,
		Files:           files,
		Log:             log,
		MaxJournalRunes: 8000,
	}
}

// Reflect processes a check-in: validates the submission, computes the mood
// score, requests the assistant reflection, and persists the entry together
// with its seeded thread and the advanced streak.
//
// Scoring: an empty journal body keeps the anchor score exactly (no remote
// call); otherwise the remote text score is blended 70/30 with the anchor.
// A failed remote call degrades to the fallback reflection and the default
// text score rather than failing the submission.
func (s *EntryService) Reflect(ctx context.Context, username string, in ReflectInput) (*ReflectResult, error) {
	tr := otel.Tracer("services/EntryService")
	ctx, span := tr.Start(ctx, "Reflect",
		trace.WithAttributes(attribute.String("user.name", username)),
	)
	defer span.End()

	if !slices.Contains(domain.MoodLabels, in.Mood) {
		return nil, ErrInvalidMood
	}
	journalText := strings.TrimSpace(in.Journal)
	moodInput := strings.TrimSpace(in.MoodInput)
	if journalText == "" && moodInput == "" {
		return nil, ErrEmptyJournal
	}
	if s.MaxJournalRunes > 0 && utf8.RuneCountInString(journalText) > s.MaxJournalRunes {
		return nil, ErrTooLong
	}

	user, err := repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}

	// Score: anchor only for an empty body, blend otherwise.
	anchor := journal.AnchorScore(in.Mood)
	score := anchor
	assistantOK := true
	if journalText != "" {
		text, ok := s.Assistant.MoodScore(ctx, journalText)
		assistantOK = assistantOK && ok
		score = journal.BlendScore(anchor, text)
	}

	reflection, ok := s.Assistant.Reflect(ctx, moodInput, journalText)
	assistantOK = assistantOK && ok

	now := time.Now()
	e := &domain.Entry{
		Username:   username,
		Date:       now.Format(journal.DateLayout),
		Time:       now.Format(timeLayout),
		Mood:       in.Mood,
		MoodInput:  moodInput,
		Journal:    journalText,
		Reflection: reflection,
		MoodScore:  score,
		Tags:       mergeTags(in.Tags, in.CustomTag),
	}

	next := journal.Advance(journal.StreakState{
		Streak:        user.Streak,
		LastEntryDate: user.LastEntryDate,
	}, now)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateEntry(ctx, tx, e); err != nil {
			return err
		}
		if err := repo.UpdateStreak(ctx, tx, user.ID, next.Streak, next.LastEntryDate); err != nil {
			return err
		}
		// Seed the conversation thread from the check-in.
		if _, err := repo.CreateThread(ctx, tx, e.ChatID(), username, "Check-in "+e.Date+" "+e.Time); err != nil {
			return err
		}
		seed := assistant.EntryContext(e.Mood, e.MoodInput, e.Journal)
		if _, err := repo.CreateThreadMessage(ctx, tx, e.ChatID(), username, roleUser, seed, 1); err != nil {
			return err
		}
		if _, err := repo.CreateThreadMessage(ctx, tx, e.ChatID(), username, roleAssistant, reflection, 2); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mirror(ctx, username)

	return &ReflectResult{
		Entry:       e,
		Reflection:  reflection,
		Streak:      next.Streak,
		AssistantOK: assistantOK,
	}, nil
}

// Get fetches a single entry owned by the user.
func (s *EntryService) Get(ctx context.Context, username, id string) (*domain.Entry, error) {
	e, err := repo.GetEntry(ctx, s.DB, id, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrEntryNotFound
	}
	return e, err
}

// ListPage returns a page of the user's entries, most recent first, with
// optional mood and tag filters. It applies defaults for invalid
// page/pageSize and returns the total count.
func (s *EntryService) ListPage(ctx context.Context, username, mood, tag string, page, pageSize int) ([]domain.Entry, int64, error) {
	tr := otel.Tracer("services/EntryService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("user.name", username),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountEntries(ctx, s.DB, username, mood, tag)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Entry{}, 0, nil
	}

	items, err := repo.ListEntriesPage(ctx, s.DB, username, mood, tag, offset, pageSize)
	return items, total, err
}

// Delete removes an entry and the conversation thread it seeded.
func (s *EntryService) Delete(ctx context.Context, username, id string) error {
	tr := otel.Tracer("services/EntryService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("user.name", username),
			attribute.String("entry.id", id),
		),
	)
	defer span.End()

	e, err := repo.GetEntry(ctx, s.DB, id, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrEntryNotFound
		}
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.DeleteEntry(ctx, tx, id, username); err != nil {
			return err
		}
		return repo.DeleteThread(ctx, tx, e.ChatID(), username)
	})
	if err != nil {
		return err
	}

	s.mirror(ctx, username)
	return nil
}

// ExportJSON returns the user's full entry list as indented JSON.
func (s *EntryService) ExportJSON(ctx context.Context, username string) ([]byte, error) {
	entries, err := repo.ListEntries(ctx, s.DB, username, "", "")
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(entries, "", "  ")
}

// CSV column order of the export.
var exportHeader = []string{"Date", "Time", "Mood", "Mood Score", "Mood Notes", "Journal Entry", "Tags"}

// ExportCSV returns the user's full entry list as CSV. Newlines inside free
// text collapse to spaces so each entry stays on one row; tags join into a
// single comma-separated field.
func (s *EntryService) ExportCSV(ctx context.Context, username string) ([]byte, error) {
	entries, err := repo.ListEntries(ctx, s.DB, username, "", "")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		rec := []string{
			e.Date,
			e.Time,
			e.Mood,
			strconv.Itoa(e.MoodScore),
			flattenNewlines(e.MoodInput),
			flattenNewlines(e.Journal),
			strings.Join(e.Tags, ", "),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mirror rewrites the user's filestore snapshots. Failures are logged and
// otherwise ignored: the mirror is a convenience, not the system of record.
func (s *EntryService) mirror(ctx context.Context, username string) {
	if s.Files == nil {
		return
	}
	entries, err := repo.ListEntries(ctx, s.DB, username, "", "")
	if err == nil {
		err = s.Files.SaveEntries(username, entries)
	}
	if err != nil {
		s.Log.Warn().Err(err).Str("username", username).Msg("filestore: entry snapshot failed")
	}
}

// mergeTags appends a non-blank custom tag to the selected tags, dropping
// duplicates while preserving order.
func mergeTags(tags []string, custom string) domain.StringList {
	out := make(domain.StringList, 0, len(tags)+1)
	seen := make(map[string]struct{}, len(tags)+1)
	for _, t := range append(slices.Clone(tags), custom) {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// flattenNewlines replaces CR/LF runs with single spaces.
func flattenNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

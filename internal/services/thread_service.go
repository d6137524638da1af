// Package services – ThreadService
//
// This file implements ThreadService, which owns conversation threads seeded
// from journal check-ins. It validates inputs, checks thread ownership,
// requests the next assistant message over the full stored history, and
// persists the user/assistant message pair atomically.
//
// Therapy-mode settings are applied the way the product always has: the
// interpolated instruction is appended to the thread as a hidden system
// message. The assistant client folds stored system messages into the
// top-level system field when it builds the remote request.
//
// Optional enhancement: it also auto-generates a thread title from the first
// free-form user message when the thread still has a placeholder title.
package services

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mindease/go-journal-backend/internal/assistant"
	"github.com/mindease/go-journal-backend/internal/domain"
	"github.com/mindease/go-journal-backend/internal/filestore"
	"github.com/mindease/go-journal-backend/internal/repo"
)

// Enumerated therapy-mode option sets. Settings outside these values are
// rejected with ErrInvalidSetting.
var (
	TherapyStyles = []string{
		"Balanced (Default)",
		"Cognitive Behavioral",
		"Solution-Focused",
		"Mindfulness-Based",
		"Compassion-Focused",
	}
	ResponseLengths = []string{"Brief", "Balanced", "Detailed"}
	FocusAreas      = []string{
		"Emotional processing",
		"Problem-solving",
		"Identifying patterns",
		"Building resilience",
		"Stress management",
		"Sleep improvement",
		"Relationship issues",
	}
)

// defaultTitleNew is the placeholder title eligible for auto-generation.
const defaultTitleNew = "New conversation"

// ThreadSummary is a thread plus its list-view preview.
type ThreadSummary struct {
	domain.Thread
	Preview      string `json:"preview"`
	MessageCount int64  `json:"message_count"`
}

// ThreadSettings is one therapy-mode settings submission.
type ThreadSettings struct {
	Style      string
	Length     string
	FocusAreas []string
}

// ThreadService coordinates thread persistence and assistant turns.
type ThreadService struct {
	DB        *gorm.DB
	Assistant Assistant

	// Files, when non-nil, receives a best-effort per-user snapshot after
	// every successful mutation.
	Files *filestore.Store
	Log   zerolog.Logger

	// MaxMessageRunes caps a single turn by rune length; 0 disables.
	MaxMessageRunes int

	// Title generation config
	TitleLocale language.Tag
	TitleMaxLen int
}

// NewThreadService constructs a ThreadService with sane defaults.
func NewThreadService(db *gorm.DB, a Assistant, files *filestore.Store, log zerolog.Logger) *ThreadService {
	return &ThreadService{
		DB:              db,
		Assistant:       a,
		Files:           files,
		Log:             log,
		MaxMessageRunes: 4000,
		TitleLocale:     language.Und,
		TitleMaxLen:     60,
	}
}

// ListPage returns a page of the user's threads, most recent first, each
// with the first stored message as preview.
func (s *ThreadService) ListPage(ctx context.Context, username string, page, pageSize int) ([]ThreadSummary, int64, error) {
	tr := otel.Tracer("services/ThreadService")
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

	total, err := repo.CountThreads(ctx, s.DB, username)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []ThreadSummary{}, 0, nil
	}

	threads, err := repo.ListThreads(ctx, s.DB, username)
	if err != nil {
		return nil, 0, err
	}
	if offset >= len(threads) {
		return []ThreadSummary{}, total, nil
	}
	end := offset + pageSize
	if end > len(threads) {
		end = len(threads)
	}

	out := make([]ThreadSummary, 0, end-offset)
	for _, t := range threads[offset:end] {
		sum := ThreadSummary{Thread: t}
		if first, err := repo.FirstThreadMessage(ctx, s.DB, t.ID, username); err == nil {
			sum.Preview = clipRunes(first.Content, 120)
		}
		if n, err := repo.CountThreadMessages(ctx, s.DB, t.ID, username); err == nil {
			sum.MessageCount = n
		}
		out = append(out, sum)
	}
	return out, total, nil
}

// Messages returns the full ordered message sequence of a thread.
func (s *ThreadService) Messages(ctx context.Context, username, threadID string) ([]domain.ThreadMessage, error) {
	if _, err := repo.GetThread(ctx, s.DB, threadID, username); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return repo.ListThreadMessages(ctx, s.DB, threadID, username)
}

// Converse validates the message, verifies the thread, requests the next
// assistant reply over the full stored history, and persists both messages
// atomically. It may auto-generate the thread title.
func (s *ThreadService) Converse(ctx context.Context, username, threadID, message string) (*domain.ThreadMessage, error) {
	tr := otel.Tracer("services/ThreadService")
	ctx, span := tr.Start(ctx, "Converse",
		trace.WithAttributes(
			attribute.String("thread.id", threadID),
			attribute.String("user.name", username),
		),
	)
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(message) > s.MaxMessageRunes {
		return nil, ErrTooLong
	}

	thread, err := repo.GetThread(ctx, s.DB, threadID, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}

	stored, err := repo.ListThreadMessages(ctx, s.DB, threadID, username)
	if err != nil {
		return nil, err
	}
	history := make([]assistant.Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, assistant.Message{Role: m.Role, Content: m.Content})
	}

	reply, _ := s.Assistant.Converse(ctx, history, message)

	var assistantMsg *domain.ThreadMessage
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := repo.NextSeq(ctx, tx, threadID, username)
		if err != nil {
			return err
		}
		if _, err := repo.CreateThreadMessage(ctx, tx, threadID, username, roleUser, message, seq); err != nil {
			return err
		}
		m, err := repo.CreateThreadMessage(ctx, tx, threadID, username, roleAssistant, reply, seq+1)
		if err != nil {
			return err
		}
		assistantMsg = m

		// Auto-title if placeholder
		if s.shouldAutoTitle(thread.Title) {
			if gen := s.generateTitle(message); gen != "" {
				if uerr := repo.UpdateThreadTitle(ctx, tx, threadID, username, s.clipTitle(gen)); uerr != nil {
					return uerr
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mirror(ctx, username)
	return assistantMsg, nil
}

// ApplySettings validates the therapy-mode submission against the option
// sets and appends the interpolated instruction as a hidden system message.
func (s *ThreadService) ApplySettings(ctx context.Context, username, threadID string, in ThreadSettings) error {
	tr := otel.Tracer("services/ThreadService")
	ctx, span := tr.Start(ctx, "ApplySettings",
		trace.WithAttributes(
			attribute.String("thread.id", threadID),
			attribute.String("user.name", username),
		),
	)
	defer span.End()

	if !slices.Contains(TherapyStyles, in.Style) || !slices.Contains(ResponseLengths, in.Length) {
		return ErrInvalidSetting
	}
	if len(in.FocusAreas) == 0 {
		return ErrInvalidSetting
	}
	for _, f := range in.FocusAreas {
		if !slices.Contains(FocusAreas, f) {
			return ErrInvalidSetting
		}
	}

	if _, err := repo.GetThread(ctx, s.DB, threadID, username); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrThreadNotFound
		}
		return err
	}

	instruction := assistant.SettingsInstruction(in.Style, in.Length, in.FocusAreas)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := repo.NextSeq(ctx, tx, threadID, username)
		if err != nil {
			return err
		}
		_, err = repo.CreateThreadMessage(ctx, tx, threadID, username, roleSystem, instruction, seq)
		return err
	})
	if err != nil {
		return err
	}

	s.mirror(ctx, username)
	return nil
}

// mirror rewrites the user's thread snapshot. Failures are logged and
// otherwise ignored.
func (s *ThreadService) mirror(ctx context.Context, username string) {
	if s.Files == nil {
		return
	}
	threads, err := repo.ListThreads(ctx, s.DB, username)
	if err != nil {
		s.Log.Warn().Err(err).Str("username", username).Msg("filestore: thread snapshot failed")
		return
	}
	snap := make(map[string][]domain.ThreadMessage, len(threads))
	for _, t := range threads {
		msgs, err := repo.ListThreadMessages(ctx, s.DB, t.ID, username)
		if err != nil {
			s.Log.Warn().Err(err).Str("username", username).Msg("filestore: thread snapshot failed")
			return
		}
		snap[t.ID] = msgs
	}
	if err := s.Files.SaveThreads(username, snap); err != nil {
		s.Log.Warn().Err(err).Str("username", username).Msg("filestore: thread snapshot failed")
	}
}

// shouldAutoTitle reports whether the current title is a placeholder.
func (s *ThreadService) shouldAutoTitle(current string) bool {
	t := strings.TrimSpace(strings.ToLower(current))
	return t == "" || t == strings.ToLower(defaultTitleNew) || strings.HasPrefix(t, "check-in ")
}

// generateTitle derives a concise title from the first free-form message.
func (s *ThreadService) generateTitle(message string) string {
	toks := titleWordRE.FindAllString(strings.ToLower(strings.TrimSpace(message)), -1)
	if len(toks) == 0 {
		return ""
	}

	titleCaser := cases.Title(s.titleLocaleOrDefault())
	out := make([]string, 0, 8)
	for _, w := range toks {
		if _, skip := titleStopWords[w]; skip {
			continue
		}
		out = append(out, titleCaser.String(w))
		if len(out) >= 8 {
			break
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, " ")
}

// clipTitle truncates a generated title to the configured maximum rune length.
func (s *ThreadService) clipTitle(title string) string {
	max := s.TitleMaxLen
	if max <= 0 {
		max = 60
	}
	if utf8.RuneCountInString(title) > max {
		return string([]rune(title)[:max])
	}
	return title
}

// titleLocaleOrDefault returns the configured locale for casing or English if unset.
func (s *ThreadService) titleLocaleOrDefault() language.Tag {
	if s.TitleLocale == language.Und {
		return language.English
	}
	return s.TitleLocale
}

// clipRunes truncates s to at most n runes.
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Extract Unicode letters with optional trailing numbers (e.g., "week3").
var titleWordRE = regexp.MustCompile(`[\p{L}]+[\p{N}]*`)

// Minimal English stop-words set for compact titles.
var titleStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {}, "were": {},
}

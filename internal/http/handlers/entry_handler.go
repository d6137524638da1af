// Journal entry HTTP handlers.
//
// This file exposes REST endpoints for check-ins and journal history:
//   - POST   /entries/reflect   (submit a check-in, idempotency support)
//   - GET    /entries           (list, filtered + paginated, ETag support)
//   - DELETE /entries/{id}      (remove one entry and its seeded thread)
//   - GET    /entries/export    (download history as JSON or CSV)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// check-in exists for (user, route, key), the handler returns the recorded
// entry and sets `Idempotency-Replayed: true` instead of writing a duplicate.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mindease/go-journal-backend/internal/domain"
	"github.com/mindease/go-journal-backend/internal/repo"
	"github.com/mindease/go-journal-backend/internal/services"
	"github.com/mindease/go-journal-backend/internal/sysutil"
	"github.com/mindease/go-journal-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AccountService defines signup and login operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AccountService interface {
	// Signup registers a new account after validating the submission.
	Signup(ctx context.Context, username, password, confirm, email string) (*domain.User, error)
	// Login authenticates a user and refreshes the persisted streak.
	Login(ctx context.Context, username, password string) (*domain.User, error)
}

// EntryService defines check-in and journal history operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type EntryService interface {
	// Reflect processes one check-in submission end to end.
	Reflect(ctx context.Context, username string, in services.ReflectInput) (*services.ReflectResult, error)
	// Get returns one entry owned by username.
	Get(ctx context.Context, username, id string) (*domain.Entry, error)
	// ListPage returns a page of entries plus the total count, optionally
	// filtered by mood label and tag.
	ListPage(ctx context.Context, username, mood, tag string, page, pageSize int) ([]domain.Entry, int64, error)
	// Delete removes one entry and its seeded conversation thread.
	Delete(ctx context.Context, username, id string) error
	// ExportJSON renders the full history as indented JSON.
	ExportJSON(ctx context.Context, username string) ([]byte, error)
	// ExportCSV renders the full history as a flat CSV document.
	ExportCSV(ctx context.Context, username string) ([]byte, error)
}

// ThreadService defines conversation operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ThreadService interface {
	// ListPage returns a page of thread summaries and the total count.
	ListPage(ctx context.Context, username string, page, pageSize int) ([]services.ThreadSummary, int64, error)
	// Messages returns the full transcript of one thread in turn order.
	Messages(ctx context.Context, username, threadID string) ([]domain.ThreadMessage, error)
	// Converse appends a user turn and an assistant reply atomically.
	Converse(ctx context.Context, username, threadID, message string) (*domain.ThreadMessage, error)
	// ApplySettings records a therapy-mode settings change on the thread.
	ApplySettings(ctx context.Context, username, threadID string, in services.ThreadSettings) error
}

// InsightService defines cross-entry insight generation.
type InsightService interface {
	// Insights summarizes recent journal history; ok reports whether the
	// text came from the assistant rather than a fallback.
	Insights(ctx context.Context, username string) (text string, ok bool, err error)
}

// AnalyticsService defines the mood analytics roll-up.
type AnalyticsService interface {
	// Summary computes the full analytics dashboard payload for a user.
	Summary(ctx context.Context, username string) (*services.AnalyticsSummary, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for accounts, entries, threads, and insights.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	accountSvc   AccountService
	entrySvc     EntryService
	threadSvc    ThreadService
	insightSvc   InsightService
	analyticsSvc AnalyticsService
	idemTTL      time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
// idemTTL controls how long recorded idempotency keys stay replayable; a
// non-positive value falls back to 24h.
func New(accountSvc AccountService, entrySvc EntryService, threadSvc ThreadService, insightSvc InsightService, analyticsSvc AnalyticsService, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{
		accountSvc:   accountSvc,
		entrySvc:     entrySvc,
		threadSvc:    threadSvc,
		insightSvc:   insightSvc,
		analyticsSvc: analyticsSvc,
		idemTTL:      idemTTL,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	var fromCtx, fromHeader string
	if v, ok := c.Get("userID"); ok {
		fromCtx, _ = v.(string)
	}
	if c != nil && c.Request != nil {
		fromHeader = strings.TrimSpace(c.GetHeader("X-User-ID"))
	}
	return sysutil.FirstNonEmpty(fromCtx, fromHeader, "demo-user")
}

//
// DTOs
//

// ReflectRequest is the JSON payload for a check-in submission.
type ReflectRequest struct {
	// Mood is one of the five labeled levels.
	Mood string `json:"mood" binding:"required" example:"🙂 Good"`
	// MoodInput is optional free text describing the mood.
	MoodInput string `json:"mood_input" example:"tired but hopeful"`
	// Journal is the free-text journal body.
	Journal string `json:"journal" example:"Long day at work; the evening walk helped."`
	// Tags are optional preset labels for the entry.
	Tags []string `json:"tags" example:"Work,Sleep"`
	// CustomTag is an optional free-form tag appended to Tags.
	CustomTag string `json:"custom_tag" example:"Gym"`
}

// ReflectResponse is the JSON envelope for a processed check-in.
type ReflectResponse struct {
	// Entry is the persisted journal entry.
	Entry *domain.Entry `json:"entry"`
	// Reflection is the assistant's empathic reply.
	Reflection string `json:"reflection"`
	// Streak is the user's consecutive-day counter after this check-in.
	Streak int `json:"streak"`
	// AssistantOK reports whether the reflection came from the assistant
	// rather than the fallback text.
	AssistantOK bool `json:"assistant_ok"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListEntriesResponse wraps a page of entries and pagination information.
type ListEntriesResponse struct {
	Entries    []domain.Entry `json:"entries"`
	Pagination Pagination     `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes user text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// discoverMaxJournalRunes inspects the concrete EntryService for a configured
// journal-length limit. If unavailable, it returns a conservative fallback.
func discoverMaxJournalRunes(entrySvc EntryService) int {
	const fallback = 8000
	if es, ok := entrySvc.(*services.EntryService); ok {
		if es.MaxJournalRunes > 0 {
			return es.MaxJournalRunes
		}
	}
	return fallback
}

// idempotencyKey extracts an idempotency key if an upstream middleware has
// already validated/stashed it. The fallback behavior reads the
// "Idempotency-Key" header directly when no dedicated middleware exists.
func idempotencyKey(c *gin.Context) (string, bool) {
	if v := strings.TrimSpace(c.GetHeader("Idempotency-Key")); v != "" {
		return v, true
	}
	return "", false
}

//
// Handlers
//

// Reflect godoc
// @ID          reflectEntry
// @Summary     Submit a check-in
// @Description Scores the mood, generates an assistant reflection, and persists the entry
// @Description together with its seeded conversation thread and the advanced streak.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Entries
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  true  "Username of the account"  example(ada)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.ReflectRequest  true  "Check-in payload"
//
// @Success     201  {object}  handlers.ReflectResponse      "Processed check-in"
// @Failure     400  {object}  handlers.ErrorResponse        "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse        "Internal error"
// @Router      /entries/reflect [post]
func (h *Handlers) Reflect(c *gin.Context) {
	ctx := c.Request.Context()

	var req ReflectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mood required")
		return
	}

	// Sanitize + early size cap to fail fast at the edge.
	journal := sanitizeContent(req.Journal)
	maxRunes := discoverMaxJournalRunes(h.entrySvc)
	if maxRunes > 0 && utf8.RuneCountInString(journal) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("journal too long: max %d runes", maxRunes))
		return
	}

	currentUser := userID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := idempotencyKey(c)
	if idemKey != "" {
		if db := h.entryDB(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, currentUser, c.FullPath(), idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetEntry(ctx, db, rec.EntryID, currentUser); err2 == nil {
					streak := 0
					if u, err3 := repo.GetUserByUsername(ctx, db, currentUser); err3 == nil {
						streak = u.Streak
					}
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusCreated, ReflectResponse{
						Entry:       prev,
						Reflection:  prev.Reflection,
						Streak:      streak,
						AssistantOK: rec.AssistantOK,
					})
					return
				}
			}
		}
	}

	res, err := h.entrySvc.Reflect(ctx, currentUser, services.ReflectInput{
		Mood:      req.Mood,
		MoodInput: strings.TrimSpace(req.MoodInput),
		Journal:   journal,
		Tags:      req.Tags,
		CustomTag: req.CustomTag,
	})
	if err != nil {
		switch err {
		case services.ErrInvalidMood:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mood must be one of the five labeled levels")
		case services.ErrEmptyJournal:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "journal or mood notes required")
		case services.ErrTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("journal too long: max %d runes", maxRunes))
		default:
			fail(c, http.StatusInternalServerError, ErrCodeReflectFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if db := h.entryDB(); db != nil {
			_, _ = repo.CreateIdempotency(ctx, db, currentUser, c.FullPath(), idemKey, res.Entry.ID, http.StatusCreated, res.AssistantOK, h.idemTTL)
		}
	}

	ok(c, http.StatusCreated, ReflectResponse{
		Entry:       res.Entry,
		Reflection:  res.Reflection,
		Streak:      res.Streak,
		AssistantOK: res.AssistantOK,
	})
}

// ListEntries godoc
// @ID          listEntries
// @Summary     List journal entries (paginated)
// @Description Returns a page of the user's entries, newest first. Supports mood and tag
// @Description filters plus weak ETag via If-None-Match and may return 304.
// @Tags        Entries
// @Produce     json
//
// @Param       X-User-ID      header  string  false "Username of the account"     example(ada)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       mood           query   string  false "Filter by exact mood label"  example(🙂 Good)
// @Param       tag            query   string  false "Filter by tag"               example(Work)
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListEntriesResponse
// @Header      200  {string} ETag           "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /entries [get]
func (h *Handlers) ListEntries(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)
	mood := strings.TrimSpace(c.Query("mood"))
	tag := strings.TrimSpace(c.Query("tag"))

	// ETag pre-check (best effort). Filtered views share the unfiltered tag:
	// any change to the user's history invalidates every view of it.
	if db := h.entryDB(); db != nil {
		count, maxTS, err := repo.EntriesStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"entries:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.entrySvc.ListPage(ctx, uid, mood, tag, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListEntriesResponse{
		Entries: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// DeleteEntry godoc
// @ID          deleteEntry
// @Summary     Delete a journal entry
// @Description Removes an entry owned by the current user together with its seeded
// @Description conversation thread.
// @Tags        Entries
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Username of the account"  example(ada)
// @Param       id         path    string  true  "Entry ID (UUID)"          format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Entry not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /entries/{id} [delete]
func (h *Handlers) DeleteEntry(c *gin.Context) {
	entryID := c.Param("id")
	if _, err := uuid.Parse(entryID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "entry id must be a UUID")
		return
	}

	if err := h.entrySvc.Delete(c.Request.Context(), userID(c), entryID); err != nil {
		switch err {
		case services.ErrEntryNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "entry not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	noContent(c)
}

// ExportEntries godoc
// @ID          exportEntries
// @Summary     Export journal history
// @Description Downloads the user's full history as a JSON or CSV attachment.
// @Tags        Entries
// @Produce     json
// @Produce     text/csv
//
// @Param       X-User-ID  header  string  false "Username of the account"        example(ada)
// @Param       format     query   string  false "Export format (json or csv)"    default(json)
//
// @Success     200  {string} string "Exported document"
// @Failure     400  {object} handlers.ErrorResponse "Unsupported format"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /entries/export [get]
func (h *Handlers) ExportEntries(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "json")))
	switch format {
	case "json":
		data, err := h.entrySvc.ExportJSON(ctx, uid)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
			return
		}
		c.Header("Content-Disposition", `attachment; filename="journal_export.json"`)
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	case "csv":
		data, err := h.entrySvc.ExportCSV(ctx, uid)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
			return
		}
		c.Header("Content-Disposition", `attachment; filename="journal_export.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "format must be json or csv")
	}
}

// entryDB exposes the concrete EntryService database handle for ETag and
// idempotency lookups. Returns nil when the service is a test double.
func (h *Handlers) entryDB() *gorm.DB {
	if es, ok := h.entrySvc.(*services.EntryService); ok {
		return es.DB
	}
	return nil
}

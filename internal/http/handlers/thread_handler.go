// Conversation thread HTTP handlers.
//
// This file exposes REST endpoints for per-entry conversation threads:
//   - GET  /threads                  (list summaries, paginated, ETag support)
//   - GET  /threads/{id}/messages    (full transcript, ETag support)
//   - POST /threads/{id}/messages    (append a user turn, get assistant reply)
//   - PUT  /threads/{id}/settings    (apply therapy-mode settings)
//
// Thread IDs are derived from the entry's creation timestamp ("date_time"),
// not UUIDs, so no shape validation is applied to the path parameter.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mindease/go-journal-backend/internal/domain"
	"github.com/mindease/go-journal-backend/internal/repo"
	"github.com/mindease/go-journal-backend/internal/services"
)

//
// DTOs
//

// ListThreadsResponse wraps a page of thread summaries and pagination metadata.
type ListThreadsResponse struct {
	Threads    []services.ThreadSummary `json:"threads"`
	Pagination Pagination               `json:"pagination"`
}

// ThreadMessagesResponse contains the full transcript of one thread.
type ThreadMessagesResponse struct {
	Messages []domain.ThreadMessage `json:"messages"`
}

// PostThreadMessageRequest is the JSON payload for one conversational turn.
type PostThreadMessageRequest struct {
	// Content is the user message. It must be non-empty.
	Content string `json:"content" binding:"required,min=1" example:"I keep waking up at 3am and can't fall back asleep."`
}

// PostThreadMessageResponse is the JSON envelope for a new assistant reply.
type PostThreadMessageResponse struct {
	// Message is the assistant reply created as a result of the request.
	Message *domain.ThreadMessage `json:"message"`
}

// ThreadSettingsRequest is the JSON payload for a therapy-mode settings change.
type ThreadSettingsRequest struct {
	// Style is one of the supported conversation styles.
	Style string `json:"style" binding:"required" example:"Mindfulness-Based"`
	// Length is one of the supported response lengths.
	Length string `json:"length" binding:"required" example:"Brief"`
	// FocusAreas is a non-empty subset of the supported focus areas.
	FocusAreas []string `json:"focus_areas" binding:"required,min=1" example:"Stress management,Sleep improvement"`
}

//
// Helpers
//

// discoverMaxMessageRunes inspects the concrete ThreadService for a configured
// message-length limit. If unavailable, it returns a conservative fallback.
func discoverMaxMessageRunes(threadSvc ThreadService) int {
	const fallback = 4000
	if ts, ok := threadSvc.(*services.ThreadService); ok {
		if ts.MaxMessageRunes > 0 {
			return ts.MaxMessageRunes
		}
	}
	return fallback
}

// threadDB exposes the concrete ThreadService database handle for ETag
// lookups. Returns nil when the service is a test double.
func (h *Handlers) threadDB() *gorm.DB {
	if ts, ok := h.threadSvc.(*services.ThreadService); ok {
		return ts.DB
	}
	return nil
}

//
// Handlers
//

// ListThreads godoc
// @ID          listThreads
// @Summary     List conversation threads (paginated)
// @Description Returns a page of the user's threads, newest first, each with a preview
// @Description of its first message and the message count.
// @Tags        Threads
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Username of the account"  example(ada)
// @Param       page       query   int     false "Page number"              minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"           minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListThreadsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /threads [get]
func (h *Handlers) ListThreads(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	items, total, err := h.threadSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListThreadsResponse{
		Threads: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// ListThreadMessages godoc
// @ID          listThreadMessages
// @Summary     Get a thread transcript
// @Description Returns every message of the thread in turn order, including hidden
// @Description system messages. Supports weak ETag via If-None-Match.
// @Tags        Threads
// @Produce     json
//
// @Param       X-User-ID      header  string  false "Username of the account"     example(ada)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       id             path    string  true  "Thread ID (date_time)"       example(2026-08-29_21:15)
//
// @Success     200  {object} handlers.ThreadMessagesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "Thread not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /threads/{id}/messages [get]
func (h *Handlers) ListThreadMessages(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	threadID := c.Param("id")

	// ETag pre-check (best effort).
	if db := h.threadDB(); db != nil {
		count, maxTS, err := repo.ThreadMessagesStats(ctx, db, threadID, uid)
		if err == nil && count > 0 {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"messages:%s:%d:%d"`, threadID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.threadSvc.Messages(ctx, uid, threadID)
	if err != nil {
		switch err {
		case services.ErrThreadNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "thread not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, ThreadMessagesResponse{Messages: items})
}

// PostThreadMessage godoc
// @ID          postThreadMessage
// @Summary     Send a message and get assistant reply
// @Description Appends a user turn to the thread and generates an assistant reply using
// @Description the full thread history, including any therapy-mode settings in effect.
// @Tags        Threads
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Username of the account"  example(ada)
// @Param       id         path    string  true  "Thread ID (date_time)"    example(2026-08-29_21:15)
// @Param       body       body    handlers.PostThreadMessageRequest  true  "User message payload"
//
// @Success     200  {object}  handlers.PostThreadMessageResponse  "Assistant reply"
// @Failure     400  {object}  handlers.ErrorResponse              "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse              "Thread not found"
// @Failure     500  {object}  handlers.ErrorResponse              "Internal error"
// @Router      /threads/{id}/messages [post]
func (h *Handlers) PostThreadMessage(c *gin.Context) {
	ctx := c.Request.Context()
	threadID := c.Param("id")

	var req PostThreadMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	// Sanitize + early size cap to fail fast at the edge.
	content := sanitizeContent(req.Content)
	maxRunes := discoverMaxMessageRunes(h.threadSvc)
	if maxRunes > 0 && utf8.RuneCountInString(content) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		return
	}
	if content == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	m, err := h.threadSvc.Converse(ctx, userID(c), threadID, content)
	if err != nil {
		switch err {
		case services.ErrThreadNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "thread not found")
		case services.ErrTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("content too long: max %d runes", maxRunes))
		case services.ErrEmptyMessage:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeAnswerFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, PostThreadMessageResponse{Message: m})
}

// UpdateThreadSettings godoc
// @ID          updateThreadSettings
// @Summary     Apply therapy-mode settings
// @Description Records a conversation style, response length, and focus areas on the
// @Description thread. The change takes effect from the next assistant reply.
// @Tags        Threads
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Username of the account"  example(ada)
// @Param       id         path    string  true  "Thread ID (date_time)"    example(2026-08-29_21:15)
// @Param       body       body    handlers.ThreadSettingsRequest  true  "Settings payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Unknown setting value"
// @Failure     404  {object} handlers.ErrorResponse "Thread not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /threads/{id}/settings [put]
func (h *Handlers) UpdateThreadSettings(c *gin.Context) {
	threadID := c.Param("id")

	var req ThreadSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "style, length, and focus_areas are required")
		return
	}

	err := h.threadSvc.ApplySettings(c.Request.Context(), userID(c), threadID, services.ThreadSettings{
		Style:      strings.TrimSpace(req.Style),
		Length:     strings.TrimSpace(req.Length),
		FocusAreas: req.FocusAreas,
	})
	if err != nil {
		switch err {
		case services.ErrThreadNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "thread not found")
		case services.ErrInvalidSetting:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	noContent(c)
}

// Insight and analytics HTTP handlers.
//
// This file exposes read-only endpoints over the user's journal history:
//   - GET /insights            (assistant summary of recent entries)
//   - GET /analytics/summary   (mood analytics dashboard payload)
//   - GET /prompts/gratitude   (a rotating gratitude prompt)
package handlers

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindease/go-journal-backend/internal/journal"
	"github.com/mindease/go-journal-backend/internal/services"
)

//
// DTOs
//

// InsightsResponse is the JSON envelope for a generated insight.
type InsightsResponse struct {
	// Insights is the summary text shown to the user.
	Insights string `json:"insights"`
	// AssistantOK reports whether the text came from the assistant rather
	// than a static or fallback message.
	AssistantOK bool `json:"assistant_ok"`
}

// GratitudePromptResponse carries one gratitude prompt.
type GratitudePromptResponse struct {
	Prompt string `json:"prompt" example:"What made you smile today?"`
}

//
// Handlers
//

// Insights godoc
// @ID          getInsights
// @Summary     Generate journal insights
// @Description Summarizes the user's recent entries. With fewer than three entries a
// @Description static encouragement message is returned and no generation is attempted.
// @Tags        Insights
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Username of the account"  example(ada)
//
// @Success     200  {object} handlers.InsightsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /insights [get]
func (h *Handlers) Insights(c *gin.Context) {
	text, okFlag, err := h.insightSvc.Insights(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInsightsFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, InsightsResponse{Insights: text, AssistantOK: okFlag})
}

// AnalyticsSummary godoc
// @ID          getAnalyticsSummary
// @Summary     Mood analytics roll-up
// @Description Returns the full analytics dashboard payload: totals, average mood,
// @Description streak progress, badges, trend, mood weather, tone and tag counts,
// @Description the yearly heatmap, and thread engagement.
// @Tags        Insights
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Username of the account"  example(ada)
//
// @Success     200  {object} services.AnalyticsSummary
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /analytics/summary [get]
func (h *Handlers) AnalyticsSummary(c *gin.Context) {
	summary, err := h.analyticsSvc.Summary(c.Request.Context(), userID(c))
	if err != nil {
		switch err {
		case services.ErrBadCredentials:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, summary)
}

// GratitudePrompt godoc
// @ID          getGratitudePrompt
// @Summary     Get a gratitude prompt
// @Description Returns one prompt from the rotating pool shown on the check-in view.
// @Tags        Insights
// @Produce     json
//
// @Success     200  {object} handlers.GratitudePromptResponse
// @Router      /prompts/gratitude [get]
func (h *Handlers) GratitudePrompt(c *gin.Context) {
	p := journal.GratitudePrompts[rand.Intn(len(journal.GratitudePrompts))]
	ok(c, http.StatusOK, GratitudePromptResponse{Prompt: p})
}

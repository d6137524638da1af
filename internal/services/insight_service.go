// Package services – InsightService
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mindease/go-journal-backend/internal/repo"
)

// InsightMinEntries is the number of entries required before insights are
// generated.
const InsightMinEntries = 3

// InsightNotReady is returned verbatim while the user has too few entries.
// No remote call is made in that case.
const InsightNotReady = "Keep journaling! Insights will be generated after you have at least 3 entries."

// insightWindow caps how many recent entries feed one insight request.
const insightWindow = 5

// InsightService produces multi-entry pattern observations.
type InsightService struct {
	DB        *gorm.DB
	Assistant Assistant
}

// NewInsightService constructs an InsightService.
func NewInsightService(db *gorm.DB, a Assistant) *InsightService {
	return &InsightService{DB: db, Assistant: a}
}

// Insights returns the insight text for a user. Fewer than three entries
// yields the static not-ready message; otherwise the five most recent
// journal bodies are joined with single spaces, oldest first, and sent to
// the assistant. ok is false when the text is a fallback rather than a
// generated insight.
func (s *InsightService) Insights(ctx context.Context, username string) (text string, ok bool, err error) {
	tr := otel.Tracer("services/InsightService")
	ctx, span := tr.Start(ctx, "Insights",
		trace.WithAttributes(attribute.String("user.name", username)),
	)
	defer span.End()

	total, err := repo.CountEntries(ctx, s.DB, username, "", "")
	if err != nil {
		return "", false, err
	}
	if total < InsightMinEntries {
		return InsightNotReady, false, nil
	}

	recent, err := repo.ListRecentEntries(ctx, s.DB, username, insightWindow)
	if err != nil {
		return "", false, err
	}
	// Chronological order, oldest of the window first.
	bodies := make([]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		bodies = append(bodies, recent[i].Journal)
	}

	text, ok = s.Assistant.Insights(ctx, strings.Join(bodies, " "))
	return text, ok, nil
}

// Package services – AnalyticsService
//
// This file implements AnalyticsService, the read-only roll-up behind the
// dashboard: totals, averages, streak milestones, trend and emotional
// weather, tone and tag breakdowns, the calendar heatmap, and thread
// engagement. All scoring math lives in the journal package as pure
// functions; this service only loads data and assembles the summary.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mindease/go-journal-backend/internal/journal"
	"github.com/mindease/go-journal-backend/internal/repo"
)

// TrendSummary is the 7-day direction indicator.
type TrendSummary struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
	OK   bool   `json:"ok"`
}

// ThreadEngagement summarizes conversation activity.
type ThreadEngagement struct {
	Threads              int64   `json:"threads"`
	Messages             int64   `json:"messages"`
	AvgMessagesPerThread float64 `json:"avg_messages_per_thread"`
}

// AnalyticsSummary is the full dashboard payload.
type AnalyticsSummary struct {
	TotalEntries    int64              `json:"total_entries"`
	AverageMood     float64            `json:"average_mood"`
	Streak          int                `json:"streak"`
	StreakMilestone string             `json:"streak_milestone"`
	StreakProgress  float64            `json:"streak_progress"`
	Badges          []string           `json:"badges"`
	Trend           TrendSummary       `json:"trend"`
	Weather         *journal.Weather   `json:"weather,omitempty"`
	ToneCounts      map[string]int     `json:"tone_counts"`
	TagCounts       []journal.TagCount `json:"tag_counts"`
	Heatmap         [12][31]int        `json:"heatmap"`
	HeatmapYear     int                `json:"heatmap_year"`
	Engagement      ThreadEngagement   `json:"engagement"`
}

// AnalyticsService assembles the dashboard summary for a user.
type AnalyticsService struct {
	DB *gorm.DB
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db}
}

// Summary loads the user's entries and threads and computes the dashboard
// roll-up. Weather is nil until the user has enough scores for it.
func (s *AnalyticsService) Summary(ctx context.Context, username string) (*AnalyticsSummary, error) {
	tr := otel.Tracer("services/AnalyticsService")
	ctx, span := tr.Start(ctx, "Summary",
		trace.WithAttributes(attribute.String("user.name", username)),
	)
	defer span.End()

	user, err := repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	entries, err := repo.ListEntries(ctx, s.DB, username, "", "")
	if err != nil {
		return nil, err
	}

	// Chronological scores: ListEntries returns most recent first.
	scores := make([]int, len(entries))
	for i, e := range entries {
		scores[len(entries)-1-i] = e.MoodScore
	}

	now := time.Now()
	out := &AnalyticsSummary{
		TotalEntries:    int64(len(entries)),
		AverageMood:     journal.AverageMood(scores),
		Streak:          user.Streak,
		StreakMilestone: journal.StreakMilestone(user.Streak),
		StreakProgress:  journal.StreakProgress(user.Streak),
		Badges:          journal.Badges(len(entries)),
		ToneCounts:      journal.ToneCounts(scores),
		TagCounts:       journal.TagCounts(entries),
		Heatmap:         journal.HeatmapGrid(entries, now.Year()),
		HeatmapYear:     now.Year(),
	}

	icon, text, ok := journal.Trend(scores)
	out.Trend = TrendSummary{Icon: icon, Text: text, OK: ok}

	if w, ok := journal.WeatherSummary(scores); ok {
		out.Weather = &w
	}

	threads, err := repo.CountThreads(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	msgs, err := repo.CountUserMessages(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	out.Engagement = ThreadEngagement{Threads: threads, Messages: msgs}
	if threads > 0 {
		out.Engagement.AvgMessagesPerThread = float64(msgs) / float64(threads)
	}

	return out, nil
}

package journal

import (
	"sort"

	"github.com/mindease/go-journal-backend/internal/domain"
)

// Badge thresholds by total entry count.
var badgeLevels = []struct {
	Min  int
	Name string
}{
	{1, "📘 First Entry"},
	{10, "📗 Consistency Hero"},
	{25, "📕 Reflection Pro"},
	{50, "📙 Journaling Legend"},
}

// Badges returns the achievement badges unlocked at the given entry count,
// lowest first.
func Badges(entryCount int) []string {
	out := []string{}
	for _, b := range badgeLevels {
		if entryCount >= b.Min {
			out = append(out, b.Name)
		}
	}
	return out
}

// StreakMilestone maps the current streak to its progress milestone message.
func StreakMilestone(streak int) string {
	switch {
	case streak >= 30:
		return "🏅 30-Day Mind Mastery! Amazing consistency."
	case streak >= 14:
		return "🥈 2-Week Warrior! Keep going."
	case streak >= 7:
		return "🎖️ 7-Day Streak! You're on a roll."
	case streak >= 3:
		return "💪 3-Day Start Strong! You've begun a great habit."
	default:
		return "🌱 Start your streak and watch your growth!"
	}
}

// StreakProgress returns the streak as a fraction of the 30-day milestone,
// capped at 1.
func StreakProgress(streak int) float64 {
	p := float64(streak) / 30.0
	if p > 1 {
		return 1
	}
	return p
}

// Weather is the "emotional weather" roll-up over recent mood scores.
type Weather struct {
	Emoji string `json:"emoji"`
	Mood  string `json:"mood"`
	Trend string `json:"trend"`
}

// WeatherSummary summarizes the last seven scores. It reports ok=false when
// fewer than five scores exist, in which case the caller shows a
// not-enough-data message instead.
func WeatherSummary(scores []int) (Weather, bool) {
	if len(scores) < 5 {
		return Weather{}, false
	}
	recent := scores
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}

	var w Weather
	switch {
	case recent[len(recent)-1] > recent[0]:
		w.Trend = "↗️ Improving"
	case recent[len(recent)-1] < recent[0]:
		w.Trend = "↘️ Declining"
	default:
		w.Trend = "→ Stable"
	}

	sum := 0
	for _, s := range recent {
		sum += s
	}
	mean := float64(sum) / float64(len(recent))
	switch {
	case mean > 7:
		w.Emoji, w.Mood = "☀️", "Mostly Positive"
	case mean >= 5:
		w.Emoji, w.Mood = "⛅", "Balanced with Some Ups & Downs"
	default:
		w.Emoji, w.Mood = "🌧️", "Low Mood Period"
	}
	return w, true
}

// Trend compares the first and last score of the last seven entries.
// ok is false when fewer than two entries exist.
func Trend(scores []int) (icon, text string, ok bool) {
	recent := scores
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}
	if len(recent) < 2 {
		return "→", "Not enough data", false
	}
	delta := recent[len(recent)-1] - recent[0]
	switch {
	case delta > 0:
		return "↗️", "Improving", true
	case delta < 0:
		return "↘️", "Declining", true
	default:
		return "→", "Stable", true
	}
}

// AverageMood returns the mean mood score, or 0 for no entries.
func AverageMood(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// TagCount pairs a tag with its usage count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts tallies tag usage across entries, most used first; ties break
// alphabetically so the order is deterministic.
func TagCounts(entries []domain.Entry) []TagCount {
	counts := map[string]int{}
	for _, e := range entries {
		for _, t := range e.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// ToneBucket labels a score range for the mood-tone breakdown.
func ToneBucket(score int) string {
	switch {
	case score >= 7:
		return "Positive"
	case score >= 4:
		return "Neutral"
	default:
		return "Negative"
	}
}

// ToneCounts buckets entries by tone.
func ToneCounts(scores []int) map[string]int {
	out := map[string]int{}
	for _, s := range scores {
		out[ToneBucket(s)]++
	}
	return out
}

// HeatmapGrid builds the month-by-day mood grid for one calendar year:
// 12 rows of 31 cells, zero meaning no entry. Later entries on the same day
// overwrite earlier ones, matching the original calendar.
func HeatmapGrid(entries []domain.Entry, year int) [12][31]int {
	var grid [12][31]int
	for _, e := range entries {
		if len(e.Date) != 10 || e.Date[:4] != formatYear(year) {
			continue
		}
		month := atoi2(e.Date[5:7])
		day := atoi2(e.Date[8:10])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		grid[month-1][day-1] = e.MoodScore
	}
	return grid
}

func formatYear(y int) string {
	b := [4]byte{}
	for i := 3; i >= 0; i-- {
		b[i] = byte('0' + y%10)
		y /= 10
	}
	return string(b[:])
}

func atoi2(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// GratitudePrompts is the rotating prompt pool shown on the check-in view.
var GratitudePrompts = []string{
	"What made you smile today?",
	"Something you're grateful for this week:",
	"Who helped you recently and how?",
	"Describe a small win today.",
	"What personal quality are you thankful for in yourself?",
}

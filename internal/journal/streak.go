package journal

import "time"

// DateLayout is the wall-clock date format used throughout the journal.
// Dates are local; the product does no timezone handling.
const DateLayout = "2006-01-02"

// StreakState is the persisted streak bookkeeping for one user.
type StreakState struct {
	// Streak is the current consecutive-day count (>= 0).
	Streak int
	// LastEntryDate is the "2006-01-02" of the last evaluation, or "" if the
	// user has never journaled.
	LastEntryDate string
}

// Advance applies the streak transition rule for an evaluation happening on
// the local date of now:
//
//   - no prior date        -> streak = 1
//   - gap of exactly 1 day -> streak + 1
//   - gap > 1 day          -> streak resets to 1
//   - same day             -> streak unchanged
//
// LastEntryDate is set to today in every case, including the same-day one.
// The rule runs once per entry submission, and once more at session start
// when the stored date is not today.
func Advance(s StreakState, now time.Time) StreakState {
	today := now.Format(DateLayout)
	if s.LastEntryDate == "" {
		return StreakState{Streak: 1, LastEntryDate: today}
	}

	last, err := time.ParseInLocation(DateLayout, s.LastEntryDate, now.Location())
	if err != nil {
		// A corrupt stored date is treated like a first entry.
		return StreakState{Streak: 1, LastEntryDate: today}
	}

	days := DaysBetween(last, now)

	next := s
	switch {
	case days == 1:
		next.Streak++
	case days > 1:
		next.Streak = 1
	}
	next.LastEntryDate = today
	return next
}

// DaysBetween returns the calendar-day difference between the local dates of
// from and to. Both are reduced to their date components before subtracting,
// so a DST transition inside the span cannot shift the count by an hour's
// worth of wall clock.
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

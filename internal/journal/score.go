// Package journal holds the pure computation rules of the product: mood
// scoring, streak bookkeeping, and the aggregate figures behind the
// analytics view. Nothing in this package touches HTTP, storage, or the
// remote assistant; every function takes explicit inputs and returns a
// value, so the rules are testable in isolation.
package journal

import (
	"math"
	"strconv"
	"strings"
)

// DefaultTextScore is used whenever the remote sentiment reply cannot be
// parsed or the call fails outright.
const DefaultTextScore = 5

// anchorScores maps the five check-in labels to their fixed anchor values.
var anchorScores = map[string]int{
	"😔 Very Low": 2,
	"😟 Low":      4,
	"😐 Neutral":  5,
	"🙂 Good":     7,
	"😊 Great":    9,
}

// AnchorScore returns the fixed score for a mood label, or 5 for an
// unrecognized label.
func AnchorScore(mood string) int {
	if s, ok := anchorScores[mood]; ok {
		return s
	}
	return 5
}

// BlendScore combines the anchor with the text-derived sentiment score:
// round(0.7*anchor + 0.3*text), half away from zero, clamped to [1,10].
// Callers must skip the blend entirely (and use the anchor unmodified)
// when there is no journal text to analyze.
func BlendScore(anchor, textScore int) int {
	blended := int(math.Round(0.7*float64(anchor) + 0.3*float64(textScore)))
	return Clamp(blended, 1, 10)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseTextScore extracts the sentiment score from a raw classifier reply.
//
// All non-digit characters are stripped and the remaining digits are
// concatenated before parsing, so a verbose reply like "Score: 8/10" parses
// as 810, not 8. This mirrors the shipped behavior exactly; whether
// first-number extraction was intended is an open product decision, so the
// quirk is preserved rather than fixed. A reply containing no digits, or
// digits that overflow int, falls back to DefaultTextScore.
func ParseTextScore(reply string) int {
	var b strings.Builder
	for _, r := range reply {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultTextScore
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return DefaultTextScore
	}
	return n
}

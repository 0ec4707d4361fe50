package recs

import (
	"fmt"
	"math"
	"time"

	"github.com/eventally/eventally/internal/domain/event"
)

// scoring weights

const (
	affinityBonus     = 50
	popularityPerHead = 2
	popularityCap     = 30
	nearCapacityBonus = 10
	recencyBonus      = 5
)

const (
	// raw attendee count above which an event reads as "trending"
	trendingThreshold = 10
	// fill ratio above which an event reads as "almost full"
	nearCapacityRatio = 0.7
	recencyWindow     = 7 * 24 * time.Hour
	// a maximal plausible score maps close to 100
	scoreNormalizer    = 90
	maxMatchPercentage = 99
)

// ScoredCandidate is transient output, never persisted.
type ScoredCandidate struct {
	Event           event.Event `json:"event"`
	Score           int         `json:"score"`
	MatchPercentage int         `json:"matchPercentage"`
	Reason          string      `json:"reason"`
}

// Score assigns a weighted heuristic score and a display reason to one
// candidate event. All applicable terms accumulate; the reason checks run
// in a fixed sequence and a later truthy check overwrites an earlier one,
// so "Almost full" beats "Trending" beats the affinity reason.
func Score(e event.Event, favorite *event.Category, now time.Time) ScoredCandidate {
	score := 0
	reason := "Popular event"

	if favorite != nil && e.Category == *favorite {
		score += affinityBonus
		reason = fmt.Sprintf("You like %s events", e.Category)
	}

	popularity := e.CurrentAttendees * popularityPerHead
	if popularity > popularityCap {
		popularity = popularityCap
	}
	score += popularity

	if e.CurrentAttendees > trendingThreshold {
		reason = "Trending event"
	}

	if e.MaxAttendees != nil && *e.MaxAttendees > 0 {
		fill := float64(e.CurrentAttendees) / float64(*e.MaxAttendees)
		if fill > nearCapacityRatio {
			score += nearCapacityBonus
			reason = "Almost full - popular event"
		}
	}

	if now.Sub(e.CreatedAt) < recencyWindow {
		score += recencyBonus
	}

	return ScoredCandidate{
		Event:           e,
		Score:           score,
		MatchPercentage: matchPercentage(score),
		Reason:          reason,
	}
}

// matchPercentage converts a raw score into a bounded [0,99] display value.
func matchPercentage(score int) int {
	pct := int(math.Round(float64(score) / scoreNormalizer * 100))

	if pct > maxMatchPercentage {
		pct = maxMatchPercentage
	}

	if pct < 0 {
		pct = 0
	}

	return pct
}

package recs

import (
	"context"
	"log/slog"
	"time"

	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/observability"
)

// how many upcoming events we pull in as the scoring pool per request
const candidatePool = 50

// Service is the recommendation core. It is stateless: every call reads a
// fresh snapshot through the injected readers, scores it in memory and
// throws the intermediate state away. Store failures degrade to empty
// results, never to an error surfaced at the caller.
type Service struct {
	events EventReader
	regs   RegistrationReader
	log    *slog.Logger
	prom   *observability.Prom
}

func NewService(events EventReader, regs RegistrationReader, log *slog.Logger, prom *observability.Prom) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		events: events,
		regs:   regs,
		log:    log,
		prom:   prom,
	}
}

// RecommendationsForUser scores upcoming events for the user and returns the
// top results, at most limit entries. Events the user already registered for
// and the caller-supplied excludeIDs (saved / already shown events) never
// appear in the output.
func (s *Service) RecommendationsForUser(ctx context.Context, userID string, limit int, excludeIDs []string) []ScoredCandidate {
	start := time.Now()
	now := time.Now().UTC()

	regs, err := s.regs.ListByUser(ctx, userID)

	if err != nil {
		// missing history must not kill the page, score without affinity
		s.log.Warn("recommendations: history lookup failed, treating as empty", "user_id", userID, "err", err)
		regs = nil
	}

	favorite := s.favoriteFromHistory(ctx, regs)

	exclude := make([]string, 0, len(excludeIDs)+len(regs))
	exclude = append(exclude, excludeIDs...)
	for _, r := range regs {
		exclude = append(exclude, r.EventID)
	}

	candidates, err := s.events.Upcoming(ctx, event.UpcomingFilter{
		From:       startOfToday(now),
		ExcludeIDs: exclude,
		Limit:      candidatePool,
	})

	if err != nil {
		s.log.Error("recommendations: candidate lookup failed", "user_id", userID, "err", err)
		s.observe("recommendations", start, 0)
		return []ScoredCandidate{}
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, e := range candidates {
		scored = append(scored, Score(e, favorite, now))
	}

	ranked := Rank(scored, limit)
	s.observe("recommendations", start, len(ranked))

	return ranked
}

// SimilarEvents returns up to limit upcoming events resembling the source
// event, preferring the same category. When the same-category pool is too
// small the result is replaced wholesale by globally popular events; the
// returned flag reports whether every result shares the source category, so
// the caller can pick its display text.
func (s *Service) SimilarEvents(ctx context.Context, sourceID string, category event.Category, limit int) ([]event.Event, bool) {
	start := time.Now()

	if limit <= 0 {
		limit = DefaultLimit
	}

	filter := event.UpcomingFilter{
		From:             startOfToday(time.Now().UTC()),
		Category:         &category,
		ExcludeIDs:       []string{sourceID},
		OrderByAttendees: true,
		Limit:            limit,
	}

	same, err := s.events.Upcoming(ctx, filter)

	if err != nil {
		s.log.Error("similar events: lookup failed", "event_id", sourceID, "err", err)
		s.observe("similar", start, 0)
		return []event.Event{}, false
	}

	if len(same) >= limit {
		s.observe("similar", start, len(same))
		return same, true
	}

	// not enough in this category: replace, do not top up
	filter.Category = nil

	popular, err := s.events.Upcoming(ctx, filter)

	if err != nil {
		s.log.Error("similar events: fallback lookup failed", "event_id", sourceID, "err", err)
		s.observe("similar", start, 0)
		return []event.Event{}, false
	}

	sameCategory := true
	for _, e := range popular {
		if e.Category != category {
			sameCategory = false
			break
		}
	}

	s.observe("similar", start, len(popular))

	return popular, sameCategory
}

// TrendingEvents is the degenerate no-history path used for guests: upcoming
// events ordered by attendee count descending, no scoring.
func (s *Service) TrendingEvents(ctx context.Context, limit int, excludeIDs []string) []event.Event {
	start := time.Now()

	if limit <= 0 {
		limit = DefaultLimit
	}

	events, err := s.events.Upcoming(ctx, event.UpcomingFilter{
		From:             startOfToday(time.Now().UTC()),
		ExcludeIDs:       excludeIDs,
		OrderByAttendees: true,
		Limit:            limit,
	})

	if err != nil {
		s.log.Error("trending events: lookup failed", "err", err)
		s.observe("trending", start, 0)
		return []event.Event{}
	}

	s.observe("trending", start, len(events))

	return events
}

func (s *Service) observe(op string, start time.Time, results int) {
	if s.prom == nil {
		return
	}

	s.prom.ObserveRecs(op, time.Since(start), results)
}

// startOfToday keeps the "date >= today" filter on a calendar-day boundary.
func startOfToday(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

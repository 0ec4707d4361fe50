package recs

import (
	"context"

	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/domain/registration"
)

// FavoriteCategory derives the user's favorite category from their
// registration history: the category with the strictly highest registration
// count, ties broken by whichever category reached that count first in
// registration order. Returns nil for an empty history, and fails soft on
// lookup errors because recommendations must never hard-fail over history.
func (s *Service) FavoriteCategory(ctx context.Context, userID string) *event.Category {
	regs, err := s.regs.ListByUser(ctx, userID)

	if err != nil {
		s.log.Warn("favorite category: registration lookup failed, treating history as empty", "user_id", userID, "err", err)
		return nil
	}

	return s.favoriteFromHistory(ctx, regs)
}

func (s *Service) favoriteFromHistory(ctx context.Context, regs []registration.Registration) *event.Category {
	if len(regs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.EventID)
	}

	events, err := s.events.GetByIDs(ctx, ids)

	if err != nil {
		s.log.Warn("favorite category: event lookup failed, treating history as empty", "err", err)
		return nil
	}

	categoryByID := make(map[string]event.Category, len(events))
	for _, e := range events {
		categoryByID[e.ID] = e.Category
	}

	counts := make(map[event.Category]int, len(events))

	var favorite *event.Category
	best := 0

	// walk registrations in order so the first category to reach the
	// winning count takes ties
	for _, r := range regs {
		cat, ok := categoryByID[r.EventID]

		if !ok {
			continue
		}

		counts[cat]++

		if counts[cat] > best {
			best = counts[cat]
			c := cat
			favorite = &c
		}
	}

	return favorite
}

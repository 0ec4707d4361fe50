package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/domain/registration"
	"github.com/google/uuid"
)

// Store is an in-memory stand-in for the postgres repos. It implements the
// recommendation core's reader interfaces so tests (and dev mode) can run
// without a database.
type Store struct {
	mu            sync.RWMutex
	events        map[string]event.Event
	registrations []registration.Registration
}

func NewStore() *Store {
	return &Store{
		events: make(map[string]event.Event),
	}
}

func (s *Store) AddEvent(e event.Event) event.Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.events[e.ID] = e
	s.mu.Unlock()

	return e
}

func (s *Store) AddRegistration(userID, eventID string) registration.Registration {
	r := registration.NewFromCreateRequest(registration.CreateRegistrationRequest{
		EventID: eventID,
		UserID:  userID,
	})

	s.mu.Lock()
	s.registrations = append(s.registrations, r)
	s.mu.Unlock()

	return r
}

func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]event.Event, 0, len(ids))

	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			out = append(out, e)
		}
	}

	return out, nil
}

func (s *Store) Upcoming(ctx context.Context, filter event.UpcomingFilter) ([]event.Event, error) {
	excluded := make(map[string]struct{}, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	s.mu.RLock()

	out := make([]event.Event, 0, len(s.events))

	for _, e := range s.events {
		if e.Date.Before(filter.From) {
			continue
		}
		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}
		if _, skip := excluded[e.ID]; skip {
			continue
		}
		out = append(out, e)
	}

	s.mu.RUnlock()

	// match the postgres ordering so both stores behave the same
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		if filter.OrderByAttendees && a.CurrentAttendees != b.CurrentAttendees {
			return a.CurrentAttendees > b.CurrentAttendees
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]registration.Registration, 0)

	for _, r := range s.registrations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}

	return out, nil
}

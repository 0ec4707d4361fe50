package recs

import (
	"context"

	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/domain/registration"
)

// Keep these interfaces small so tests can fake them easily.

type EventReader interface {
	Upcoming(ctx context.Context, filter event.UpcomingFilter) ([]event.Event, error)
	GetByIDs(ctx context.Context, ids []string) ([]event.Event, error)
}

type RegistrationReader interface {
	ListByUser(ctx context.Context, userID string) ([]registration.Registration, error)
}

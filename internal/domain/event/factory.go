package event

import (
	"time"

	"github.com/google/uuid"
)

// A factory to build an Event from the incoming DTO

func NewFromCreateRequest(req CreateEventRequest) Event {
	now := time.Now().UTC()
	return Event{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		Category:         req.Category,
		Date:             req.Date,
		MaxAttendees:     req.MaxAttendees,
		CurrentAttendees: 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

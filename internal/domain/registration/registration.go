package registration

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// if you are already registered.
var ErrAlreadyRegistered = errors.New("registration already exists")

// error if event is full
var ErrEventFull = errors.New("event is full")
var ErrNotFound = errors.New("registration not found")

type CreateRegistrationRequest struct {
	EventID string `json:"-"`
	UserID  string `json:"-"`
}

// A factory to build a Registration from the incoming DTO

func NewFromCreateRequest(req CreateRegistrationRequest) Registration {
	return Registration{
		ID:        uuid.NewString(),
		EventID:   req.EventID,
		UserID:    req.UserID,
		CreatedAt: time.Now().UTC(),
	}
}

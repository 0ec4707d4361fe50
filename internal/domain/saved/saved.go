package saved

import (
	"errors"
	"time"
)

// SavedEvent is a user's bookmark on an event. The saved-id list doubles
// as the exclude list when building recommendations.
type SavedEvent struct {
	UserID  string    `json:"userId"`
	EventID string    `json:"eventId"`
	SavedAt time.Time `json:"savedAt"`
}

var ErrAlreadySaved = errors.New("event already saved")
var ErrNotFound = errors.New("saved event not found")

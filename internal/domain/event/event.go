package event

import (
	"errors"
	"time"
)

// Category is the fixed set of event categories.
type Category string

const (
	CategoryTechnology    Category = "Technology"
	CategoryBusiness      Category = "Business"
	CategoryEntertainment Category = "Entertainment"
	CategorySports        Category = "Sports"
	CategoryArt           Category = "Art"
	CategoryFood          Category = "Food"
	CategoryEducation     Category = "Education"
	CategoryOther         Category = "Other"
)

var Categories = []Category{
	CategoryTechnology,
	CategoryBusiness,
	CategoryEntertainment,
	CategorySports,
	CategoryArt,
	CategoryFood,
	CategoryEducation,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Category    Category  `json:"category"`
	Date        time.Time `json:"date"`
	// nil means unlimited capacity
	MaxAttendees     *int      `json:"maxAttendees,omitempty"`
	CurrentAttendees int       `json:"currentAttendees"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// with pointers if optional, it will be nil
type ListEventsFilter struct {
	Category *Category
	From     *time.Time
	To       *time.Time
	Limit    int
}

// UpcomingFilter is the read shape the recommendation core queries with:
// events dated on or after From, minus ExcludeIDs, optionally a single
// category, ordered by attendee count descending or by date ascending.
type UpcomingFilter struct {
	From             time.Time
	Category         *Category
	ExcludeIDs       []string
	OrderByAttendees bool
	Limit            int
}

var ErrNotFound = errors.New("event not found")

type CreateEventRequest struct {
	Title        string    `json:"title" binding:"required,min=3,max=120"`
	Description  string    `json:"description" binding:"omitempty,max=1000"`
	Location     string    `json:"location" binding:"omitempty,min=2,max=160"`
	Category     Category  `json:"category" binding:"required,oneof=Technology Business Entertainment Sports Art Food Education Other"`
	Date         time.Time `json:"date" binding:"required"`
	MaxAttendees *int      `json:"maxAttendees" binding:"omitempty,min=1,max=50000"`
}

// a full update payload, might switch to a patch which optionally provides means for partial updates.
type UpdateEventRequest struct {
	Title        string    `json:"title" binding:"required,min=3,max=120"`
	Description  string    `json:"description" binding:"omitempty,max=1000"`
	Location     string    `json:"location" binding:"omitempty,min=2,max=160"`
	Category     Category  `json:"category" binding:"required,oneof=Technology Business Entertainment Sports Art Food Education Other"`
	Date         time.Time `json:"date" binding:"required"`
	MaxAttendees *int      `json:"maxAttendees" binding:"omitempty,min=1,max=50000"`
}

package calendar

import (
	"net/url"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/eventally/eventally/internal/domain/event"
)

// events carry a date but no duration, so exports assume a fixed block
const defaultEventDuration = 2 * time.Hour

const googleRenderURL = "https://calendar.google.com/calendar/render"

// ICS renders a single event as an RFC 5545 calendar payload suitable for
// an "Add to calendar" download.
func ICS(e event.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Eventally//Event Calendar//EN")

	ve := cal.AddEvent(e.ID + "@eventally")
	ve.SetCreatedTime(e.CreatedAt)
	ve.SetDtStampTime(e.UpdatedAt)
	ve.SetModifiedAt(e.UpdatedAt)
	ve.SetStartAt(e.Date.UTC())
	ve.SetEndAt(e.Date.UTC().Add(defaultEventDuration))
	ve.SetSummary(e.Title)

	if e.Description != "" {
		ve.SetDescription(e.Description)
	}

	if e.Location != "" {
		ve.SetLocation(e.Location)
	}

	return cal.Serialize()
}

// GoogleCalendarLink builds a prefilled Google Calendar "add event" URL.
func GoogleCalendarLink(e event.Event) string {
	start := e.Date.UTC()
	end := start.Add(defaultEventDuration)

	const stamp = "20060102T150405Z"

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", e.Title)
	q.Set("dates", start.Format(stamp)+"/"+end.Format(stamp))

	if e.Description != "" {
		q.Set("details", e.Description)
	}

	if e.Location != "" {
		q.Set("location", e.Location)
	}

	return googleRenderURL + "?" + q.Encode()
}

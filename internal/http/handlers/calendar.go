package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventally/eventally/internal/calendar"
	"github.com/eventally/eventally/internal/config"
	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/utils"
	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	events EventGetter
}

func NewCalendarHandler(events EventGetter) *CalendarHandler {
	return &CalendarHandler{events: events}
}

// DownloadICS serves the event as a .ics attachment.
func (h *CalendarHandler) DownloadICS(ctx *gin.Context) {
	e, ok := h.fetchEvent(ctx)

	if !ok {
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="event-`+e.ID+`.ics"`)
	ctx.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.ICS(e)))
}

func (h *CalendarHandler) GoogleCalendarLink(ctx *gin.Context) {
	e, ok := h.fetchEvent(ctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"url": calendar.GoogleCalendarLink(e)})
}

func (h *CalendarHandler) fetchEvent(ctx *gin.Context) (event.Event, bool) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return event.Event{}, false
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.events.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return event.Event{}, false
		}
		RespondInternal(ctx, "Could not fetch event")
		return event.Event{}, false
	}

	return e, true
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eventally/eventally/internal/cache"
	"github.com/eventally/eventally/internal/config"
	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// first-page sentinel for keyset pagination
	zeroUUID = "00000000-0000-0000-0000-000000000000"
)

type EventsRepository interface {
	Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	ListEventsCursor(ctx context.Context, filter event.ListEventsFilter, after utils.EventCursor) ([]event.Event, *string, bool, error)
	Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error)
	Delete(ctx context.Context, id string) error
}

type EventsHandler struct {
	repo  EventsRepository
	cache *cache.Cache
}

func NewEventsHandler(repo EventsRepository) *EventsHandler {
	return &EventsHandler{repo: repo}
}

func NewEventsHandlerWithCache(repo EventsRepository, c *cache.Cache) *EventsHandler {
	return &EventsHandler{repo: repo, cache: c}
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	var req event.CreateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create event")
		return
	}

	if h.cache != nil {
		// list responses are stale now
		h.cache.Clear()
	}

	ctx.JSON(http.StatusCreated, created)
}

type listEventsResponse struct {
	Items      []event.Event `json:"items"`
	Count      int           `json:"count"`
	NextCursor *string       `json:"nextCursor,omitempty"`
	HasMore    bool          `json:"hasMore"`
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	filter, ok := parseListFilter(ctx)

	if !ok {
		return
	}

	after := utils.EventCursor{Date: time.Unix(0, 0).UTC(), ID: zeroUUID}

	if raw := ctx.Query("cursor"); raw != "" {
		decoded, err := utils.DecodeEventCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", nil)
			return
		}

		after = decoded
	}

	key := listCacheKey(filter, after)

	if h.cache != nil {
		if cached, hit := h.cache.Get(key); hit {
			if resp, castOK := cached.(listEventsResponse); castOK {
				RespondJSONWithETag(ctx, http.StatusOK, resp)
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, nextCursor, hasMore, err := h.repo.ListEventsCursor(cctx, filter, after)

	if err != nil {
		RespondInternal(ctx, "Could not list events")
		return
	}

	resp := listEventsResponse{
		Items:      items,
		Count:      len(items),
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}

	if h.cache != nil {
		h.cache.Set(key, resp)
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

func (h *EventsHandler) GetEventById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not fetch event")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	var req event.UpdateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not update event")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not delete event")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.Status(http.StatusNoContent)
}

func parseListFilter(ctx *gin.Context) (event.ListEventsFilter, bool) {
	filter := event.ListEventsFilter{Limit: defaultListLimit}

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n <= 0 {
			RespondBadRequest(ctx, "limit must be a positive integer", nil)
			return filter, false
		}

		if n > maxListLimit {
			n = maxListLimit
		}

		filter.Limit = n
	}

	if raw := ctx.Query("category"); raw != "" {
		cat := event.Category(raw)

		if !cat.Valid() {
			RespondBadRequest(ctx, "unknown category", nil)
			return filter, false
		}

		filter.Category = &cat
	}

	if raw := ctx.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)

		if err != nil {
			RespondBadRequest(ctx, "from must be RFC3339", nil)
			return filter, false
		}

		filter.From = &t
	}

	if raw := ctx.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)

		if err != nil {
			RespondBadRequest(ctx, "to must be RFC3339", nil)
			return filter, false
		}

		filter.To = &t
	}

	return filter, true
}

func listCacheKey(filter event.ListEventsFilter, after utils.EventCursor) string {
	c := ""
	if filter.Category != nil {
		c = string(*filter.Category)
	}
	f := ""
	if filter.From != nil {
		f = filter.From.UTC().Format(time.RFC3339Nano)
	}
	t := ""
	if filter.To != nil {
		t = filter.To.UTC().Format(time.RFC3339Nano)
	}

	return "events:list:v1:limit=" + strconv.Itoa(filter.Limit) +
		":category=" + c +
		":from=" + f +
		":to=" + t +
		":after=" + after.Date.UTC().Format(time.RFC3339Nano) + "/" + after.ID
}

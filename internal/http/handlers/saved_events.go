package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eventally/eventally/internal/config"
	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/domain/saved"
	"github.com/eventally/eventally/internal/http/middlewares"
	"github.com/eventally/eventally/internal/utils"
	"github.com/gin-gonic/gin"
)

type SavedEventsRepository interface {
	Save(ctx context.Context, userID, eventID string) (saved.SavedEvent, error)
	Unsave(ctx context.Context, userID, eventID string) error
	ListByUser(ctx context.Context, userID string) ([]saved.SavedEvent, error)
}

type SavedEventsHandler struct {
	repo SavedEventsRepository
}

func NewSavedEventsHandler(repo SavedEventsRepository) *SavedEventsHandler {
	return &SavedEventsHandler{repo: repo}
}

func (h *SavedEventsHandler) SaveEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventId")

	if !utils.IsUUID(eventID) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.Save(cctx, userID, eventID)

	if err != nil {
		switch {
		case errors.Is(err, saved.ErrAlreadySaved):
			RespondConflict(ctx, "already_saved", "Event already saved")
		case errors.Is(err, event.ErrNotFound):
			RespondNotFound(ctx, "Event not found")
		default:
			RespondInternal(ctx, "Could not save event")
		}
		return
	}

	ctx.JSON(http.StatusCreated, s)
}

func (h *SavedEventsHandler) UnsaveEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventId")

	if !utils.IsUUID(eventID) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Unsave(cctx, userID, eventID)

	if err != nil {
		if errors.Is(err, saved.ErrNotFound) {
			RespondNotFound(ctx, "Saved event not found")
			return
		}
		RespondInternal(ctx, "Could not unsave event")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *SavedEventsHandler) ListSavedEvents(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list saved events")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

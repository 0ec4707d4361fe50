package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eventally/eventally/internal/config"
	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/domain/registration"
	"github.com/eventally/eventally/internal/http/middlewares"
	"github.com/eventally/eventally/internal/utils"
	"github.com/gin-gonic/gin"
)

type RegistrationsRepository interface {
	Create(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]registration.Registration, error)
	GetByID(ctx context.Context, eventID, registrationID string) (registration.Registration, error)
	Delete(ctx context.Context, eventID, registrationID string) error
}

type RegistrationsHandler struct {
	repo RegistrationsRepository
}

func NewRegistrationsHandler(repo RegistrationsRepository) *RegistrationsHandler {
	return &RegistrationsHandler{repo: repo}
}

func (h *RegistrationsHandler) Register(ctx *gin.Context) {
	eventID := ctx.Param("id")

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

	reg, err := h.repo.Create(cctx, registration.CreateRegistrationRequest{
		EventID: eventID,
		UserID:  userID,
	})

	if err != nil {
		switch {
		case errors.Is(err, event.ErrNotFound):
			RespondNotFound(ctx, "Event not found")
		case errors.Is(err, registration.ErrAlreadyRegistered):
			RespondConflict(ctx, "already_registered", "Already registered for this event")
		case errors.Is(err, registration.ErrEventFull):
			RespondConflict(ctx, "event_full", "Event is at capacity")
		default:
			RespondInternal(ctx, "Could not register for event")
		}
		return
	}

	ctx.JSON(http.StatusCreated, reg)
}

func (h *RegistrationsHandler) ListForEvent(ctx *gin.Context) {
	eventID := ctx.Param("id")

	if !utils.IsUUID(eventID) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	regs, err := h.repo.ListByEvent(cctx, eventID)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not list registrations")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": regs,
		"count": len(regs),
	})
}

// Cancel lets a user drop their own registration only.
func (h *RegistrationsHandler) Cancel(ctx *gin.Context) {
	eventID := ctx.Param("id")
	registrationID := ctx.Param("registrationId")

	if !utils.IsUUID(eventID) || !utils.IsUUID(registrationID) {
		RespondBadRequest(ctx, "ids must be valid UUIDs", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	reg, err := h.repo.GetByID(cctx, eventID, registrationID)

	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			RespondNotFound(ctx, "Registration not found")
			return
		}
		RespondInternal(ctx, "Could not cancel registration")
		return
	}

	if reg.UserID != userID {
		// do not leak existence of someone else's registration
		RespondNotFound(ctx, "Registration not found")
		return
	}

	err = h.repo.Delete(cctx, eventID, registrationID)

	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			RespondNotFound(ctx, "Registration not found")
			return
		}
		RespondInternal(ctx, "Could not cancel registration")
		return
	}

	ctx.Status(http.StatusNoContent)
}

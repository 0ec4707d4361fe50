package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/domain/registration"
	"github.com/eventally/eventally/internal/http/handlers"
)

type fakeRegistrationsRepo struct {
	createFn      func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error)
	listByEventFn func(ctx context.Context, eventID string) ([]registration.Registration, error)
	getFn         func(ctx context.Context, eventID, registrationID string) (registration.Registration, error)
	deleteFn      func(ctx context.Context, eventID, registrationID string) error
}

func (f *fakeRegistrationsRepo) Create(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return registration.Registration{}, nil
}

func (f *fakeRegistrationsRepo) ListByEvent(ctx context.Context, eventID string) ([]registration.Registration, error) {
	if f.listByEventFn != nil {
		return f.listByEventFn(ctx, eventID)
	}
	return []registration.Registration{}, nil
}

func (f *fakeRegistrationsRepo) GetByID(ctx context.Context, eventID, registrationID string) (registration.Registration, error) {
	if f.getFn != nil {
		return f.getFn(ctx, eventID, registrationID)
	}
	return registration.Registration{}, nil
}

func (f *fakeRegistrationsRepo) Delete(ctx context.Context, eventID, registrationID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, eventID, registrationID)
	}
	return nil
}

func TestRegisterHandler(t *testing.T) {
	now := time.Now().UTC()
	eventID := newUUID()
	userID := newUUID()

	tests := []struct {
		name           string
		userID         string
		url            string
		repoSetup      func(*fakeRegistrationsRepo)
		wantStatusCode int
	}{
		{
			name:   "success",
			userID: userID,
			url:    "/events/" + eventID + "/register",
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.createFn = func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
					return registration.Registration{
						ID:        newUUID(),
						EventID:   req.EventID,
						UserID:    req.UserID,
						CreatedAt: now,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "unauthorized_without_identity",
			userID:         "",
			url:            "/events/" + eventID + "/register",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid_event_id",
			userID:         userID,
			url:            "/events/not-a-uuid/register",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:   "event_not_found",
			userID: userID,
			url:    "/events/" + eventID + "/register",
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.createFn = func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
					return registration.Registration{}, event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:   "already_registered",
			userID: userID,
			url:    "/events/" + eventID + "/register",
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.createFn = func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
					return registration.Registration{}, registration.ErrAlreadyRegistered
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name:   "event_full",
			userID: userID,
			url:    "/events/" + eventID + "/register",
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.createFn = func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
					return registration.Registration{}, registration.ErrEventFull
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name:   "repo_error",
			userID: userID,
			url:    "/events/" + eventID + "/register",
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.createFn = func(ctx context.Context, req registration.CreateRegistrationRequest) (registration.Registration, error) {
					return registration.Registration{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeRegistrationsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewRegistrationsHandler(fakeRepo)

			r := setupAuthedRouter(http.MethodPost, "/events/:id/register", tt.userID, h.Register)

			req := httptest.NewRequest(http.MethodPost, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCancelRegistrationHandler(t *testing.T) {
	now := time.Now().UTC()
	eventID := newUUID()
	registrationID := newUUID()
	ownerID := newUUID()
	strangerID := newUUID()

	owned := registration.Registration{
		ID:        registrationID,
		EventID:   eventID,
		UserID:    ownerID,
		CreatedAt: now,
	}

	tests := []struct {
		name           string
		userID         string
		url            string
		repoSetup      func(*fakeRegistrationsRepo)
		wantStatusCode int
	}{
		{
			name:   "success_own_registration",
			userID: ownerID,
			url:    "/events/" + eventID + "/registrations/" + registrationID,
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.getFn = func(ctx context.Context, eventID, registrationID string) (registration.Registration, error) {
					return owned, nil
				}
				f.deleteFn = func(ctx context.Context, eventID, registrationID string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:   "cannot_cancel_someone_elses",
			userID: strangerID,
			url:    "/events/" + eventID + "/registrations/" + registrationID,
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.getFn = func(ctx context.Context, eventID, registrationID string) (registration.Registration, error) {
					return owned, nil
				}
				f.deleteFn = func(ctx context.Context, eventID, registrationID string) error {
					return errors.New("delete must not be called for a foreign registration")
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:   "not_found",
			userID: ownerID,
			url:    "/events/" + eventID + "/registrations/" + newUUID(),
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.getFn = func(ctx context.Context, eventID, registrationID string) (registration.Registration, error) {
					return registration.Registration{}, registration.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "unauthorized_without_identity",
			userID:         "",
			url:            "/events/" + eventID + "/registrations/" + registrationID,
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeRegistrationsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewRegistrationsHandler(fakeRepo)

			r := setupAuthedRouter(http.MethodDelete, "/events/:id/registrations/:registrationId", tt.userID, h.Cancel)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListRegistrationsForEventHandler(t *testing.T) {
	now := time.Now().UTC()
	eventID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeRegistrationsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/events/" + eventID + "/registrations",
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.listByEventFn = func(ctx context.Context, eventID string) ([]registration.Registration, error) {
					return []registration.Registration{
						{ID: newUUID(), EventID: eventID, UserID: newUUID(), CreatedAt: now},
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "event_not_found",
			url:  "/events/" + newUUID() + "/registrations",
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.listByEventFn = func(ctx context.Context, eventID string) ([]registration.Registration, error) {
					return nil, event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/events/" + eventID + "/registrations",
			repoSetup: func(f *fakeRegistrationsRepo) {
				f.listByEventFn = func(ctx context.Context, eventID string) ([]registration.Registration, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeRegistrationsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewRegistrationsHandler(fakeRepo)

			r := setupRouter(http.MethodGet, "/events/:id/registrations", h.ListForEvent)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

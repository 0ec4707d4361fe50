package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eventally/eventally/internal/cache"
	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/http/handlers"
	"github.com/eventally/eventally/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementation of the handlers.EventsRepository interface

type fakeEventsRepo struct {
	createFn     func(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
	getFn        func(ctx context.Context, id string) (event.Event, error)
	listCursorFn func(ctx context.Context, filter event.ListEventsFilter, after utils.EventCursor) ([]event.Event, *string, bool, error)
	updateFn     func(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (f *fakeEventsRepo) Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}

	return event.Event{}, nil
}

func (f *fakeEventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return event.Event{}, nil
}

func (f *fakeEventsRepo) ListEventsCursor(ctx context.Context, filter event.ListEventsFilter, after utils.EventCursor) ([]event.Event, *string, bool, error) {
	if f.listCursorFn != nil {
		return f.listCursorFn(ctx, filter, after)
	}

	return []event.Event{}, nil, false, nil
}

func (f *fakeEventsRepo) Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return event.Event{}, nil
}

func (f *fakeEventsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

// small helper which mounts one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func TestCreateEventHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeEventsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{
				"title": "Go Meetup",
				"description": "Monthly meetup",
				"location": "Toronto",
				"category": "Technology",
				"date": "` + now.Add(48*time.Hour).Format(time.RFC3339) + `",
				"maxAttendees": 50
			}`,
			repoSetup: func(f *fakeEventsRepo) {
				f.createFn = func(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{
						ID:           newUUID(),
						Title:        req.Title,
						Description:  req.Description,
						Location:     req.Location,
						Category:     req.Category,
						Date:         req.Date,
						MaxAttendees: req.MaxAttendees,
						CreatedAt:    now,
						UpdatedAt:    now,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "validation_error",
			body: `{"title": ""}`,
			repoSetup: func(f *fakeEventsRepo) {
				// invalid payload, repo should not be reached
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown_category",
			body: `{
				"title": "Go Meetup",
				"category": "Gardening",
				"date": "` + now.Add(48*time.Hour).Format(time.RFC3339) + `"
			}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{
				"title": "Go Meetup",
				"category": "Technology",
				"date": "` + now.Add(48*time.Hour).Format(time.RFC3339) + `"
			}`,
			repoSetup: func(f *fakeEventsRepo) {
				f.createFn = func(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)

			r := setupRouter(http.MethodPost, "/events", h.CreateEvent)

			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListEventsHandler(t *testing.T) {
	now := time.Now().UTC()

	validCursor, err := utils.EncodeEventCursor(now.Add(-time.Minute), "e42b6ed3-0af3-49f0-9dcd-37aa7ed8c980")
	if err != nil {
		t.Fatalf("failed to build cursor: %v", err)
	}

	const zeroUUID = "00000000-0000-0000-0000-000000000000"

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeEventsRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "success_first_page_no_cursor",
			url:  "/events?limit=20",
			repoSetup: func(f *fakeEventsRepo) {
				f.listCursorFn = func(ctx context.Context, filter event.ListEventsFilter, after utils.EventCursor) ([]event.Event, *string, bool, error) {
					// first page is epoch + zero UUID
					if !after.Date.Equal(time.Unix(0, 0).UTC()) {
						return nil, nil, false, errors.New("cursor date not epoch for first page")
					}
					if after.ID != zeroUUID {
						return nil, nil, false, errors.New("cursor id not zero UUID for first page")
					}

					next := "next-cursor"
					return []event.Event{
						{ID: newUUID(), Title: "Event 1", Category: event.CategoryTechnology, Date: now, CreatedAt: now, UpdatedAt: now},
					}, &next, true, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "success_with_category_filter",
			url:  "/events?limit=20&category=Art",
			repoSetup: func(f *fakeEventsRepo) {
				f.listCursorFn = func(ctx context.Context, filter event.ListEventsFilter, after utils.EventCursor) ([]event.Event, *string, bool, error) {
					if filter.Category == nil || *filter.Category != event.CategoryArt {
						return nil, nil, false, errors.New("category filter not passed")
					}

					return []event.Event{
						{ID: newUUID(), Title: "Gallery Night", Category: event.CategoryArt, Date: now, CreatedAt: now, UpdatedAt: now},
					}, nil, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "success_with_valid_cursor",
			url:  "/events?limit=20&cursor=" + validCursor,
			repoSetup: func(f *fakeEventsRepo) {
				f.listCursorFn = func(ctx context.Context, filter event.ListEventsFilter, after utils.EventCursor) ([]event.Event, *string, bool, error) {
					if after.Date.Equal(time.Unix(0, 0).UTC()) {
						return nil, nil, false, errors.New("cursor date should not be epoch when cursor provided")
					}
					if after.ID == "" || after.ID == zeroUUID {
						return nil, nil, false, errors.New("cursor id should not be empty/zero UUID when cursor provided")
					}

					next := "next-cursor-2"
					return []event.Event{
						{ID: newUUID(), Title: "Event 2", Category: event.CategoryBusiness, Date: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now},
					}, &next, true, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name:           "invalid_cursor",
			url:            "/events?cursor=!!!",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
			wantCount:      0,
		},
		{
			name:           "unknown_category",
			url:            "/events?category=Gardening",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
			wantCount:      0,
		},
		{
			name: "repo_error",
			url:  "/events?limit=20",
			repoSetup: func(f *fakeEventsRepo) {
				f.listCursorFn = func(ctx context.Context, filter event.ListEventsFilter, after utils.EventCursor) ([]event.Event, *string, bool, error) {
					return nil, nil, false, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantCount:      0,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsRepo{}
			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/events", h.ListEvents)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					Count int `json:"count"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Count != tt.wantCount {
					t.Fatalf("got count %d, want %d", resp.Count, tt.wantCount)
				}
			}
		})
	}
}

func TestGetEventByIdHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeEventsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/events/" + validID,
			repoSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return event.Event{
						ID:        id,
						Title:     "Event-1",
						Category:  event.CategoryTechnology,
						Date:      now,
						CreatedAt: now.Add(-time.Hour),
						UpdatedAt: now,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/events/" + missingID,
			repoSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return event.Event{}, event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid_id",
			url:            "/events/not-a-uuid",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/events/" + validID,
			repoSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return event.Event{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/events/:id", h.GetEventById)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateEventHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()
	missingID := newUUID()

	validBody := `{
		"title": "Updated Title",
		"description": "Updated description",
		"location": "Toronto",
		"category": "Business",
		"date": "` + now.Add(72*time.Hour).Format(time.RFC3339) + `",
		"maxAttendees": 100
	}`

	tests := []struct {
		name           string
		url            string
		body           string
		repoSetup      func(*fakeEventsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/events/" + validID,
			body: validBody,
			repoSetup: func(f *fakeEventsRepo) {
				f.updateFn = func(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
					return event.Event{
						ID:           id,
						Title:        req.Title,
						Description:  req.Description,
						Location:     req.Location,
						Category:     req.Category,
						Date:         req.Date,
						MaxAttendees: req.MaxAttendees,
						CreatedAt:    now.Add(-time.Hour),
						UpdatedAt:    now,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/events/" + missingID,
			body: validBody,
			repoSetup: func(f *fakeEventsRepo) {
				f.updateFn = func(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
					return event.Event{}, event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "validation_error",
			url:  "/events/" + validID,
			body: `{"title": ""}`,
			repoSetup: func(f *fakeEventsRepo) {
				// repo should not be called at all in this case
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/events/" + validID,
			body: validBody,
			repoSetup: func(f *fakeEventsRepo) {
				f.updateFn = func(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
					return event.Event{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)

			r := setupRouter(http.MethodPut, "/events/:id", h.UpdateEvent)

			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteEventHandler(t *testing.T) {
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeEventsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/events/" + validID,
			repoSetup: func(f *fakeEventsRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "not_found",
			url:  "/events/" + missingID,
			repoSetup: func(f *fakeEventsRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/events/" + validID,
			repoSetup: func(f *fakeEventsRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)

			r := setupRouter(http.MethodDelete, "/events/:id", h.DeleteEvent)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListEventsHandler_CacheHit(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeEventsRepo{}
	c := cache.New(30 * time.Second)

	calls := 0
	fakeRepo.listCursorFn = func(ctx context.Context, filter event.ListEventsFilter, after utils.EventCursor) ([]event.Event, *string, bool, error) {
		calls++
		return []event.Event{
			{ID: newUUID(), Title: "Event 1", Category: event.CategoryTechnology, Date: now, CreatedAt: now, UpdatedAt: now},
		}, nil, false, nil
	}

	h := handlers.NewEventsHandlerWithCache(fakeRepo, c)
	r := setupRouter(http.MethodGet, "/events", h.ListEvents)

	// first request is a miss, repo gets called
	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/events?limit=20", nil)
	r.ServeHTTP(w1, req1)

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	// second identical request is served from cache
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/events?limit=20", nil)
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("second call got %d body=%s", w2.Code, w2.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected repo calls=1, got %d", calls)
	}
}

func TestListEventsHandler_ETagNotModified(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeEventsRepo{}
	fixedID := newUUID()

	fakeRepo.listCursorFn = func(ctx context.Context, filter event.ListEventsFilter, after utils.EventCursor) ([]event.Event, *string, bool, error) {
		// same payload every call so the ETag stays stable
		return []event.Event{
			{ID: fixedID, Title: "Event 1", Category: event.CategoryTechnology, Date: now, CreatedAt: now, UpdatedAt: now},
		}, nil, false, nil
	}

	h := handlers.NewEventsHandler(fakeRepo)
	r := setupRouter(http.MethodGet, "/events", h.ListEvents)

	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/events?limit=20", nil)
	r.ServeHTTP(w1, req1)

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header in first response")
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/events?limit=20", nil)
	req2.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("second call got %d, want %d, body=%s", w2.Code, http.StatusNotModified, w2.Body.String())
	}

	if w2.Body.Len() != 0 {
		t.Fatalf("expected empty body for 304, got %q", w2.Body.String())
	}

	if got := w2.Header().Get("ETag"); got == "" {
		t.Fatalf("expected ETag header in 304 response")
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eventally/eventally/internal/cache"
	"github.com/eventally/eventally/internal/config"
	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/http/middlewares"
	"github.com/eventally/eventally/internal/recs"
	"github.com/eventally/eventally/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultRecsLimit     = 6
	defaultSimilarLimit  = 3
	defaultTrendingLimit = 6
	maxRecsLimit         = 50
)

// SavedIDsLister supplies the bookmarked-event exclude list. A lookup failure
// only drops the exclusion, never the response.
type SavedIDsLister interface {
	ListIDsByUser(ctx context.Context, userID string) ([]string, error)
}

type EventGetter interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

type RecommendationsHandler struct {
	svc    *recs.Service
	events EventGetter
	saved  SavedIDsLister
	redis  *cache.Redis
	log    *slog.Logger
}

func NewRecommendationsHandler(svc *recs.Service, events EventGetter, saved SavedIDsLister, redis *cache.Redis, log *slog.Logger) *RecommendationsHandler {
	if log == nil {
		log = slog.Default()
	}

	return &RecommendationsHandler{
		svc:    svc,
		events: events,
		saved:  saved,
		redis:  redis,
		log:    log,
	}
}

func (h *RecommendationsHandler) GetRecommendations(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	limit, ok := parseLimit(ctx, defaultRecsLimit)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	exclude := parseExcludeIDs(ctx)

	if h.saved != nil {
		savedIDs, err := h.saved.ListIDsByUser(cctx, userID)

		if err != nil {
			h.log.Warn("recommendations: saved events lookup failed, skipping exclusion", "user_id", userID, "err", err)
		} else {
			exclude = append(exclude, savedIDs...)
		}
	}

	results := h.svc.RecommendationsForUser(cctx, userID, limit, exclude)

	ctx.JSON(http.StatusOK, gin.H{
		"items": results,
		"count": len(results),
	})
}

func (h *RecommendationsHandler) GetSimilarEvents(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "event id must be a valid UUID", nil)
		return
	}

	limit, ok := parseLimit(ctx, defaultSimilarLimit)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	source, err := h.events.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return
		}
		RespondInternal(ctx, "Could not fetch event")
		return
	}

	items, sameCategory := h.svc.SimilarEvents(cctx, source.ID, source.Category, limit)

	ctx.JSON(http.StatusOK, gin.H{
		"items":        items,
		"count":        len(items),
		"sameCategory": sameCategory,
	})
}

func (h *RecommendationsHandler) GetTrendingEvents(ctx *gin.Context) {
	limit, ok := parseLimit(ctx, defaultTrendingLimit)

	if !ok {
		return
	}

	exclude := parseExcludeIDs(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	key := trendingCacheKey(limit, exclude)

	if h.redis != nil {
		if raw, hit := h.redis.Get(cctx, key); hit {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
			return
		}
	}

	items := h.svc.TrendingEvents(cctx, limit, exclude)

	body := gin.H{
		"items": items,
		"count": len(items),
	}

	if h.redis != nil {
		if raw, err := json.Marshal(body); err == nil {
			if err := h.redis.Set(cctx, key, raw); err != nil {
				h.log.Warn("trending: cache write failed", "err", err)
			}
		}
	}

	ctx.JSON(http.StatusOK, body)
}

func parseLimit(ctx *gin.Context, fallback int) (int, bool) {
	raw := ctx.Query("limit")

	if raw == "" {
		return fallback, true
	}

	n, err := strconv.Atoi(raw)

	if err != nil || n <= 0 {
		RespondBadRequest(ctx, "limit must be a positive integer", nil)
		return 0, false
	}

	if n > maxRecsLimit {
		n = maxRecsLimit
	}

	return n, true
}

// parseExcludeIDs reads a comma separated list of event ids; non-UUID entries
// are silently dropped.
func parseExcludeIDs(ctx *gin.Context) []string {
	raw := ctx.Query("exclude")

	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if utils.IsUUID(p) {
			ids = append(ids, p)
		}
	}

	return ids
}

func trendingCacheKey(limit int, exclude []string) string {
	return "trending:v1:limit=" + strconv.Itoa(limit) + ":exclude=" + strings.Join(exclude, ",")
}

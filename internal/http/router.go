package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/eventally/eventally/internal/auth"
	"github.com/eventally/eventally/internal/cache"
	"github.com/eventally/eventally/internal/config"
	"github.com/eventally/eventally/internal/http/handlers"
	"github.com/eventally/eventally/internal/http/middlewares"
	"github.com/eventally/eventally/internal/observability"
	"github.com/eventally/eventally/internal/recs"
	"github.com/eventally/eventally/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the router needs wired in. Redis is optional: when
// nil the trending endpoint simply skips its shared cache.
type Deps struct {
	Cfg   config.Config
	Log   *slog.Logger
	Pool  *pgxpool.Pool
	Redis *cache.Redis
	Reg   *prometheus.Registry
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	prom := observability.NewProm(deps.Reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.AllowedOrigins))
	r.Use(otelgin.Middleware("eventally-api"))
	r.Use(prom.GinHandleMiddleware())

	// health

	dbPing := func() error {
		if deps.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Pool.Ping(ctx)
	}

	var redisPing func() error
	if deps.Redis != nil {
		redisPing = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return deps.Redis.Ping(ctx)
		}
	}

	health := handlers.NewHealthHandler(map[string]func() error{
		"postgres": dbPing,
		"redis":    redisPing,
	})
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Reg, promhttp.HandlerOpts{})))

	// repositories

	eventsRepo := postgres.NewEventsRepo(deps.Pool, prom)
	registrationsRepo := postgres.NewRegistrationsRepo(deps.Pool, prom)
	savedRepo := postgres.NewSavedEventsRepo(deps.Pool, prom)

	// recommendation core reads through the same repositories

	recsService := recs.NewService(eventsRepo, registrationsRepo, deps.Log, prom)

	// handlers

	listCache := cache.New(10 * time.Second)
	eventsHandler := handlers.NewEventsHandlerWithCache(eventsRepo, listCache)
	registrationsHandler := handlers.NewRegistrationsHandler(registrationsRepo)
	savedHandler := handlers.NewSavedEventsHandler(savedRepo)
	recsHandler := handlers.NewRecommendationsHandler(recsService, eventsRepo, savedRepo, deps.Redis, deps.Log)
	calendarHandler := handlers.NewCalendarHandler(eventsRepo)

	identity := middlewares.NewIdentity(auth.NewVerifier(deps.Cfg.JWTSecret))

	publicLimiter := middlewares.NewRateLimiter(120, time.Minute)
	userLimiter := middlewares.NewRateLimiter(60, time.Minute)

	public := r.Group("/", publicLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		public.GET("/events", eventsHandler.ListEvents)
		public.GET("/events/trending", recsHandler.GetTrendingEvents)
		public.GET("/events/:id", eventsHandler.GetEventById)
		public.GET("/events/:id/similar", recsHandler.GetSimilarEvents)
		public.GET("/events/:id/registrations", registrationsHandler.ListForEvent)
		public.GET("/events/:id/calendar.ics", calendarHandler.DownloadICS)
		public.GET("/events/:id/calendar-link", calendarHandler.GoogleCalendarLink)
	}

	authed := r.Group("/", identity.RequireUser(), userLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		authed.POST("/events", eventsHandler.CreateEvent)
		authed.PUT("/events/:id", eventsHandler.UpdateEvent)
		authed.DELETE("/events/:id", eventsHandler.DeleteEvent)

		authed.POST("/events/:id/register", registrationsHandler.Register)
		authed.DELETE("/events/:id/registrations/:registrationId", registrationsHandler.Cancel)

		authed.GET("/recommendations", recsHandler.GetRecommendations)

		authed.GET("/saved-events", savedHandler.ListSavedEvents)
		authed.POST("/saved-events/:eventId", savedHandler.SaveEvent)
		authed.DELETE("/saved-events/:eventId", savedHandler.UnsaveEvent)
	}

	return r
}

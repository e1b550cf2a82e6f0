package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jobseeker-app/apiserver/config"
	"github.com/jobseeker-app/apiserver/internal/db"
	"github.com/jobseeker-app/apiserver/internal/docgen"
	"github.com/jobseeker-app/apiserver/internal/handlers"
	"github.com/jobseeker-app/apiserver/internal/logging"
	"github.com/jobseeker-app/apiserver/internal/metrics"
	ratelimit "github.com/jobseeker-app/apiserver/internal/middleware"
	"github.com/jobseeker-app/apiserver/internal/mq"
	"github.com/jobseeker-app/apiserver/internal/services"
	"github.com/jobseeker-app/apiserver/internal/storage"
	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestTimeout  = 60 * time.Second
	cleanupInterval = 5 * time.Minute
)

// Server owns every long-lived dependency and the HTTP listener.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	redis      *redis.Client
	storage    *storage.Storage
	queue      *mq.MQ
	stop       context.CancelFunc
}

// New opens the database, optional Redis, object storage and broker, then
// wires repositories, services and handlers onto the router. Anything
// opened before a failure is closed again.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (_ *Server, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{}
	defer func() {
		if err != nil {
			_ = s.Shutdown(context.Background())
		}
	}()

	if s.db, err = db.Open(ctx, cfg); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Redis.URL != "" {
		if s.redis, err = db.OpenRedis(ctx, cfg.Redis.URL); err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
	}
	if s.storage, err = storage.Open(ctx, cfg, s.db); err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if s.queue, err = mq.Open(ctx, cfg); err != nil {
		return nil, fmt.Errorf("open mq: %w", err)
	}
	generator, err := docgen.New()
	if err != nil {
		return nil, fmt.Errorf("load document templates: %w", err)
	}

	publisher := mq.NewEventPublisher(s.queue, cfg.EventsChannel)

	userRepo := store.NewUserRepository(s.db)
	profileRepo := store.NewProfileRepository(s.db)
	jobRepo := store.NewJobRepository(s.db)
	applicationRepo := store.NewApplicationRepository(s.db)
	attachmentRepo := store.NewAttachmentRepository(s.db)
	analyticsRepo := store.NewAnalyticsRepository(s.db)

	userService := services.NewUserService(userRepo)
	profileService := services.NewProfileService(profileRepo)
	jobService := services.NewJobService(jobRepo)
	applicationService := services.NewApplicationService(applicationRepo, jobRepo, s.storage, publisher)
	attachmentService := services.NewAttachmentService(applicationRepo, attachmentRepo, s.storage, cfg.Uploads.MaxFileSize, cfg.Uploads.AllowedExtensions)
	analyticsService := services.NewAnalyticsService(analyticsRepo)
	documentService := services.NewDocumentService(jobRepo, profileRepo, applicationRepo, generator, publisher)

	var redisPing func(context.Context) error
	if s.redis != nil {
		redisPing = func(ctx context.Context) error { return s.redis.Ping(ctx).Err() }
	}
	eventsName := ""
	if s.queue != nil {
		eventsName = s.queue.Name()
	}

	set := handlers.Set{
		Auth:         handlers.NewAuthHandler(userService, profileService, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Jobs:         handlers.NewJobHandler(jobService),
		Applications: handlers.NewApplicationHandler(applicationService),
		Attachments:  handlers.NewAttachmentHandler(attachmentService),
		Profiles:     handlers.NewProfileHandler(profileService),
		Analytics:    handlers.NewAnalyticsHandler(analyticsService),
		Documents:    handlers.NewDocumentHandler(documentService),
		Health:       handlers.NewHealthHandler(s.db, redisPing, s.storage.Name(), eventsName, cfg.Env),
	}

	bg, stop := context.WithCancel(context.Background())
	s.stop = stop
	s.router = newRouter(cfg, logger, set, s.limiter(bg, cfg))

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if !cfg.IsProduction() {
		inserted, err := jobService.SeedMockJobs(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed mock jobs: %w", err)
		}
		if inserted > 0 {
			log.Info().Int("jobs", inserted).Msg("seeded mock jobs")
		}
	}

	return s, nil
}

// limiter picks the shared Redis window when Redis is configured.
func (s *Server) limiter(ctx context.Context, cfg config.Config) ratelimit.Limiter {
	if s.redis != nil {
		return ratelimit.NewRedisLimiter(s.redis, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	}
	memory := ratelimit.NewMemoryLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	memory.StartCleanup(ctx, cleanupInterval)
	return memory
}

func newRouter(cfg config.Config, logger zerolog.Logger, set handlers.Set, limiter ratelimit.Limiter) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.AccessLog(logger),
		middleware.Recoverer,
		metrics.InstrumentHandler,
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.Timeout(requestTimeout),
	)
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	router.Handle("/metrics", metrics.Handler())
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(ratelimit.RateLimit(limiter))
		handlers.Mount(r, set)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the broker, storage,
// Redis and database clients.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		errs = append(errs, s.httpServer.Shutdown(ctx))
	}
	if s.stop != nil {
		s.stop()
	}
	if s.queue != nil {
		errs = append(errs, s.queue.Close())
	}
	if s.storage != nil {
		errs = append(errs, s.storage.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"boxoffice/internal/cache"
	"boxoffice/internal/config"
	"boxoffice/internal/handlers"
	"boxoffice/internal/jobs"
	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/middleware"
	"boxoffice/internal/repository"
	"boxoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	registry *prometheus.Registry
	services *service.Services
	repos    *repository.Repositories
	auditJob *jobs.SeatAuditJob
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	// The movie list cache is optional; run without it when Valkey is unreachable
	var valkeyClient *cache.ValkeyClient
	if cfg.Valkey.Enabled {
		valkeyClient, err = cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, movies cache disabled", "error", err)
			valkeyClient = nil
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repos := repository.NewRepositories(catalog)
	services := service.NewServices(repos, natsClient, metrics.New(registry))

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	server := &Server{
		router:   router,
		config:   cfg,
		nats:     natsClient,
		valkey:   valkeyClient,
		registry: registry,
		services: services,
		repos:    repos,
		auditJob: jobs.NewSeatAuditJob(services.Reservations, cfg.AuditInterval),
	}

	server.setupRoutes()

	return server, nil
}

func loadCatalog(cfg *config.Config) (*repository.MovieRepository, error) {
	if cfg.CatalogFile == "" {
		slog.Info("Using built-in catalog")
		return repository.DefaultCatalog(), nil
	}

	catalog, err := repository.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", cfg.CatalogFile, err)
	}
	slog.Info("Loaded catalog", "path", cfg.CatalogFile, "movies", len(catalog.List()))
	return catalog, nil
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	api := s.router.Group("/api")
	{
		movies := api.Group("/movies")
		{
			movies.GET("", h.ListMovies)
			movies.GET("/:id", h.GetMovie)
			movies.GET("/:id/showtimes", h.ListShowtimes)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.DELETE("/:id", h.DeleteBooking)
			bookings.PATCH("/cancel", h.CancelBooking)
		}

		api.GET("/audit", h.Audit)
	}

	if s.config.MetricsEnabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	s.router.GET("/health", s.healthCheck)
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"service":         "boxoffice-api",
		"version":         "1.0.0",
		"nats_connected":  s.nats.Connected(),
		"cache_enabled":   s.valkey != nil,
		"active_bookings": s.repos.Bookings.Len(),
	})
}

// StartBackground запускает фоновые задачи
func (s *Server) StartBackground(ctx context.Context) error {
	return s.auditJob.Start(ctx)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if err := s.auditJob.Stop(); err != nil {
		slog.Error("Error stopping seat audit job", "error", err)
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
			return err
		}
	}

	return nil
}

package server

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"hollywoo/internal/database"
	"hollywoo/internal/handlers"
	"hollywoo/internal/metrics"
)

// Server is the HTTP API server
type Server struct {
	app    *fiber.App
	addr   string
	db     *database.DB
	scans  handlers.ScanSubmitter
	reg    prometheus.Gatherer
	m      *metrics.Metrics
	logger zerolog.Logger
}

// New creates a server listening on addr. gatherer is exposed on /metrics
// and m receives request metrics.
func New(addr string, db *database.DB, scans handlers.ScanSubmitter, gatherer prometheus.Gatherer, m *metrics.Metrics, logger zerolog.Logger) *Server {
	s := &Server{
		addr:   addr,
		db:     db,
		scans:  scans,
		reg:    gatherer,
		m:      m,
		logger: logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "hollywoo",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	s.app.Use(recover.New())
	s.app.Use(s.requestLogger())
	if m != nil {
		s.app.Use(handlers.RequestMetrics(m))
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.db)
	metricsHandler := handlers.NewMetricsHandler(s.reg)
	folderHandler := handlers.NewFolderHandler(s.db, s.scans)
	videoHandler := handlers.NewVideoHandler(s.db)
	tagHandler := handlers.NewTagHandler(s.db)
	personHandler := handlers.NewPersonHandler(s.db)

	s.app.Get("/healthz", healthHandler.HealthCheck)
	s.app.Get("/metrics", metricsHandler.Metrics())

	api := s.app.Group("/api")

	folders := api.Group("/folders")
	folders.Get("/", folderHandler.GetFolders)
	folders.Post("/", folderHandler.ScanFolder)
	folders.Get("/:id/videos", folderHandler.GetFolderVideos)

	videos := api.Group("/videos")
	videos.Get("/:id", videoHandler.GetVideo)
	videos.Get("/:id/tags", videoHandler.GetVideoTags)
	videos.Post("/:id/tags/:tagID", videoHandler.AddVideoTag)
	videos.Delete("/:id/tags/:tagID", videoHandler.RemoveVideoTag)
	videos.Get("/:id/people", videoHandler.GetVideoPeople)

	tags := api.Group("/tags")
	tags.Get("/", tagHandler.GetTags)
	tags.Post("/", tagHandler.CreateTag)
	tags.Get("/:id/videos", tagHandler.GetTagVideos)

	people := api.Group("/people")
	people.Get("/", personHandler.GetPeople)
	people.Get("/:id/roles", personHandler.GetPersonRoles)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
		return err
	}
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.addr).Msg("Starting API server")
	return s.app.Listen(s.addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

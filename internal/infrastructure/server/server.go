package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AppLauncher/backend/internal/api/http"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/api/middleware"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/api/ws"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/backup"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/importer"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/launch"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/store"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/providers/http/client"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	store    *store.Store
	pipeline *importer.Pipeline
	catalog  *catalog.Controller
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer opens the store and wires every component behind the router
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing launcher server",
		zap.String("addr", cfg.Addr()),
		zap.String("db", cfg.Storage.Path),
	)

	metrics := monitoring.NewMetrics()

	db, err := store.Open(cfg.Storage.Path, logger, store.WithMetrics(metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	ccfg := client.DefaultConfig()
	ccfg.MaxRetries = cfg.Import.MaxRetries
	httpClient := client.NewClient(ccfg).WithMetrics(metrics)
	pipeline := importer.New(cfg.Import, httpClient, nil, logger).WithMetrics(metrics)

	contexts := apihttp.NewContextRegistry(logger, metrics)
	launcher := launch.NewController(db, contexts, logger, launch.WithMetrics(metrics))
	cat := catalog.New(db, catalog.Config{
		Locale:       cfg.Catalog.Locale,
		RecentWindow: cfg.Catalog.RecentWindow,
	}, logger, catalog.WithPreferences(db), catalog.WithMetrics(metrics))

	if err := cat.Reload(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	wsHandler := ws.NewHandler(logger, metrics)
	db.Subscribe(wsHandler.Publish)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Store:    db,
		Pipeline: pipeline,
		Catalog:  cat,
		Launcher: launcher,
		Contexts: contexts,
		Backup:   backup.New(db, logger),
		Import:   cfg.Import,
		Logger:   logger,
	})
	handlers.Register(router)

	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:    db,
		pipeline: pipeline,
		catalog:  cat,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	lc := logging.DefaultConfig()
	if cfg.Development {
		lc = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		lc.Level = cfg.Level
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// Router exposes the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Seed installs every importable file under dir whose app name is not
// installed yet
func (s *Server) Seed(ctx context.Context, dir string) (int, error) {
	n, err := importer.NewSeeder(s.pipeline, s.store).Seed(ctx, dir)
	if err != nil {
		return n, err
	}
	if n > 0 {
		if err := s.catalog.Reload(ctx); err != nil {
			return n, err
		}
	}
	s.logger.Info("Seed directory loaded", zap.String("dir", dir), zap.Int("installed", n))
	return n, nil
}

// Run serves HTTP until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the store
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop HTTP server: %w", err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}

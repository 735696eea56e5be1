package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"relist/internal/activitylog"
	"relist/internal/api/handlers"
	"relist/internal/api/middleware"
	"relist/internal/broker"
	"relist/internal/config"
	"relist/internal/crypto"
	"relist/internal/database"
	"relist/internal/logger"
	"relist/internal/rates"
	"relist/internal/store"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config   *config.Config
	logger   *logger.Logger
	db       *database.Database
	activity *activitylog.Logger
	router   *gin.Engine
	server   *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) (*Server, error) {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cipher, err := crypto.NewAESGCM(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	activity := activitylog.New(db.DB, logger)
	if cfg.KafkaBrokers != "" {
		activity = activity.WithKafka([]string{cfg.KafkaBrokers}, cfg.KafkaTopic)
	}

	credStore := store.New(db.DB, cipher, activity)
	rateSource := rates.NewClient(cfg.RatesBaseURL, logger)

	prober := broker.NewProber(logger, activity)
	fetcher := broker.NewFetcher(credStore, rateSource, logger, activity)
	importer := broker.NewImporter(credStore, logger, activity)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	integrationHandler := handlers.NewIntegrationHandler(credStore, prober, fetcher, importer, logger)
	logsHandler := handlers.NewLogsHandler(activity, logger)

	// Health check
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Relist API is running",
			"status":  "healthy",
		})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		integrations := v1.Group("/integrations")
		{
			integrations.POST("/woocommerce", integrationHandler.WooCommerce)
			integrations.POST("/shopify", integrationHandler.Shopify)
		}

		logs := v1.Group("/logs")
		{
			logs.GET("", logsHandler.List)
			logs.DELETE("", logsHandler.Clear)
		}
	}

	return &Server{
		config:   cfg,
		logger:   logger,
		db:       db,
		activity: activity,
		router:   router,
	}, nil
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	s.activity.Close()
	return s.server.Shutdown(ctx)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

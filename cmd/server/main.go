package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/geoplace/geocore/internal/autocomplete"
	"github.com/geoplace/geocore/internal/backend"
	"github.com/geoplace/geocore/internal/cache"
	"github.com/geoplace/geocore/internal/config"
	"github.com/geoplace/geocore/internal/httpapi"
	"github.com/geoplace/geocore/internal/logging"
	"github.com/geoplace/geocore/internal/metrics"
	"github.com/geoplace/geocore/internal/place"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting geocore")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	be, err := newBackend(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize search backend", zap.Error(err))
	}

	var resultCache *cache.ResultCache[[]place.Place]
	if cfg.Redis.URL != "" {
		resultCache, err = cache.New[[]place.Place](cfg.Redis.URL, 10000, 30*time.Second, logger)
		if err != nil {
			logger.Warn("result cache unavailable, continuing without it", zap.Error(err))
		} else {
			defer resultCache.Close()
		}
	}

	orchestrator := autocomplete.NewOrchestrator(be, &cfg.Query)
	controller := httpapi.NewController(orchestrator, resultCache, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(ginZapLogger(logger))
	router.Use(corsAutocomplete())

	router.GET("/autocomplete", controller.AutocompleteQuery)
	router.POST("/autocomplete", controller.AutocompletePost)
	router.GET("/features/:id", controller.Feature)
	router.GET("/reverse", controller.Reverse)
	router.GET("/status", controller.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/", controller.Status)

	server := &http.Server{Addr: ":" + cfg.AppPort, Handler: router}

	go func() {
		logger.Info("listening", zap.String("port", cfg.AppPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server exited unexpectedly", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server exited")
}

func newBackend(cfg *config.Config, logger *zap.Logger) (backend.Backend, error) {
	switch cfg.Backend.Driver {
	case "meili":
		return backend.NewMeiliExecutor(backend.MeiliConfig{
			Host:      cfg.Backend.URL,
			APIKey:    cfg.Backend.APIKey,
			IndexName: "places",
			Timeout:   cfg.Backend.Timeout,
		}, logger)
	default:
		return backend.NewESExecutor(backend.ESConfig{
			URL:     cfg.Backend.URL,
			APIKey:  cfg.Backend.APIKey,
			Timeout: cfg.Backend.Timeout,
		}, logger)
	}
}

// ginZapLogger mirrors gin.Logger()'s per-request line but through the
// structured zap logger used everywhere else in the service.
func ginZapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// requestID stamps every request with a UUID for log correlation, echoed
// back as X-Request-Id.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// corsAutocomplete allows only GET on the autocomplete family (§6).
func corsAutocomplete() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET")
		c.Next()
	}
}

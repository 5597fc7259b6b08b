package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidchen92/lostpoint/internal/app"
	"github.com/davidchen92/lostpoint/internal/handlers"
	"github.com/davidchen92/lostpoint/internal/middleware"
)

// NewRouter builds the Gin engine, wires middleware and registers the lost
// item routes. The posting route derives a caller identity for quota
// accounting; the read routes are public.
func NewRouter(items handlers.LostItemAccessor, cfg *app.Config) (*gin.Engine, error) {
	if items == nil {
		return nil, fmt.Errorf("lost item service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	if cfg.Server.RequestsPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.Server.RequestsPerMin, time.Minute))
	}

	// Health endpoint (public)
	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}

	itemHandler := handlers.NewLostItemHandler(items)

	lostItems := r.Group("/api/v1/lost-items")
	{
		lostItems.POST("", middleware.Identity(), itemHandler.Create)
		lostItems.GET("", itemHandler.List)
		lostItems.GET("/nearby", itemHandler.Nearby)
		lostItems.GET("/:id", itemHandler.Get)
	}

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidchen92/lostpoint/internal/api"
	"github.com/davidchen92/lostpoint/internal/app"
	"github.com/davidchen92/lostpoint/internal/cache"
	"github.com/davidchen92/lostpoint/internal/services"
	"github.com/davidchen92/lostpoint/internal/store"
)

// runtimeStack bundles long-lived resources used by the HTTP server.
type runtimeStack struct {
	Mongo   *store.Mongo
	Results cache.Store
	Router  *gin.Engine
}

// bootstrapRuntime connects the store, selects the cache backend and wires
// the services behind the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.Mongo, err = store.Connect(ctx, cfg.MongoDB.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}

	// Missing indexes degrade queries to collection scans; they never block startup.
	if err := stack.Mongo.EnsureIndexes(ctx); err != nil {
		log.Warn("index provisioning failed", zap.Error(err))
	}

	if cfg.Cache.Redis.Enabled {
		redisStore, redisErr := cache.NewRedisStore(cfg.Cache.RedisStoreConfig())
		if redisErr != nil {
			log.Warn("redis unavailable; falling back to in-process cache", zap.Error(redisErr))
		} else {
			stack.Results = redisStore
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}
	if stack.Results == nil {
		stack.Results = cache.NewMemoryStore()
	}

	limiter, err := services.NewRateLimitService(stack.Mongo.RateRecords(), cfg.RateLimit.MaxPostsPerDay)
	if err != nil {
		return nil, fmt.Errorf("initialise rate limiter: %w", err)
	}

	itemSvc, err := services.NewLostItemService(stack.Mongo.Items(), limiter, stack.Results, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("initialise lost item service: %w", err)
	}

	stack.Router, err = api.NewRouter(itemSvc, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown releases the cache backend and the store connection.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	switch c := s.Results.(type) {
	case *cache.RedisStore:
		if err := c.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	case *cache.MemoryStore:
		c.Close()
	}

	if s.Mongo != nil {
		if err := s.Mongo.Close(ctx); err != nil {
			log.Warn("store shutdown", zap.Error(err))
		}
	}
}

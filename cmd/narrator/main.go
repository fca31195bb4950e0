package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hof-narrator/internal/cache"
	"hof-narrator/internal/handlers"
	"hof-narrator/internal/httpserver"
	"hof-narrator/internal/llm"
	"hof-narrator/internal/metrics"
	"hof-narrator/internal/narrator"
	"hof-narrator/internal/search"
	"hof-narrator/pkg/logging/logging"
)

type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	CacheBackend string `env:"CACHE_BACKEND" envDefault:"redis"` // "memory" or "redis"
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`

	SearchBaseURL string `env:"SEARCH_BASE_URL" envDefault:"https://api.bing.microsoft.com"`
	SearchAPIKey  string `env:"SEARCH_API_KEY"`

	CompletionBaseURL    string `env:"COMPLETION_BASE_URL" envDefault:"https://api.openai.com"`
	CompletionAPIKey     string `env:"COMPLETION_API_KEY"`
	CompletionDeployment string `env:"COMPLETION_DEPLOYMENT" envDefault:"gpt-4"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("narrator exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("search_base_url", cfg.SearchBaseURL),
		zap.String("completion_base_url", cfg.CompletionBaseURL),
		zap.String("completion_deployment", cfg.CompletionDeployment),
		zap.Bool("completion_key_present", cfg.CompletionAPIKey != ""),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})

		// The cache is an optimization, never a correctness dependency;
		// a dead backend degrades to bypass instead of failing startup.
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable at startup, requests will bypass caching",
				zap.String("addr", cfg.RedisAddr),
				zap.Error(err),
			)
		} else {
			logger.Info("redis connection established",
				zap.String("addr", cfg.RedisAddr),
			)
		}
	}

	// ----- Cache store -----
	store := cache.NewStore(cache.Config{Backend: cfg.CacheBackend}, redisClient)
	store = cache.NewLoggingStore(store)

	// ----- Search client -----
	if cfg.SearchAPIKey == "" {
		return fmt.Errorf("SEARCH_API_KEY is required")
	}
	searchClient, err := search.NewClient(search.Config{
		BaseURL: cfg.SearchBaseURL,
		APIKey:  cfg.SearchAPIKey,
	}, logger)
	if err != nil {
		return err
	}
	defer searchClient.Close()

	// ----- Completion client -----
	completionClient, err := llm.NewClient(llm.Config{
		BaseURL:    cfg.CompletionBaseURL,
		APIKey:     cfg.CompletionAPIKey,
		Deployment: cfg.CompletionDeployment,
	}, logger)
	if err != nil {
		return err
	}
	if closer, ok := completionClient.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// ----- Orchestrator + handlers -----
	orch := narrator.New(narrator.Config{
		Store:     store,
		Searcher:  searchClient,
		Completer: completionClient,
	})

	hofHandler := handlers.NewHallOfFameHandler(orch, handlers.HealthReporter{
		Store:                store,
		Searcher:             searchClient,
		CompletionKeyPresent: cfg.CompletionAPIKey != "",
	})

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, hofHandler)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting narrator",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
	)

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cotizador/internal/cache"
	"cotizador/internal/config"
	httphandler "cotizador/internal/http"
	"cotizador/internal/middleware"
	"cotizador/internal/services/llm"
	"cotizador/internal/services/quote"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Parse command line flags
	var (
		port    = flag.String("port", "", "Port to run the server on (overrides PORT)")
		useMock = flag.Bool("mock", false, "Serve the fixed example itinerary instead of calling the model")
	)
	flag.Parse()

	// Load configuration; flags win over the environment
	cfg := config.FromEnv()
	if *useMock {
		cfg.Quote.UseMock = true
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg.Log)

	// Initialize LLM client
	mode := quote.ModeModel
	var llmClient llm.CompletionClient
	if cfg.Quote.UseMock {
		mode = quote.ModeMock
		log.Warn().Msg("Mock mode enabled, completions will not be requested")
	} else {
		client, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.MaxRetries)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create LLM client")
		}
		llmClient = client
	}

	// Initialize services
	quoteService := quote.NewQuoteService(llmClient, quote.Options{
		Mode:        mode,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
		IDPolicy:    quote.IDPolicy(cfg.Quote.IDPolicy),
	})

	// Rate limiting is shared through Redis when configured
	limitCfg := middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		BurstSize:         cfg.RateLimit.BurstSize,
	}
	var limiter middleware.Limiter = middleware.NewMemoryLimiter(limitCfg)
	var readiness []httphandler.ReadinessCheck
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		limiter = middleware.NewRedisLimiter(redisCache, limitCfg)
		readiness = append(readiness, redisCache.Ping)
	}

	// Initialize HTTP router
	router := httphandler.NewRouter(limiter, cfg.OpenAI.Timeout+10*time.Second)

	// Register routes
	quoteHandler := httphandler.NewQuoteHandler(quoteService)
	router.RegisterQuoteRoutes(quoteHandler)
	router.RegisterHealthRoutes(quoteService.Mode(), readiness...)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("mode", string(mode)).
			Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}

	log.Info().Msg("Server stopped")
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// Package main provides the entrypoint for the MandiRoute price
// refresh worker.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mandiroute/mandiroute/internal/directory"
	"github.com/mandiroute/mandiroute/internal/pricefeed"
	"github.com/mandiroute/mandiroute/internal/pricefeed/agmarknet"
	"github.com/mandiroute/mandiroute/internal/provider/resilience"
	"github.com/mandiroute/mandiroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "mandiroute-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting MandiRoute worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	memRepo, err := directory.NewInMemoryRepository(directory.DefaultMandis())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed mandi directory")
	}
	directoryService := directory.NewService(directory.ServiceConfig{
		Repository: memRepo,
		Logger:     log,
	})

	apiKey := os.Getenv("AGMARKNET_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("AGMARKNET_API_KEY is required for the refresh worker")
	}

	mandis, err := memRepo.ListAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list mandis for feed mapping")
	}
	mandiIDs := make(map[string]string, len(mandis))
	for _, m := range mandis {
		mandiIDs[m.Market] = m.ID
	}

	feedClient := resilience.NewClient(resilience.ClientConfig{
		Name:            agmarknet.ProviderName,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	})

	provider := agmarknet.NewClient(agmarknet.ClientConfig{
		APIKey:     apiKey,
		State:      os.Getenv("AGMARKNET_STATE"),
		MandiIDs:   mandiIDs,
		HTTPClient: feedClient,
	})

	priceService := pricefeed.NewService(pricefeed.ServiceConfig{
		Provider: provider,
		Logger:   log,
	})

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:           worker.DefaultRefreshConfig(),
		Logger:           log,
		PriceService:     priceService,
		DirectoryService: directoryService,
	})

	// Health endpoint for the container platform.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"version": Version,
			"metrics": refreshJob.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if serveErr := server.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			log.Error().Err(serveErr).Msg("health server error")
		}
	}()

	// Two trigger modes: Pub/Sub push jobs when a subscription is
	// configured, a local ticker otherwise.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, psErr := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if psErr != nil {
			log.Fatal().Err(psErr).Msg("failed to create pubsub handler")
		}
		defer func() {
			if closeErr := handler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if recvErr := handler.Start(ctx); recvErr != nil && ctx.Err() == nil {
				log.Fatal().Err(recvErr).Msg("pubsub receive failed")
			}
		}()
		log.Info().
			Str("subscription", subscription).
			Msg("worker listening for refresh jobs")
	} else {
		interval := 15 * time.Minute
		if raw := os.Getenv("REFRESH_INTERVAL_MINUTES"); raw != "" {
			if minutes, parseErr := strconv.Atoi(raw); parseErr == nil && minutes > 0 {
				interval = time.Duration(minutes) * time.Minute
			}
		}

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			// One run at startup so a fresh deploy has warm prices.
			logRefreshResult(log, refreshJob.Run(ctx))

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					logRefreshResult(log, refreshJob.Run(ctx))
				}
			}
		}()
		log.Info().
			Dur("interval", interval).
			Msg("worker refreshing on a local schedule")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func logRefreshResult(log zerolog.Logger, result *worker.RefreshResult) {
	event := log.Info()
	if result.Failed > 0 {
		event = log.Warn()
	}
	event.
		Int("total", result.TotalTargets).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("refresh run completed")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tube-pulse/infrastructure/cache"
	youtubeclient "tube-pulse/infrastructure/clients/youtube"
	"tube-pulse/infrastructure/configuration"
	"tube-pulse/infrastructure/logger"
	"tube-pulse/infrastructure/persistence"
	httpHandler "tube-pulse/interfaces/http"
	"tube-pulse/server"
	"tube-pulse/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App
	tracker := configuration.C.Tracker

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		os.Exit(1)
	}
	if err := persistence.EnsureTrackerSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring tracker schema")
		os.Exit(1)
	}
	logger.GetLogger().Info("Database connected.")

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - rollups will always be computed")
	}
	rollupCache := cache.NewRollupCache(redisClient, time.Duration(tracker.RollupTTLMinutes)*time.Minute)

	youtubeConfig, err := configuration.GetYouTubeConfig()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("YouTube configuration could not be loaded")
		os.Exit(1)
	}
	upstream, err := youtubeclient.NewClient(ctx, &youtubeclient.Config{
		ClientID:     youtubeConfig.ClientID,
		ClientSecret: youtubeConfig.ClientSecret,
		RedirectURL:  youtubeConfig.RedirectURL,
		AccessToken:  youtubeConfig.AccessToken,
		RefreshToken: youtubeConfig.RefreshToken,
		APIKey:       youtubeConfig.APIKey,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to initialize YouTube client")
		os.Exit(1)
	}

	channelRepository := persistence.NewChannelRepository(psqlDb)
	videoRepository := persistence.NewVideoRepository(psqlDb)
	snapshotRepository := persistence.NewSnapshotRepository(psqlDb)

	trackerUseCase := usecase.NewTrackerUseCase(upstream, channelRepository, videoRepository, snapshotRepository, rollupCache)
	statsUseCase := usecase.NewStatsUseCase(channelRepository, videoRepository, snapshotRepository, rollupCache)

	trackerHandler := httpHandler.NewTrackerHandler(trackerUseCase)
	statsHandler := httpHandler.NewStatsHandler(statsUseCase)

	router := server.InitiateRouter(trackerHandler, statsHandler)

	// Background refresh loop: re-ingest every tracked channel on a fixed
	// interval under the configured concurrency ceiling. An interval of 0
	// disables the loop; refreshes then only run via the API.
	if tracker.RefreshIntervalMinutes > 0 {
		g.Go(func() error {
			return runRefreshLoop(ctx, trackerUseCase, tracker)
		})
	} else {
		logger.GetLogger().Info("Background refresh disabled (refresh interval is 0)")
	}

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func runRefreshLoop(ctx context.Context, trackerUseCase usecase.ITrackerUseCase, tracker configuration.Tracker) error {
	interval := time.Duration(tracker.RefreshIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.GetLogger().WithFields(map[string]interface{}{
		"interval":    interval.String(),
		"concurrency": tracker.RefreshConcurrency,
	}).Info("Background refresh scheduled")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tickCtx, cancelTick := context.WithTimeout(ctx, interval)
			outcomes, err := trackerUseCase.RefreshAll(tickCtx, tracker.RefreshConcurrency)
			cancelTick()
			if err != nil {
				logger.GetLogger().WithField("error", err).Error("Background refresh failed")
				continue
			}
			failed := 0
			for _, o := range outcomes {
				if o.Error != "" {
					failed++
				}
			}
			logger.GetLogger().WithFields(map[string]interface{}{
				"channels": len(outcomes),
				"failed":   failed,
			}).Info("Background refresh completed")
		}
	}
}

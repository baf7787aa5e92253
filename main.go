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

	"video-sync/infrastructure/cache"
	"video-sync/infrastructure/clients/videocloud"
	"video-sync/infrastructure/configuration"
	"video-sync/infrastructure/logger"
	"video-sync/infrastructure/persistence"
	httpHandler "video-sync/interfaces/http"
	"video-sync/server"
	"video-sync/usecase"

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
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App
	sync := configuration.C.Sync
	vc := configuration.C.VideoCloud

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		os.Exit(1)
	}
	if err := persistence.EnsureSyncSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring sync schema")
		os.Exit(1)
	}
	logger.GetLogger().WithField("PSQLDb", psqlDb.Ping()).Info("Database connected.")

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Redis initialization failed")
		os.Exit(1)
	}
	logger.GetLogger().Info("Redis client initialized successfully.")

	profileStore := persistence.NewProfileStore(psqlDb)
	videoStore := persistence.NewVideoStore(psqlDb)
	playlistStore := persistence.NewPlaylistStore(psqlDb)
	playerStore := persistence.NewPlayerStore(psqlDb)
	fieldStore := persistence.NewCustomFieldStore(psqlDb)
	trackStore := persistence.NewCaptionTrackStore(psqlDb)
	subStore := persistence.NewSubscriptionStore(psqlDb)
	taxonomyStore := persistence.NewTaxonomyStore(psqlDb)
	imageStore := persistence.NewImageStore("files/images")
	taskQueue := persistence.NewTaskQueue(psqlDb)

	tokenCache := cache.NewKeyValueStore(redisClient, "videosync")
	semaphore := cache.NewSemaphoreStore(redisClient)

	clientConfig := videocloud.Config{
		OAuthBase:  vc.OAuthBase,
		CMSBase:    vc.CMSBase,
		IngestBase: vc.IngestBase,
	}
	oauthClient := videocloud.NewOAuthClient(vc.OAuthBase)
	clientFactory := videocloud.Factory(clientConfig)

	authenticator := usecase.NewAuthenticator(profileStore, tokenCache, oauthClient, clientFactory).
		WithTokenMargin(time.Duration(sync.TokenMarginSeconds) * time.Second)
	reconciler := usecase.NewReconciler(
		videoStore, playlistStore, playerStore, fieldStore, trackStore, subStore,
		taxonomyStore, imageStore,
	)
	deleteChecker := usecase.NewDeleteChecker(
		videoStore, playlistStore, playerStore, fieldStore, trackStore, subStore,
	)
	orchestrator := usecase.NewSyncOrchestrator(
		taskQueue, profileStore, authenticator, reconciler, deleteChecker,
		videoStore, playlistStore, playerStore, fieldStore, trackStore, subStore,
		usecase.Options{
			Budget:   sync.WorkerBudget,
			PageSize: sync.PageSize,
			Lease:    time.Duration(sync.LeaseSeconds) * time.Second,
		},
	)
	ingestBuilder := usecase.NewIngestBuilder(
		trackStore, tokenCache, imageStore, vc.IngestProfile, vc.CallbackBase,
		time.Duration(sync.CallbackTTLMinutes)*time.Minute,
	)
	callbackUsecase := usecase.NewCallbackHandler(
		videoStore, trackStore, profileStore, authenticator, reconciler,
		ingestBuilder, semaphore, sync.AcquireAttempts,
	)
	pusher := usecase.NewPusher(
		profileStore, videoStore, playlistStore, subStore,
		authenticator, reconciler, ingestBuilder,
	)

	syncHandler := httpHandler.NewSyncHandler(orchestrator, pusher)
	callbackHandler := httpHandler.NewCallbackHandler(callbackUsecase)

	router := server.InitiateRouter(syncHandler, callbackHandler)

	// Background sync loop: re-invoke Run while queues report depth so a
	// bounded invocation still drains everything eventually.
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				runCtx, cancelRun := context.WithTimeout(ctx, 5*time.Minute)
				report, err := orchestrator.Run(runCtx)
				cancelRun()
				if err != nil {
					logger.GetLogger().WithField("error", err).Error("background sync run failed")
					continue
				}
				if report.Processed > 0 {
					logger.GetLogger().
						WithField("processed", report.Processed).
						WithField("fully_handled", report.FullyHandled).
						Info("background sync run finished")
				}
			}
		}
	})

	port := app.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Interrupt signal received")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.GetLogger().WithField("error", err).Error("HTTP server shutdown failed")
		}
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Application stopped with error")
	}
}

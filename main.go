// File: servisync/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servisync/backend"
	"servisync/config"
	"servisync/handlers"
	"servisync/routes"
	"servisync/services/booking"
	"servisync/services/notification"
	"servisync/services/poller"
	"servisync/services/realtime"
	"servisync/services/review"
	"servisync/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	token := config.AppConfig.SessionToken
	identity, err := utils.ExtractIDFromToken(token)
	if err != nil {
		logger.Warn("could not extract identity from session token, snapshot cache is session-scoped only", zap.Error(err))
		identity = "session"
	}

	utils.InitCache()

	api := backend.NewClient(config.AppConfig.APIBaseURL, token, config.RequestTimeout())
	cache := booking.NewSnapshotCache(utils.GetCacheClient(), identity)
	notifier := notification.NewDefaultNotifier()
	store := booking.NewDefaultStore(api, notifier, cache, time.Local)

	// ReviewGate follows the store's snapshot stream for the whole session.
	gate := review.NewGate()
	snapshots, unsubscribe := store.Subscribe()
	go gate.Run(snapshots)

	// Release the previous identity's snapshot if the session owner changed,
	// then render last session's view while the first fetch is in flight.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 5*time.Second)
	if err := booking.ClearOnIdentityChange(startupCtx, utils.GetCacheClient(), identity); err != nil {
		logger.Warn("could not release previous session snapshot", zap.Error(err))
	}
	store.WarmStart(startupCtx)
	cancelStartup()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout())
		defer cancel()
		if err := store.FetchAll(ctx); err != nil {
			logger.Warn("initial booking fetch failed, poll will retry", zap.Error(err))
		}
	}()

	// One socket per session; the poll timer backstops it.
	channel := realtime.NewChannel(
		config.AppConfig.SocketURL,
		token,
		config.AppConfig.ReconnectAttempts,
		config.ReconnectBackoff(),
		store.ApplyRemoteEvent,
	)
	channel.Start()

	scheduler := poller.NewScheduler(config.PollInterval(), store.FetchAll)
	scheduler.Start()

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	hb := &handlers.HandlerBundle{
		Store:    store,
		Gate:     gate,
		Notifier: notifier,
	}
	routes.RegisterSyncRoutes(router, hb)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.GatewayPort,
		Handler: router,
	}
	go func() {
		logger.Info("gateway listening", zap.String("port", config.AppConfig.GatewayPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: gateway failed: %v", err)
		}
	}()

	// Block until shutdown, then release every session-scoped resource so no
	// update leaks into the next session.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	channel.Close()
	scheduler.Stop()
	unsubscribe()
	store.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("gateway shutdown was not clean", zap.Error(err))
	}
}

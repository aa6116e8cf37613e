package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmusial/convoy/internal/api"
	"github.com/tmusial/convoy/internal/auth"
	"github.com/tmusial/convoy/internal/avatars"
	"github.com/tmusial/convoy/internal/cache"
	"github.com/tmusial/convoy/internal/config"
	"github.com/tmusial/convoy/internal/directions"
	"github.com/tmusial/convoy/internal/journey"
	"github.com/tmusial/convoy/internal/places"
	"github.com/tmusial/convoy/internal/realtime"
	"github.com/tmusial/convoy/internal/service"
	"github.com/tmusial/convoy/internal/storage/sqlite"
	"github.com/tmusial/convoy/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	cacheStore, err := cache.New(cfg.CacheDir)
	if err != nil {
		slog.Error("failed to open cache", "dir", cfg.CacheDir, "error", err)
		os.Exit(1)
	}

	avatarStore, err := avatars.New(cfg.AvatarDir, cfg.PublicBaseURL+"/avatars")
	if err != nil {
		slog.Error("failed to open avatar store", "dir", cfg.AvatarDir, "error", err)
		os.Exit(1)
	}

	dirClient := directions.NewClient(cfg.DirectionsURL, cfg.MapsAPIKey)
	placeClient := places.NewClient(cfg.PlacesURL, cfg.MapsAPIKey)

	hub := realtime.NewHub()
	journeys := journey.NewManager(store, dirClient, cfg.JourneyInterval)

	destinationSvc := service.NewDestinationService(store, placeClient, cacheStore)
	if err := destinationSvc.EnsureDefaultCategories(context.Background()); err != nil {
		slog.Error("failed to seed categories", "error", err)
		os.Exit(1)
	}

	handler := &api.Handler{
		Auth:         auth.NewPasswordAuthenticator(store),
		JWT:          auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration),
		Users:        store,
		Groups:       service.NewGroupService(store, hub, journeys),
		Markers:      service.NewMarkerService(store, hub),
		Locations:    service.NewLocationService(store),
		Destinations: destinationSvc,
		Directory:    service.NewDirectoryService(store, cacheStore),
		Journeys:     journeys,
		Hub:          hub,
		Avatars:      avatarStore,
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	journeys.Shutdown()
}

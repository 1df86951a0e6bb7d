package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/civicmap/internal/adapters/assets"
	"github.com/samirrijal/civicmap/internal/adapters/http"
	natsadapter "github.com/samirrijal/civicmap/internal/adapters/nats"
	"github.com/samirrijal/civicmap/internal/adapters/nominatim"
	"github.com/samirrijal/civicmap/internal/adapters/postgres"
	"github.com/samirrijal/civicmap/internal/adapters/scene"
	"github.com/samirrijal/civicmap/internal/adapters/valkey"
	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/ports"
	"github.com/samirrijal/civicmap/internal/core/usecases"
	"github.com/samirrijal/civicmap/internal/pkg/config"
	"github.com/samirrijal/civicmap/internal/pkg/logging"
	"github.com/samirrijal/civicmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("civicmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{}

	// Asset source
	var source ports.AssetSource
	switch cfg.Data.Source {
	case config.SourceHTTP:
		source = assets.NewHTTPSource(cfg.Data.BaseURL, cfg.Data.BoundaryFile)
	case config.SourcePostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		deps.DB = db
		source = postgres.NewAssetSource(postgres.NewAmenityRepo(db), cfg.Data.BoundaryFile)
	default:
		source = assets.NewFileSource(cfg.Data.Dir, cfg.Data.BoundaryFile)
	}

	// Geocoder with optional cache
	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		c, err := valkey.New(valkey.Options{
			Addr:     cfg.Valkey.Addr,
			Prefix:   cfg.Valkey.Prefix,
			LocalTTL: time.Duration(cfg.Valkey.LocalTTL) * time.Second,
		})
		if err != nil {
			slog.Warn("valkey unavailable, geocoding uncached", "error", err)
		} else {
			defer c.Close()
			cache = c
			deps.Cache = c
		}
	}
	upstream := nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.RequestTimeout())
	geocoder := usecases.NewGeocodeService(upstream, cache, cfg.Geocoder.CacheTTL)

	// NATS scene events
	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, scenes are pushed directly", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			deps.Relay = natsadapter.NewSceneRelay(pub.Conn())
		}
	}

	settings := domain.MapSettings{
		DefaultView: domain.Viewport{
			Center: domain.GeoPoint{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
			Zoom:   cfg.Map.Zoom,
		},
		HighlightZoom:    cfg.Map.HighlightZoom,
		GeocodeZoom:      cfg.Map.GeocodeZoom,
		DefaultBaseLayer: cfg.Map.DefaultBaseLayer,
		SuggestDelay:     cfg.Geocoder.Debounce(),
		SuggestLimit:     cfg.Geocoder.SuggestLimit,
		IconBaseURL:      cfg.Data.IconBaseURL,
	}

	store := usecases.NewDataStore(domain.DefaultCategories)
	registry := usecases.NewLayerRegistry(domain.DefaultBaseLayers)
	catalog := usecases.NewCatalog(store, registry, geocoder, settings)
	sessions := usecases.NewSessionManager(catalog, func(id string, mobile bool) ports.Scene {
		return scene.New(store.Categories(), settings.IconBaseURL, scene.Options{Mobile: mobile, ChartTarget: true})
	}, publisher)
	defer sessions.Close()

	deps.Catalog = catalog
	deps.Sessions = sessions

	// Load assets in the background; sessions pick categories up as they land.
	loader := usecases.NewLoaderService(source, store, registry, publisher, cfg.Data.Concurrency, cfg.Data.IconBaseURL)
	go func() {
		start := time.Now()
		if err := loader.Run(ctx); err != nil {
			slog.Warn("asset load finished with errors", "error", err, "duration", time.Since(start).String())
			return
		}
		slog.Info("assets loaded", "categories", store.Completed(), "duration", time.Since(start).String())
	}()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // 64 KB max request body
		AppName:      "CivicMap API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "source", cfg.Data.Source)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

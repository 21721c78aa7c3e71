package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/solix-energy/solix/internal/analysis"
	"github.com/solix-energy/solix/internal/chat"
	"github.com/solix-energy/solix/internal/config"
	"github.com/solix-energy/solix/internal/dashboard"
	"github.com/solix-energy/solix/internal/db"
	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/geocoding/provider"
	"github.com/solix-energy/solix/internal/middleware"
	"github.com/solix-energy/solix/internal/settings"

	_ "github.com/solix-energy/solix/internal/geocoding/google"
	_ "github.com/solix-energy/solix/internal/geocoding/nominatim"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	geocoder, err := provider.NewProvider(provider.LoadFromEnv())
	if err != nil {
		log.Fatal("Failed to create geocoder: ", err)
	}
	log.Printf("Using %s geocoder", geocoder.Name())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	theme := settings.LoadTheme(ctx, openSettingsStore(cfg))

	registry := dashboard.NewRegistry(dashboard.Deps{
		Geocoder:        geocoder,
		Classifier:      district.NewClassifier(geocoder),
		Locator:         cfg.Locator(),
		Analyzer:        analysis.NewClient(cfg.Analysis.URL, cfg.Analysis.Timeout()),
		Replier:         chat.NewClient(cfg.Chat.URL, cfg.Chat.Timeout()),
		Rules:           cfg.FormRules(),
		DefaultPoint:    cfg.DefaultPoint(),
		ClassifyTimeout: cfg.ClassifyTimeout(),
	}, dashboard.DefaultIdleTTL)
	go registry.Run(ctx, 10*time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.SessionMiddleware(cfg.SecureCookies))
	r.Mount("/", dashboard.NewHandler(registry, theme).SetupRoutes())

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Server listening on port :%s...", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// openSettingsStore uses Postgres when DATABASE_URL is set and falls back to
// memory otherwise.
func openSettingsStore(cfg config.Config) settings.Store {
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set; preferences are kept in memory")
		return settings.NewMemoryStore()
	}

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := settings.Migrate(gdb); err != nil {
		log.Fatal("Failed to migrate settings: ", err)
	}
	return settings.NewGormStore(gdb)
}

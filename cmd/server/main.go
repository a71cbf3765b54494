package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/storage/memory/v2"

	"kisansense/internal/advisory"
	"kisansense/internal/config"
	"kisansense/internal/db"
	"kisansense/internal/email"
	"kisansense/internal/jobs"
	"kisansense/internal/metrics"
	"kisansense/internal/server"
	"kisansense/internal/services"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Load advisory content
	content, err := config.LoadContent(cfg.ContentFile)
	if err != nil {
		log.Fatalf("Failed to load content file %s: %v", cfg.ContentFile, err)
	}
	table, err := advisory.FromContent(content)
	if err != nil {
		log.Fatalf("Invalid content file %s: %v", cfg.ContentFile, err)
	}
	log.Printf("Loaded %d advisory rules in %d languages", len(table.Rules()), len(table.Languages()))

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if cfg.IsDev() {
		if err := database.SeedDevMessages(ctx); err != nil {
			log.Printf("Warning: Failed to seed dev messages: %v", err)
		}
	}

	// Initialize metrics
	metrics.Init(database)

	// Advisory responder, with translation when a key is set
	opts := []advisory.Option{
		advisory.WithObserver(func(ans advisory.Answer) {
			metrics.RecordAdvisoryLookup(ans.Outcome(), ans.Requested.Code)
		}),
	}
	if cfg.TranslateAPIKey != "" {
		translator, err := services.NewTranslator(ctx, cfg.TranslateAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize translation: %v", err)
		}
		opts = append(opts, advisory.WithTranslator(translator))
		log.Println("Translation enabled")
	} else {
		log.Println("TRANSLATE_API_KEY not set, answers limited to content file languages")
	}
	responder := advisory.NewResponder(table, opts...)

	srv := server.New(cfg)

	// Weather, cached in Redis when available
	var cache services.Cache
	if srv.Storage != nil {
		cache = srv.Storage
	} else {
		mem := memory.New()
		defer mem.Close()
		cache = mem
	}
	weather := services.NewWeatherClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cache, cfg.WeatherCacheTTL)
	if !weather.Enabled() {
		log.Println("OPENWEATHER_API_KEY not set, weather disabled")
	}

	// Disease detection
	classifier, closeClassifier, err := services.NewClassifier(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize disease classifier: %v", err)
	}
	defer closeClassifier()
	if backend := cfg.ResolvedDiseaseBackend(); backend != "" {
		log.Printf("Disease detection enabled (%s)", backend)
	} else {
		log.Println("No disease backend configured, crop doctor disabled")
	}

	// Initialize email notifier
	notifier := email.NewNotifier(cfg, database)
	if cfg.IsEmailEnabled() {
		log.Println("Email notifications enabled")
	}

	// Keep the weather cache warm for configured villages
	if weather.Enabled() && len(cfg.WeatherPrefetchCities) > 0 {
		prefetcher := jobs.NewWeatherPrefetcher(weather, notifier, cfg.WeatherPrefetchCities, cfg.WeatherPrefetchInterval)
		go prefetcher.Start(ctx)
	}

	if err := srv.RegisterRoutes(ctx, server.Deps{
		DB:        database,
		Content:   content,
		Responder: responder,
		Weather:   weather,
		Diagnoser: services.NewDiagnoser(classifier, responder),
		Notifier:  notifier,
	}); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	metrics.Flush()
	log.Println("Server exited")
}

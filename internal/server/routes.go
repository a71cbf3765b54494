package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kisansense/internal/advisory"
	"kisansense/internal/config"
	"kisansense/internal/db"
	"kisansense/internal/handlers"
	"kisansense/internal/handlers/api"
	"kisansense/internal/middleware"
)

// Deps are the services the routes are built from.
type Deps struct {
	DB        *db.DB
	Content   *config.ContentConfig
	Responder *advisory.Responder
	Weather   handlers.WeatherService
	Diagnoser handlers.DiagnosisService
	Notifier  handlers.ContactNotifier // May be nil
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, deps Deps) error {
	// Initialize middleware
	farmerMiddleware := middleware.NewFarmerMiddleware(s.Cfg.ChatHistoryLimit)
	requireFarmer := farmerMiddleware.RequireFarmer

	// Initialize handlers
	site := &handlers.Site{Cfg: s.Cfg, Content: deps.Content, Responder: deps.Responder}
	probeHandler := handlers.NewProbeHandler(deps.DB)
	farmerAuthHandler := handlers.NewFarmerAuthHandler(site)
	dashboardHandler := handlers.NewDashboardHandler(site, deps.Weather)
	chatHandler := handlers.NewChatHandler(site)
	diseaseHandler := handlers.NewDiseaseHandler(site, deps.Diagnoser)
	schemeHandler := handlers.NewSchemeHandler(site)
	weatherHandler := handlers.NewWeatherHandler(site, deps.Weather)
	newsHandler := handlers.NewNewsHandler(site)
	contactHandler := handlers.NewContactHandler(site, deps.DB, deps.Notifier)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Farmer session
	s.App.Get("/login", farmerAuthHandler.LoginPage)
	s.App.Post("/login", farmerAuthHandler.Login)
	s.App.Post("/logout", farmerAuthHandler.Logout)

	// Farmer pages
	s.App.Get("/", requireFarmer, dashboardHandler.Show)
	s.App.Get("/chat", requireFarmer, chatHandler.Show)
	s.App.Post("/chat", requireFarmer, chatHandler.Send)
	s.App.Post("/chat/clear", requireFarmer, chatHandler.Clear)
	s.App.Post("/language", requireFarmer, chatHandler.SetLanguage)
	s.App.Get("/disease", requireFarmer, diseaseHandler.Page)
	s.App.Post("/disease", requireFarmer, diseaseHandler.Diagnose)
	s.App.Get("/schemes", requireFarmer, schemeHandler.List)
	s.App.Post("/schemes/:id/apply", requireFarmer, schemeHandler.Apply)
	s.App.Get("/weather", requireFarmer, weatherHandler.Show)

	// Public pages
	s.App.Get("/news", farmerMiddleware.OptionalFarmer, newsHandler.List)
	s.App.Get("/contact", farmerMiddleware.OptionalFarmer, contactHandler.Page)
	s.App.Post("/contact", farmerMiddleware.OptionalFarmer, contactHandler.Submit)

	// JSON API
	adviceAPI := api.NewAdviceHandler(deps.Responder)
	contentAPI := api.NewContentHandler(deps.Content)
	weatherAPI := api.NewWeatherHandler(deps.Weather)
	diagnoseAPI := api.NewDiagnoseHandler(deps.Diagnoser, int64(s.Cfg.MaxUploadBytes()))

	v1 := s.App.Group("/api/v1")
	v1.Post("/advice", adviceAPI.Ask)
	v1.Get("/languages", adviceAPI.Languages)
	v1.Get("/schemes", contentAPI.Schemes)
	v1.Get("/schemes/:id", contentAPI.Scheme)
	v1.Get("/news", contentAPI.News)
	v1.Get("/weather", weatherAPI.Current)
	v1.Post("/diagnose", diagnoseAPI.Diagnose)

	// Officer console - only with OIDC configured
	if !s.Cfg.IsOfficerConsoleEnabled() {
		log.Println("OIDC not configured, officer console disabled")
		return nil
	}

	officerAuthHandler, err := handlers.NewOfficerAuthHandler(ctx, s.Cfg, deps.DB)
	if err != nil {
		return err
	}
	officerMiddleware := middleware.NewOfficerMiddleware(deps.DB)
	adminHandler := handlers.NewAdminHandler(s.Cfg, deps.Responder.Table(), deps.DB)

	s.App.Get("/officer/login", officerAuthHandler.Login)
	s.App.Get("/officer/callback", officerAuthHandler.Callback)
	s.App.Get("/officer/logout", officerAuthHandler.Logout)
	s.App.Get("/admin/logout", officerAuthHandler.Logout)

	s.App.Get("/admin/messages", officerMiddleware.RequireOfficer, adminHandler.Messages)
	s.App.Post("/admin/messages/:id/resolve", officerMiddleware.RequireOfficer, middleware.RequireResolver, adminHandler.Resolve)
	s.App.Get("/admin/advisory", officerMiddleware.RequireOfficer, adminHandler.Advisory)

	return nil
}

package api

import (
	"net/http"

	"github.com/clauseease/clauseease/internal/api/handler"
	custommw "github.com/clauseease/clauseease/internal/api/middleware"
	"github.com/clauseease/clauseease/internal/config"
	"github.com/clauseease/clauseease/internal/gateway/analyzer"
	"github.com/clauseease/clauseease/internal/gateway/pdfexport"
	"github.com/clauseease/clauseease/internal/repository/mysql"
	"github.com/clauseease/clauseease/internal/repository/redis"
	"github.com/clauseease/clauseease/internal/security"
	"github.com/clauseease/clauseease/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *mysql.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-Email"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Repositories
	userRepo := mysql.NewUserRepository(db)
	historyRepo := mysql.NewHistoryRepository(db)

	// Redis-backed helpers
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	analysisCache := redis.NewAnalysisCache(redisClient)

	// External gateways
	analyzerClient := analyzer.NewClient(cfg.Analyzer)
	pdfClient := pdfexport.NewClient(cfg.PDF)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager, cfg.Security.BcryptCost)
	analysisService := service.NewAnalysisService(
		analyzerClient,
		pdfClient,
		userRepo,
		historyRepo,
		analysisCache,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	analyzeHandler := handler.NewAnalyzeHandler(analysisService, cfg.Upload.Dir, cfg.Upload.MaxSizeMB)

	attribution := custommw.NewAttributionMiddleware(jwtManager)
	rateLimit := custommw.NewRateLimitMiddleware(rateLimiter)

	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(db))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(attribution.Attribute)
			r.With(rateLimit.Limit).Post("/analyze", analyzeHandler.Analyze)
			r.Get("/history", analyzeHandler.History)
			r.Post("/export-pdf", analyzeHandler.Export)
		})
	})

	return r
}

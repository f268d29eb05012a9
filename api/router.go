// api/router.go
package api

import (
	"database/sql"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Annany2002/sqlprompt/api/handlers"
	"github.com/Annany2002/sqlprompt/api/middleware"
	"github.com/Annany2002/sqlprompt/config"
	"github.com/Annany2002/sqlprompt/internal/client"
	"github.com/Annany2002/sqlprompt/internal/logger"
	"github.com/Annany2002/sqlprompt/internal/nl2sql"
	"github.com/Annany2002/sqlprompt/internal/service"
	"github.com/Annany2002/sqlprompt/internal/web"
)

var (
	customLog = logger.NewLogger()
)

const defaultRateLimit = 30

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(historyDB *sql.DB, cfg *config.Config, translator nl2sql.Translator) *gin.Engine {
	router := gin.Default() // Includes Logger and Recovery
	// No proxy is trusted, so ClientIP never reads X-Forwarded-For.
	if err := router.SetTrustedProxies(nil); err != nil {
		customLog.Warnf("Failed to reset trusted proxies: %v", err)
	}

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	router.Use(middleware.Metrics())
	// Runs after Logger/Recovery and wraps every handler below.
	router.Use(middleware.ErrorHandler())
	router.SetHTMLTemplate(web.Templates())

	limit := cfg.RateLimitPerMinute
	if limit <= 0 {
		limit = defaultRateLimit
	}
	rateLimited := middleware.RateLimitMiddleware(middleware.NewRateLimiter(limit, time.Minute))

	svc := service.New(translator, historyDB, service.Options{
		QueryTimeout:     cfg.QueryTimeout,
		FuzzyThreshold:   cfg.FuzzyThreshold,
		SchemaTableLimit: cfg.SchemaTableLimit,
		SQLiteTargetDir:  cfg.SQLiteTargetDir,
		DeniedPaths:      []string{filepath.Join(cfg.HistoryDbDir, cfg.HistoryDbFile)},
	})

	var querier handlers.Querier = handlers.LocalQuerier{Service: svc}
	if cfg.QueryEndpoint != "" {
		customLog.Printf("Form UI will submit to remote endpoint %s", cfg.QueryEndpoint)
		querier = client.New(cfg.QueryEndpoint, cfg.QueryTimeout+cfg.LLMTimeout)
	}

	// Initialize Handlers
	healthHandler := handlers.NewHealthHandler(historyDB)
	queryHandler := handlers.NewQueryHandler(svc)
	uiHandler := handlers.NewUIHandler(querier)
	authHandler := handlers.NewAuthHandler(cfg)
	historyHandler := handlers.NewHistoryHandler(historyDB)

	// --- Public Routes ---
	router.GET("/ping", healthHandler.Ping)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/", uiHandler.Index)
	router.POST("/", rateLimited, uiHandler.Submit)
	router.POST("/query", rateLimited, queryHandler.Query)
	router.POST("/connection/test", rateLimited, queryHandler.TestConnection)
	router.POST("/auth/login", rateLimited, authHandler.Login)

	// --- Protected Routes ---
	apiRoutes := router.Group("/api/v1")
	apiRoutes.Use(middleware.AuthMiddleware(cfg))
	{
		apiRoutes.GET("/history", historyHandler.ListHistory)
		apiRoutes.GET("/history/:id", historyHandler.GetHistory)
		apiRoutes.DELETE("/history/:id", historyHandler.DeleteHistory)
	}

	return router
}

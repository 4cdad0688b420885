package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"construction-backoffice/internal/auth"
	"construction-backoffice/internal/config"
	"construction-backoffice/internal/database"
	"construction-backoffice/internal/handlers"
	"construction-backoffice/internal/ratelimit"
	"construction-backoffice/internal/scheduler"
	"construction-backoffice/internal/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	store        database.Store
	gormDB       *database.GormDB
	searchClient *search.SearchClient
	appConfig    *config.Config
	rateLimiter  *ratelimit.RateLimiter
	appScheduler *scheduler.Scheduler
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	configPath := getEnv("CONFIG_PATH", "/app/config/backoffice.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "postgres")
	}

	switch dbType {
	case "mysql":
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL

		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		gormDB, err = database.NewGormMySQL(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "site_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "site_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "site_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}

	case "postgres_basic":
		// Raw database/sql store: scalar flat CRUD only, ledger entry
		// routes stay disabled.
		log.Println("Using PostgreSQL (basic store)")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		basicDB, err := database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "site_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "site_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "site_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer basicDB.Close()

		if err := basicDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		store = basicDB

	default:
		log.Println("Using PostgreSQL with GORM")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		gormDB, err = database.NewGormPostgres(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "site_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "site_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "site_db"),
			pgCfg.SSLMode,
		)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
	}

	if gormDB != nil {
		defer gormDB.Close()
		if err := gormDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		store = gormDB
	}

	// Initialize Meilisearch using config
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "")
	}
	if meilisearchHost != "" {
		meilisearchKey := appConfig.Search.Meilisearch.APIKey
		if meilisearchKey == "" {
			meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
		}

		searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)

		// Wait for Meilisearch to be ready
		time.Sleep(2 * time.Second)

		if err := searchClient.InitIndex(); err != nil {
			log.Printf("Warning: Failed to initialize search index: %v", err)
		}
	} else {
		log.Println("Search disabled: no Meilisearch host configured")
	}

	// Initialize rate limiter for the destructive inventory routes
	rateLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)

	// Initialize and start the reconciliation scheduler (full store only:
	// it rewrites paid-amount caches from payment history)
	if gormDB != nil {
		appScheduler = scheduler.NewScheduler(store, searchClient, appConfig)
		if err := appScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer appScheduler.Stop()
	}

	resolver := auth.NewConfigResolver(appConfig.Auth)
	projectID := appConfig.Inventory.ProjectID

	inventoryHandler := handlers.NewInventoryHandler(store, projectID, appConfig.Inventory.DeleteConfirmToken, searchClient)
	adminHandler := handlers.NewAdminHandler(store, appScheduler, projectID)

	// Setup Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-Role", "X-Session-ID"},
		AllowCredentials: true,
	}))

	r.GET("/health", healthCheck)

	// Every inventory route resolves the caller's capability once up front;
	// no-access callers never learn the module exists.
	api := r.Group("/api", auth.Middleware(resolver, appConfig.Auth.DefaultRole, auth.ModuleUnitInventory))

	view := api.Group("", auth.RequireView())
	{
		view.GET("/flats", inventoryHandler.ListFlats)
		view.GET("/inventory/folders", inventoryHandler.GetFolders)
		view.GET("/inventory/nav", inventoryHandler.GetNavState)
		view.POST("/inventory/navigate", inventoryHandler.Navigate)
		view.GET("/search", searchFlats)
		view.GET("/ratelimit/stats", getRateLimitStats)
	}

	enter := api.Group("", auth.RequireEnter())
	{
		enter.POST("/inventory/generate", rateLimitMiddleware(), inventoryHandler.Generate)
	}

	edit := api.Group("", auth.RequireEditDelete())
	{
		edit.POST("/inventory/cascade-delete", rateLimitMiddleware(), inventoryHandler.CascadeDelete)
		edit.DELETE("/flats/:id", inventoryHandler.DeleteFlat)
		edit.POST("/search/reindex", reindexAllFlats)
	}

	// Ledger routes need the full store: payment history and extra work
	// live in child tables the basic store does not load.
	if gormDB != nil {
		ledgerHandler := handlers.NewLedgerHandler(store, searchClient)

		view.GET("/flats/:id", ledgerHandler.GetFlat)

		edit.PUT("/flats/:id", ledgerHandler.UpdateDetails)
		edit.PUT("/flats/:id/status", ledgerHandler.SetStatus)
		edit.PUT("/flats/:id/total-amount", ledgerHandler.SetTotalAmount)
		edit.POST("/flats/:id/payments", ledgerHandler.AddPayment)
		edit.POST("/flats/:id/extra-works", ledgerHandler.AddExtraWork)
		edit.POST("/flats/:id/documents", ledgerHandler.AddDocument)

		admin := api.Group("/admin", auth.RequireEditDelete())
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/block-stats", adminHandler.GetBlockStats)
			admin.GET("/changes/recent", adminHandler.GetRecentChanges)
			admin.GET("/deletions/logs", adminHandler.GetDeleteLogs)
			admin.POST("/scheduler/run", adminHandler.TriggerReconciliation)
		}

		log.Println("Ledger and admin API routes registered")
	}

	port := getEnvOrConfig(appConfig.Server.Port, "PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func searchFlats(c *gin.Context) {
	if searchClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search not configured"})
		return
	}

	params := search.FilterParams{
		Query:     c.Query("q"),
		ProjectID: appConfig.Inventory.ProjectID,
		Block:     c.Query("block"),
		Floor:     c.Query("floor"),
		SortBy:    c.Query("sort"),
	}
	if statuses := c.Query("statuses"); statuses != "" {
		params.Statuses = strings.Split(statuses, ",")
	}
	if types := c.Query("types"); types != "" {
		params.Types = strings.Split(types, ",")
	}

	docs, err := searchClient.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flats": docs,
		"count": len(docs),
	})
}

func reindexAllFlats(c *gin.Context) {
	if searchClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search not configured"})
		return
	}

	flats, err := store.ListFlats(appConfig.Inventory.ProjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := searchClient.IndexFlats(flats); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"indexed": len(flats),
	})
}

func getRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, rateLimiter.GetStats())
}

// rateLimitMiddleware returns a Gin middleware that enforces rate limiting
func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimiter.AllowRequest() {
			stats := rateLimiter.GetStats()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
				"stats":   stats,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

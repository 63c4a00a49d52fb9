package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rdd81/smart-budget-app/internal/config"
	_ "github.com/rdd81/smart-budget-app/internal/docs" // swagger docs
	"github.com/rdd81/smart-budget-app/internal/handlers"
	"github.com/rdd81/smart-budget-app/internal/middleware"
)

const (
	// healthTimeout bounds the database ping behind /api/health.
	healthTimeout = 2 * time.Second
	// maxLimitedUsers caps how many per-user bulk limiters are retained.
	maxLimitedUsers = 10000
)

// RouterConfig carries everything NewRouter needs besides the services.
type RouterConfig struct {
	Config   *config.Config
	Gatherer prometheus.Gatherer
	// Ping reports database reachability for the health check. Nil skips it.
	Ping func(ctx context.Context) error
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(rc RouterConfig, svc *Services) *gin.Engine {
	cfg := rc.Config

	categorizationHandler := handlers.NewCategorizationHandler(svc.Categorization, svc.Metrics)
	bulkHandler := handlers.NewBulkCategorizationHandler(svc.Bulk)
	categoryHandler := handlers.NewCategoryHandler(svc.Category, svc.Audit)
	ruleHandler := handlers.NewRuleHandler(svc.Rule, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if rc.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(rc.Gatherer, promhttp.HandlerOpts{})))
	}
	router.GET("/api/health", health(rc.Ping))

	v1 := router.Group("/api/v1")
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	operator := middleware.OperatorKeyMiddleware(cfg.OperatorAPIKey)
	bulkLimiter := middleware.NewUserRateLimiter(cfg.BulkRateLimitPerMinute, cfg.BulkRateBurst, maxLimitedUsers)

	// Categorization routes
	categorization := protected.Group("/categorization")
	categorization.POST("/suggest", categorizationHandler.SuggestCategory)
	categorization.GET("/metrics", categorizationHandler.GetMetrics)
	categorization.GET("/rules", ruleHandler.GetRules)
	categorization.POST("/rules", operator, ruleHandler.CreateRule)
	categorization.DELETE("/rules/:id", operator, ruleHandler.DeleteRule)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.POST("/bulk-categorize", bulkLimiter.Middleware(), bulkHandler.StartBulkCategorization)
	transactions.GET("/bulk-categorize", bulkHandler.ListBulkCategorizationJobs)
	transactions.GET("/bulk-categorize/:jobId", bulkHandler.GetBulkCategorizationJob)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Category routes
	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.POST("", operator, categoryHandler.CreateCategory)
	categories.DELETE("/:id", operator, categoryHandler.DeleteCategory)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Location, Retry-After, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}

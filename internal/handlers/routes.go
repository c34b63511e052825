package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"baul-admin-api/internal/middleware"
	"baul-admin-api/internal/services"
)

const (
	// DefaultPricingRate is the per-client limit of the public pricing endpoint
	DefaultPricingRate = "60-M"

	pricingPath         = "/api/precios"
	defaultRateLimitRPS = 100
	maxRequestSize      = maxUploadSize + 1<<20
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	ProductService services.ProductService
	StatsService   services.StatsService
	PricingService services.PricingService
	ImportService  services.ImportService
	AuthService    services.AuthService
	TokenAuth      *middleware.AuthService
	Logger         *logrus.Logger

	// PricingRate is a ulule limiter rate such as "60-M"
	PricingRate string
	// RateLimitRPS is the process-wide request budget
	RateLimitRPS float64
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) error {
	productHandler := NewProductHandler(config.ProductService, config.ImportService)
	statsHandler := NewStatsHandler(config.StatsService)
	pricingHandler := NewPricingHandler(config.PricingService, config.Logger)
	authHandler := NewAuthHandler(config.AuthService, config.TokenAuth)

	rate := config.PricingRate
	if rate == "" {
		rate = DefaultPricingRate
	}
	pricingLimit, err := middleware.ClientRateLimit(rate)
	if err != nil {
		return fmt.Errorf("failed to configure pricing rate limit: %w", err)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "baul-admin-api",
			"version": "1.0.0",
		})
	})

	// Public pricing endpoint
	precios := router.Group(pricingPath)
	precios.Use(middleware.PublicCORS(), pricingLimit)
	{
		precios.GET("", pricingHandler.GetPrices)
		precios.POST("", pricingHandler.PostPrices)
		precios.OPTIONS("", func(*gin.Context) {})
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.CORS())
	v1.Use(middleware.ContentTypeValidation("application/json", "multipart/form-data"))
	{
		v1.OPTIONS("/*path", func(*gin.Context) {})

		// Authentication routes (no auth required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)

			authProtected := auth.Group("")
			authProtected.Use(middleware.Authentication(config.TokenAuth))
			{
				authProtected.GET("/me", authHandler.GetCurrentUser)
			}
		}

		// Protected API routes
		api := v1.Group("")
		api.Use(middleware.Authentication(config.TokenAuth))
		api.Use(middleware.Authorization(middleware.RoleAdmin))
		api.Use(middleware.AuditLogger(config.Logger))
		{
			productos := api.Group("/productos")
			{
				productos.POST("", productHandler.CreateProduct)
				productos.GET("", productHandler.ListProducts)
				productos.GET("/categorias", productHandler.ListCategories)
				productos.GET("/plantilla", productHandler.DownloadTemplate)
				productos.GET("/exportar", productHandler.ExportProducts)
				productos.POST("/eliminar", productHandler.DeleteProducts)
				productos.POST("/editar", productHandler.SetPublished)
				productos.POST("/importar", productHandler.ImportProducts)
				productos.GET("/importaciones", productHandler.ListImports)
				productos.GET("/importaciones/:nombre", productHandler.DownloadImport)
				productos.DELETE("/importaciones/:nombre", productHandler.DeleteImport)
				productos.GET("/:id", productHandler.GetProduct)
				productos.PATCH("/:id/precio", productHandler.UpdatePrice)
				productos.PATCH("/:id/inventario", productHandler.UpdateInventory)
			}

			estadisticas := api.Group("/estadisticas")
			{
				estadisticas.GET("/ventas", statsHandler.SalesReport)
			}
		}
	}

	return nil
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	router.Use(middleware.Recovery(config.Logger))

	// Request ID
	router.Use(middleware.RequestID())

	// Structured logging
	router.Use(middleware.StructuredLogger(config.Logger))

	// Security headers
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.PublicCORSHeaders(pricingPath))

	// Request size limit, room for a full import upload
	router.Use(middleware.RequestSizeLimit(maxRequestSize))

	rps := config.RateLimitRPS
	if rps <= 0 {
		rps = defaultRateLimitRPS
	}
	router.Use(middleware.RateLimiter(rps, int(rps*2)))
}

// SetupDevelopmentRoutes adds development-only routes
func SetupDevelopmentRoutes(router *gin.Engine, config *RouterConfig) {
	dev := router.Group("/dev")
	{
		// Generate an admin token for testing
		dev.POST("/token", func(c *gin.Context) {
			token, err := config.TokenAuth.GenerateToken(
				"dev-admin",
				"dev",
				"dev@baul.local",
				[]string{string(middleware.RoleAdmin)},
			)
			if err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"token": token})
		})
	}
}

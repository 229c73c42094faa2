// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cueshop/billiard-backend/internal/cache"
	"github.com/cueshop/billiard-backend/internal/config"
	"github.com/cueshop/billiard-backend/internal/handlers"
	"github.com/cueshop/billiard-backend/internal/middleware"
	"github.com/cueshop/billiard-backend/internal/services"
	"github.com/cueshop/billiard-backend/internal/utils"
)

// Dependencies are the external collaborators of the API. Nil fields disable the
// feature that needs them.
type Dependencies struct {
	Storage  services.MediaHost
	Mailer   services.Mailer
	Payments services.PaymentGateway
	Cache    *cache.Cache
}

// Initialize builds the production dependencies from the configuration. The
// returned cleanup releases them and must run after the server has stopped.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, func(), error) {
	storageService, err := services.NewStorageService(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	productCache, err := cache.Connect(context.Background(), cfg.Redis)
	if err != nil {
		// The cache is an optimisation; run without it.
		logrus.WithError(err).Warn("Redis unavailable, product cache disabled")
		productCache = nil
	}

	deps := Dependencies{
		Storage: storageService,
		Mailer:  services.NewNotificationService(cfg.Email),
		Cache:   productCache,
	}
	if gateway := services.NewStripeGateway(cfg.Payment.StripeSecretKey); gateway != nil {
		deps.Payments = gateway
	}

	cleanup := func() {
		if err := productCache.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close Redis connection")
		}
	}

	r, err := Setup(db, cfg, deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return r, cleanup, nil
}

func Setup(db *gorm.DB, cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	// Initialize services
	identityResolver := services.NewIdentityResolver(cfg.Cookie)
	authService := services.NewAuthService(db, cfg, deps.Mailer)
	mediaService := services.NewMediaService(db, deps.Storage, deps.Cache)
	productService := services.NewProductService(db, deps.Cache, mediaService)
	typeService := services.NewTypeService(db)
	characteristicService := services.NewCharacteristicService(db, deps.Cache)
	cartService := services.NewCartService(db)
	paymentService := services.NewPaymentService(db, deps.Payments, cfg.Payment)
	adminService := services.NewAdminService(db)
	userService := services.NewUserService(db)
	orderService, err := services.NewOrderService(db)
	if err != nil {
		return nil, err
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Cookie)
	productHandler := handlers.NewProductHandler(productService)
	typeHandler := handlers.NewTypeHandler(typeService)
	characteristicHandler := handlers.NewCharacteristicHandler(characteristicService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	cartHandler := handlers.NewCartHandler(cartService, identityResolver)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(adminService)
	userHandler := handlers.NewUserHandler(userService, cfg.Cookie)

	// Set JWT secret and auth cookie
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	middleware.SetAuthCookieName(cfg.Cookie.AuthName)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowOrigins))
	r.Use(middleware.I18nMiddleware())
	if cfg.RateLimit.Enabled {
		r.Use(middleware.GeneralRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	admin := []gin.HandlerFunc{middleware.AdminRequired(), middleware.AuditLogMiddleware(db)}
	withAdmin := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, admin...), h)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Authentication routes
	auth := r.Group("/auth")
	{
		if cfg.RateLimit.Enabled {
			limiter := middleware.AuthRateLimit(cfg.RateLimit.AuthPerMinute)
			auth.POST("/register", limiter, authHandler.Register)
			auth.POST("/login", limiter, authHandler.Login)
			auth.POST("/verify", limiter, authHandler.Verify)
		} else {
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/verify", authHandler.Verify)
		}
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
	}

	users := r.Group("/users", middleware.AuthRequired())
	{
		users.PATCH("/profile", userHandler.UpdateProfile)
		users.DELETE("/account", userHandler.DeleteAccount)
	}

	// Catalog routes
	products := r.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("", withAdmin(productHandler.CreateProduct)...)
		products.PATCH("/:id", withAdmin(productHandler.UpdateProduct)...)
		products.DELETE("/:id", withAdmin(productHandler.DeleteProduct)...)
	}

	types := r.Group("/types")
	{
		types.GET("", typeHandler.GetTypes)
		types.GET("/:id", typeHandler.GetType)
		types.POST("", withAdmin(typeHandler.CreateType)...)
		types.PATCH("/:id", withAdmin(typeHandler.UpdateType)...)
		types.DELETE("/:id", withAdmin(typeHandler.DeleteType)...)
	}

	characteristics := r.Group("/characteristics")
	{
		characteristics.GET("", characteristicHandler.GetCharacteristics)
		characteristics.GET("/:id", characteristicHandler.GetCharacteristic)
		characteristics.POST("", withAdmin(characteristicHandler.CreateCharacteristic)...)
		characteristics.PATCH("/:id", withAdmin(characteristicHandler.UpdateCharacteristic)...)
		characteristics.DELETE("/:id", withAdmin(characteristicHandler.DeleteCharacteristic)...)
	}

	media := r.Group("/media")
	{
		media.GET("", mediaHandler.GetMedia)
		media.GET("/:id", mediaHandler.GetMediaItem)
		media.POST("", withAdmin(mediaHandler.CreateMedia)...)
		media.POST("/sign", withAdmin(mediaHandler.SignUpload)...)
		media.POST("/confirm", withAdmin(mediaHandler.ConfirmUpload)...)
		media.POST("/delete-many", withAdmin(mediaHandler.DeleteMany)...)
		media.PATCH("/:id", withAdmin(mediaHandler.UpdateMedia)...)
		media.DELETE("/:id", withAdmin(mediaHandler.DeleteMedia)...)
	}

	// Cart routes
	cart := r.Group("/cart")
	cart.Use(middleware.OptionalAuth())
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/add", cartHandler.AddItem)
		cart.POST("/update", cartHandler.UpdateItem)
		cart.POST("/remove", cartHandler.RemoveItem)
		cart.POST("/clear", cartHandler.Clear)
	}

	// Order routes
	orders := r.Group("/orders")
	{
		orders.GET("", middleware.AuthRequired(), orderHandler.GetOrders)
		orders.POST("", middleware.OptionalAuth(), orderHandler.CreateOrder)
		orders.GET("/:id", middleware.AuthRequired(), orderHandler.GetOrder)
		orders.PATCH("/:id", withAdmin(orderHandler.UpdateOrder)...)
		orders.DELETE("/:id", withAdmin(orderHandler.DeleteOrder)...)
		orders.POST("/:id/payment", paymentHandler.CreatePayment)
		orders.POST("/:id/payment/confirm", paymentHandler.ConfirmPayment)
	}

	// Admin dashboard
	adminGroup := r.Group("/admin")
	adminGroup.Use(admin...)
	{
		adminGroup.GET("/dashboard/stats", adminHandler.GetDashboardStats)
		adminGroup.GET("/users", adminHandler.GetUsers)
		adminGroup.GET("/audit-logs", adminHandler.GetAuditLogs)
	}

	return r, nil
}

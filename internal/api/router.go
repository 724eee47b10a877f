package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/app"
	iauth "github.com/dineqr/dineqr/internal/auth"
	"github.com/dineqr/dineqr/internal/handlers"
	"github.com/dineqr/dineqr/internal/middleware"
	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/internal/storage"
)

// Dependencies bundles the constructed services the router mounts.
type Dependencies struct {
	DB           *gorm.DB
	Tokens       *iauth.TokenService
	Relay        *iauth.SessionRelay
	Users        *services.UserService
	Verification *services.VerificationService
	Restaurants  *services.RestaurantService
	Categories   *services.CategoryService
	Dishes       *services.DishService
	Menus        *services.MenuService
	Images       *storage.DiskImageStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies, cfg *app.Config) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.Tokens == nil || deps.Relay == nil {
		return nil, fmt.Errorf("token service and session relay must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware. RequestID must precede SessionContext: the relay is
	// keyed by request id and the cookie write happens when SessionContext
	// regains control after the handler chain.
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if cfg.Server.RateLimit.Enabled {
		maxRequests := cfg.Server.RateLimit.MaxRequests
		window := cfg.Server.RateLimit.Window
		if maxRequests <= 0 {
			maxRequests = 120
		}
		if window <= 0 {
			window = time.Minute
		}
		r.Use(middleware.RateLimit(maxRequests, window))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.SessionContext(deps.Tokens, deps.Relay, middleware.CookieSettings{
		Secure: cfg.Server.Production,
		MaxAge: int(cfg.Auth.TokenServiceConfig().SessionTTL / time.Second),
	}))

	r.NoRoute(middleware.NotFoundHandler)

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(deps.DB))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Verification, deps.Tokens, deps.Relay)
	menuHandler := handlers.NewMenuHandler(deps.Menus)
	qrHandler := handlers.NewQRHandler(deps.Menus, cfg.Server.BaseURL)
	restaurantHandler := handlers.NewRestaurantHandler(deps.Restaurants)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories)
	dishHandler := handlers.NewDishHandler(deps.Dishes)

	// Public routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/send-code", authHandler.SendCode)
		auth.POST("/verify-code", authHandler.VerifyCode)
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.Me)
	}
	r.GET("/api/menu/:restaurantId", menuHandler.Get)
	r.GET("/api/qr/:restaurantId", qrHandler.Get)

	if deps.Images != nil {
		r.Static("/uploads", deps.Images.Root())
	}

	// Protected routes
	api := r.Group("/api", middleware.RequireUser())
	api.PATCH("/auth/profile", authHandler.UpdateProfile)

	restaurants := api.Group("/restaurants")
	{
		restaurants.POST("", restaurantHandler.Create)
		restaurants.GET("", restaurantHandler.List)
		restaurants.GET("/:id", restaurantHandler.Get)
		restaurants.PUT("/:id", restaurantHandler.Update)
		restaurants.DELETE("/:id", restaurantHandler.Delete)

		restaurants.POST("/:id/categories", categoryHandler.Create)
		restaurants.GET("/:id/categories", categoryHandler.List)
		restaurants.PUT("/:id/categories/:categoryId", categoryHandler.Update)
		restaurants.DELETE("/:id/categories/:categoryId", categoryHandler.Delete)

		restaurants.POST("/:id/dishes", dishHandler.Create)
		restaurants.GET("/:id/dishes", dishHandler.List)
		restaurants.GET("/:id/dishes/:dishId", dishHandler.Get)
		restaurants.PUT("/:id/dishes/:dishId", dishHandler.Update)
		restaurants.DELETE("/:id/dishes/:dishId", dishHandler.Delete)
	}

	if deps.Images != nil {
		uploadHandler := handlers.NewUploadHandler(deps.Images)
		api.POST("/uploads", uploadHandler.Upload)
	}

	return r, nil
}

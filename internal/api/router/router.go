package router

import (
	"fmt"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/quickcart/config"
	_ "github.com/d60-Lab/quickcart/docs"
	"github.com/d60-Lab/quickcart/internal/api/handler"
	"github.com/d60-Lab/quickcart/internal/api/middleware"
	"github.com/d60-Lab/quickcart/internal/auth"
)

// Setup 注册中间件与全部路由
func Setup(cfg *config.Config, h *handler.Handler, tokens *auth.Manager) (*gin.Engine, error) {
	if err := handler.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	authLimit, err := middleware.IPRateLimit(cfg.Server.AuthRate)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.RequestLogger())
	r.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authed := middleware.Auth(tokens)
	admin := middleware.AdminOnly()
	driver := middleware.DriverOnly()

	api := r.Group("/api")
	{
		a := api.Group("/auth", authLimit)
		a.POST("/register", h.Register)
		a.POST("/login", h.Login)

		products := api.Group("/products")
		products.GET("", h.ListProducts)
		products.GET("/stats/category", authed, admin, h.CategoryStats)
		products.GET("/stats/lowstock", authed, admin, h.LowStock)
		products.GET("/:id", authed, admin, h.GetProduct)
		products.POST("", authed, admin, h.CreateProduct)
		products.PUT("/:id", authed, admin, h.UpdateProduct)
		products.DELETE("/:id", authed, admin, h.DeleteProduct)

		categories := api.Group("/categories")
		categories.GET("", h.ListCategories)
		categories.POST("", authed, admin, h.CreateCategory)
		categories.PUT("/:id", authed, admin, h.UpdateCategory)
		categories.DELETE("/:id", authed, admin, h.DeleteCategory)

		orders := api.Group("/orders", authed)
		orders.POST("", h.PlaceOrder)
		orders.GET("", admin, h.ListOrders)
		orders.GET("/myorders", h.MyOrders)
		orders.GET("/stats", admin, h.RevenueStats)
		orders.GET("/stats/count", admin, h.OrderCountStats)
		orders.GET("/:id", admin, h.GetOrder)
		orders.PUT("/:id/status", admin, h.UpdateOrderStatus)
		orders.PUT("/:id/cancel", h.CancelOrder)

		wallet := api.Group("/wallet", authed)
		wallet.GET("", h.GetWallet)
		wallet.POST("/add", h.TopUp)

		users := api.Group("/users", authed)
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
		users.GET("/addresses", h.ListAddresses)
		users.POST("/addresses", h.AddAddress)

		delivery := api.Group("/delivery", authed, driver)
		delivery.GET("/available", h.AvailableDeliveries)
		delivery.GET("/my-deliveries", h.MyDeliveries)
		delivery.POST("/:id/accept", h.AcceptDelivery)
		delivery.PUT("/:id/complete", h.CompleteDelivery)
	}
	return r, nil
}

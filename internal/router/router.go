// Package router assembles the Echo instance: repositories, handlers,
// the middleware chain and the route table.
package router

import (
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mwangik/farm-produce-market/internal/config"
	"github.com/mwangik/farm-produce-market/internal/handler"
	"github.com/mwangik/farm-produce-market/internal/middleware"
	"github.com/mwangik/farm-produce-market/internal/model"
	"github.com/mwangik/farm-produce-market/internal/repository"
)

// Deps carries everything the route table needs.
type Deps struct {
	Cfg      config.Config
	RateCfg  config.RateLimitConfig
	CacheCfg config.CacheConfig
	DB       *sql.DB
	Redis    *redis.Client
	Log      *zap.Logger
}

// New builds the fully wired Echo instance.
func New(d Deps) *echo.Echo {
	users := repository.NewUserRepo(d.DB)
	tokens := repository.NewTokenRepo(d.DB)
	listings := repository.NewListingRepo(d.DB)
	interactions := repository.NewInteractionRepo(d.DB)
	preferences := repository.NewPreferenceRepo(d.DB)
	reference := repository.NewReferenceRepo(d.DB)
	audits := repository.NewAuditRepo(d.DB)

	auth := handler.NewAuthHandler(d.Cfg, users, tokens, d.Log)
	farmer := handler.NewFarmerHandler(listings, interactions, d.Log)
	buyer := handler.NewBuyerHandler(listings, interactions, preferences, d.Log)
	public := handler.NewPublicHandler(listings, reference, d.Log)
	health := handler.NewHealthHandler(d.DB, d.Redis)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestTimeout(10 * time.Second))
	e.Use(middleware.NewTokenBucket(d.RateCfg, d.Redis))

	requireAuth := middleware.JWTAuth(d.Cfg.JWTSecret, users)
	audited := middleware.AuditTrail(audits, d.Log)

	// Probes and metrics sit outside /api.
	e.GET("/health", health.Health)
	e.GET("/live", health.Live)
	e.GET("/ready", health.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	authGroup := api.Group("/auth", audited)
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)
	authGroup.POST("/refresh", auth.Refresh)
	authGroup.POST("/logout", auth.Logout, requireAuth)
	authGroup.GET("/profile", auth.GetProfile, requireAuth)
	authGroup.PUT("/profile", auth.UpdateProfile, requireAuth)
	authGroup.PUT("/change-password", auth.ChangePassword, requireAuth)

	publicGroup := api.Group("/public", middleware.ResponseCache(d.CacheCfg, d.Redis))
	publicGroup.GET("/categories", public.Categories)
	publicGroup.GET("/locations", public.Locations)
	publicGroup.GET("/listings", public.Listings)

	farmerGroup := api.Group("/farmer", requireAuth, middleware.RequireRole(model.RoleFarmer), audited)
	farmerGroup.POST("/listings", farmer.CreateListing)
	farmerGroup.GET("/listings", farmer.ListOwnListings)
	farmerGroup.PUT("/listings/:id", farmer.UpdateListing)
	farmerGroup.DELETE("/listings/:id", farmer.DeleteListing)
	farmerGroup.GET("/dashboard", farmer.Dashboard)

	buyerGroup := api.Group("/buyer", requireAuth, middleware.RequireRole(model.RoleBuyer), audited)
	buyerGroup.GET("/listings", buyer.QueryListings)
	buyerGroup.GET("/listings/search", buyer.SearchListings)
	buyerGroup.GET("/listings/:id", buyer.GetListing)
	buyerGroup.POST("/interactions", buyer.RecordInteraction)
	buyerGroup.GET("/preferences", buyer.GetPreferences)
	buyerGroup.POST("/preferences", buyer.SavePreferences)
	buyerGroup.GET("/dashboard", buyer.Dashboard)

	return e
}

package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/internship-api/api/swagger"
	"github.com/noah-isme/internship-api/internal/handler"
	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/pkg/config"
	"github.com/noah-isme/internship-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/internship-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/internship-api/pkg/middleware/requestid"
)

// Router builds the HTTP engine.
func (c *Container) Router() *gin.Engine {
	if c.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(c.Logger))
	r.Use(corsmiddleware.New(c.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(c.Metrics))

	checks := map[string]handler.ReadinessCheck{
		"database": c.DB.PingContext,
	}
	if c.cache != nil {
		checks["redis"] = c.cache.Ping
	}
	metricsHandler := handler.NewMetricsHandler(c.Metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if c.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	operations := handler.NewOperationHandler(handler.OperationServices{
		Auth:        c.Auth,
		Users:       c.Users,
		Roles:       c.Roles,
		Profiles:    c.Profiles,
		Internships: c.Internships,
		Evaluations: c.Evaluations,
		Exports:     c.Exports,
	}, c.Metrics, c.Logger)
	exports := handler.NewExportHandler(c.Exports)

	api := r.Group(c.Config.APIPrefix)
	api.POST("/query", middleware.OptionalJWT(c.Auth), operations.Query)
	api.GET("/export/:token", exports.Download)

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found"}})
	})
	return r
}

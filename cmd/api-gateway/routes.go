package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/clinic-scheduling-api/internal/handler"
	"github.com/noah-isme/clinic-scheduling-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	"github.com/noah-isme/clinic-scheduling-api/pkg/config"
)

func registerRoutes(r *gin.Engine, cfg *config.Config, a *app, metrics *handler.MetricsHandler) {
	r.GET("/health", metrics.Health)
	r.GET("/ready", metrics.Ready)
	r.GET("/metrics", metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	// Public reads used by the booking widget.
	therapists := api.Group("/therapists/:id")
	therapists.GET("/availability", a.availability.Get)
	therapists.GET("/slots", a.slots.Slots)
	therapists.GET("/calendar", a.slots.Calendar)
	therapists.GET("/feedback", a.feedback.ListPublic)

	secured := api.Group("")
	secured.Use(middleware.JWT(a.auth))

	owner := secured.Group("/therapists/:id")
	owner.Use(middleware.RequireSelfOrRoles(models.RoleAdmin))
	owner.PUT("/availability", a.availability.Replace)
	owner.POST("/availability/defaults", a.availability.SaveDefaults)
	owner.GET("/busy", a.busy.List)
	owner.POST("/busy", a.busy.Create)
	owner.DELETE("/busy/:busyId", a.busy.Delete)
	owner.GET("/bookings/export", a.exports.Bookings)

	bookings := secured.Group("/bookings")
	bookings.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTherapist, models.RoleClient))
	bookings.POST("", a.bookings.Create)
	bookings.GET("", a.bookings.List)
	bookings.GET("/:id", a.bookings.Get)
	bookings.PATCH("/:id/reschedule", a.bookings.Reschedule)
	bookings.POST("/:id/cancel", a.bookings.Cancel)

	secured.POST("/feedback", middleware.RequireRoles(models.RoleClient, models.RoleAdmin), a.feedback.Submit)
	secured.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), metrics.Snapshot)
}

// Package apiserver assembles the HTTP surface of the incident tracker.
package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atcops/opstrack/internal/access"
	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/apiserver/handler"
	"github.com/atcops/opstrack/internal/apiserver/middleware"
	"github.com/atcops/opstrack/internal/auth/jwt"
	"github.com/atcops/opstrack/internal/auth/lockout"
	"github.com/atcops/opstrack/internal/auth/storage"
	"github.com/atcops/opstrack/internal/equipment"
	"github.com/atcops/opstrack/internal/incident"
	"github.com/atcops/opstrack/internal/stats"
	"github.com/atcops/opstrack/pkg/metrics"
	"github.com/atcops/opstrack/pkg/version"
)

// Deps carries the wired components the router needs
type Deps struct {
	DB         database.Database
	JWTService *jwt.Service
	Tokens     storage.Store
	Guard      *lockout.Guard
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// NewRouter builds the gin engine with every route, middleware and handler
// attached.
func NewRouter(d Deps) *gin.Engine {
	reconciler := equipment.NewReconciler(d.DB, d.Logger)
	facade := incident.NewFacade(d.DB)
	aggregator := stats.NewAggregator(d.DB)

	authHandler := handler.NewAuth(d.DB, d.JWTService, d.Tokens, d.Guard, d.Metrics, d.Logger)
	incidentHandler := handler.NewIncidents(d.DB, facade, reconciler, aggregator, d.Metrics, d.Logger)
	equipmentHandler := handler.NewEquipment(d.DB, reconciler, d.Logger)
	reportHandler := handler.NewReports(d.DB, d.Logger)
	userHandler := handler.NewUsers(d.DB, d.Logger)

	r := gin.New()
	r.Use(gin.Recovery())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get()})
	})

	authRequired := middleware.JWTAuthMiddleware(d.JWTService, d.Tokens)

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authRequired, authHandler.Logout)
		auth.GET("/profile", authRequired, authHandler.Profile)
		auth.PUT("/profile", authRequired, authHandler.UpdateProfile)
		auth.POST("/change-password", authRequired, authHandler.ChangePassword)
	}

	api := r.Group("/api", authRequired)
	{
		incidents := api.Group("/incidents")
		{
			incidents.GET("", incidentHandler.List)
			incidents.POST("", incidentHandler.Create)
			incidents.GET("/stats", incidentHandler.Stats)
			incidents.GET("/recent", incidentHandler.Recent)
			incidents.GET("/:id", incidentHandler.Get)
			incidents.PUT("/:id", incidentHandler.Update)
			incidents.DELETE("/:id", incidentHandler.Delete)
			incidents.PUT("/hardware/:id",
				middleware.RequirePermission(access.ResourceHardwareIncident, access.ActionWrite),
				incidentHandler.UpdateHardware)
			incidents.PUT("/software/:id",
				middleware.RequirePermission(access.ResourceSoftwareIncident, access.ActionWrite),
				incidentHandler.UpdateSoftware)
		}

		eq := api.Group("/equipment")
		{
			eq.GET("",
				middleware.RequirePermission(access.ResourceEquipment, access.ActionRead),
				equipmentHandler.List)
			eq.POST("",
				middleware.RequirePermission(access.ResourceEquipment, access.ActionWrite),
				equipmentHandler.Create)
			eq.PUT("/:id",
				middleware.RequirePermission(access.ResourceEquipment, access.ActionWrite),
				equipmentHandler.Update)
			eq.GET("/:id/history",
				middleware.RequirePermission(access.ResourceEquipment, access.ActionRead),
				equipmentHandler.History)
		}

		reports := api.Group("/reports")
		{
			reports.GET("",
				middleware.RequirePermission(access.ResourceReport, access.ActionRead),
				reportHandler.List)
			reports.POST("",
				middleware.RequirePermission(access.ResourceReport, access.ActionWrite),
				reportHandler.Create)
			reports.PUT("/:id",
				middleware.RequirePermission(access.ResourceReport, access.ActionWrite),
				reportHandler.Update)
			reports.DELETE("/:id",
				middleware.RequirePermission(access.ResourceReport, access.ActionDelete),
				reportHandler.Delete)
		}

		users := api.Group("/users")
		{
			users.GET("",
				middleware.RequirePermission(access.ResourceUser, access.ActionRead),
				userHandler.List)
			users.POST("",
				middleware.RequirePermission(access.ResourceUser, access.ActionWrite),
				userHandler.Create)
			users.PUT("/:id",
				middleware.RequirePermission(access.ResourceUser, access.ActionWrite),
				userHandler.Update)
			users.DELETE("/:id",
				middleware.RequirePermission(access.ResourceUser, access.ActionDelete),
				userHandler.Delete)
		}
	}

	return r
}

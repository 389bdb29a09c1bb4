package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/mbu-admin-api/internal/middleware"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/internal/service"
	"github.com/noah-isme/mbu-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/mbu-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/mbu-admin-api/pkg/middleware/requestid"
)

// RouterConfig carries the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
}

// Handlers groups every endpoint handler.
type Handlers struct {
	Registration *RegistrationHandler
	Students     *StudentHandler
	Payments     *PaymentHandler
	Sections     *SectionHandler
	Contacts     *ContactHandler
	Auth         *AuthHandler
	Dashboard    *DashboardHandler
	Export       *ExportHandler
	Metrics      *MetricsHandler
}

// NewRouter builds the gin engine with public, admin and operational routes.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	audit := cfg.Logger.Named("audit")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/registrations", h.Registration.Submit)
	api.GET("/sections", h.Sections.Public)
	api.POST("/contact", h.Contacts.Submit)
	api.POST("/auth/login", h.Auth.Login)

	gate := []gin.HandlerFunc{
		middleware.JWT(cfg.Tokens),
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
	}

	auth := api.Group("/auth", gate...)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/change-password", middleware.Audit(audit, "change_password", "admin"), h.Auth.ChangePassword)

	admin := api.Group("/admin", gate...)
	admin.GET("/students", h.Students.List)
	admin.GET("/students/:id", h.Students.Get)
	admin.PATCH("/students/:id/status", middleware.Audit(audit, "update_status", "student"), h.Students.UpdateStatus)
	admin.GET("/students/:id/payments", h.Payments.List)
	admin.POST("/students/:id/payments", middleware.Audit(audit, "record_payment", "student"), h.Payments.Record)

	admin.GET("/sections", h.Sections.List)
	admin.PATCH("/sections/:name", middleware.Audit(audit, "update_section", "section"), h.Sections.Update)

	admin.GET("/contacts", h.Contacts.List)
	admin.PATCH("/contacts/:id/status", middleware.Audit(audit, "update_status", "contact"), h.Contacts.UpdateStatus)

	admin.GET("/dashboard", h.Dashboard.Stats)
	admin.GET("/export/students", middleware.Audit(audit, "export", "students"), h.Export.Students)
	admin.GET("/system", h.Metrics.System)

	return r
}

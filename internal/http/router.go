package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/trapcrm/backend/internal/config"
	"github.com/trapcrm/backend/internal/db"
	"github.com/trapcrm/backend/internal/http/handlers"
	"github.com/trapcrm/backend/internal/http/middleware"
	"github.com/trapcrm/backend/internal/service"

	_ "github.com/trapcrm/backend/docs"
)

func Router(cfg config.Config, store *db.Store, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Export:    service.NewExportService(store, logger),
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.POST("/parse", h.Parse)

		api.POST("/jobs", h.CreateJob)
		api.POST("/jobs/import", h.ImportJob)
		api.GET("/jobs", h.JobsList)
		api.GET("/jobs/:id", h.JobDetails)
		api.PATCH("/jobs/:id", h.UpdateJob)
		api.POST("/jobs/:id/verify", h.VerifyJob)
		api.GET("/jobs/:id/packet", h.JobPacket)
		api.POST("/jobs/:id/documents", h.UploadDocument)

		api.GET("/documents", h.DocumentsList)
		api.GET("/documents/:id/download", h.DownloadDocument)

		api.GET("/technicians", h.TechniciansList)

		api.GET("/customers", h.CustomersList)
		api.POST("/customers", h.CreateCustomer)
		api.GET("/customers/:id", h.CustomerDetails)
		api.PATCH("/customers/:id", h.UpdateCustomer)

		api.GET("/sites", h.SitesList)
		api.POST("/sites", h.CreateSite)
		api.GET("/sites/overdue", h.OverdueSites)
		api.GET("/sites/:id", h.SiteDetails)
		api.PATCH("/sites/:id", h.UpdateSite)

		api.GET("/dashboard/kpis", h.DashboardKPIs)
		api.GET("/dashboard/jobs-by-date", h.JobsByDate)
		api.GET("/dashboard/revenue-by-date", h.RevenueByDate)
		api.GET("/dashboard/gallons-by-date", h.GallonsByDate)
		api.GET("/dashboard/jobs-by-status", h.JobsByStatus)
		api.GET("/dashboard/jobs-by-technician", h.JobsByTechnician)
		api.GET("/dashboard/top-customers", h.TopCustomers)

		api.GET("/export/jobs.xlsx", h.ExportJobsXLSX)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.DELETE("/jobs/:id", h.DeleteJob)
		admin.DELETE("/customers/:id", h.DeleteCustomer)
		admin.DELETE("/documents/:id", h.DeleteDocument)
		admin.POST("/admin/reset", h.AdminReset)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

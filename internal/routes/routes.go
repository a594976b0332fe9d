package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"billing-backend/internal/config"
	"billing-backend/internal/documents"
	"billing-backend/internal/handlers"
	"billing-backend/internal/invoicing"
	"billing-backend/internal/store"
)

type Services struct {
	Store     *store.Store
	Generator *invoicing.Generator
	Documents *documents.Service
}

func Register(router *gin.Engine, svc Services, cfg config.Config) {
	router.Use(corsMiddleware(cfg.AllowedOrigins()))
	// Rendered documents are already compressed.
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`^/api/invoices/[^/]+/(pdf|xls)$`})))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "billing-backend"})
	})

	clientHandler := handlers.NewClientHandler(svc.Store)
	methodHandler := handlers.NewTreatmentMethodHandler(svc.Store)
	treatmentHandler := handlers.NewTreatmentHandler(svc.Store)
	invoiceHandler := handlers.NewInvoiceHandler(svc.Store, svc.Generator, svc.Documents)
	dashboardHandler := handlers.NewDashboardHandler(svc.Store)
	settingsHandler := handlers.NewSettingsHandler(svc.Store)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.GET("/dashboard", dashboardHandler.Get)
		api.GET("/settings/company", settingsHandler.GetCompany)
		api.PUT("/settings/company", settingsHandler.UpdateCompany)

		api.GET("/clients", clientHandler.List)
		api.POST("/clients", clientHandler.Create)
		api.GET("/clients/:id", clientHandler.Get)
		api.PUT("/clients/:id", clientHandler.Update)
		api.DELETE("/clients/:id", clientHandler.Delete)

		api.GET("/treatment-methods", methodHandler.List)
		api.POST("/treatment-methods", methodHandler.Create)
		api.PUT("/treatment-methods/:id", methodHandler.Update)
		api.DELETE("/treatment-methods/:id", methodHandler.Delete)

		api.GET("/treatments", treatmentHandler.List)
		api.POST("/treatments", treatmentHandler.Create)
		api.DELETE("/treatments/:id", treatmentHandler.Delete)

		api.GET("/invoices", invoiceHandler.List)
		api.POST("/invoices/generate", invoiceHandler.Generate)
		api.GET("/invoices/runs", invoiceHandler.Runs)
		api.GET("/invoices/:id", invoiceHandler.Get)
		api.PATCH("/invoices/:id/status", invoiceHandler.UpdateStatus)
		api.GET("/invoices/:id/pdf", invoiceHandler.PDF)
		api.GET("/invoices/:id/xls", invoiceHandler.XLS)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	return cors.New(corsConfig)
}

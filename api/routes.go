package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apierrors "github.com/customeros/maildesk/api/errors"
	"github.com/customeros/maildesk/api/middleware"
	"github.com/customeros/maildesk/api/rest/handlers"
	"github.com/customeros/maildesk/config"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/repository"
	"github.com/customeros/maildesk/internal/tracing"
	"github.com/customeros/maildesk/services"
)

const appSource = "maildesk"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, repos *repository.Repositories, cfg *config.AppConfig, log logger.Logger) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.BodyLimitMiddleware(cfg.MaxContentLength))
	r.MaxMultipartMemory = cfg.MaxContentLength

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": apierrors.MessageNotFound})
	})

	apiHandlers := handlers.InitHandlers(s, repos, log)

	r.GET("/health", handlers.HealthCheck)

	api := r.Group("")
	api.Use(middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  middleware.APIKeyHeader,
		ValidAPIKey: cfg.APIKey,
	}))
	api.Use(middleware.CustomContextMiddleware(appSource))
	api.Use(middleware.TracingMiddleware())
	{
		emails := api.Group("/emails")
		{
			emails.GET("", apiHandlers.Emails.List())
			emails.POST("", apiHandlers.Emails.Create())
			emails.POST("/delete-multiple", apiHandlers.Emails.DeleteMany())
			emails.POST("/mark-read", apiHandlers.Emails.MarkRead())
			emails.POST("/move-to-folder", apiHandlers.Emails.MoveToFolder())
			emails.GET("/:id", apiHandlers.Emails.Get())
			emails.PUT("/:id", apiHandlers.Emails.Update())
			emails.DELETE("/:id", apiHandlers.Emails.Delete())
			emails.PUT("/:id/star", apiHandlers.Emails.ToggleStar())
		}

		api.POST("/send-email", apiHandlers.Emails.Send())

		attachments := api.Group("/attachments")
		{
			attachments.GET("/:filename", apiHandlers.Attachments.Download())
			attachments.GET("/:filename/preview", apiHandlers.Attachments.Preview())
		}
	}
}

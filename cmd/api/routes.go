package main

import (
	"fieldservice-platform/internal/httpapi"
	"fieldservice-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	authMW   gin.HandlerFunc
	handlers httpapi.Handlers
	webhooks httpapi.WebhookHandlers
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Video host webhooks (public, shared-secret authenticated).
	hooks := r.Group("/webhooks/recordings")
	{
		hooks.POST("/ready", deps.webhooks.RecordingReady)
		hooks.POST("/uploaded", deps.webhooks.RecordingUploaded)
	}

	// AUTH routes (token issuance).
	// NOTE: placeholder login; real credential validation is not implemented.
	r.POST("/v1/auth/login", deps.handlers.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(deps.authMW)
	{
		// CONSULTATION pipeline routes.
		// Reads are open to every field role; retries, generation and accept
		// are restricted to the roles that own estimates.
		cons := v1.Group("/consultations")
		{
			read := cons.Group("")
			read.Use(httpapi.RequireCompanyAndAnyRole(rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleEstimator, rbac.RoleTechnician)...)
			{
				read.GET("/:id/pipeline", deps.handlers.GetPipeline)
				read.GET("/:id/transcript", deps.handlers.GetTranscript)
			}

			write := cons.Group("")
			write.Use(httpapi.RequireCompanyAndAnyRole(rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleEstimator)...)
			{
				write.POST("/:id/transcription/retry", deps.handlers.RetryTranscription)
				write.POST("/:id/estimate/generate", deps.handlers.GenerateEstimate)
				write.POST("/:id/page/generate", deps.handlers.GeneratePage)
				write.POST("/:id/accept", deps.handlers.Accept)
			}
		}

		// REPORTS routes. Owner/admin only.
		reports := v1.Group("/reports")
		reports.Use(httpapi.RequireCompanyAndAnyRole(rbac.RoleOwner, rbac.RoleAdmin)...)
		{
			reports.GET("/pipeline", deps.handlers.PipelineReport)
			reports.GET("/estimates", deps.handlers.EstimatesReport)
		}

		// BLOCK preview for the page builder.
		blocks := v1.Group("/blocks")
		blocks.Use(httpapi.RequireCompanyAndAnyRole(rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleEstimator)...)
		{
			blocks.POST("/preview", deps.handlers.PreviewBlock)
		}
	}
}

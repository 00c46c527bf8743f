package api

import (
	"net/http"

	"taskflow-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	requireAuth := delivery.AuthMiddleware(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.authHandler.Register)
			auth.POST("/login", h.authHandler.Login)
			auth.POST("/refresh", h.authHandler.Refresh)
			auth.POST("/logout", h.authHandler.Logout)
			auth.GET("/profile", requireAuth, h.authHandler.Profile)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", h.taskHandler.GetTasks)
			tasks.POST("", h.taskHandler.CreateTask)
			tasks.GET("/:id", h.taskHandler.GetTaskByID)
			tasks.PUT("/:id", h.taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", h.taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", h.taskHandler.DeleteTask)
		}

		// Push routes; the VAPID key is public so the client can subscribe before login
		push := api.Group("/push")
		{
			push.GET("/vapid-public-key", h.pushHandler.GetVAPIDPublicKey)
			push.POST("/subscribe", requireAuth, h.pushHandler.Subscribe)
			push.DELETE("/subscribe", requireAuth, h.pushHandler.Unsubscribe)
		}
	}
}

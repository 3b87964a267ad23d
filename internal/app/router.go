package app

import (
	"testprep_backend/docs"
	"testprep_backend/internal/config"
	"testprep_backend/internal/middleware"
	"testprep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// public: health plus the gateway webhook, which authenticates by
	// signature rather than session
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/payments/webhook", c.payment.Webhook)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/tests", c.test.ListTests)
		authGroup.GET("/tests/:id", c.test.GetTest)
		authGroup.POST("/tests/:id/attempts", c.attempt.StartAttempt)

		authGroup.GET("/attempts", c.attempt.ListAttempts)
		authGroup.GET("/attempts/:id/questions", c.attempt.GetQuestions)
		authGroup.PUT("/attempts/:id/answers", c.attempt.SaveAnswer)
		authGroup.POST("/attempts/:id/submit", c.attempt.Submit)
		authGroup.GET("/attempts/:id/result", c.attempt.GetResult)
		authGroup.GET("/attempts/:id/solution", c.attempt.GetSolution)

		authGroup.GET("/plans", c.payment.ListPlans)
		authGroup.POST("/payments/order", c.payment.CreateOrder)
		authGroup.POST("/payments/verify", c.payment.VerifyPayment)
	}
}

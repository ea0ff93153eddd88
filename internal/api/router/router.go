package router

import (
	"context"
	"net/http"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/handler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options controls cross-cutting router behavior
type Options struct {
	ServiceName    string
	AllowedOrigins []string
	RequireToken   bool
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(opts.AllowedOrigins))

	r.GET("/health", healthHandler(deps, opts.ServiceName))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jobHandler := handler.NewJobHandler(deps)
	userHandler := handler.NewUserHandler(deps)
	workflowHandler := handler.NewWorkflowHandler(deps)
	notificationHandler := handler.NewNotificationHandler(deps)
	authHandler := handler.NewAuthHandler(deps)
	mailerHandler := handler.NewMailerHandler(deps)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Job browsing stays public
	r.GET("/jobs", jobHandler.ListJobs)
	r.GET("/jobs/:id", jobHandler.GetJob)

	api := r.Group("")
	if opts.RequireToken {
		api.Use(RequireAuth(deps.Issuer))
	}

	jobs := api.Group("/jobs")
	{
		jobs.POST("", jobHandler.CreateJob)
		jobs.PATCH("/:id", jobHandler.UpdateJob)
		jobs.DELETE("/:id", jobHandler.DeleteJob)
		jobs.GET("/:id/applied-users", jobHandler.ListAppliedUsers)
		jobs.GET("/:id/shortlisted-users", jobHandler.ListShortlistedUsers)
		jobs.POST("/:id/shortlist/:userId", workflowHandler.Shortlist)
		jobs.PATCH("/:id/close", workflowHandler.Close)
	}

	users := api.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PATCH("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
		users.POST("/:id/apply/:jobId", workflowHandler.Apply)
	}

	notifications := api.Group("/notifications")
	{
		notifications.POST("", notificationHandler.Create)
		notifications.GET("/:id", notificationHandler.ListForUser)
		notifications.PATCH("/:id/read", notificationHandler.MarkRead)
	}

	mail := api.Group("/mailer")
	{
		mail.POST("/send-application", mailerHandler.SendApplication)
		mail.POST("/send-shortlist", mailerHandler.SendShortlist)
	}

	return r
}

func healthHandler(deps *handler.Dependencies, service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": service,
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": service,
		})
	}
}

package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/openchain-academy/academy-backend/internal/http/handlers"
	"github.com/openchain-academy/academy-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName      string
	AllowOrigins     []string
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	UserHandler      *handlers.UserHandler
	DocumentHandler  *handlers.DocumentHandler
	CourseHandler    *handlers.CourseHandler
	ChallengeHandler *handlers.ChallengeHandler
	ProgressHandler  *handlers.ProgressHandler
	LocaleHandler    *handlers.LocaleHandler
	SSEHandler       *handlers.SSEHandler
	AdminHandler     *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.GET("/courses", cfg.CourseHandler.ListCourses)
		api.GET("/courses/:id", cfg.CourseHandler.GetCourse)
		api.GET("/challenges", cfg.ChallengeHandler.ListChallenges)
		api.GET("/challenges/:id", cfg.ChallengeHandler.GetChallenge)
		api.GET("/locales/:locale/documents", cfg.DocumentHandler.ListDocuments)
		api.GET("/locales/:locale/documents/*id", cfg.DocumentHandler.GetDocument)
		api.GET("/locales/:locale/strings", cfg.LocaleHandler.GetTable)
		api.GET("/locales/:locale/strings/resolve", cfg.LocaleHandler.ResolveString)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	// Progress
	protected.GET("/progress", cfg.ProgressHandler.GetProgress)
	protected.POST("/progress/complete", cfg.ProgressHandler.MarkComplete)
	protected.POST("/progress/claim", cfg.ProgressHandler.Claim)
	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)
	// Admin
	protected.POST("/admin/content/reload", cfg.AdminHandler.ReloadContent)
	protected.GET("/admin/content/warnings", cfg.AdminHandler.ContentWarnings)

	return router
}

// SplitOrigins parses a comma-separated origin list from the environment.
func SplitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

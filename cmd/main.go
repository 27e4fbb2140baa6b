package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openchain-academy/academy-backend/internal/clients/redis"
	"github.com/openchain-academy/academy-backend/internal/content/store"
	"github.com/openchain-academy/academy-backend/internal/db"
	"github.com/openchain-academy/academy-backend/internal/http/handlers"
	"github.com/openchain-academy/academy-backend/internal/logger"
	"github.com/openchain-academy/academy-backend/internal/middleware"
	"github.com/openchain-academy/academy-backend/internal/observability"
	"github.com/openchain-academy/academy-backend/internal/repos"
	"github.com/openchain-academy/academy-backend/internal/server"
	"github.com/openchain-academy/academy-backend/internal/services"
	"github.com/openchain-academy/academy-backend/internal/sse"
	"github.com/openchain-academy/academy-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	contentRoot := utils.GetEnv("CONTENT_ROOT", "./content", log)
	defaultLocale := utils.GetEnv("DEFAULT_LOCALE", "en", log)

	// Tracing
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "academy-backend",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = shutdownOtel(shutdownCtx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Content snapshot
	log.Info("Loading content snapshot from main...", "root", contentRoot)
	contentStore := store.New(log, contentRoot, defaultLocale)
	if err := contentStore.Reload(ctx); err != nil {
		log.Error("Initial content load failed", "error", err)
		os.Exit(1)
	}
	if err := contentStore.Watch(ctx); err != nil {
		log.Warn("Content watcher init failed, hot reload disabled", "error", err)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	completionRepo := repos.NewDocumentCompletionRepo(thePG, log)
	claimRepo := repos.NewChallengeClaimRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Optional cross-instance progress bus
	var progressBus redis.ProgressBus
	if os.Getenv("REDIS_ADDR") != "" {
		progressBus, err = redis.NewProgressBus(log)
		if err != nil {
			log.Warn("Could not init Redis progress bus, running single-instance", "error", err)
			progressBus = nil
		} else {
			defer progressBus.Close()
			if err := progressBus.StartForwarder(ctx, func(m sse.SSEMessage) {
				sseHub.Broadcast(m)
			}); err != nil {
				log.Warn("Could not start Redis forwarder", "error", err)
			}
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	contentService := services.NewContentService(log, contentStore)
	progressService := services.NewProgressService(thePG, log, contentStore, completionRepo, claimRepo, sseHub, progressBus)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	documentHandler := handlers.NewDocumentHandler(contentService)
	courseHandler := handlers.NewCourseHandler(contentService)
	challengeHandler := handlers.NewChallengeHandler(contentService)
	progressHandler := handlers.NewProgressHandler(progressService)
	localeHandler := handlers.NewLocaleHandler(contentService)
	sseHandler := handlers.NewSSEHandler(log, sseHub)
	adminHandler := handlers.NewAdminHandler(contentStore, contentService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:      "academy-backend",
		AllowOrigins:     server.SplitOrigins(utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)),
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		UserHandler:      userHandler,
		DocumentHandler:  documentHandler,
		CourseHandler:    courseHandler,
		ChallengeHandler: challengeHandler,
		ProgressHandler:  progressHandler,
		LocaleHandler:    localeHandler,
		SSEHandler:       sseHandler,
		AdminHandler:     adminHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}

package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/config"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/handlers"
	"github.com/yukikurage/crm-api/internal/mailer"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/observability"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/router"
	"github.com/yukikurage/crm-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, logger); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(logger))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logger.Fatal("failed to create Redis store", zap.Error(err))
	}
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Mail goes to the log unless SMTP is configured
	var sender mailer.Sender
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}, logger)
	} else {
		logger.Warn("SMTP_HOST not set, emails will only be logged")
		sender = mailer.NewLogSender(logger)
	}

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	// Services
	notifications := services.NewNotificationService(sender, logger, cfg.MailFrom, cfg.AppBaseURL)
	authService := services.NewAuthService(userRepo, agentRepo)
	agentService := services.NewAgentService(agentRepo, userRepo, notifications, cfg.PasswordTokenTTL)
	leadService := services.NewLeadService(leadRepo, agentRepo, categoryRepo, notifications)
	categoryService := services.NewCategoryService(categoryRepo, leadRepo)

	router.Register(r, router.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Agent:    handlers.NewAgentHandler(agentService),
		Lead:     handlers.NewLeadHandler(leadService),
		Category: handlers.NewCategoryHandler(categoryService),
	}, authService)

	// Start server
	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

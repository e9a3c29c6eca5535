package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"pocketwatch/internal/clock"
	"pocketwatch/internal/config"
	"pocketwatch/internal/database"
	"pocketwatch/internal/handlers"
	"pocketwatch/internal/logger"
	"pocketwatch/internal/middleware"
	"pocketwatch/internal/scheduler"
	"pocketwatch/internal/services"
	"pocketwatch/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// All "what day is it" decisions happen in the configured timezone.
	clk, err := clock.NewWall(appConfig.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", appConfig.Timezone, err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	templateService := services.NewTemplateService(db)
	budgetService := services.NewBudgetService(db)
	expenseService := services.NewExpenseService(db, budgetService)
	reminderService := services.NewReminderService(db, expenseService, clk)

	// Initialize handlers
	validator.Register()
	authHandler := handlers.NewAuthHandler(userService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	pendingHandler := handlers.NewPendingHandler(reminderService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, clk)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	webhookHandler := handlers.NewWebhookHandler(userService, reminderService, templateService)

	// Start the reminder scheduler; it stops with the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(db, reminderService, scheduler.LogNotifier{}, clk,
		appConfig.TickInterval, appConfig.TickWorkers)
	go sched.Start(ctx)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Gateway webhook, authenticated by shared key rather than JWT
	webhook := v1.Group("/webhook")
	webhook.Use(middleware.RateLimiter(appConfig.WebhookRate, appConfig.WebhookBurst))
	webhook.Use(middleware.WebhookAuthMiddleware(appConfig.WebhookAPIKey))
	webhook.POST("/sms", webhookHandler.Receive)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Recurring template routes
	templates := protected.Group("/templates")
	templates.POST("", templateHandler.Create)
	templates.GET("", templateHandler.List)
	templates.GET("/:id", templateHandler.Get)
	templates.DELETE("/:id", templateHandler.Cancel)

	// Pending instance routes
	pending := protected.Group("/pending")
	pending.GET("", pendingHandler.List)
	pending.POST("/:id/confirm", pendingHandler.Confirm)
	pending.POST("/:id/skip", pendingHandler.Skip)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.Create)
	expenses.GET("", expenseHandler.List)
	expenses.GET("/summary", expenseHandler.Summary)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.Set)
	budgets.GET("", budgetHandler.List)
	budgets.DELETE("/:id", budgetHandler.Delete)

	log.Infof("Starting Pocketwatch server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

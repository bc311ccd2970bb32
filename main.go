package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/loantrack/config"
	"github.com/yourusername/loantrack/handlers"
	"github.com/yourusername/loantrack/loans"
	"github.com/yourusername/loantrack/middleware"
	"github.com/yourusername/loantrack/models"
	"github.com/yourusername/loantrack/stats"
	"github.com/yourusername/loantrack/utils"
	"github.com/yourusername/loantrack/validation"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	validation.RegisterBindingValidators()

	// Setup router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.CSRFHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "loantrack-api",
		})
	})

	csrfStore := middleware.NewCSRFStore()
	mailer := utils.NewMailer(cfg, log)
	loanService := loans.NewService(db, log)
	aggregator := stats.NewAggregator(db)

	authHandler := handlers.NewAuthHandler(db, cfg, csrfStore, log, mailer)
	loanHandler := handlers.NewLoanHandler(loanService)
	statsHandler := handlers.NewStatsHandler(loanService, aggregator)
	userHandler := handlers.NewUserHandler(db, log, csrfStore)

	// API routes
	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
		}

		protected := api.Group("")
		protected.Use(middleware.JwtAuthMiddleware(cfg), middleware.CSRFMiddleware(csrfStore))
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.PUT("/users/:id", userHandler.UpdateUser)

			protected.POST("/loans", loanHandler.CreateLoan)
			protected.GET("/loans", loanHandler.ListLoans)
			protected.GET("/loans/:id", loanHandler.GetLoan)
			protected.PUT("/loans/:id", loanHandler.UpdateLoan)
			protected.DELETE("/loans/:id", loanHandler.DeleteLoan)
			protected.POST("/loans/:id/mark-paid", loanHandler.MarkLoanAsPaid)
			protected.POST("/loans/:id/payments", loanHandler.AddPayment)
			protected.GET("/loans/:id/payments", loanHandler.GetLoanPayments)
			protected.GET("/loans/:id/history", loanHandler.GetLoanHistory)

			protected.GET("/statistics", statsHandler.GetStatistics)
			protected.GET("/statistics/monthly-interest", statsHandler.GetMonthlyInterest)
			protected.GET("/statistics/status-distribution", statsHandler.GetStatusDistribution)
			protected.GET("/statistics/top-borrowers", statsHandler.GetTopBorrowers)

			admin := protected.Group("/users")
			admin.Use(middleware.RequireRole(models.RoleSuperAdmin))
			{
				admin.POST("", userHandler.CreateUser)
				admin.GET("", userHandler.ListUsers)
				admin.DELETE("/:id", userHandler.DeleteUser)
			}
		}
	}

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Infof("Starting LoanTrack API server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

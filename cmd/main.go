package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"investment-platform/internal/auth"
	"investment-platform/internal/config"
	"investment-platform/internal/database"
	"investment-platform/internal/handlers"
	"investment-platform/internal/jobs"
	"investment-platform/internal/services"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Redis for balance/history caching
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize services
	ledger := services.NewLedgerService(db)
	upline := services.NewUplineService(db)
	commission := services.NewCommissionService(db, ledger, upline, cfg.App.WelcomeBonus, cfg.App.ReferrerBonus)
	userService := services.NewUserService(db, commission)
	investmentService := services.NewInvestmentService(db, ledger, commission)
	withdrawalService := services.NewWithdrawalService(db, ledger)
	paymentService := services.NewPaymentService(db, ledger)
	accrualService := services.NewAccrualService(db, ledger, cfg.App.AccrualWorkers)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	walletHandler := handlers.NewWalletHandler(rdb, userService, paymentService)
	investmentHandler := handlers.NewInvestmentHandler(rdb, investmentService)
	withdrawalHandler := handlers.NewWithdrawalHandler(rdb, withdrawalService)
	paymentHandler := handlers.NewPaymentHandler(rdb, ledger, paymentService)
	adminHandler := handlers.NewAdminHandler(rdb, ledger, userService, withdrawalService)
	referralHandler := handlers.NewReferralHandler(userService, upline)

	// Schedule the daily accrual run
	accrualJob := jobs.NewAccrualJob(accrualService, "@daily")
	if err := accrualJob.Start(); err != nil {
		log.Fatalf("Failed to start accrual job: %v", err)
	}

	// Set up Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Payment gateway webhook (public, keyed by reference)
	router.POST("/api/payments/webhook", paymentHandler.Webhook)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/me", authHandler.Me)

		// Wallet endpoints
		api.GET("/wallet/balance", walletHandler.GetBalance)
		api.GET("/wallet/transactions", walletHandler.GetTransactions)
		api.POST("/wallet/deposit", walletHandler.InitiateDeposit)

		// Investment endpoints
		api.GET("/plans", investmentHandler.GetPlans)
		api.POST("/investments", investmentHandler.Purchase)
		api.GET("/investments", investmentHandler.GetMyInvestments)

		// Withdrawal endpoints
		api.POST("/withdrawals/pin", withdrawalHandler.SetPin)
		api.POST("/withdrawals", withdrawalHandler.RequestWithdrawal)

		// Referral endpoints
		api.GET("/referral/referrals", referralHandler.GetReferrals)
		api.GET("/referral/upline", referralHandler.GetUpline)
	}

	// Admin routes
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
	{
		admin.GET("/withdrawals/pending", adminHandler.GetPendingWithdrawals)
		admin.POST("/withdrawals/:reference", adminHandler.ResolveWithdrawal)
		admin.POST("/users/:id/verify", adminHandler.VerifyUser)
		admin.GET("/users/:id/reconcile", adminHandler.Reconcile)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	accrualJob.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

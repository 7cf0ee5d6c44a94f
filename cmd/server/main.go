package main

import (
	"context" // context package is needed for Redis operations and shutdown
	"log"     // log package is needed for logging
	"time"    // Time durations

	"yieldly/internal/api"        // Custom package for API handlers
	"yieldly/internal/config"     // Custom package for configuration
	"yieldly/internal/db"         // Custom package for database setup
	"yieldly/internal/lifecycle"  // Deposit and investment lifecycle
	"yieldly/internal/middleware" // Custom package for middleware
	"yieldly/internal/ratelimit"  // Redis-backed login limiter
	"yieldly/internal/store"      // Ledger store
	"yieldly/internal/sweep"      // Maturity sweep

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	gdb, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if cfg.DBAutoMigrate {
		db.MustMigrate(gdb)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	ledger := store.New(gdb)
	manager := lifecycle.NewManager(lifecycle.Wrap(ledger), cfg.LifecyclePolicy)
	adminLimiter := ratelimit.New(redisClient, "admin:login:", 5, 15*time.Minute)

	// Settle matured investments in the background for the life of the process
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweep.New(sweep.Wrap(ledger), cfg.SweepInterval).Run(sweepCtx)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/api/auth/register", api.RegisterHandler(ledger, cfg)) // Registration endpoint
	r.POST("/api/auth/login", api.LoginHandler(ledger, cfg))       // Login endpoint
	r.GET("/api/wallet", api.WalletInfoHandler(cfg))               // Platform deposit address

	// User routes (protected by JWT)
	userGroup := r.Group("/api")
	userGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	userGroup.GET("/user/me", api.MeHandler(ledger, redisClient))                                     // Profile endpoint
	userGroup.POST("/deposits", api.SubmitDepositHandler(ledger))                                     // Submit deposit claim
	userGroup.GET("/deposits", api.MyDepositsHandler(ledger))                                         // List own deposits
	userGroup.GET("/investments", api.MyInvestmentsHandler(ledger))                                   // List own investments
	userGroup.GET("/investments/available-deposits", api.AvailableDepositsHandler(ledger))            // Deposits ready to invest
	userGroup.POST("/investments/start", api.StartInvestmentHandler(manager, redisClient))            // Start investment
	userGroup.POST("/withdrawals", api.SubmitWithdrawalHandler(ledger, manager, redisClient))         // Request withdrawal
	userGroup.GET("/withdrawals", api.MyWithdrawalsHandler(ledger))                                   // List own withdrawals
	userGroup.GET("/referrals", api.ReferralSummaryHandler(ledger))                                   // Referral program state

	// Admin routes (separate credential, short-lived token)
	r.POST("/api/admin/login", api.AdminLoginHandler(cfg, adminLimiter)) // Admin login endpoint

	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.AdminOnlyMiddleware(cfg.JWTSecret))
	adminGroup.GET("/stats", api.StatsHandler(ledger, redisClient))                              // Dashboard aggregates
	adminGroup.GET("/users", api.AdminUsersHandler(ledger))                                      // List users endpoint
	adminGroup.POST("/users/:id/balance", api.SetBalanceHandler(ledger, redisClient))             // Balance override
	adminGroup.POST("/users/:id/block", api.BlockUserHandler(ledger, redisClient, true))          // Block user
	adminGroup.POST("/users/:id/unblock", api.BlockUserHandler(ledger, redisClient, false))       // Unblock user
	adminGroup.GET("/deposits", api.AdminDepositsHandler(ledger))                                 // List deposits
	adminGroup.POST("/deposits/:id/approve", api.ApproveDepositHandler(manager, redisClient))     // Approve deposit
	adminGroup.POST("/deposits/:id/reject", api.RejectDepositHandler(manager, redisClient))       // Reject deposit
	adminGroup.GET("/withdrawals", api.AdminWithdrawalsHandler(ledger))                           // List withdrawals
	adminGroup.POST("/withdrawals/:id/process", api.ProcessWithdrawalHandler(manager, redisClient)) // Process withdrawal
	adminGroup.POST("/withdrawals/:id/reject", api.RejectWithdrawalHandler(manager, redisClient))   // Reject withdrawal
	adminGroup.GET("/investments", api.AdminInvestmentsHandler(ledger))                          // List investments
	adminGroup.GET("/referral-commissions", api.AdminCommissionsHandler(ledger))                 // List commissions
	adminGroup.GET("/audit-logs", api.AuditLogsHandler(ledger))                                  // Audit trail

	log.Println("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/hostel-api/docs" // Swagger docs
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/database"
	"github.com/sjperalta/hostel-api/internal/handlers"
	"github.com/sjperalta/hostel-api/internal/jobs"
	"github.com/sjperalta/hostel-api/internal/middleware"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/internal/services"
	"github.com/sjperalta/hostel-api/internal/storage"
	"github.com/sjperalta/hostel-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Hostel API
// @version 1.0
// @description REST API for hostel front desk operations: beds, stays, charges, payments and the financial ledger

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	// Money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "path", cfg.StoragePath)

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, store, cfg)

	scheduleJobs(worker, svcs)

	h := handlers.NewHandlers(svcs, worker, cfg.Location)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // PDF rendering can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Drains queued audit writes
	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)
		v1.POST("/auth/login", h.Auth.Login)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/auth/me", h.Auth.Me)

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/users", h.Auth.CreateUser)

				admin.POST("/dormitories", h.Bed.CreateDormitory)
				admin.DELETE("/dormitories/:dormitory_id", h.Bed.DeleteDormitory)
				admin.POST("/beds", h.Bed.Create)
				admin.PUT("/beds/:bed_id", h.Bed.Update)
				admin.DELETE("/beds/:bed_id", h.Bed.Delete)

				admin.DELETE("/guests/:guest_id", h.Guest.Delete)
				admin.DELETE("/expenses/:expense_id", h.Expense.Delete)

				admin.GET("/audits", h.Audit.Index)
				admin.GET("/jobs/status", h.Job.Status)
			}

			// Guests
			protected.GET("/guests", h.Guest.Index)
			protected.POST("/guests", h.Guest.Create)
			protected.GET("/guests/:guest_id", h.Guest.Show)
			protected.PUT("/guests/:guest_id", h.Guest.Update)
			protected.GET("/guests/:guest_id/ledger", h.Guest.Ledger)
			protected.GET("/guests/:guest_id/statement", h.Guest.Statement)
			protected.GET("/guests/:guest_id/payments", h.Guest.Payments)
			protected.POST("/guests/:guest_id/payments", h.Guest.RecordPayment)

			// Beds
			protected.GET("/dormitories", h.Bed.Dormitories)
			protected.GET("/beds", h.Bed.Index)
			protected.GET("/beds/stats", h.Bed.Stats)
			protected.PUT("/beds/:bed_id/status", h.Bed.SetStatus)
			protected.POST("/beds/:bed_id/clean", h.Bed.Clean)

			// Stays and charges
			protected.POST("/assignments", h.Charge.CreateAssignment)
			protected.POST("/assignments/:assignment_id/checkout", h.Charge.Checkout)
			protected.PUT("/assignments/:assignment_id/payment-status", h.Charge.SetAssignmentPaymentStatus)
			protected.DELETE("/assignments/:assignment_id", h.Charge.DeleteAssignment)
			protected.POST("/bar-charges", h.Charge.CreateBarCharge)
			protected.PUT("/bar-charges/:charge_id/payment-status", h.Charge.SetBarChargePaymentStatus)
			protected.DELETE("/bar-charges/:charge_id", h.Charge.DeleteBarCharge)
			protected.POST("/extra-charges", h.Charge.CreateExtraCharge)
			protected.PUT("/extra-charges/:charge_id/payment-status", h.Charge.SetExtraChargePaymentStatus)
			protected.DELETE("/extra-charges/:charge_id", h.Charge.DeleteExtraCharge)

			protected.GET("/stays/check-ins", h.Stay.CheckIns)
			protected.GET("/stays/active", h.Stay.Active)
			protected.GET("/stays/calendar", h.Stay.Calendar)

			// Expenses
			protected.GET("/expenses", h.Expense.Index)
			protected.POST("/expenses", h.Expense.Create)
			protected.POST("/expenses/:expense_id/receipt", h.Expense.UploadReceipt)
			protected.GET("/expenses/:expense_id/receipt", h.Expense.DownloadReceipt)

			// Ledger and reports
			protected.GET("/transactions", h.Report.Transactions)
			protected.GET("/reports/summary", h.Report.Summary)
			protected.GET("/reports/dashboard", h.Report.Dashboard)
			protected.GET("/reports/export", h.Report.Export)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Close stays whose check-out time has passed and flag their beds for cleaning
	worker.ScheduleEveryImmediate("sweep-finished-stays", time.Hour, func(ctx context.Context) error {
		closed, err := svcs.Bed.SweepFinishedStays(ctx)
		if err != nil {
			return err
		}
		if closed > 0 {
			logger.Info("[Job] Checked out finished stays", "count", closed)
		}
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}

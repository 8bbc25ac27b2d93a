// @title           FitMyEar Backend API
// @version         1.0.0
// @description     Backend API for ear photo capture, cloud upload, 3D reconstruction tracking, and ear piece manufacturing orders.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"fitmyear-backend/internal/auth"
	"fitmyear-backend/internal/capture"
	"fitmyear-backend/internal/classifier"
	"fitmyear-backend/internal/config"
	"fitmyear-backend/internal/database"
	"fitmyear-backend/internal/handlers"
	"fitmyear-backend/internal/middleware"
	"fitmyear-backend/internal/orders"
	"fitmyear-backend/internal/photostore"
	"fitmyear-backend/internal/reconstruction"
	"fitmyear-backend/internal/supabase"
	"fitmyear-backend/internal/uploader"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.SetLevel(logrus.DebugLevel)
	}

	// Database + migrations
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	migrator.Close()
	log.Info("Migrations completed successfully")

	// Redis holds the short-lived OTP challenges.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	// Object storage
	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	// Local photo store + capture
	photoStore, err := photostore.NewStore(cfg.PhotoDir)
	if err != nil {
		log.Fatalf("Failed to initialize photo store: %v", err)
	}

	classifierClient := classifier.NewClient(cfg.ClassifierBaseURL)

	orchestrator, err := capture.NewOrchestrator(photoStore, classifierClient, cfg.MediaDir, cfg.PhotoTarget, cfg.ScanDelay, log)
	if err != nil {
		log.Fatalf("Failed to initialize capture orchestrator: %v", err)
	}

	// Reconstruction status plumbing
	hub := reconstruction.NewHub()
	watcher := reconstruction.NewWatcher(db, hub, log)

	var jobClient uploader.JobClient
	if cfg.ReconstructionURL != "" {
		jobClient = reconstruction.NewClient(cfg.ReconstructionURL)
	} else {
		log.Warn("RECONSTRUCTION_URL not set; uploads will not request reconstruction jobs")
	}

	pipeline := uploader.NewPipeline(photoStore, storageClient, db, jobClient, hub, uploader.RequiredPhotos, log)

	// Order workflow + OTP auth
	orderService := orders.NewService(db, log)
	otpService := auth.NewOTPService(rdb, cfg.JWTSecret, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(otpService)
	photosHandler := handlers.NewPhotosHandler(photoStore, orchestrator)
	captureHandler := handlers.NewCaptureHandler(orchestrator, photoStore)
	uploadHandler := handlers.NewUploadHandler(pipeline, log)
	reconstructionHandler := handlers.NewReconstructionHandler(watcher)
	ordersHandler := handlers.NewOrdersHandler(orderService)
	adminHandler := handlers.NewAdminHandler(db, orderService)
	accountHandler := handlers.NewAccountHandler(photoStore, storageClient, log)
	webhookHandler := handlers.NewWebhookHandler(db, hub, cfg.ReconstructionSecret, log)

	// Router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// OTP auth (no auth)
	router.POST("/api/v1/auth/otp/send", authHandler.SendOTP)
	router.POST("/api/v1/auth/otp/verify", authHandler.VerifyOTP)

	// Webhook (no auth, uses HMAC)
	router.POST("/api/v1/webhooks/reconstruction", webhookHandler.Reconstruction)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Local photo set
	api.GET("/photos", photosHandler.List)
	api.POST("/photos", photosHandler.Import)
	api.DELETE("/photos/:photo_id", photosHandler.Delete)
	api.DELETE("/photos", photosHandler.Clear)

	// Capture
	api.POST("/capture", captureHandler.CaptureOne)
	api.POST("/capture/scan", captureHandler.AutoScan)
	api.POST("/capture/done", captureHandler.Done)

	// Upload + reconstruction status
	api.POST("/uploads", uploadHandler.Upload)
	api.GET("/reconstruction/status", reconstructionHandler.Status)
	api.GET("/reconstruction/stream", reconstructionHandler.Stream)

	// Orders
	api.POST("/orders", ordersHandler.Create)
	api.GET("/orders", ordersHandler.List)
	api.GET("/orders/:order_id", ordersHandler.Get)
	api.POST("/orders/:order_id/confirm", ordersHandler.Confirm)
	api.POST("/orders/:order_id/cancel", ordersHandler.Cancel)

	// Account maintenance
	api.DELETE("/account/data", accountHandler.ResetData)

	// Admin
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/orders", adminHandler.ListOrders)
	admin.POST("/orders/:order_id/ship", adminHandler.ShipOrder)

	log.WithField("port", cfg.Port).Info("Server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/localbookr/marketplace-backend/internal/config"
	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/handlers"
	"github.com/localbookr/marketplace-backend/internal/metrics"
	"github.com/localbookr/marketplace-backend/internal/middleware"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/internal/realtime"
	"github.com/localbookr/marketplace-backend/internal/services"
	"github.com/localbookr/marketplace-backend/pkg/email"
	"github.com/localbookr/marketplace-backend/pkg/jwt"
	"github.com/localbookr/marketplace-backend/pkg/location"
	"github.com/localbookr/marketplace-backend/pkg/push"
	"github.com/localbookr/marketplace-backend/pkg/storage"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting LocalBookr marketplace backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Database
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema ensured")
	}

	userRepository := database.NewUserRepository(db)
	serviceRepository := database.NewServiceRepository(db)
	providerRepository := database.NewProviderRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	notificationRepository := database.NewNotificationRepository(db)

	// Area aliases
	normalizer := location.NewDefault()
	if cfg.Location.AliasFile != "" {
		normalizer, err = location.FromFile(cfg.Location.AliasFile, cfg.Location.ReplaceRules)
		if err != nil {
			logger.Fatalf("Failed to load area aliases: %v", err)
		}
	}
	logger.WithField("aliases", len(normalizer.Aliases())).Info("Location normalizer ready")

	// Outbound gateways
	var emailGateway email.Gateway = email.NoopGateway{}
	if cfg.Email.Enabled {
		emailGateway = email.NewEmailJSGateway(email.EmailJSConfig{
			APIURL:      cfg.Email.APIURL,
			ServiceID:   cfg.Email.ServiceID,
			TemplateID:  cfg.Email.TemplateID,
			PublicKey:   cfg.Email.PublicKey,
			AccessToken: cfg.Email.AccessToken,
		})
	}
	var pushGateway push.Gateway = push.NoopGateway{}
	if cfg.Push.Enabled {
		pushGateway = push.NewOneSignalGateway(push.OneSignalConfig{
			APIURL:     cfg.Push.APIURL,
			AppID:      cfg.Push.AppID,
			RESTAPIKey: cfg.Push.RESTAPIKey,
			DefaultURL: cfg.Server.PublicURL,
		})
	}
	logger.WithFields(logrus.Fields{
		"email": emailGateway.GetName(),
		"push":  pushGateway.GetName(),
	}).Info("Notification gateways initialized")

	var uploader storage.ImageUploader
	if cfg.Storage.CloudinaryURL != "" {
		cloudinaryUploader, err := storage.NewCloudinaryUploader(cfg.Storage.CloudinaryURL, cfg.Storage.Folder)
		if err != nil {
			logger.Fatalf("Failed to initialize Cloudinary: %v", err)
		}
		uploader = cloudinaryUploader
		logger.Info("Photo uploads enabled")
	} else {
		logger.Info("Photo uploads disabled (no CLOUDINARY_URL)")
	}

	// Realtime and metrics
	appMetrics := metrics.New()
	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	hub := realtime.NewHub(logger, appMetrics)
	go hub.Run(rootCtx)

	// Services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	dispatcher := services.NewDispatcher(
		notificationRepository,
		emailGateway,
		pushGateway,
		logger,
		services.WithRealtime(hub),
		services.WithMetrics(appMetrics),
	)
	authService := services.NewAuthService(userRepository, jwtService, cfg.Security.BcryptCost, logger)
	catalogService := services.NewCatalogService(serviceRepository, logger)
	matchingService := services.NewMatchingService(providerRepository, normalizer, logger)
	ratingService := services.NewRatingService(bookingRepository, providerRepository, logger)
	bookingService := services.NewBookingService(bookingRepository, serviceRepository, providerRepository, ratingService, appMetrics, logger)
	providerService := services.NewProviderService(providerRepository, serviceRepository, authService, uploader, logger)
	notificationService := services.NewNotificationService(notificationRepository)
	exportService := services.NewExportService(bookingRepository)

	var locker services.Locker = services.LocalLocker{}
	if cfg.Redis.URL != "" {
		redisClient, err := services.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.Fatalf("Failed to configure Redis: %v", err)
		}
		defer redisClient.Close()
		locker = services.NewRedisLocker(redisClient, "localbookr:auto-assign")
		logger.Info("Auto-assign sweep lock backed by Redis")
	}

	autoAssign := services.NewAutoAssignService(
		cfg.AutoAssign,
		bookingRepository,
		matchingService,
		dispatcher,
		locker,
		appMetrics,
		logger,
	)
	if err := autoAssign.Start(); err != nil {
		logger.Fatalf("Failed to start auto-assign scheduler: %v", err)
	}
	logger.Info("Services initialized")

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	serviceHandler := handlers.NewServiceHandler(catalogService)
	providerHandler := handlers.NewProviderHandler(providerService, matchingService, cfg.Storage.MaxUploadMB)
	bookingHandler := handlers.NewBookingHandler(bookingService, providerService, dispatcher, cfg.AutoAssign.DispatchAsync)
	notificationHandler := handlers.NewNotificationHandler(notificationService, hub)
	adminHandler := handlers.NewAdminHandler(authService, exportService, autoAssign)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(middleware.Metrics(appMetrics))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db, hub))
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))

	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	requireAuth := middleware.AuthMiddleware(jwtService)

	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public, rate limited)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimiter.Middleware(), authHandler.Register)
			auth.POST("/login", authLimiter.Middleware(), authHandler.Login)
			auth.POST("/refresh", authLimiter.Middleware(), authHandler.Refresh)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		v1.GET("/services", serviceHandler.List)

		providers := v1.Group("/providers")
		{
			providers.GET("/search", providerHandler.Search)
			providers.POST("/register", authLimiter.Middleware(), providerHandler.Register)

			me := providers.Group("/me")
			me.Use(requireAuth, middleware.RequireRole(models.RoleProvider))
			{
				me.GET("", providerHandler.Me)
				me.PUT("/push-token", providerHandler.SetPushToken)
				me.POST("/photos", providerHandler.AddPhoto)
				me.POST("/photos/upload", providerHandler.UploadPhoto)
				me.DELETE("/photos/:photo_id", providerHandler.DeletePhoto)
			}
		}

		bookings := v1.Group("/bookings")
		bookings.Use(requireAuth)
		{
			bookings.GET("", bookingHandler.List)
			bookings.POST("", middleware.RequireRole(models.RoleCustomer), bookingHandler.Create)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.PATCH("/:id/status", bookingHandler.UpdateStatus)
			bookings.POST("/:id/start", bookingHandler.Start)
			bookings.POST("/:id/complete", bookingHandler.Complete)
			bookings.POST("/:id/cancel", bookingHandler.Cancel)
			bookings.POST("/:id/rating", bookingHandler.Rate)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.GET("/ws", notificationHandler.Stream)
		}

		admin := v1.Group("/admin")
		admin.Use(requireAuth, middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/services", serviceHandler.Create)
			admin.PUT("/services/:id", serviceHandler.Update)
			admin.DELETE("/services/:id", serviceHandler.Delete)

			admin.GET("/providers", providerHandler.List)
			admin.GET("/providers/pending", providerHandler.ListPending)
			admin.POST("/providers", providerHandler.Create)
			admin.PATCH("/providers/:id", providerHandler.Update)
			admin.POST("/providers/:id/approve", providerHandler.Approve)
			admin.POST("/providers/:id/reject", providerHandler.Reject)
			admin.DELETE("/providers/:id", providerHandler.Delete)

			admin.GET("/bookings/export", adminHandler.ExportBookings)
			admin.POST("/bookings/:id/assign", bookingHandler.Assign)
			admin.DELETE("/bookings/:id", bookingHandler.Delete)
			admin.POST("/bookings/:id/notify-provider", bookingHandler.NotifyProvider)

			admin.GET("/users", adminHandler.ListUsers)

			admin.POST("/auto-assign/run", adminHandler.RunAutoAssign)
			admin.GET("/auto-assign/status", adminHandler.AutoAssignStatus)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	autoAssign.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	dispatcher.Wait()
	stopBackground()

	logger.Info("Server exited")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB, hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"database":    "healthy",
			"connections": hub.ConnectionCount(),
			"version":     fmt.Sprintf("%s (%s)", version, buildTime),
			"timestamp":   time.Now().Unix(),
		})
	}
}

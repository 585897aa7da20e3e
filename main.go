// File: taskhive/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhive/config"
	"taskhive/cron"
	"taskhive/database"
	analyticsRepo "taskhive/database/repository/analytics"
	bookingRepo "taskhive/database/repository/booking"
	reviewRepo "taskhive/database/repository/review"
	serviceRepo "taskhive/database/repository/service"
	userRepoPkg "taskhive/database/repository/user"
	"taskhive/handlers"
	"taskhive/middleware"
	"taskhive/routes"
	"taskhive/services/analytics"
	"taskhive/services/booking"
	"taskhive/services/catalog"
	"taskhive/services/notification"
	"taskhive/services/payment"
	"taskhive/services/review"
	"taskhive/services/storage"
	"taskhive/services/user"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() && config.AppConfig.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET must be set in production")
	}

	database.InitDB()
	utils.InitRedis()
	defer utils.CloseRedis()
	if err := utils.FirebaseInit(context.Background()); err != nil {
		logger.Warn("main: push notifications disabled", zap.Error(err))
	}
	stripe.Key = config.AppConfig.StripeKey

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	// Image storage.
	var images storage.ImageStore = storage.NewDisabledStore()
	if config.AppConfig.CloudinaryCloudName != "" {
		store, err := storage.NewCloudinaryStore(
			config.AppConfig.CloudinaryCloudName,
			config.AppConfig.CloudinaryAPIKey,
			config.AppConfig.CloudinaryAPISecret,
			config.AppConfig.CloudinaryFolder,
		)
		if err != nil {
			logger.Fatal("main: failed to initialize cloudinary storage", zap.Error(err))
		}
		images = store
	}

	// repositories.
	svcRepo := serviceRepo.NewMongoServiceRepo(logger)
	bkRepo := bookingRepo.NewMongoBookingRepo(logger)
	revRepo := reviewRepo.NewMongoReviewRepo(logger)
	anRepo := analyticsRepo.NewMongoAnalyticsRepo(logger)
	userRepo := userRepoPkg.NewMongoUserRepo(logger)

	// services.
	userService := &user.DefaultUserService{
		Repo:     userRepo,
		Denylist: user.NewTokenDenylist(utils.GetAuthCacheClient()),
		TokenTTL: config.AppConfig.JWTTTL,
		Logger:   logger,
	}

	hub, closeSinks := buildHub(logger, userService)
	defer closeSinks()
	go func() {
		if err := hub.Run(rootCtx); err != nil && rootCtx.Err() == nil {
			logger.Error("main: realtime bus stopped", zap.Error(err))
		}
	}()

	catalogService := &catalog.DefaultCatalogService{
		Repo:   svcRepo,
		Images: images,
		Logger: logger,
	}
	bookingService := &booking.DefaultBookingService{
		Repo:      bkRepo,
		Services:  svcRepo,
		Publisher: hub,
		Logger:    logger,
	}
	paymentService := &payment.DefaultPaymentService{
		Bookings:  bkRepo,
		Services:  svcRepo,
		Gateway:   payment.NewStripeGateway(config.AppConfig.StripeWebhookSecret),
		Publisher: hub,
		Currency:  config.AppConfig.PaymentCurrency,
		Logger:    logger,
	}
	reviewService := &review.DefaultReviewService{
		Reviews:     revRepo,
		Bookings:    bkRepo,
		Services:    svcRepo,
		Cache:       review.NewRecommendationCache(utils.GetCacheClient(), config.AppConfig.RecommendationCacheTTL),
		AutoApprove: config.AppConfig.ReviewAutoApprove,
		Logger:      logger,
	}
	analyticsService := &analytics.DefaultAnalyticsService{
		Analytics: anRepo,
		Bookings:  bkRepo,
		Services:  svcRepo,
		Users:     userRepo,
		Logger:    logger,
	}

	userHandler := handlers.NewUserHandler(userService)
	serviceHandler := handlers.NewServiceHandler(catalogService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	socketHandler := handlers.NewSocketHandler(hub)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Auth: userService,

		// User endpoints.
		RegisterUserHandler:     userHandler.RegisterUserHandler,
		AuthenticateUserHandler: userHandler.AuthenticateUserHandler,
		LogoutHandler:           userHandler.LogoutHandler,
		MeHandler:               userHandler.MeHandler,
		UpdateFCMTokenHandler:   userHandler.UpdateFCMTokenHandler,

		// Catalogue endpoints.
		ListServicesHandler:  serviceHandler.ListServicesHandler,
		GetServiceHandler:    serviceHandler.GetServiceHandler,
		CreateServiceHandler: serviceHandler.CreateServiceHandler,
		UpdateServiceHandler: serviceHandler.UpdateServiceHandler,
		DeleteServiceHandler: serviceHandler.DeleteServiceHandler,

		// Booking endpoints.
		ListBookingsHandler:        bookingHandler.ListBookingsHandler,
		GetBookingHandler:          bookingHandler.GetBookingHandler,
		CreateBookingHandler:       bookingHandler.CreateBookingHandler,
		UpdateBookingStatusHandler: bookingHandler.UpdateStatusHandler,
		UpdatePaymentStatusHandler: bookingHandler.UpdatePaymentStatusHandler,

		// Payment endpoints.
		CreateIntentHandler:   paymentHandler.CreateIntentHandler,
		PaymentSuccessHandler: paymentHandler.PaymentSuccessHandler,
		PaymentFailedHandler:  paymentHandler.PaymentFailedHandler,
		PaymentHistoryHandler: paymentHandler.PaymentHistoryHandler,
		WebhookHandler:        paymentHandler.WebhookHandler,
		TestConnectionHandler: paymentHandler.TestConnectionHandler,

		// Review endpoints.
		ServiceReviewsHandler:  reviewHandler.ServiceReviewsHandler,
		ProviderReviewsHandler: reviewHandler.ProviderReviewsHandler,
		RecommendedHandler:     reviewHandler.RecommendedHandler,
		CreateReviewHandler:    reviewHandler.CreateReviewHandler,
		MarkHelpfulHandler:     reviewHandler.MarkHelpfulHandler,
		ModerateReviewHandler:  reviewHandler.ModerateHandler,

		// Analytics endpoints.
		GetAnalyticsHandler: analyticsHandler.GetAnalyticsHandler,
		DashboardHandler:    analyticsHandler.DashboardHandler,
		RollupHandler:       analyticsHandler.RollupHandler,

		SocketHandler: socketHandler.ServeSocketHandler,
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	// Create the Gin router.
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(rootCtx, []*redis.Client{utils.CacheClient, utils.AuthCacheClient}, database.MongoClient)

	rollups, err := cron.Start(config.AppConfig.AnalyticsScheduler, config.AppConfig.AnalyticsCron, analyticsService, logger)
	if err != nil {
		logger.Fatal("main: failed to start analytics scheduler", zap.Error(err))
	}

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	rollups.Stop()
	stopRoot()
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// buildHub assembles the realtime hub with whichever bus and sinks are configured.
func buildHub(logger *zap.Logger, tokens notification.TokenLookup) (*notification.Hub, func()) {
	var bus notification.Bus
	if client := utils.GetCacheClient(); client != nil {
		bus = notification.NewRedisBus(client, config.AppConfig.RealtimeChannel, logger)
	}

	var sinks []notification.Sink
	closers := []func() error{}
	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		sink, err := notification.NewKafkaSink(brokers, config.AppConfig.EventsKafkaTopic, logger)
		if err != nil {
			logger.Fatal("main: failed to configure kafka sink", zap.Error(err))
		}
		sinks = append(sinks, sink)
		closers = append(closers, sink.Close)
	}
	if utils.FCMClient != nil {
		sinks = append(sinks, notification.NewPushSink(utils.FCMClient, tokens))
	}

	hub := notification.NewHub(logger, bus, sinks...)
	return hub, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("main: sink close failed", zap.Error(err))
			}
		}
	}
}

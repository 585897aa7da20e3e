package routes

import (
	"time"

	"taskhive/config"
	"taskhive/handlers"
	"taskhive/middleware"
	"taskhive/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers account endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("/register", hb.RegisterUserHandler)
		api.POST("/login", hb.AuthenticateUserHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.RequireAuth(hb.Auth))
		api.POST("/logout", hb.LogoutHandler)
		api.GET("/me", hb.MeHandler)
		api.PUT("/me/fcm-token", hb.UpdateFCMTokenHandler)
	}
}

// RegisterServiceRoutes registers the catalogue. Reads are public.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("", hb.ListServicesHandler)
		api.GET("/:id", hb.GetServiceHandler)

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(hb.Auth))
		protected.POST("", middleware.RequireRole(models.RoleProvider), hb.CreateServiceHandler)
		protected.PUT("/:id", hb.UpdateServiceHandler)
		protected.DELETE("/:id", hb.DeleteServiceHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.RequireAuth(hb.Auth))
		bookingGroup.GET("", hb.ListBookingsHandler)
		bookingGroup.GET("/:id", hb.GetBookingHandler)
		bookingGroup.POST("", middleware.RequireRole(models.RoleCustomer), hb.CreateBookingHandler)
		bookingGroup.PATCH("/:id/status", hb.UpdateBookingStatusHandler)
		bookingGroup.PATCH("/:id/payment", hb.UpdatePaymentStatusHandler)
	}
}

// RegisterPaymentRoutes registers the payment bridge. The webhook authenticates
// by gateway signature instead of a bearer token.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.WebhookHandler)

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(hb.Auth))
		payers := middleware.RequireRole(models.RoleCustomer, models.RoleAdmin)
		protected.POST("/create-intent/:bookingId", payers, hb.CreateIntentHandler)
		protected.POST("/success/:bookingId", payers, hb.PaymentSuccessHandler)
		protected.POST("/failed/:bookingId", payers, hb.PaymentFailedHandler)
		protected.GET("/history", hb.PaymentHistoryHandler)
		protected.GET("/test-connection", middleware.RequireRole(models.RoleAdmin), hb.TestConnectionHandler)
	}
}

// RegisterReviewRoutes registers review endpoints.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		api.GET("/service/:id", hb.ServiceReviewsHandler)
		api.GET("/provider/:id", hb.ProviderReviewsHandler)
		api.GET("/recommended", hb.RecommendedHandler)

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(hb.Auth))
		protected.POST("/booking/:bookingId", middleware.RequireRole(models.RoleCustomer), hb.CreateReviewHandler)
		protected.POST("/:id/helpful", hb.MarkHelpfulHandler)
		protected.PATCH("/:id/moderate", middleware.RequireRole(models.RoleAdmin), hb.ModerateReviewHandler)
	}
}

// RegisterAnalyticsRoutes registers snapshot and dashboard endpoints.
func RegisterAnalyticsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/analytics")
	{
		api.Use(middleware.RequireAuth(hb.Auth))
		api.GET("", hb.GetAnalyticsHandler)
		api.GET("/dashboard", hb.DashboardHandler)
		api.POST("/rollup", middleware.RequireRole(models.RoleAdmin), hb.RollupHandler)
	}
}

// RegisterSocketRoute registers the realtime channel.
func RegisterSocketRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/ws", middleware.RequireAuth(hb.Auth), hb.SocketHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	origins := config.AllowedOrigins()
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	// Credentials cannot be combined with a wildcard origin.
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	RegisterHealthRoute(r)
	RegisterUserRoutes(r, hb)
	RegisterServiceRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterAnalyticsRoutes(r, hb)
	RegisterSocketRoute(r, hb)
}

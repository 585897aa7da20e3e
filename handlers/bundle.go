// File: taskhive/handlers/bundle.go
package handlers

import (
	"taskhive/middleware"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Auth resolves bearer tokens for protected routes.
	Auth middleware.Authenticator

	// User endpoints
	RegisterUserHandler     gin.HandlerFunc
	AuthenticateUserHandler gin.HandlerFunc
	LogoutHandler           gin.HandlerFunc
	MeHandler               gin.HandlerFunc
	UpdateFCMTokenHandler   gin.HandlerFunc

	// Catalogue endpoints
	ListServicesHandler  gin.HandlerFunc
	GetServiceHandler    gin.HandlerFunc
	CreateServiceHandler gin.HandlerFunc
	UpdateServiceHandler gin.HandlerFunc
	DeleteServiceHandler gin.HandlerFunc

	// Booking endpoints
	ListBookingsHandler        gin.HandlerFunc
	GetBookingHandler          gin.HandlerFunc
	CreateBookingHandler       gin.HandlerFunc
	UpdateBookingStatusHandler gin.HandlerFunc
	UpdatePaymentStatusHandler gin.HandlerFunc

	// Payment endpoints
	CreateIntentHandler   gin.HandlerFunc
	PaymentSuccessHandler gin.HandlerFunc
	PaymentFailedHandler  gin.HandlerFunc
	PaymentHistoryHandler gin.HandlerFunc
	WebhookHandler        gin.HandlerFunc
	TestConnectionHandler gin.HandlerFunc

	// Review endpoints
	ServiceReviewsHandler  gin.HandlerFunc
	ProviderReviewsHandler gin.HandlerFunc
	RecommendedHandler     gin.HandlerFunc
	CreateReviewHandler    gin.HandlerFunc
	MarkHelpfulHandler     gin.HandlerFunc
	ModerateReviewHandler  gin.HandlerFunc

	// Analytics endpoints
	GetAnalyticsHandler gin.HandlerFunc
	DashboardHandler    gin.HandlerFunc
	RollupHandler       gin.HandlerFunc

	// Realtime
	SocketHandler gin.HandlerFunc
}

package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`

	// Auth.
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTTTL      time.Duration `mapstructure:"JWT_TTL"`
	AdminEmails string        `mapstructure:"ADMIN_EMAILS"`

	// Redis configuration. An empty address disables every Redis-backed feature.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB     int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB    int    `mapstructure:"REDIS_QUEUE_DB"`
	RealtimeChannel string `mapstructure:"REALTIME_CHANNEL"`

	// Stripe.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	PaymentCurrency     string `mapstructure:"PAYMENT_CURRENCY"`

	// Cloudinary.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`

	// Secondary notification sinks.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	EventsKafkaBrokers      string `mapstructure:"EVENTS_KAFKA_BROKERS"`
	EventsKafkaTopic        string `mapstructure:"EVENTS_KAFKA_TOPIC"`

	// Analytics roll-up: "local" runs robfig/cron in-process, "queue" uses asynq.
	AnalyticsScheduler string `mapstructure:"ANALYTICS_SCHEDULER"`
	AnalyticsCron      string `mapstructure:"ANALYTICS_CRON"`

	// Reviews.
	ReviewAutoApprove      bool          `mapstructure:"REVIEW_AUTO_APPROVE"`
	RecommendationCacheTTL time.Duration `mapstructure:"RECOMMENDATION_CACHE_TTL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "5000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "taskhive")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_TTL", 24*time.Hour)
	viper.SetDefault("ADMIN_EMAILS", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("REALTIME_CHANNEL", "taskhive:realtime")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("PAYMENT_CURRENCY", "usd")
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("CLOUDINARY_FOLDER", "services")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("EVENTS_KAFKA_BROKERS", "")
	viper.SetDefault("EVENTS_KAFKA_TOPIC", "marketplace-events")
	viper.SetDefault("ANALYTICS_SCHEDULER", "local")
	viper.SetDefault("ANALYTICS_CRON", "0 0 * * *")
	viper.SetDefault("REVIEW_AUTO_APPROVE", true)
	viper.SetDefault("RECOMMENDATION_CACHE_TTL", 10*time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range splitList(AppConfig.AdminEmails) {
		if strings.ToLower(e) == email {
			return true
		}
	}
	return false
}

// KafkaBrokers returns the configured broker list, or nil when the sink is disabled.
func KafkaBrokers() []string {
	return splitList(AppConfig.EventsKafkaBrokers)
}

// AllowedOrigins returns the CORS origin list.
func AllowedOrigins() []string {
	return splitList(AppConfig.CORSOrigins)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting lists
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBDriver   string // Database driver: mysql, postgres or sqlite
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name (file path for sqlite)
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	SessionCookieName           string        // Name of the session cookie
	SessionCookieAge            time.Duration // Lifetime of the session cookie and stored session
	SessionCookieSecure         bool          // Only send the session cookie over HTTPS
	SessionSaveEveryRequest     bool          // Save the session on every request, not only when modified
	SessionExpireAtBrowserClose bool          // Drop Max-Age so the cookie dies with the browser

	MinIOEndpoint  string // MinIO endpoint, uploads disabled when empty
	MinIOAccessKey string // MinIO access key
	MinIOSecretKey string // MinIO secret key
	MinIOUseSSL    bool   // Use TLS towards MinIO
	MinIOBucket    string // Bucket for profile pictures
	MaxUploadBytes int64  // Largest accepted profile picture

	KafkaBrokers []string // Kafka brokers, events disabled when empty
	KafkaTopic   string   // Topic for account events

	RateLimitRequests int           // Requests allowed per window on register/login
	RateLimitWindow   time.Duration // Rate limit window
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),    // Application port
		DBDriver:   getEnv("DB_DRIVER", "mysql"),  // Database driver
		DBUser:     os.Getenv("DB_USER"),          // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),      // Database password
		DBHost:     os.Getenv("DB_HOST"),          // Database host
		DBPort:     os.Getenv("DB_PORT"),          // Database port
		DBName:     os.Getenv("DB_NAME"),          // Database name
		JWTSecret:  os.Getenv("JWT_SECRET"),       // JWT secret key
		RedisAddr:  getEnv("REDIS_ADDR", ":6379"), // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),       // Redis password
		RedisDB:    redisDB,                       // Redis database number
		IsProd:     getBool("IS_PROD", false),     // Is production environment

		SessionCookieName:           getEnv("SESSION_COOKIE_NAME", "sessionid"),                         // Session cookie name
		SessionCookieAge:            time.Duration(getInt("SESSION_COOKIE_AGE", 1209600)) * time.Second, // Two weeks, in seconds
		SessionCookieSecure:         getBool("SESSION_COOKIE_SECURE", false),                            // HTTPS only cookie
		SessionSaveEveryRequest:     getBool("SESSION_SAVE_EVERY_REQUEST", false),                       // Save on every request
		SessionExpireAtBrowserClose: getBool("SESSION_EXPIRE_AT_BROWSER_CLOSE", false),                  // Browser-length session

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),                 // MinIO endpoint
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),               // MinIO access key
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),               // MinIO secret key
		MinIOUseSSL:    getBool("MINIO_USE_SSL", false),             // MinIO TLS
		MinIOBucket:    getEnv("MINIO_BUCKET_NAME", "profile-pics"), // Profile picture bucket
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 2<<20)),    // 2 MiB by default

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),    // Kafka brokers
		KafkaTopic:   getEnv("KAFKA_TOPIC", "accounts.events"), // Account events topic

		RateLimitRequests: getInt("RATELIMIT_REQUESTS", 5),                                 // 5 attempts
		RateLimitWindow:   time.Duration(getInt("RATELIMIT_WINDOW_SEC", 60)) * time.Second, // per minute
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword + " dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable"
	case "sqlite":
		return c.DBName // File path
	default:
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
	}
}

// getEnv returns the variable or def when unset
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getInt returns the variable as int or def when unset or invalid
func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

// getBool returns the variable as bool or def when unset or invalid
func getBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

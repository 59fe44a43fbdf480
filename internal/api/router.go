package api

import (
	"accounts_portal/internal/metrics"    // Prometheus instrumentation
	"accounts_portal/internal/middleware" // Custom package for middleware
	"accounts_portal/internal/session"    // Session middleware
	"time"                                // Rate limit window

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps carries everything the routes need
type Deps struct {
	DB             *gorm.DB        // Database handle with receivers connected
	Redis          *redis.Client   // Sessions and caches
	Files          FileStore       // Profile pictures, nil disables uploads
	Sessions       session.Options // Session cookie settings
	JWTSecret      string          // JWT signing key
	MaxUploadBytes int64           // Largest accepted profile picture
	RateRequests   int             // Register/login attempts per window
	RateWindow     time.Duration   // Rate limit window
	TrustedProxies []string        // Proxies allowed to set client IP headers
}

// NewRouter builds the gin engine with every route installed
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}
	r.GET("/metrics", metrics.Handler()) // Prometheus scrape endpoint

	store := session.NewStore(d.Redis)
	app := r.Group("")
	app.Use(session.Middleware(store, d.Sessions))

	// Session demo routes
	app.GET("/session/set", SetSessionHandler())
	app.GET("/session/get", GetSessionHandler())
	app.GET("/session/delete", DeleteSessionHandler())

	// Account routes
	limit := middleware.RateLimitByIP(d.RateRequests, d.RateWindow)
	app.POST("/user", limit, RegisterHandler(d.DB, d.Files, d.MaxUploadBytes)) // Registration endpoint
	app.POST("/user/login", limit, LoginHandler(d.DB))                         // Session login
	app.POST("/user/logout", LogoutHandler())                                  // Session logout
	app.POST("/user/token", limit, TokenHandler(d.DB, d.JWTSecret))            // JWT for API clients

	auth := middleware.LoginRequired(d.JWTSecret)
	app.GET("/user/me", auth, MeHandler(d.DB, d.Files))
	app.PUT("/user/me/profile", auth, UpdateProfileHandler(d.DB, d.Files, d.MaxUploadBytes))

	// Library routes
	app.GET("/books", ListBooksHandler(d.DB))
	app.POST("/authors", auth, CreateAuthorHandler(d.DB))
	app.POST("/books", auth, CreateBookHandler(d.DB))
	app.PUT("/books/:id", auth, UpdateBookHandler(d.DB))
	app.DELETE("/books/:id", auth, DeleteBookHandler(d.DB))

	// Admin routes (protected, admin only)
	admin := app.Group("/admin")
	admin.Use(auth, middleware.AdminOnlyMiddleware(d.DB))
	admin.GET("/users", ListUsersHandler(d.DB, d.Redis))
	admin.GET("/sessions", ListSessionsHandler(store))
	return r, nil
}

package api

import (
	"accounts_portal/internal/domain"  // Importing domain models
	"accounts_portal/internal/session" // Session store
	"accounts_portal/internal/utils"   // Utility functions
	"net/http"                         // HTTP status codes
	"strconv"                          // String conversion
	"time"                             // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID         uint                    `json:"id"`                // User ID
	Username   string                  `json:"username"`          // Username
	Email      string                  `json:"email"`             // Email address
	Role       string                  `json:"role"`              // User role
	DateJoined time.Time               `json:"date_joined"`       // Registration time
	Profile    *domain.UserProfileInfo `json:"profile,omitempty"` // Associated profile
}

// userListPage is the cached shape of a ListUsersHandler response
type userListPage struct {
	Users      []UserAdminResponse `json:"users"`       // List of users
	Page       int                 `json:"page"`        // Current page
	PageSize   int                 `json:"page_size"`   // Page size
	Total      int64               `json:"total"`       // Total number of users
	TotalPages int                 `json:"total_pages"` // Total pages
}

// ListUsersHandler returns all users with their profile. Pages are cached in Redis until a
// user is saved or deleted.
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		// Matches receivers.UserListCachePattern
		cacheKey := "admin:users:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached userListPage
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}

		var total int64 // Total user count
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User
		if err := db.Preload("Profile").Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		resp := userListPage{
			Users:      make([]UserAdminResponse, len(users)),
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (int(total) + pageSize - 1) / pageSize,
		}
		for i, u := range users {
			resp.Users[i] = UserAdminResponse{
				ID:         u.ID,        // User ID
				Username:   u.Username,  // Username
				Email:      u.Email,     // Email
				Role:       u.Role,      // User role
				DateJoined: u.CreatedAt, // Registration time
				Profile:    u.Profile,   // Associated profile
			}
		}
		if err := utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second); err != nil {
			logrus.WithError(err).Warn("Failed to cache user list")
		}
		c.JSON(http.StatusOK, gin.H{
			"users":       resp.Users,      // List of users
			"page":        resp.Page,       // Current page
			"page_size":   resp.PageSize,   // Page size
			"total":       resp.Total,      // Total number of users
			"total_pages": resp.TotalPages, // Total pages
			"cached":      false,           // Indicate response is not from cache
		})
	}
}

// ListSessionsHandler returns every stored session with its decoded data
func ListSessionsHandler(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := store.List(c.Request.Context())
		if err != nil {
			logrus.WithError(err).Error("Failed to list sessions")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": entries, "total": len(entries)})
	}
}

package middleware

import (
	"accounts_portal/internal/session" // Session access
	"accounts_portal/internal/utils"   // JWT utility functions
	"net/http"                         // HTTP status codes
	"strings"                          // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// LoginRequired accepts either a Bearer JWT or a logged in session and stores the user id as "userID"
func LoginRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			// API clients must send a well-formed bearer token
			if !strings.HasPrefix(authHeader, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
				return
			}
			claims, err := utils.ParseJWT(strings.TrimPrefix(authHeader, "Bearer "), secret) // Parse the JWT token
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			c.Set("userID", claims.UserID) // Store userID in context
			c.Next()
			return
		}
		// Browser clients carry the user in their session
		if v, ok := c.Get(session.ContextKey); ok {
			if userID, ok := v.(*session.Session).AuthUserID(); ok {
				c.Set("userID", userID) // Store userID in context
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
}

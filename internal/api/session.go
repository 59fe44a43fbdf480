package api

import (
	"accounts_portal/internal/session" // Session access
	"net/http"                         // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// SetSessionHandler stores a username in the visitor's session
func SetSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		session.Default(c).Set("username", c.DefaultQuery("username", "john_doe"))
		c.String(http.StatusOK, "Session data set")
	}
}

// GetSessionHandler greets the visitor by the stored username
func GetSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := session.Default(c).GetString("username", "Guest")
		c.String(http.StatusOK, "Hello, "+username)
	}
}

// DeleteSessionHandler removes the stored username, if any
func DeleteSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		session.Default(c).Delete("username")
		c.String(http.StatusOK, "Session data cleared")
	}
}

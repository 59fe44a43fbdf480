package api

import (
	"accounts_portal/internal/domain"  // Importing domain models
	"accounts_portal/internal/forms"   // Registration forms
	"accounts_portal/internal/metrics" // Registration counters
	"accounts_portal/internal/session" // Session access
	"accounts_portal/internal/utils"   // Utility functions
	"context"                          // Context for uploads
	"errors"                           // Error inspection
	"fmt"                              // Error wrapping
	"io"                               // Upload streams
	"net/http"                         // HTTP status codes
	"time"                             // Presigned URL expiry

	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/gin-gonic/gin/binding" // Body binding
	"github.com/google/uuid"           // Object names
	"github.com/sirupsen/logrus"       // Logging library
	"golang.org/x/crypto/bcrypt"       // Password hashing
	"gorm.io/gorm"                     // GORM ORM library
)

// FileStore keeps uploaded profile pictures
type FileStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, name string) error
	URL(ctx context.Context, name string, expiry time.Duration) (string, error)
}

// Request struct for login
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"` // Username must be provided
	Password string `form:"password" json:"password" binding:"required"` // Password must be provided
}

// Response struct for token requests
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

var errInvalidCredentials = errors.New("invalid credentials")

// bindForm binds obj from a JSON, urlencoded or multipart body. JSON bodies are buffered so
// several forms can bind from the same request.
func bindForm(c *gin.Context, obj any) error {
	if c.ContentType() == binding.MIMEJSON {
		return c.ShouldBindBodyWith(obj, binding.JSON)
	}
	return c.ShouldBind(obj)
}

// uploadPicture stores the validated picture of f and returns its object key
func uploadPicture(ctx context.Context, files FileStore, f *forms.UserProfileInfoForm) (string, error) {
	src, err := f.ProfilePic.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	name := "profile_pics/" + uuid.NewString() + f.Extension() // Never reuse client file names
	if err := files.Put(ctx, name, src, f.ProfilePic.Size, f.ContentType()); err != nil {
		return "", err
	}
	return name, nil
}

// authenticate returns the user matching username and password
func authenticate(db *gorm.DB, username, password string) (*domain.User, error) {
	var user domain.User // Fetch user from database
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return &user, nil
}

// RegisterHandler validates UserForm and UserProfileInfoForm together and creates the account
func RegisterHandler(db *gorm.DB, files FileStore, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var userForm forms.UserForm               // Credentials
		var profileForm forms.UserProfileInfoForm // Public profile
		userErrs := userForm.Validate(bindForm(c, &userForm))
		profileErrs := profileForm.Validate(bindForm(c, &profileForm), maxUpload)
		if err := userForm.ValidateUnique(db, userErrs); err != nil {
			logrus.WithError(err).Error("Registration lookup failed")
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		if profileForm.HasPicture() && files == nil {
			profileErrs.Add(forms.FieldProfilePic, "File uploads are disabled.")
		}
		// Field errors are reported together, never as a failed request
		if !userErrs.Valid() || !profileErrs.Valid() {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"user": userErrs, "profile": profileErrs}})
			return
		}

		user, err := userForm.User() // Hash the password
		if err != nil {
			logrus.WithError(err).Error("Failed to hash password")
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		picRef := "" // Stored picture key
		if profileForm.HasPicture() {
			if picRef, err = uploadPicture(ctx, files, &profileForm); err != nil {
				logrus.WithError(err).Error("Profile picture upload failed")
				metrics.RegistrationsTotal.WithLabelValues("error").Inc()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store profile picture"})
				return
			}
		}
		profile := profileForm.Profile(0, picRef) // UserID is filled in by the association
		user.Profile = &profile
		// User and profile are inserted in one transaction
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			if picRef != "" {
				_ = files.Remove(context.WithoutCancel(ctx), picRef) // Orphaned upload
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a race with another registration for the same name
				metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
				c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"user": forms.Errors{forms.FieldUsername: {forms.MsgUsernameTaken}}, "profile": forms.Errors{}}})
				return
			}
			logrus.WithFields(logrus.Fields{
				"username": user.Username, // Requested username
				"error":    err.Error(),   // Error message
			}).Error("Failed to create user")
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}

		session.Default(c).Login(user.ID) // Registered visitors are logged in right away
		metrics.RegistrationsTotal.WithLabelValues("created").Inc()
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // User ID
			"username": user.Username, // Username
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// LoginHandler logs the visitor in with their session
func LoginHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := bindForm(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := authenticate(db, req.Username, req.Password)
		if err != nil {
			if !errors.Is(err, errInvalidCredentials) {
				logrus.WithError(err).Error("Login lookup failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		session.Default(c).Login(user.ID) // Rotates the session key
		c.JSON(http.StatusOK, gin.H{"message": "Logged in", "user": user})
	}
}

// LogoutHandler drops the visitor's session
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		session.Default(c).Flush()
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// TokenHandler authenticates a user and returns a JWT token for API clients
func TokenHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := bindForm(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := authenticate(db, req.Username, req.Password)
		if err != nil {
			if !errors.Is(err, errInvalidCredentials) {
				logrus.WithError(err).Error("Token lookup failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Username, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

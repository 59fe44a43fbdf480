package api

import (
	"accounts_portal/internal/domain" // Importing domain models
	"accounts_portal/internal/forms"  // Registration forms
	"context"                         // Context for cleanup
	"errors"                          // Error inspection
	"net/http"                        // HTTP status codes
	"time"                            // Presigned URL expiry

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// pictureURLExpiry bounds how long a presigned picture link works
const pictureURLExpiry = 15 * time.Minute

// MeHandler returns the authenticated user with their profile
func MeHandler(db *gorm.DB, files FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID") // Set by LoginRequired
		var user domain.User
		if err := db.Preload("Profile").First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		resp := gin.H{"user": user}
		if files != nil && user.Profile != nil && user.Profile.ProfilePic != "" {
			url, err := files.URL(c.Request.Context(), user.Profile.ProfilePic, pictureURLExpiry)
			if err != nil {
				logrus.WithError(err).Warn("Failed to presign profile picture")
			} else {
				resp["profile_pic_url"] = url
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// UpdateProfileHandler replaces the authenticated user's profile with a validated UserProfileInfoForm
func UpdateProfileHandler(db *gorm.DB, files FileStore, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := c.MustGet("userID").(uint) // Set by LoginRequired
		var form forms.UserProfileInfoForm
		errs := form.Validate(bindForm(c, &form), maxUpload)
		if form.HasPicture() && files == nil {
			errs.Add(forms.FieldProfilePic, "File uploads are disabled.")
		}
		if !errs.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		var profile domain.UserProfileInfo
		err := db.Where("user_id = ?", userID).First(&profile).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}
		profile.UserID = userID
		profile.PortfolioSite = form.PortfolioSite
		oldPic := profile.ProfilePic // Removed once the new one is saved
		if form.HasPicture() {
			if profile.ProfilePic, err = uploadPicture(ctx, files, &form); err != nil {
				logrus.WithError(err).Error("Profile picture upload failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store profile picture"})
				return
			}
		}
		if err := db.WithContext(ctx).Save(&profile).Error; err != nil {
			if profile.ProfilePic != oldPic {
				_ = files.Remove(context.WithoutCancel(ctx), profile.ProfilePic)
			}
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to save profile")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
			return
		}
		if oldPic != "" && oldPic != profile.ProfilePic {
			if err := files.Remove(ctx, oldPic); err != nil {
				logrus.WithError(err).Warn("Failed to remove replaced profile picture")
			}
		}
		c.JSON(http.StatusOK, gin.H{"profile": profile})
	}
}

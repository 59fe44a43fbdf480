package forms

import (
	"accounts_portal/internal/domain" // Importing domain models
	"fmt"                             // Message formatting
	"mime/multipart"                  // Uploaded files

	"github.com/gabriel-vasile/mimetype" // Content sniffing
)

// Field names of UserProfileInfoForm
const (
	FieldPortfolioSite = "portfolio_site"
	FieldProfilePic    = "profile_pic"
)

// pictureTypes are the raster formats accepted for profile pictures
var pictureTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff"}

const MsgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// UserProfileInfoForm collects the public profile of a new user
type UserProfileInfoForm struct {
	PortfolioSite string                `form:"portfolio_site" json:"portfolio_site" binding:"omitempty,url,weburl,max=200"` // Portfolio URL
	ProfilePic    *multipart.FileHeader `form:"profile_pic" json:"-"`                                                        // Uploaded picture, multipart only

	contentType string // Sniffed type of ProfilePic
}

// Validate runs the field-level hooks. maxBytes caps the picture size.
func (f *UserProfileInfoForm) Validate(bindErr error, maxBytes int64) Errors {
	errs := FromBinding(bindErr)
	if errs.Has(NonFieldErrors) || f.ProfilePic == nil {
		return errs
	}
	if maxBytes > 0 && f.ProfilePic.Size > maxBytes {
		errs.Add(FieldProfilePic, fmt.Sprintf("Ensure this file is at most %d bytes (it has %d).", maxBytes, f.ProfilePic.Size))
		return errs
	}
	file, err := f.ProfilePic.Open()
	if err != nil {
		errs.Add(FieldProfilePic, MsgInvalidImage)
		return errs
	}
	defer file.Close()
	mt, err := mimetype.DetectReader(file) // Trust the bytes, not the client's header
	if err != nil || !mimetype.EqualsAny(mt.String(), pictureTypes...) {
		errs.Add(FieldProfilePic, MsgInvalidImage)
		return errs
	}
	f.contentType = mt.String()
	return errs
}

// HasPicture reports whether a picture was uploaded
func (f *UserProfileInfoForm) HasPicture() bool {
	return f.ProfilePic != nil
}

// ContentType is the sniffed type of the validated picture
func (f *UserProfileInfoForm) ContentType() string {
	return f.contentType
}

// Extension returns the canonical file extension of the validated picture
func (f *UserProfileInfoForm) Extension() string {
	if mt := mimetype.Lookup(f.contentType); mt != nil {
		return mt.Extension()
	}
	return ""
}

// Profile builds the profile record for userID; picRef is the stored picture key
func (f *UserProfileInfoForm) Profile(userID uint, picRef string) domain.UserProfileInfo {
	return domain.UserProfileInfo{UserID: userID, PortfolioSite: f.PortfolioSite, ProfilePic: picRef}
}

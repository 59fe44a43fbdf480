package forms

import (
	"accounts_portal/internal/domain" // Importing domain models
	"fmt"                             // Error wrapping
	"strings"                         // Whitespace trimming

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Field names of UserForm
const (
	FieldUsername  = "username"
	FieldEmail     = "email"
	FieldPassword1 = "password1"
	FieldPassword2 = "password2"
)

const (
	MsgPasswordMismatch = "Passwords don't match"
	MsgUsernameTaken    = "A user with that username already exists."
	MsgPasswordTooLong  = "Ensure this value has at most 72 bytes."
)

// maxPasswordBytes is the most bcrypt will hash
const maxPasswordBytes = 72

// UserForm collects the credentials of a new user
type UserForm struct {
	Username  string `form:"username" json:"username" binding:"notblank,max=150,username"` // Login name
	Email     string `form:"email" json:"email" binding:"omitempty,email,max=254"`         // Optional email
	Password1 string `form:"password1" json:"password1" binding:"notblank"`                // Password
	Password2 string `form:"password2" json:"password2" binding:"notblank"`                // Confirm Password, never persisted
}

// ConfirmPassword checks that both password entries match and returns the validated password2.
// An empty entry is left to the required-field rule and passes here.
func ConfirmPassword(password1, password2 string) (string, error) {
	if password1 != "" && password2 != "" && password1 != password2 {
		return "", &ValidationError{Field: FieldPassword2, Message: MsgPasswordMismatch}
	}
	return password2, nil
}

// Validate runs the field-level hooks over the values bound from the request. bindErr is
// the error returned by gin's ShouldBind for this form.
func (f *UserForm) Validate(bindErr error) Errors {
	errs := FromBinding(bindErr)
	if errs.Has(NonFieldErrors) {
		return errs // Body could not be read at all
	}
	// Surrounding whitespace is never part of a value
	f.Username = strings.TrimSpace(f.Username)
	f.Password1 = strings.TrimSpace(f.Password1)
	f.Password2 = strings.TrimSpace(f.Password2)

	if !errs.Has(FieldPassword1) && len(f.Password1) > maxPasswordBytes {
		errs.Add(FieldPassword1, MsgPasswordTooLong)
	}

	// password2 hook: only runs once password2 itself is clean, and sees password1 only if it is clean too
	if !errs.Has(FieldPassword2) {
		password1 := f.Password1
		if errs.Has(FieldPassword1) {
			password1 = ""
		}
		cleaned, err := ConfirmPassword(password1, f.Password2)
		if err != nil {
			errs.AddError(err)
		} else {
			f.Password2 = cleaned
		}
	}
	return errs
}

// ValidateUnique adds a username error when the name is already registered
func (f *UserForm) ValidateUnique(db *gorm.DB, errs Errors) error {
	if errs.Has(FieldUsername) {
		return nil
	}
	var count int64 // Existing users with this name
	if err := db.Model(&domain.User{}).Where("username = ?", f.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		errs.Add(FieldUsername, MsgUsernameTaken)
	}
	return nil
}

// User builds the identity record for a validated form
func (f *UserForm) User() (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password1), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	return domain.User{Username: f.Username, Email: f.Email, Password: string(hash)}, nil
}

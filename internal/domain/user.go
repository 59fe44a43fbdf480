package domain

import "time" // Timestamps

// User Model
type User struct {
	ID        uint             `gorm:"primaryKey" json:"id"`                                                   // Primary key
	Username  string           `gorm:"size:150;unique;not null" json:"username"`                               // Unique username
	Email     string           `gorm:"size:254" json:"email"`                                                  // Optional email address
	Password  string           `gorm:"not null" json:"-"`                                                      // Hashed password, never serialised
	Role      string           `gorm:"default:user" json:"role"`                                               // Role: user or admin
	CreatedAt time.Time        `json:"date_joined"`                                                            // Registration time
	Profile   *UserProfileInfo `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"profile,omitempty"` // One-to-one profile
}

// IsAdmin reports whether the user may use the admin routes
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

package domain

// UserProfileInfo holds the optional public details of a User
type UserProfileInfo struct {
	ID            uint   `gorm:"primaryKey" json:"-"`            // Primary key
	UserID        uint   `gorm:"uniqueIndex;not null" json:"-"`  // Foreign key to User, one profile per user
	PortfolioSite string `gorm:"size:200" json:"portfolio_site"` // Portfolio URL
	ProfilePic    string `gorm:"size:255" json:"profile_pic"`    // Object key of the uploaded picture
}

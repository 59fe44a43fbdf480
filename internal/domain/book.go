package domain

// Author Model
type Author struct {
	ID    uint   `gorm:"primaryKey" json:"id"`                                // Primary key
	Name  string `gorm:"size:100;not null" json:"name"`                       // Author name
	Books []Book `gorm:"constraint:OnDelete:CASCADE;" json:"books,omitempty"` // Books written by the author
}

// Book Model
type Book struct {
	ID       uint    `gorm:"primaryKey" json:"id"`            // Primary key
	Title    string  `gorm:"size:100;not null" json:"title"`  // Book title
	AuthorID uint    `gorm:"not null;index" json:"author_id"` // Foreign key to Author
	Author   *Author `json:"author,omitempty"`                // Owning author
}

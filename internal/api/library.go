package api

import (
	"accounts_portal/internal/domain" // Importing domain models
	"errors"                          // Error inspection
	"net/http"                        // HTTP status codes
	"strconv"                         // String conversion

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// AuthorRequest represents a new author
type AuthorRequest struct {
	Name string `json:"name" binding:"required,max=100"` // Author name
}

// BookRequest represents a new or updated book
type BookRequest struct {
	Title    string `json:"title" binding:"required,max=100"` // Book title
	AuthorID uint   `json:"author_id"`                        // Required on create, ignored on update
}

// pagination reads page and page_size query parameters
func pagination(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page
	pageSize = 20 // Default page size
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = v
	}
	return page, pageSize
}

// CreateAuthorHandler creates an author
func CreateAuthorHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AuthorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		author := domain.Author{Name: req.Name}
		if err := db.WithContext(c.Request.Context()).Create(&author).Error; err != nil {
			logrus.WithError(err).Error("Failed to create author")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create author"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"author": author})
	}
}

// CreateBookHandler creates a book; the save signals fire around the insert
func CreateBookHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BookRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.AuthorID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var author domain.Author
		if err := db.First(&author, req.AuthorID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Author not found"})
			return
		}
		book := domain.Book{Title: req.Title, AuthorID: author.ID}
		if err := db.WithContext(c.Request.Context()).Create(&book).Error; err != nil {
			logrus.WithError(err).Error("Failed to create book")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create book"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"book": book})
	}
}

// findBook loads the book named by the :id path parameter, answering 404 itself
func findBook(c *gin.Context, db *gorm.DB) (*domain.Book, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return nil, false
	}
	var book domain.Book
	if err := db.First(&book, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load book"})
		}
		return nil, false
	}
	return &book, true
}

// UpdateBookHandler renames a book
func UpdateBookHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		book, ok := findBook(c, db)
		if !ok {
			return
		}
		var req BookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		book.Title = req.Title
		if err := db.WithContext(c.Request.Context()).Save(book).Error; err != nil {
			logrus.WithError(err).Error("Failed to update book")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update book"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"book": book})
	}
}

// DeleteBookHandler deletes a book
func DeleteBookHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		book, ok := findBook(c, db)
		if !ok {
			return
		}
		if err := db.WithContext(c.Request.Context()).Delete(book).Error; err != nil {
			logrus.WithError(err).Error("Failed to delete book")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete book"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ListBooksHandler returns books with their authors, newest first
func ListBooksHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pagination(c)
		var total int64 // Total book count
		if err := db.Model(&domain.Book{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count books"})
			return
		}
		var books []domain.Book
		if err := db.Preload("Author").Order("id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&books).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"books":       books,                                  // Page of books
			"page":        page,                                   // Current page
			"page_size":   pageSize,                               // Page size
			"total":       total,                                  // Total books
			"total_pages": (int(total) + pageSize - 1) / pageSize, // Total pages
		})
	}
}

// Package library provides database operations for per-user book links.
//
// A UserBook row layers one user's reading state (status, rating, dates,
// tags, notes) on top of a shared catalog book. Every query here takes the
// owning user ID so ownership is enforced at the data-access boundary.
package library

import (
	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/entities"
)

// Item joins a library link with its catalog book for listing and export.
type Item struct {
	Link entities.UserBook
	Book entities.Book
}

// Repository handles all user-book link database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new library repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetLink returns the user's link for a book, if any.
func (r *Repository) GetLink(userID, bookID uint) (*entities.UserBook, error) {
	var link entities.UserBook
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// HasLink reports whether the user already has the book in their library.
func (r *Repository) HasLink(userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.UserBook{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// CreateLink inserts a new user-book link.
func (r *Repository) CreateLink(link *entities.UserBook) error {
	return r.db.Create(link).Error
}

// UpdateLink saves changes to an existing link.
func (r *Repository) UpdateLink(link *entities.UserBook) error {
	return r.db.Save(link).Error
}

// DeleteLink removes the user's link to a book. Returns the number of rows
// removed so callers can distinguish a missing link.
func (r *Repository) DeleteLink(userID, bookID uint) (int64, error) {
	result := r.db.
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.UserBook{})
	return result.RowsAffected, result.Error
}

// CountLinksForBook returns how many users reference a book.
func (r *Repository) CountLinksForBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.UserBook{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}

// GetLibrary returns the user's links joined with their books, newest first.
func (r *Repository) GetLibrary(userID uint) ([]Item, error) {
	var links []entities.UserBook
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(links))
	for i, link := range links {
		items[i] = Item{Link: link, Book: link.Book}
	}
	return items, nil
}

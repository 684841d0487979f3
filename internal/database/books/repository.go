// Package books provides database operations for the shared book catalog.
//
// Books are deduplicated across users: FindOrCreate matches by ISBN when one
// is known and falls back to a case-insensitive (title, author) match, so two
// users adding the same title share a single catalog row.
package books

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/entities"
)

// Repository handles all book catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new catalog record.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetByID retrieves a book by ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAll returns the whole catalog, newest first.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id DESC").Find(&books).Error
	return books, err
}

// FindByISBN looks a book up by its normalized ISBN.
func (r *Repository) FindByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByTitleAndAuthor matches case-insensitively on both fields.
func (r *Repository) FindByTitleAndAuthor(title, author string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.
		Where("LOWER(title) = LOWER(?) AND LOWER(author) = LOWER(?)", title, author).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindOrCreate returns the existing catalog row for the candidate book or
// creates one. Lookup prefers ISBN, then case-insensitive (title, author).
// Returns true when a new row was created.
func (r *Repository) FindOrCreate(book *entities.Book) (*entities.Book, bool, error) {
	if isbn := strings.TrimSpace(book.ISBN); isbn != "" {
		existing, err := r.FindByISBN(isbn)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	existing, err := r.FindByTitleAndAuthor(book.Title, book.Author)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := r.db.Create(book).Error; err != nil {
		return nil, false, err
	}
	return book, true, nil
}

// Update saves changes to a catalog record.
func (r *Repository) Update(book *entities.Book) error {
	return r.db.Save(book).Error
}

// DeleteIfOrphaned removes a book only when no user links reference it.
// Returns true when the row was deleted.
func (r *Repository) DeleteIfOrphaned(id uint) (bool, error) {
	var links int64
	if err := r.db.Model(&entities.UserBook{}).Where("book_id = ?", id).Count(&links).Error; err != nil {
		return false, err
	}
	if links > 0 {
		return false, nil
	}
	result := r.db.Delete(&entities.Book{}, id)
	return result.RowsAffected > 0, result.Error
}

// DeleteAllOrphans removes every book without a user link. Used by the
// scheduled cleanup task as a safety net behind delete-time cleanup.
func (r *Repository) DeleteAllOrphans() (int64, error) {
	result := r.db.
		Where("id NOT IN (?)", r.db.Model(&entities.UserBook{}).Select("book_id")).
		Delete(&entities.Book{})
	return result.RowsAffected, result.Error
}

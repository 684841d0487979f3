// Package vocabulary provides database operations for vocabulary flashcards
// and the spaced-repetition review queue.
//
// Repository satisfies the VocabularyStore interface consumed by the HTTP
// controllers.
//
// # Ownership
//
// Mutation helpers are owner-checked: GetOwnedEntry returns ErrNotOwner when
// the entry belongs to a different user, so a cross-user PATCH or DELETE can
// never touch the row.
package vocabulary

import (
	"errors"

	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/entities"
	"github.com/leafmark/leafmark/internal/review"
)

// ErrNotOwner is returned when a user acts on another user's vocabulary entry.
var ErrNotOwner = errors.New("vocabulary entry belongs to another user")

// Repository handles all vocabulary database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new vocabulary repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddEntry creates a new vocabulary entry.
func (r *Repository) AddEntry(entry *entities.VocabEntry) error {
	return r.db.Create(entry).Error
}

// GetEntryByID retrieves an entry by ID.
func (r *Repository) GetEntryByID(id uint) (*entities.VocabEntry, error) {
	var entry entities.VocabEntry
	err := r.db.First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetOwnedEntry retrieves an entry and verifies it belongs to userID.
// Returns gorm.ErrRecordNotFound when missing and ErrNotOwner when the entry
// exists but is owned by someone else.
func (r *Repository) GetOwnedEntry(id, userID uint) (*entities.VocabEntry, error) {
	entry, err := r.GetEntryByID(id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, ErrNotOwner
	}
	return entry, nil
}

// UpdateEntry saves changes to an entry.
func (r *Repository) UpdateEntry(entry *entities.VocabEntry) error {
	return r.db.Save(entry).Error
}

// DeleteEntry removes an entry after verifying ownership.
func (r *Repository) DeleteEntry(id, userID uint) error {
	entry, err := r.GetOwnedEntry(id, userID)
	if err != nil {
		return err
	}
	return r.db.Delete(&entities.VocabEntry{}, entry.ID).Error
}

// GetEntriesForBook returns the user's entries for one book, word ascending.
func (r *Repository) GetEntriesForBook(userID, bookID uint) ([]entities.VocabEntry, error) {
	var entries []entities.VocabEntry
	err := r.db.
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("word ASC").
		Find(&entries).Error
	return entries, err
}

// GetReviewQueue builds the study queue: all of the user's entries, optionally
// restricted to one book, weakest boxes first with a deterministic word
// tie-break, capped at review.QueueLimit.
//
// Due time is deliberately not part of the filter: next_review_at is written
// on every answer but the queue includes entries regardless of it, so a
// brand-new entry (next_review_at NULL) and one reviewed a minute ago both
// appear.
func (r *Repository) GetReviewQueue(userID uint, bookID *uint) ([]entities.VocabEntry, error) {
	query := r.db.Where("user_id = ?", userID)
	if bookID != nil {
		query = query.Where("book_id = ?", *bookID)
	}

	var entries []entities.VocabEntry
	err := query.
		Preload("Book").
		Order("srs_box ASC, word ASC").
		Limit(review.QueueLimit).
		Find(&entries).Error
	return entries, err
}

// GetBooksWithEntries returns the distinct books the user has vocabulary for,
// ordered by title. Used to populate the review book filter.
func (r *Repository) GetBooksWithEntries(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Model(&entities.Book{}).
		Joins("JOIN vocab_entries ON vocab_entries.book_id = books.id").
		Where("vocab_entries.user_id = ?", userID).
		Distinct().
		Order("books.title ASC").
		Find(&books).Error
	return books, err
}

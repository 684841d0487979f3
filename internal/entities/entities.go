package entities

import (
	"time"
)

// ReadingStatus describes a user's relationship to a book in their library.
type ReadingStatus string

const (
	StatusReading   ReadingStatus = "reading"
	StatusCompleted ReadingStatus = "completed"
	StatusWishlist  ReadingStatus = "wishlist"
)

// ValidStatus reports whether s is one of the recognised reading statuses.
func ValidStatus(s ReadingStatus) bool {
	switch s {
	case StatusReading, StatusCompleted, StatusWishlist:
		return true
	}
	return false
}

// Book is a shared catalog record. Personal reading state lives on UserBook;
// the date/rating/tags/notes columns here are legacy single-owner fields kept
// for backward compatibility with pre-multi-user databases.
type Book struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"index;size:200" json:"title"`
	Author  string `gorm:"index;size:200" json:"author"`
	ISBN    string `gorm:"index;size:20" json:"isbn,omitempty"`
	CoverID int    `gorm:"index" json:"cover_id,omitempty"` // Open Library cover reference

	// Deprecated: legacy single-owner fields, superseded by UserBook.
	StartDate  string `gorm:"size:20" json:"start_date,omitempty"`
	FinishDate string `gorm:"size:20" json:"finish_date,omitempty"`
	Rating     *int   `json:"rating,omitempty"`
	Tags       string `gorm:"size:200" json:"tags,omitempty"`
	Notes      string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserBook links one user to one book and carries the user-specific reading
// state. At most one row exists per (user, book) pair.
type UserBook struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	UserID     uint          `gorm:"index:idx_user_book,unique" json:"user_id"`
	BookID     uint          `gorm:"index:idx_user_book,unique" json:"book_id"`
	Status     ReadingStatus `gorm:"size:20" json:"status"`
	Rating     *int          `json:"rating,omitempty"`
	StartDate  string        `gorm:"size:20" json:"start_date,omitempty"`
	FinishDate string        `gorm:"size:20" json:"finish_date,omitempty"`
	Tags       string        `gorm:"size:200" json:"tags,omitempty"`
	Notes      string        `gorm:"type:text" json:"notes,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VocabEntry is a vocabulary flashcard owned by exactly one user. The book
// link is informational and does not require the user to own the book.
// SRSBox is the Leitner box (1 = review soonest, 5 = review least often).
type VocabEntry struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index" json:"user_id"`
	BookID       uint       `gorm:"index" json:"book_id"`
	Word         string     `gorm:"index;size:200" json:"word"`
	Definition   string     `gorm:"type:text" json:"definition,omitempty"`
	Quote        string     `gorm:"type:text" json:"quote,omitempty"`
	SRSBox       int        `gorm:"index;default:1" json:"srs_box"`
	NextReviewAt *time.Time `gorm:"index" json:"next_review_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (User) TableName() string {
	return "users"
}

func (UserBook) TableName() string {
	return "user_books"
}

func (VocabEntry) TableName() string {
	return "vocab_entries"
}

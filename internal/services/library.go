// Package services holds the business logic that spans repositories:
// library membership, bulk imports and catalog cleanup.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/catalog"
	"github.com/leafmark/leafmark/internal/database/books"
	"github.com/leafmark/leafmark/internal/database/library"
	"github.com/leafmark/leafmark/internal/entities"
)

var (
	ErrBookIdentityRequired = errors.New("isbn or (title and author) required")
	ErrBookDetailsRequired  = errors.New("title and author required to create book")
	ErrLinkNotFound         = errors.New("book is not in the library")
)

// MetadataFetcher resolves minimal book metadata by ISBN. Lookups are
// best-effort; a nil fetcher disables enrichment entirely.
type MetadataFetcher interface {
	FetchByISBN(ctx context.Context, isbn string) (*catalog.Metadata, error)
}

// LibraryService manages each user's library on top of the shared catalog.
type LibraryService struct {
	db       *gorm.DB
	books    *books.Repository
	links    *library.Repository
	metadata MetadataFetcher
}

// NewLibraryService creates the library service. metadata may be nil.
func NewLibraryService(db *gorm.DB, metadata MetadataFetcher) *LibraryService {
	return &LibraryService{
		db:       db,
		books:    books.NewRepository(db),
		links:    library.NewRepository(db),
		metadata: metadata,
	}
}

// AddBookInput identifies a book to put in a user's library. Either ISBN or
// title+author must be present.
type AddBookInput struct {
	Title  string
	Author string
	ISBN   string
}

// AddToLibrary finds or creates the catalog book and links it to the user
// with wishlist status. When only an ISBN is given, missing title/author are
// filled from Open Library when possible; an enrichment miss is not an error
// but the book still needs a title and author to be created.
func (s *LibraryService) AddToLibrary(ctx context.Context, userID uint, input AddBookInput) (*entities.Book, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)
	isbn := catalog.NormalizeISBN(input.ISBN)

	if isbn == "" && (title == "" || author == "") {
		return nil, ErrBookIdentityRequired
	}

	book, err := s.findExisting(title, author, isbn)
	if err != nil {
		return nil, err
	}

	if book == nil {
		if (title == "" || author == "") && isbn != "" && s.metadata != nil {
			meta, err := s.metadata.FetchByISBN(ctx, isbn)
			if err != nil {
				log.Printf("metadata lookup failed for ISBN %s: %v", isbn, err)
			} else {
				if title == "" {
					title = strings.TrimSpace(meta.Title)
				}
				if author == "" {
					author = strings.TrimSpace(meta.Author)
				}
			}
		}
		if title == "" || author == "" {
			return nil, ErrBookDetailsRequired
		}

		book = &entities.Book{Title: title, Author: author, ISBN: isbn}
		book, _, err = s.books.FindOrCreate(book)
		if err != nil {
			return nil, fmt.Errorf("create book: %w", err)
		}
	}

	exists, err := s.links.HasLink(userID, book.ID)
	if err != nil {
		return nil, fmt.Errorf("check library link: %w", err)
	}
	if !exists {
		link := &entities.UserBook{
			UserID: userID,
			BookID: book.ID,
			Status: entities.StatusWishlist,
		}
		if err := s.links.CreateLink(link); err != nil {
			return nil, fmt.Errorf("create library link: %w", err)
		}
	}

	return book, nil
}

// findExisting looks the book up by ISBN, then case-insensitive
// title+author. Returns nil without error when no match exists.
func (s *LibraryService) findExisting(title, author, isbn string) (*entities.Book, error) {
	if isbn != "" {
		book, err := s.books.FindByISBN(isbn)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find book by ISBN: %w", err)
		}
	}
	if title != "" && author != "" {
		book, err := s.books.FindByTitleAndAuthor(title, author)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find book by title: %w", err)
		}
	}
	return nil, nil
}

// RemoveFromLibrary drops the user's link and removes the catalog book when
// no other user references it. Returns true when the book row was removed
// too. A missing link yields ErrLinkNotFound.
func (s *LibraryService) RemoveFromLibrary(userID, bookID uint) (bool, error) {
	rows, err := s.links.DeleteLink(userID, bookID)
	if err != nil {
		return false, fmt.Errorf("delete library link: %w", err)
	}
	if rows == 0 {
		return false, ErrLinkNotFound
	}

	removed, err := s.books.DeleteIfOrphaned(bookID)
	if err != nil {
		return false, fmt.Errorf("cleanup orphan book: %w", err)
	}
	return removed, nil
}

// CleanupOrphanBooks removes all catalog books without a single user link.
// Backs the scheduled cleanup task.
func (s *LibraryService) CleanupOrphanBooks() (int64, error) {
	return s.books.DeleteAllOrphans()
}

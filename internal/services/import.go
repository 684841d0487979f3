package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/catalog"
	"github.com/leafmark/leafmark/internal/database/books"
	"github.com/leafmark/leafmark/internal/database/library"
	"github.com/leafmark/leafmark/internal/entities"
	"github.com/leafmark/leafmark/internal/importers"
)

// ErrNoRows is returned when an import request carries no rows at all.
var ErrNoRows = errors.New("no books provided")

// ImportResult summarizes a completed Goodreads import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// PreviewResult counts what a Goodreads import would do, without writing.
type PreviewResult struct {
	New        int `json:"new"`
	Duplicates int `json:"duplicates"`
}

// PreviewGoodreads reports how many rows would create new library entries
// and how many the user already has. Rows missing title or author are
// ignored, matching the import itself.
func (s *LibraryService) PreviewGoodreads(userID uint, rows []importers.GoodreadsRow) (*PreviewResult, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	result := &PreviewResult{}
	for _, raw := range rows {
		row := raw.Normalized()
		if row.Title == "" || row.Author == "" {
			continue
		}

		book, err := s.findExisting(row.Title, row.Author, catalog.NormalizeISBN(row.ISBN))
		if err != nil {
			return nil, err
		}
		if book == nil {
			result.New++
			continue
		}

		exists, err := s.links.HasLink(userID, book.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Duplicates++
		} else {
			result.New++
		}
	}
	return result, nil
}

// ImportGoodreads imports rows into the user's library inside a single
// transaction; any persistence failure rolls the whole batch back. Rows the
// user already has, and rows without title or author, are skipped.
func (s *LibraryService) ImportGoodreads(userID uint, rows []importers.GoodreadsRow) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	result := &ImportResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		booksRepo := books.NewRepository(tx)
		linksRepo := library.NewRepository(tx)

		for _, raw := range rows {
			row := raw.Normalized()
			if row.Title == "" || row.Author == "" {
				result.Skipped++
				continue
			}

			var rating *int
			if row.Rating > 0 {
				r := row.Rating
				rating = &r
			}

			book := &entities.Book{
				Title:  row.Title,
				Author: row.Author,
				ISBN:   catalog.NormalizeISBN(row.ISBN),
			}
			book, _, err := booksRepo.FindOrCreate(book)
			if err != nil {
				return fmt.Errorf("find or create book: %w", err)
			}

			exists, err := linksRepo.HasLink(userID, book.ID)
			if err != nil {
				return fmt.Errorf("check library link: %w", err)
			}
			if exists {
				result.Skipped++
				continue
			}

			link := &entities.UserBook{
				UserID:     userID,
				BookID:     book.ID,
				Status:     importers.StatusFromShelves(row.Shelves),
				Rating:     rating,
				StartDate:  row.DateAdded,
				FinishDate: row.DateRead,
				Tags:       row.Shelves,
				Notes:      row.Review,
			}
			if err := linksRepo.CreateLink(link); err != nil {
				return fmt.Errorf("create library link: %w", err)
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/leafmark/leafmark/internal/database/books"
	"github.com/leafmark/leafmark/internal/services"
)

// EnrichBookTask fills in a book's missing title or author from Open Library
// after an ISBN-only add.
type EnrichBookTask struct {
	BookID uint `json:"book_id"`
}

func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// NewEnrichBookQueue creates the enrichment queue. A book without an ISBN,
// or one already carrying a title and author, is left untouched.
func NewEnrichBookQueue(repo *books.Repository, fetcher services.MetadataFetcher) backlite.Queue {
	return backlite.NewQueue(func(ctx context.Context, task EnrichBookTask) error {
		book, err := repo.GetByID(task.BookID)
		if err != nil {
			// Book may have been cleaned up since the task was queued
			log.Printf("[task] enrich_book: book %d gone, skipping", task.BookID)
			return nil
		}

		if book.ISBN == "" || (book.Title != "" && book.Author != "") {
			return nil
		}

		meta, err := fetcher.FetchByISBN(ctx, book.ISBN)
		if err != nil {
			return fmt.Errorf("fetch metadata for book %d: %w", task.BookID, err)
		}

		changed := false
		if book.Title == "" && strings.TrimSpace(meta.Title) != "" {
			book.Title = strings.TrimSpace(meta.Title)
			changed = true
		}
		if book.Author == "" && strings.TrimSpace(meta.Author) != "" {
			book.Author = strings.TrimSpace(meta.Author)
			changed = true
		}
		if !changed {
			return nil
		}

		if err := repo.Update(book); err != nil {
			return fmt.Errorf("save enriched book %d: %w", task.BookID, err)
		}
		log.Printf("[task] enriched book %d (%s) from ISBN %s", book.ID, book.Title, book.ISBN)
		return nil
	})
}

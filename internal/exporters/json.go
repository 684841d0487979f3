package exporters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/leafmark/leafmark/internal/database/library"
)

// BookExport is one library entry in a JSON export, flattened to the same
// fields the CSV export carries.
type BookExport struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn,omitempty"`
	Status     string `json:"status"`
	StartDate  string `json:"start_date,omitempty"`
	FinishDate string `json:"finish_date,omitempty"`
	Rating     *int   `json:"rating,omitempty"`
	Tags       string `json:"tags,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// WriteJSON writes the user's library items as a {"books": [...]} document,
// the same wrapper shape the bulk importer accepts.
func WriteJSON(w io.Writer, items []library.Item) error {
	books := make([]BookExport, len(items))
	for i, item := range items {
		books[i] = BookExport{
			ID:         item.Book.ID,
			Title:      item.Book.Title,
			Author:     item.Book.Author,
			ISBN:       item.Book.ISBN,
			Status:     string(item.Link.Status),
			StartDate:  item.Link.StartDate,
			FinishDate: item.Link.FinishDate,
			Rating:     item.Link.Rating,
			Tags:       item.Link.Tags,
			Notes:      item.Link.Notes,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(map[string][]BookExport{"books": books}); err != nil {
		return fmt.Errorf("encode JSON export: %w", err)
	}
	return nil
}

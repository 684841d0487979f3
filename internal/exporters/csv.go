// Package exporters renders a user's library for download.
package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/leafmark/leafmark/internal/database/library"
)

// csvHeader is the fixed column set of a library CSV export. External tools
// key on these names, so the order and spelling never change.
var csvHeader = []string{
	"id", "title", "author", "isbn",
	"start_date", "finish_date", "rating", "tags", "notes",
}

// WriteCSV writes the user's library items as RFC-4180 CSV.
func WriteCSV(w io.Writer, items []library.Item) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, item := range items {
		rating := ""
		if item.Link.Rating != nil {
			rating = strconv.Itoa(*item.Link.Rating)
		}
		row := []string{
			strconv.FormatUint(uint64(item.Book.ID), 10),
			item.Book.Title,
			item.Book.Author,
			item.Book.ISBN,
			item.Link.StartDate,
			item.Link.FinishDate,
			rating,
			item.Link.Tags,
			item.Link.Notes,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

package importers

import (
	"strings"

	"github.com/leafmark/leafmark/internal/entities"
)

// GoodreadsRow is one row of a Goodreads library export, as posted by the
// import endpoint after the client has parsed the CSV.
type GoodreadsRow struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn"`
	Rating    int    `json:"rating"`
	DateRead  string `json:"date_read"`
	DateAdded string `json:"date_added"`
	Shelves   string `json:"shelves"`
	Review    string `json:"review"`
}

// Normalized returns a copy with surrounding whitespace stripped from every
// text field.
func (r GoodreadsRow) Normalized() GoodreadsRow {
	return GoodreadsRow{
		Title:     strings.TrimSpace(r.Title),
		Author:    strings.TrimSpace(r.Author),
		ISBN:      strings.TrimSpace(r.ISBN),
		Rating:    r.Rating,
		DateRead:  strings.TrimSpace(r.DateRead),
		DateAdded: strings.TrimSpace(r.DateAdded),
		Shelves:   strings.TrimSpace(r.Shelves),
		Review:    strings.TrimSpace(r.Review),
	}
}

// StatusFromShelves maps a Goodreads shelves string to a reading status:
// "read" means completed, "currently-reading" means reading, anything else
// lands on the wishlist.
// A "read" shelf wins over "currently-reading" when both appear.
func StatusFromShelves(shelves string) entities.ReadingStatus {
	status := entities.StatusWishlist
	for _, shelf := range strings.FieldsFunc(shelves, func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	}) {
		switch strings.ToLower(strings.TrimSpace(shelf)) {
		case "read":
			return entities.StatusCompleted
		case "currently-reading":
			status = entities.StatusReading
		}
	}
	return status
}

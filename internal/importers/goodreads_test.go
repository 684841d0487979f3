package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leafmark/leafmark/internal/entities"
)

func TestStatusFromShelves(t *testing.T) {
	tests := []struct {
		shelves  string
		expected entities.ReadingStatus
	}{
		{"read", entities.StatusCompleted},
		{"currently-reading", entities.StatusReading},
		{"to-read, favorites", entities.StatusWishlist},
		{"", entities.StatusWishlist},
		{"favorites, read", entities.StatusCompleted},
		{"currently-reading, read", entities.StatusCompleted},
		{"Read", entities.StatusCompleted},
		{"fiction;currently-reading", entities.StatusReading},
	}

	for _, tt := range tests {
		t.Run(tt.shelves, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFromShelves(tt.shelves))
		})
	}
}

func TestGoodreadsRowNormalized(t *testing.T) {
	row := GoodreadsRow{
		Title:   "  The Left Hand of Darkness ",
		Author:  " Ursula K. Le Guin",
		ISBN:    " 9780441478125 ",
		Shelves: " read ",
		Rating:  4,
	}

	n := row.Normalized()
	assert.Equal(t, "The Left Hand of Darkness", n.Title)
	assert.Equal(t, "Ursula K. Le Guin", n.Author)
	assert.Equal(t, "9780441478125", n.ISBN)
	assert.Equal(t, "read", n.Shelves)
	assert.Equal(t, 4, n.Rating)
}

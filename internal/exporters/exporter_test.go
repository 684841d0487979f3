package exporters

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafmark/leafmark/internal/database/library"
	"github.com/leafmark/leafmark/internal/entities"
)

func sampleItems() []library.Item {
	rating := 5
	return []library.Item{
		{
			Book: entities.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719"},
			Link: entities.UserBook{
				Status: entities.StatusCompleted, Rating: &rating,
				StartDate: "2024-01-02", FinishDate: "2024-02-10",
				Tags: "scifi,classics", Notes: `He said "fear is the mind-killer"`,
			},
		},
		{
			Book: entities.Book{ID: 2, Title: "Hyperion", Author: "Dan Simmons"},
			Link: entities.UserBook{Status: entities.StatusReading},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleItems()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "id,title,author,isbn,start_date,finish_date,rating,tags,notes", lines[0])
	// Fields with commas and quotes get RFC-4180 quoting
	assert.Equal(t, `1,Dune,Frank Herbert,9780441172719,2024-01-02,2024-02-10,5,"scifi,classics","He said ""fear is the mind-killer"""`, lines[1])
	assert.Equal(t, "2,Hyperion,Dan Simmons,,,,,,", lines[2])
}

func TestWriteCSV_EmptyLibraryStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "id,title,author,isbn,start_date,finish_date,rating,tags,notes\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleItems()))

	var doc struct {
		Books []BookExport `json:"books"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Books, 2)

	assert.Equal(t, "Dune", doc.Books[0].Title)
	assert.Equal(t, "completed", doc.Books[0].Status)
	require.NotNil(t, doc.Books[0].Rating)
	assert.Equal(t, 5, *doc.Books[0].Rating)

	assert.Equal(t, "reading", doc.Books[1].Status)
	assert.Nil(t, doc.Books[1].Rating)
}

package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/database/vocabulary"
	"github.com/leafmark/leafmark/internal/entities"
)

// VocabularyStore defines database operations for vocabulary flashcards.
// Mutations are owner-checked at the store boundary.
type VocabularyStore interface {
	AddEntry(entry *entities.VocabEntry) error
	GetOwnedEntry(id, userID uint) (*entities.VocabEntry, error)
	UpdateEntry(entry *entities.VocabEntry) error
	DeleteEntry(id, userID uint) error
	GetEntriesForBook(userID, bookID uint) ([]entities.VocabEntry, error)
	GetReviewQueue(userID uint, bookID *uint) ([]entities.VocabEntry, error)
	GetBooksWithEntries(userID uint) ([]entities.Book, error)
}

type VocabularyController struct {
	store VocabularyStore
}

func NewVocabularyController(store VocabularyStore) *VocabularyController {
	return &VocabularyController{store: store}
}

// ListEntries returns the caller's entries for one book, word ascending.
// GET /api/vocabulary?book_id=
func (vc *VocabularyController) ListEntries(c *gin.Context) {
	bookID, ok := parseOptionalQueryID(c, "book_id")
	if !ok {
		return
	}
	if bookID == nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	entries, err := vc.store.GetEntriesForBook(GetUserID(c), *bookID)
	if err != nil {
		respondInternalError(c, err, "list vocabulary")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AddEntryRequest is the body for creating a flashcard.
type AddEntryRequest struct {
	BookID     uint   `json:"book_id"`
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Quote      string `json:"quote"`
}

// AddEntry creates a flashcard in box 1 with no review scheduled yet.
// POST /api/vocabulary
func (vc *VocabularyController) AddEntry(c *gin.Context) {
	var req AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	req.Word = strings.TrimSpace(req.Word)
	if req.BookID == 0 || req.Word == "" {
		respondBadRequest(c, "book_id and word are required")
		return
	}

	entry := &entities.VocabEntry{
		UserID:     GetUserID(c),
		BookID:     req.BookID,
		Word:       req.Word,
		Definition: strings.TrimSpace(req.Definition),
		Quote:      strings.TrimSpace(req.Quote),
		SRSBox:     1,
	}
	if err := vc.store.AddEntry(entry); err != nil {
		respondInternalError(c, err, "add vocabulary entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateEntryRequest carries the editable flashcard text fields.
type UpdateEntryRequest struct {
	Word       *string `json:"word"`
	Definition *string `json:"definition"`
	Quote      *string `json:"quote"`
}

// UpdateEntry edits a flashcard's text. Owner only.
// PATCH /api/vocabulary/:id
func (vc *VocabularyController) UpdateEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	entry, err := vc.store.GetOwnedEntry(id, GetUserID(c))
	if err != nil {
		vc.respondEntryError(c, err, "get vocabulary entry")
		return
	}

	if req.Word != nil {
		word := strings.TrimSpace(*req.Word)
		if word == "" {
			respondBadRequest(c, "word cannot be empty")
			return
		}
		entry.Word = word
	}
	if req.Definition != nil {
		entry.Definition = strings.TrimSpace(*req.Definition)
	}
	if req.Quote != nil {
		entry.Quote = strings.TrimSpace(*req.Quote)
	}

	if err := vc.store.UpdateEntry(entry); err != nil {
		respondInternalError(c, err, "update vocabulary entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry removes a flashcard. Owner only.
// DELETE /api/vocabulary/:id
func (vc *VocabularyController) DeleteEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := vc.store.DeleteEntry(id, GetUserID(c)); err != nil {
		vc.respondEntryError(c, err, "delete vocabulary entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respondEntryError maps store errors onto the 403/404/500 taxonomy.
func (vc *VocabularyController) respondEntryError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "vocabulary entry")
	case errors.Is(err, vocabulary.ErrNotOwner):
		respondForbidden(c, "vocabulary entry belongs to another user")
	default:
		respondInternalError(c, err, context)
	}
}

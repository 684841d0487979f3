package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/database/vocabulary"
	"github.com/leafmark/leafmark/internal/entities"
	"github.com/leafmark/leafmark/internal/services"
)

type ReviewController struct {
	store   VocabularyStore
	service *services.ReviewService
}

func NewReviewController(store VocabularyStore, service *services.ReviewService) *ReviewController {
	return &ReviewController{store: store, service: service}
}

// queueCard is one flashcard in the review queue, annotated with its book.
type queueCard struct {
	ID           uint       `json:"id"`
	Word         string     `json:"word"`
	Definition   string     `json:"definition,omitempty"`
	Quote        string     `json:"quote,omitempty"`
	SRSBox       int        `json:"srs_box"`
	NextReviewAt *time.Time `json:"next_review_at"`
	BookID       uint       `json:"book_id"`
	BookTitle    string     `json:"book_title"`
	BookAuthor   string     `json:"book_author"`
}

// GetQueue returns the study queue: weakest boxes first, word tie-break,
// capped. Entries appear regardless of their next review time.
// GET /api/review/queue?book_id=
func (rc *ReviewController) GetQueue(c *gin.Context) {
	bookID, ok := parseOptionalQueryID(c, "book_id")
	if !ok {
		return
	}

	entries, err := rc.store.GetReviewQueue(GetUserID(c), bookID)
	if err != nil {
		respondInternalError(c, err, "build review queue")
		return
	}

	cards := make([]queueCard, len(entries))
	for i, entry := range entries {
		cards[i] = queueCard{
			ID:           entry.ID,
			Word:         entry.Word,
			Definition:   entry.Definition,
			Quote:        entry.Quote,
			SRSBox:       entry.SRSBox,
			NextReviewAt: entry.NextReviewAt,
			BookID:       entry.BookID,
			BookTitle:    entry.Book.Title,
			BookAuthor:   entry.Book.Author,
		}
	}
	c.JSON(http.StatusOK, gin.H{"queue": cards})
}

// GetBooks lists the distinct books the caller has vocabulary for.
// GET /api/review/books
func (rc *ReviewController) GetBooks(c *gin.Context) {
	books, err := rc.store.GetBooksWithEntries(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list review books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

// answerRequest is the body for recording a flashcard answer.
type answerRequest struct {
	Result string `json:"result"`
}

// Answer records a correct or incorrect answer and reschedules the card.
// POST /api/review/:id/answer
func (rc *ReviewController) Answer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Result != "correct" && req.Result != "incorrect" {
		respondBadRequest(c, `result must be "correct" or "incorrect"`)
		return
	}

	entry, err := rc.service.RecordAnswer(GetUserID(c), id, req.Result == "correct")
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "vocabulary entry")
		case errors.Is(err, vocabulary.ErrNotOwner):
			respondForbidden(c, "vocabulary entry belongs to another user")
		default:
			respondInternalError(c, err, "record review answer")
		}
		return
	}

	c.JSON(http.StatusOK, reviewAnswerResponse(entry))
}

func reviewAnswerResponse(entry *entities.VocabEntry) gin.H {
	return gin.H{
		"id":             entry.ID,
		"srs_box":        entry.SRSBox,
		"next_review_at": entry.NextReviewAt,
	}
}

package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/database/library"
	"github.com/leafmark/leafmark/internal/entities"
	"github.com/leafmark/leafmark/internal/exporters"
	"github.com/leafmark/leafmark/internal/services"
)

// LibraryStore defines the link operations the library controller needs.
type LibraryStore interface {
	GetLink(userID, bookID uint) (*entities.UserBook, error)
	UpdateLink(link *entities.UserBook) error
	GetLibrary(userID uint) ([]library.Item, error)
}

// TaskEnqueuer queues background work after a request completes. May be nil
// when the task queue is disabled.
type TaskEnqueuer interface {
	EnqueueEnrichBook(bookID uint)
}

type LibraryController struct {
	service *services.LibraryService
	store   LibraryStore
	tasks   TaskEnqueuer
}

func NewLibraryController(service *services.LibraryService, store LibraryStore, tasks TaskEnqueuer) *LibraryController {
	return &LibraryController{service: service, store: store, tasks: tasks}
}

// libraryEntry is one row of the library listing: the shared book plus the
// caller's reading state.
type libraryEntry struct {
	Book       entities.Book          `json:"book"`
	Status     entities.ReadingStatus `json:"status"`
	Rating     *int                   `json:"rating,omitempty"`
	StartDate  string                 `json:"start_date,omitempty"`
	FinishDate string                 `json:"finish_date,omitempty"`
	Tags       string                 `json:"tags,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
}

// GetLibrary lists the caller's books, newest first.
// GET /api/library
func (lc *LibraryController) GetLibrary(c *gin.Context) {
	items, err := lc.store.GetLibrary(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "get library")
		return
	}

	entries := make([]libraryEntry, len(items))
	for i, item := range items {
		entries[i] = libraryEntry{
			Book:       item.Book,
			Status:     item.Link.Status,
			Rating:     item.Link.Rating,
			StartDate:  item.Link.StartDate,
			FinishDate: item.Link.FinishDate,
			Tags:       item.Link.Tags,
			Notes:      item.Link.Notes,
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// AddToLibraryRequest identifies the book to add: an ISBN, a title+author
// pair, or both.
type AddToLibraryRequest struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// AddToLibrary finds or creates the book and links it to the caller.
// POST /api/library
func (lc *LibraryController) AddToLibrary(c *gin.Context) {
	userID := GetUserID(c)

	var req AddToLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := lc.service.AddToLibrary(c.Request.Context(), userID, services.AddBookInput{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookIdentityRequired),
			errors.Is(err, services.ErrBookDetailsRequired):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "add to library")
		}
		return
	}

	// ISBN-only adds may still miss a cover; let the queue fill gaps in.
	if lc.tasks != nil && book.ISBN != "" {
		lc.tasks.EnqueueEnrichBook(book.ID)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "book_id": book.ID})
}

// UpdateLinkRequest carries the editable per-user reading state. Pointers
// distinguish "not sent" from "clear this".
type UpdateLinkRequest struct {
	Status     *entities.ReadingStatus `json:"status"`
	Rating     *int                    `json:"rating"`
	StartDate  *string                 `json:"start_date"`
	FinishDate *string                 `json:"finish_date"`
	Tags       *string                 `json:"tags"`
	Notes      *string                 `json:"notes"`
}

// UpdateLink edits the caller's reading state for one book.
// PATCH /api/library/:bookId
func (lc *LibraryController) UpdateLink(c *gin.Context) {
	userID := GetUserID(c)
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	link, err := lc.store.GetLink(userID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "library entry")
			return
		}
		respondInternalError(c, err, "get library entry")
		return
	}

	if req.Status != nil {
		if !entities.ValidStatus(*req.Status) {
			respondBadRequest(c, "status must be reading, completed or wishlist")
			return
		}
		link.Status = *req.Status
	}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			respondBadRequest(c, "rating must be between 1 and 5")
			return
		}
		link.Rating = req.Rating
	}
	if req.StartDate != nil {
		link.StartDate = *req.StartDate
	}
	if req.FinishDate != nil {
		link.FinishDate = *req.FinishDate
	}
	if req.Tags != nil {
		link.Tags = *req.Tags
	}
	if req.Notes != nil {
		link.Notes = *req.Notes
	}

	if err := lc.store.UpdateLink(link); err != nil {
		respondInternalError(c, err, "update library entry")
		return
	}
	c.JSON(http.StatusOK, link)
}

// RemoveFromLibrary drops the caller's link; the shared book goes away with
// it when nobody else references it.
// DELETE /api/library/:bookId (also DELETE /api/books/:id)
func (lc *LibraryController) RemoveFromLibrary(c *gin.Context) {
	userID := GetUserID(c)

	// Registered under two routes with different param names
	paramName := "bookId"
	if c.Param(paramName) == "" {
		paramName = "id"
	}
	bookID, ok := parseIDParam(c, paramName)
	if !ok {
		return
	}

	bookRemoved, err := lc.service.RemoveFromLibrary(userID, bookID)
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			respondNotFound(c, "library entry")
			return
		}
		respondInternalError(c, err, "remove from library")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "book_removed": bookRemoved})
}

// ExportCSV downloads the caller's library as CSV.
// GET /export.csv
func (lc *LibraryController) ExportCSV(c *gin.Context) {
	items, err := lc.store.GetLibrary(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "export library")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="library.csv"`)
	if err := exporters.WriteCSV(c.Writer, items); err != nil {
		log.Printf("CSV export failed: %v", err)
	}
}

// ExportJSON downloads the caller's library as JSON.
// GET /export.json
func (lc *LibraryController) ExportJSON(c *gin.Context) {
	items, err := lc.store.GetLibrary(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "export library")
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="library.json"`)
	if err := exporters.WriteJSON(c.Writer, items); err != nil {
		log.Printf("JSON export failed: %v", err)
	}
}

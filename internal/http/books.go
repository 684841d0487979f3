package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/catalog"
	"github.com/leafmark/leafmark/internal/entities"
)

// BookStore defines the catalog operations the books controller needs.
type BookStore interface {
	Create(book *entities.Book) error
	GetByID(id uint) (*entities.Book, error)
	GetAll() ([]entities.Book, error)
	Update(book *entities.Book) error
}

// LinkStore creates library links for the legacy direct-create path.
type LinkStore interface {
	HasLink(userID, bookID uint) (bool, error)
	CreateLink(link *entities.UserBook) error
}

// CatalogSearcher runs free-text searches against Open Library.
type CatalogSearcher interface {
	Search(ctx context.Context, query string) ([]catalog.SearchResult, error)
}

type BooksController struct {
	store    BookStore
	links    LinkStore
	searcher CatalogSearcher
}

func NewBooksController(store BookStore, links LinkStore, searcher CatalogSearcher) *BooksController {
	return &BooksController{store: store, links: links, searcher: searcher}
}

// ListBooks returns the shared catalog, newest first.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	books, err := bc.store.GetAll()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

// GetBook returns one catalog record.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBookRequest is the legacy direct-create body. The legacy per-book
// date/rating fields land on the caller's library link.
type CreateBookRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn"`
	StartDate  string `json:"start_date"`
	FinishDate string `json:"finish_date"`
	Rating     *int   `json:"rating"`
	Tags       string `json:"tags"`
	Notes      string `json:"notes"`
}

// CreateBook creates a catalog record directly and links it to the caller.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondUnauthorized(c)
		return
	}

	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if req.Title == "" || req.Author == "" {
		respondBadRequest(c, "title and author are required")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		respondBadRequest(c, "rating must be between 1 and 5")
		return
	}

	book := &entities.Book{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   catalog.NormalizeISBN(req.ISBN),
	}
	if err := bc.store.Create(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	status := entities.StatusWishlist
	if req.FinishDate != "" {
		status = entities.StatusCompleted
	} else if req.StartDate != "" {
		status = entities.StatusReading
	}

	link := &entities.UserBook{
		UserID:     userID,
		BookID:     book.ID,
		Status:     status,
		Rating:     req.Rating,
		StartDate:  req.StartDate,
		FinishDate: req.FinishDate,
		Tags:       req.Tags,
		Notes:      req.Notes,
	}
	if err := bc.links.CreateLink(link); err != nil {
		respondInternalError(c, err, "link created book")
		return
	}

	c.JSON(http.StatusCreated, book)
}

// UpdateBookRequest carries the editable shared-catalog fields. Pointers
// distinguish "not sent" from "clear this".
type UpdateBookRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	ISBN   *string `json:"isbn"`
}

// UpdateBook edits the shared catalog record.
// PATCH /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := bc.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			respondBadRequest(c, "title cannot be empty")
			return
		}
		book.Title = title
	}
	if req.Author != nil {
		author := strings.TrimSpace(*req.Author)
		if author == "" {
			respondBadRequest(c, "author cannot be empty")
			return
		}
		book.Author = author
	}
	if req.ISBN != nil {
		book.ISBN = catalog.NormalizeISBN(*req.ISBN)
	}

	if err := bc.store.Update(book); err != nil {
		respondInternalError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Search proxies a free-text query to Open Library. Upstream failures
// degrade to an empty result list, never an error status.
// GET /api/search?q=
func (bc *BooksController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"results": []catalog.SearchResult{}})
		return
	}

	results, err := bc.searcher.Search(c.Request.Context(), query)
	if err != nil {
		log.Printf("catalog search failed for %q: %v", query, err)
		c.JSON(http.StatusOK, gin.H{"results": []catalog.SearchResult{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leafmark/leafmark/internal/importers"
	"github.com/leafmark/leafmark/internal/services"
)

type ImportController struct {
	service *services.LibraryService
}

func NewImportController(service *services.LibraryService) *ImportController {
	return &ImportController{service: service}
}

// goodreadsImportRequest is the body for both preview and import: rows the
// client parsed out of a Goodreads CSV export.
type goodreadsImportRequest struct {
	Books []importers.GoodreadsRow `json:"books"`
}

// Preview counts what an import would do without writing anything.
// POST /api/import/goodreads/preview
func (ic *ImportController) Preview(c *gin.Context) {
	var req goodreadsImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	preview, err := ic.service.PreviewGoodreads(GetUserID(c), req.Books)
	if err != nil {
		if errors.Is(err, services.ErrNoRows) {
			respondBadRequest(c, "no books provided")
			return
		}
		respondInternalError(c, err, "preview goodreads import")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books":      req.Books,
		"new":        preview.New,
		"duplicates": preview.Duplicates,
	})
}

// Import runs the Goodreads import in one transaction. Any persistence
// failure rolls the whole batch back and reports a single generic error.
// POST /api/import/goodreads
func (ic *ImportController) Import(c *gin.Context) {
	var req goodreadsImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := ic.service.ImportGoodreads(GetUserID(c), req.Books)
	if err != nil {
		if errors.Is(err, services.ErrNoRows) {
			respondBadRequest(c, "no books provided")
			return
		}
		respondInternalError(c, err, "goodreads import")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})
}

package http

import (
	"github.com/gin-gonic/gin"

	"github.com/leafmark/leafmark/internal/auth"
)

// RouterConfig carries the controllers and middleware the router wires up.
type RouterConfig struct {
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	AuthController       *auth.Controller
	HealthController     *HealthController
	BooksController      *BooksController
	LibraryController    *LibraryController
	ImportController     *ImportController
	VocabularyController *VocabularyController
	ReviewController     *ReviewController
}

// NewRouter creates the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF runs before the session middleware so the session context layers
	// on top of the CSRF-replaced request.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(cfg.AuthMiddleware.Handler())

	cfg.AuthController.RegisterRoutes(router)

	router.GET("/health", cfg.HealthController.Status)
	router.GET("/ping", cfg.HealthController.Ping)

	router.GET("/api/books", cfg.BooksController.ListBooks)
	router.GET("/api/books/:id", cfg.BooksController.GetBook)
	router.POST("/api/books", cfg.BooksController.CreateBook)
	router.PATCH("/api/books/:id", cfg.BooksController.UpdateBook)
	router.DELETE("/api/books/:id", cfg.LibraryController.RemoveFromLibrary)
	router.GET("/api/search", cfg.BooksController.Search)

	router.GET("/api/library", cfg.LibraryController.GetLibrary)
	router.POST("/api/library", cfg.LibraryController.AddToLibrary)
	router.PATCH("/api/library/:bookId", cfg.LibraryController.UpdateLink)
	router.DELETE("/api/library/:bookId", cfg.LibraryController.RemoveFromLibrary)
	router.GET("/export.csv", cfg.LibraryController.ExportCSV)
	router.GET("/export.json", cfg.LibraryController.ExportJSON)

	router.POST("/api/import/goodreads/preview", cfg.ImportController.Preview)
	router.POST("/api/import/goodreads", cfg.ImportController.Import)

	router.GET("/api/vocabulary", cfg.VocabularyController.ListEntries)
	router.POST("/api/vocabulary", cfg.VocabularyController.AddEntry)
	router.PATCH("/api/vocabulary/:id", cfg.VocabularyController.UpdateEntry)
	router.DELETE("/api/vocabulary/:id", cfg.VocabularyController.DeleteEntry)

	router.GET("/api/review/queue", cfg.ReviewController.GetQueue)
	router.GET("/api/review/books", cfg.ReviewController.GetBooks)
	router.POST("/api/review/:id/answer", cfg.ReviewController.Answer)

	return router
}

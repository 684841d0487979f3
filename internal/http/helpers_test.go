package http

import (
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/auth"
	"github.com/leafmark/leafmark/internal/catalog"
	"github.com/leafmark/leafmark/internal/database/books"
	"github.com/leafmark/leafmark/internal/database/library"
	"github.com/leafmark/leafmark/internal/database/vocabulary"
	"github.com/leafmark/leafmark/internal/entities"
	"github.com/leafmark/leafmark/internal/services"
)

// userHeader carries the acting user's ID in tests, standing in for the
// session middleware.
const userHeader = "X-Test-User"

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
	search *searchStub
}

type searchStub struct {
	results []catalog.SearchResult
	err     error
}

func (s *searchStub) Search(_ context.Context, _ string) ([]catalog.SearchResult, error) {
	return s.results, s.err
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{}, &entities.Book{}, &entities.UserBook{}, &entities.VocabEntry{},
	))

	booksRepo := books.NewRepository(db)
	linksRepo := library.NewRepository(db)
	vocabRepo := vocabulary.NewRepository(db)
	libService := services.NewLibraryService(db, nil)

	search := &searchStub{}
	booksCtrl := NewBooksController(booksRepo, linksRepo, search)
	libraryCtrl := NewLibraryController(libService, linksRepo, nil)
	importCtrl := NewImportController(libService)
	vocabCtrl := NewVocabularyController(vocabRepo)
	reviewCtrl := NewReviewController(vocabRepo, services.NewReviewService(vocabRepo))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if raw := c.GetHeader(userHeader); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			require.NoError(t, err)
			c.Set(auth.ContextKeyUserID, uint(id))
		}
		c.Next()
	})

	router.GET("/api/books", booksCtrl.ListBooks)
	router.GET("/api/books/:id", booksCtrl.GetBook)
	router.POST("/api/books", booksCtrl.CreateBook)
	router.PATCH("/api/books/:id", booksCtrl.UpdateBook)
	router.DELETE("/api/books/:id", libraryCtrl.RemoveFromLibrary)
	router.GET("/api/search", booksCtrl.Search)

	router.GET("/api/library", libraryCtrl.GetLibrary)
	router.POST("/api/library", libraryCtrl.AddToLibrary)
	router.PATCH("/api/library/:bookId", libraryCtrl.UpdateLink)
	router.DELETE("/api/library/:bookId", libraryCtrl.RemoveFromLibrary)
	router.GET("/export.csv", libraryCtrl.ExportCSV)
	router.GET("/export.json", libraryCtrl.ExportJSON)

	router.POST("/api/import/goodreads/preview", importCtrl.Preview)
	router.POST("/api/import/goodreads", importCtrl.Import)

	router.GET("/api/vocabulary", vocabCtrl.ListEntries)
	router.POST("/api/vocabulary", vocabCtrl.AddEntry)
	router.PATCH("/api/vocabulary/:id", vocabCtrl.UpdateEntry)
	router.DELETE("/api/vocabulary/:id", vocabCtrl.DeleteEntry)

	router.GET("/api/review/queue", reviewCtrl.GetQueue)
	router.GET("/api/review/books", reviewCtrl.GetBooks)
	router.POST("/api/review/:id/answer", reviewCtrl.Answer)

	return &testServer{db: db, router: router, search: search}
}

// do issues a request as the given user (0 = unauthenticated).
func (s *testServer) do(method, path string, userID uint, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(userHeader, strconv.FormatUint(uint64(userID), 10))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) addVocab(t *testing.T, userID, bookID uint, word string, box int) *entities.VocabEntry {
	t.Helper()
	entry := &entities.VocabEntry{UserID: userID, BookID: bookID, Word: word, SRSBox: box}
	require.NoError(t, s.db.Create(entry).Error)
	return entry
}

func (s *testServer) addBook(t *testing.T, title, author string) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, Author: author}
	require.NoError(t, s.db.Create(book).Error)
	return book
}

func (s *testServer) linkBook(t *testing.T, userID, bookID uint, status entities.ReadingStatus) {
	t.Helper()
	require.NoError(t, s.db.Create(&entities.UserBook{
		UserID: userID, BookID: bookID, Status: status,
	}).Error)
}

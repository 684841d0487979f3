package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leafmark/leafmark/internal/auth"
	"github.com/leafmark/leafmark/internal/catalog"
	"github.com/leafmark/leafmark/internal/config"
	"github.com/leafmark/leafmark/internal/database"
	"github.com/leafmark/leafmark/internal/database/books"
	"github.com/leafmark/leafmark/internal/database/library"
	"github.com/leafmark/leafmark/internal/database/users"
	"github.com/leafmark/leafmark/internal/database/vocabulary"
	http_controllers "github.com/leafmark/leafmark/internal/http"
	"github.com/leafmark/leafmark/internal/scheduler"
	"github.com/leafmark/leafmark/internal/services"
	"github.com/leafmark/leafmark/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the listener so in-flight requests can
	// still enqueue while they drain.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the whole application together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Leafmark v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	booksRepo := books.NewRepository(db.DB)
	linksRepo := library.NewRepository(db.DB)
	vocabRepo := vocabulary.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)

	openLibrary := catalog.NewClient(cfg.OpenLibrary)
	libraryService := services.NewLibraryService(db.DB, openLibrary)
	reviewService := services.NewReviewService(vocabRepo)

	// Task queue for background enrichment and cleanup
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var cleanupScheduler *scheduler.CleanupScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichBookQueue(booksRepo, openLibrary),
			tasks.NewCleanupOrphansQueue(libraryService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewCleanupScheduler(taskClient, cfg.Cleanup)
		if err := cleanupScheduler.Start(); err != nil {
			log.Fatalf("Failed to start cleanup scheduler: %v", err)
		}
	}

	// Sessions live in the same sqlite file as the rest of the data
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	authService := auth.NewService(usersRepo, cfg.Auth)
	loginLimiter := auth.NewLoginLimiter(cfg.Auth)

	if count, err := usersRepo.Count(); err == nil && count == 0 {
		log.Printf("No users found. POST /register to create the first account.")
	}

	enqueuer := http_controllers.NewTaskEnqueuer(taskClient)

	routerCfg := http_controllers.RouterConfig{
		SessionManager: sessionManager,
		AuthMiddleware: auth.NewMiddleware(sessionManager),
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,

		AuthController:       auth.NewController(authService, sessionManager, loginLimiter),
		HealthController:     http_controllers.NewHealthController(db, version),
		BooksController:      http_controllers.NewBooksController(booksRepo, linksRepo, openLibrary),
		LibraryController:    http_controllers.NewLibraryController(libraryService, linksRepo, enqueuer),
		ImportController:     http_controllers.NewImportController(libraryService),
		VocabularyController: http_controllers.NewVocabularyController(vocabRepo),
		ReviewController:     http_controllers.NewReviewController(vocabRepo, reviewService),
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		loginLimiter.Stop()
		if cleanupScheduler != nil {
			cleanupScheduler.Stop(ctx)
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

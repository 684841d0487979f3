// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Shared book catalog operations
//	├── library/         # Per-user book links (reading state)
//	├── vocabulary/      # Vocabulary flashcards and the review queue
//	└── users/           # User accounts
//
// Each sub-package provides a Repository type with domain-specific
// operations:
//
//	db, err := database.NewDatabase("./leafmark.db")
//	booksRepo := books.NewRepository(db.DB)
//	libraryRepo := library.NewRepository(db.DB)
//
// # Ownership scoping
//
// Every query over user-owned rows (library links, vocabulary entries) takes
// the owning user ID as an explicit parameter, so ownership filtering happens
// at the data-access boundary instead of ad hoc in individual routes. The
// vocabulary repository additionally exposes owner-checked mutation helpers
// that return ErrNotOwner on cross-user access.
package database

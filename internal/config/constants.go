package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./leafmark.db"

	// DefaultOpenLibraryBaseURL is the catalog endpoint used for metadata lookups
	DefaultOpenLibraryBaseURL = "https://openlibrary.org"
)

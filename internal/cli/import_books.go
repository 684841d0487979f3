package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/leafmark/leafmark/internal/catalog"
	"github.com/leafmark/leafmark/internal/config"
	"github.com/leafmark/leafmark/internal/database"
	"github.com/leafmark/leafmark/internal/database/books"
	"github.com/leafmark/leafmark/internal/database/library"
	"github.com/leafmark/leafmark/internal/database/users"
	"github.com/leafmark/leafmark/internal/entities"
	"github.com/leafmark/leafmark/internal/importers"
)

// ImportBooksCommand bulk-loads a reading-history file (CSV or JSON) into
// the catalog, optionally linking every imported book to a user's library.
type ImportBooksCommand struct {
	FilePath       string
	DatabasePath   string
	Format         string
	BatchSize      int
	Dedupe         bool
	UpdateExisting bool
	EnrichByISBN   bool
	UserEmail      string
	Verbose        bool
	DryRun         bool
}

// importStats accumulates counters across batches.
type importStats struct {
	Created  int
	Updated  int
	Skipped  int
	Linked   int
	Enriched int
}

func NewImportBooksCommand() *ImportBooksCommand {
	return &ImportBooksCommand{}
}

func (cmd *ImportBooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-books", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the application database file")
	fs.StringVar(&cmd.Format, "format", "auto", "Input format: auto, csv or json (auto infers from the file extension)")
	fs.IntVar(&cmd.BatchSize, "batch-size", 500, "Number of records committed per transaction")
	fs.BoolVar(&cmd.Dedupe, "dedupe", false, "Skip records that duplicate an earlier record in the same file")
	fs.BoolVar(&cmd.UpdateExisting, "update-existing", false, "Backfill a missing catalog ISBN on books that already exist (reading state stays on the per-user library link)")
	fs.BoolVar(&cmd.EnrichByISBN, "enrich-by-isbn", false, "Fill missing title/author from Open Library when a record has only an ISBN")
	fs.StringVar(&cmd.UserEmail, "user-email", "", "Link every imported book to this user's library")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and report without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-books [options] <file>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a reading-history file into the book catalog.\n\n")
		fmt.Fprintf(os.Stderr, "CSV files need a header row; column names are matched loosely\n")
		fmt.Fprintf(os.Stderr, "(title, author, isbn, start_date, finish_date, rating, tags, notes).\n")
		fmt.Fprintf(os.Stderr, "JSON files may be a bare list of objects or {\"books\": [...]}.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Load a CSV into the shared catalog:\n")
		fmt.Fprintf(os.Stderr, "  %s import-books reading-history.csv\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Load and attach everything to one user's library:\n")
		fmt.Fprintf(os.Stderr, "  %s import-books -user-email reader@example.com books.json\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview what would be imported:\n")
		fmt.Fprintf(os.Stderr, "  %s import-books -dry-run -verbose books.csv\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("input file argument required")
	}
	cmd.FilePath = fs.Arg(0)

	switch cmd.Format {
	case "auto", "csv", "json":
	default:
		return fmt.Errorf("unsupported format %q, expected auto, csv or json", cmd.Format)
	}

	if cmd.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive")
	}

	return nil
}

func (cmd *ImportBooksCommand) Run() error {
	fmt.Println("Book Import")
	fmt.Println("===========")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	records, err := cmd.readRecords()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No records found in input file")
		return nil
	}

	fmt.Printf("File: %s\n", cmd.FilePath)
	fmt.Printf("Found %d records\n", len(records))

	if cmd.Dedupe {
		before := len(records)
		records = dedupeRecords(records)
		if dropped := before - len(records); dropped > 0 {
			fmt.Printf("Dropped %d in-file duplicates\n", dropped)
		}
	}

	if cmd.Verbose {
		fmt.Println("\n=== Records ===")
		for i, rec := range records {
			fmt.Printf("%d. %q by %s\n", i+1, rec.Title, orPlaceholder(rec.Author, "(no author)"))
		}
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var userID uint
	if cmd.UserEmail != "" {
		user, err := users.NewRepository(db.DB).GetByEmail(cmd.UserEmail)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("no user with email %s", cmd.UserEmail)
			}
			return fmt.Errorf("look up user: %w", err)
		}
		userID = user.ID
		fmt.Printf("Linking imported books to %s\n", user.Email)
	}

	var fetcher *catalog.Client
	if cmd.EnrichByISBN {
		fetcher = catalog.NewClient(config.NewConfig().OpenLibrary)
	}

	stats := &importStats{}
	for start := 0; start < len(records); start += cmd.BatchSize {
		end := start + cmd.BatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := cmd.importBatch(db.DB, records[start:end], userID, fetcher, stats); err != nil {
			return fmt.Errorf("import batch starting at record %d: %w", start+1, err)
		}
		if cmd.Verbose {
			fmt.Printf("  committed records %d-%d\n", start+1, end)
		}
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Books created: %d\n", stats.Created)
	if cmd.UpdateExisting {
		fmt.Printf("Books updated: %d\n", stats.Updated)
	}
	fmt.Printf("Records skipped: %d\n", stats.Skipped)
	if cmd.EnrichByISBN {
		fmt.Printf("Records enriched: %d\n", stats.Enriched)
	}
	if userID != 0 {
		fmt.Printf("Library links created: %d\n", stats.Linked)
	}

	fmt.Println("\nImport complete!")
	return nil
}

// importBatch writes one slice of records inside a single transaction.
func (cmd *ImportBooksCommand) importBatch(db *gorm.DB, batch []importers.Record, userID uint, fetcher *catalog.Client, stats *importStats) error {
	return db.Transaction(func(tx *gorm.DB) error {
		booksRepo := books.NewRepository(tx)
		linksRepo := library.NewRepository(tx)

		for _, rec := range batch {
			isbn := catalog.NormalizeISBN(rec.ISBN)

			if (rec.Title == "" || rec.Author == "") && isbn != "" && fetcher != nil {
				meta, err := fetcher.FetchByISBN(context.Background(), isbn)
				if err != nil {
					if cmd.Verbose {
						fmt.Printf("  [WARN] lookup failed for ISBN %s: %v\n", isbn, err)
					}
				} else {
					if rec.Title == "" {
						rec.Title = meta.Title
					}
					if rec.Author == "" {
						rec.Author = meta.Author
					}
					stats.Enriched++
				}
			}

			if rec.Title == "" || rec.Author == "" {
				stats.Skipped++
				if cmd.Verbose {
					fmt.Printf("  [SKIP] record missing title or author (isbn=%q)\n", rec.ISBN)
				}
				continue
			}

			book := &entities.Book{Title: rec.Title, Author: rec.Author, ISBN: isbn}
			book, created, err := booksRepo.FindOrCreate(book)
			if err != nil {
				return fmt.Errorf("find or create %q: %w", rec.Title, err)
			}

			switch {
			case created:
				stats.Created++
			case cmd.UpdateExisting:
				if isbn != "" && book.ISBN == "" {
					book.ISBN = isbn
					if err := booksRepo.Update(book); err != nil {
						return fmt.Errorf("update %q: %w", rec.Title, err)
					}
					stats.Updated++
				} else {
					stats.Skipped++
				}
			default:
				stats.Skipped++
			}

			if userID == 0 {
				continue
			}

			exists, err := linksRepo.HasLink(userID, book.ID)
			if err != nil {
				return fmt.Errorf("check library link for %q: %w", rec.Title, err)
			}
			if exists {
				continue
			}
			link := &entities.UserBook{
				UserID:     userID,
				BookID:     book.ID,
				Status:     statusFromDates(rec.StartDate, rec.FinishDate),
				Rating:     rec.Rating,
				StartDate:  rec.StartDate,
				FinishDate: rec.FinishDate,
				Tags:       rec.Tags,
				Notes:      rec.Notes,
			}
			if err := linksRepo.CreateLink(link); err != nil {
				return fmt.Errorf("create library link for %q: %w", rec.Title, err)
			}
			stats.Linked++
		}
		return nil
	})
}

// readRecords opens the input file and parses it per the chosen format.
func (cmd *ImportBooksCommand) readRecords() ([]importers.Record, error) {
	format := cmd.Format
	if format == "auto" {
		inferred, err := importers.InferFormat(cmd.FilePath)
		if err != nil {
			return nil, err
		}
		format = inferred
	}

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	if format == "json" {
		return importers.ReadJSON(file)
	}
	return importers.ReadCSV(file)
}

// dedupeRecords keeps the first occurrence of each lowercased (title, author)
// pair; later duplicates in the same file are dropped.
func dedupeRecords(records []importers.Record) []importers.Record {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, rec := range records {
		key := strings.ToLower(rec.Title) + "\x00" + strings.ToLower(rec.Author)
		if rec.Title != "" && seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out
}

// statusFromDates derives a reading status from imported dates: a finish
// date means completed, a bare start date means reading, neither lands on
// the wishlist.
func statusFromDates(startDate, finishDate string) entities.ReadingStatus {
	switch {
	case finishDate != "":
		return entities.StatusCompleted
	case startDate != "":
		return entities.StatusReading
	default:
		return entities.StatusWishlist
	}
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

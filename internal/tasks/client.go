// Package tasks runs background work on a sqlite-backed queue: metadata
// enrichment after ISBN-only adds, and orphaned-book cleanup.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"

	"github.com/leafmark/leafmark/internal/config"
)

// Client wraps backlite with a dedicated sqlite database stored next to the
// main one with a "-tasks" suffix.
type Client struct {
	client *backlite.Client
	db     *sql.DB
}

// NewClient opens the task database and creates the queue client.
func NewClient(mainDBPath string, cfg config.Tasks) (*Client, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}

	db, err := sql.Open("sqlite3", tasksDBPath(mainDBPath)+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          taskLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create task client: %w", err)
	}

	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install task schema: %w", err)
	}

	return &Client{client: client, db: db}, nil
}

func tasksDBPath(mainDBPath string) string {
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, base[:len(base)-len(ext)]+"-tasks"+ext)
}

// Register adds queues to the client. Must precede Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start begins processing. Non-blocking; stop via Stop.
func (c *Client) Start(ctx context.Context) {
	c.client.Start(ctx)
}

// Stop drains workers, waiting up to the context deadline.
func (c *Client) Stop(ctx context.Context) bool {
	return c.client.Stop(ctx)
}

// Close releases the task database. Call after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Add starts an enqueue operation.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.client.Add(tasks...)
}

type taskLogger struct{}

func (taskLogger) Info(message string, params ...any) {
	log.Printf("[task] "+message, params...)
}

func (taskLogger) Error(message string, params ...any) {
	log.Printf("[task error] "+message, params...)
}

package http

import (
	"log"

	"github.com/leafmark/leafmark/internal/tasks"
)

// taskEnqueuer adapts the task client to the TaskEnqueuer interface.
// Enqueue failures are logged and swallowed; background enrichment is
// best-effort and never fails a request.
type taskEnqueuer struct {
	client *tasks.Client
}

// NewTaskEnqueuer wraps a task client for controllers. Returns nil when the
// client is nil so callers can pass the result straight through.
func NewTaskEnqueuer(client *tasks.Client) TaskEnqueuer {
	if client == nil {
		return nil
	}
	return &taskEnqueuer{client: client}
}

func (e *taskEnqueuer) EnqueueEnrichBook(bookID uint) {
	if _, err := e.client.Add(tasks.EnrichBookTask{BookID: bookID}).Save(); err != nil {
		log.Printf("enqueue enrich_book for %d failed: %v", bookID, err)
	}
}

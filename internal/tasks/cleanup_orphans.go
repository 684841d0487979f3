package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/leafmark/leafmark/internal/services"
)

// CleanupOrphansTask removes catalog books that no user references anymore.
// Normally a no-op: delete-time cleanup already handles the common path.
type CleanupOrphansTask struct{}

func (t CleanupOrphansTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_orphans",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention:   &backlite.Retention{Duration: 24 * time.Hour},
	}
}

// NewCleanupOrphansQueue creates the orphan cleanup queue.
func NewCleanupOrphansQueue(svc *services.LibraryService) backlite.Queue {
	return backlite.NewQueue(func(ctx context.Context, task CleanupOrphansTask) error {
		removed, err := svc.CleanupOrphanBooks()
		if err != nil {
			return fmt.Errorf("cleanup orphan books: %w", err)
		}
		if removed > 0 {
			log.Printf("[task] removed %d orphaned books", removed)
		}
		return nil
	})
}

// Package scheduler runs the nightly orphan-book cleanup on a cron schedule.
// It is a safety net behind the synchronous delete-time cleanup: under normal
// operation the nightly run finds nothing to remove.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/leafmark/leafmark/internal/config"
	"github.com/leafmark/leafmark/internal/tasks"
)

// CleanupScheduler enqueues the orphan cleanup task on a cron schedule.
type CleanupScheduler struct {
	tasks  *tasks.Client
	config config.Cleanup

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewCleanupScheduler creates the scheduler. Standard five-field cron
// expressions (minute hour dom month dow).
func NewCleanupScheduler(taskClient *tasks.Client, cfg config.Cleanup) *CleanupScheduler {
	return &CleanupScheduler{
		tasks:  taskClient,
		config: cfg,
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
		))),
	}
}

// Start begins the schedule when cleanup is enabled.
func (s *CleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		log.Println("Orphan cleanup scheduler: disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, s.runCleanup)
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.config.Schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Orphan cleanup scheduler: started with schedule %q", s.config.Schedule)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *CleanupScheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		log.Println("Orphan cleanup scheduler: stop timed out")
	}
	s.isRunning = false
}

func (s *CleanupScheduler) runCleanup() {
	if _, err := s.tasks.Add(tasks.CleanupOrphansTask{}).Save(); err != nil {
		log.Printf("Orphan cleanup scheduler: enqueue failed: %v", err)
	}
}

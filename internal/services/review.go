package services

import (
	"fmt"
	"time"

	"github.com/leafmark/leafmark/internal/database/vocabulary"
	"github.com/leafmark/leafmark/internal/entities"
	"github.com/leafmark/leafmark/internal/review"
)

// ReviewService applies flashcard answers to vocabulary entries.
type ReviewService struct {
	vocab *vocabulary.Repository
}

// NewReviewService creates the review service.
func NewReviewService(vocab *vocabulary.Repository) *ReviewService {
	return &ReviewService{vocab: vocab}
}

// RecordAnswer moves the entry to its next box and stamps the next review
// time. Only the owner may answer; vocabulary.ErrNotOwner passes through so
// callers can map it to a 403. The change is persisted immediately.
func (s *ReviewService) RecordAnswer(userID, entryID uint, correct bool) (*entities.VocabEntry, error) {
	entry, err := s.vocab.GetOwnedEntry(entryID, userID)
	if err != nil {
		return nil, err
	}

	entry.SRSBox = review.Advance(entry.SRSBox, correct)
	next := review.NextReview(time.Now(), entry.SRSBox)
	entry.NextReviewAt = &next

	if err := s.vocab.UpdateEntry(entry); err != nil {
		return nil, fmt.Errorf("save review answer: %w", err)
	}
	return entry, nil
}

package vocabulary

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/leafmark/leafmark/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_vocabulary_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.UserBook{},
		&entities.VocabEntry{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestEntry(t *testing.T, repo *Repository, userID, bookID uint, word string, box int) *entities.VocabEntry {
	entry := &entities.VocabEntry{
		UserID: userID,
		BookID: bookID,
		Word:   word,
		SRSBox: box,
	}
	require.NoError(t, repo.AddEntry(entry))
	return entry
}

func TestRepository_AddEntry_DefaultsToBoxOne(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	entry := &entities.VocabEntry{UserID: 1, BookID: 1, Word: "ephemeral"}
	require.NoError(t, repo.AddEntry(entry))

	saved, err := repo.GetEntryByID(entry.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, saved.SRSBox)
	assert.Nil(t, saved.NextReviewAt)
}

func TestRepository_GetOwnedEntry(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	entry := createTestEntry(t, repo, 1, 1, "serendipity", 1)

	t.Run("owner can read", func(t *testing.T) {
		got, err := repo.GetOwnedEntry(entry.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "serendipity", got.Word)
	})

	t.Run("other user is rejected", func(t *testing.T) {
		_, err := repo.GetOwnedEntry(entry.ID, 2)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := repo.GetOwnedEntry(999, 1)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRepository_DeleteEntry_OwnerOnly(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	entry := createTestEntry(t, repo, 1, 1, "gossamer", 2)

	err := repo.DeleteEntry(entry.ID, 2)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Entry is untouched after the rejected delete
	kept, err := repo.GetEntryByID(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, kept.SRSBox)

	require.NoError(t, repo.DeleteEntry(entry.ID, 1))
	_, err = repo.GetEntryByID(entry.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetReviewQueue_OrderedByBoxThenWord(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestEntry(t, repo, 1, 1, "beta", 2)
	createTestEntry(t, repo, 1, 1, "alpha", 1)
	createTestEntry(t, repo, 1, 1, "gamma", 1)

	queue, err := repo.GetReviewQueue(1, nil)

	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, "alpha", queue[0].Word)
	assert.Equal(t, "gamma", queue[1].Word)
	assert.Equal(t, "beta", queue[2].Word)
}

func TestRepository_GetReviewQueue_IgnoresDueTime(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	future := time.Now().Add(20 * 24 * time.Hour)
	entry := &entities.VocabEntry{UserID: 1, BookID: 1, Word: "mastered", SRSBox: 5, NextReviewAt: &future}
	require.NoError(t, repo.AddEntry(entry))

	queue, err := repo.GetReviewQueue(1, nil)

	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "mastered", queue[0].Word)
}

func TestRepository_GetReviewQueue_FiltersByBookAndUser(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestEntry(t, repo, 1, 10, "alpha", 1)
	createTestEntry(t, repo, 1, 20, "beta", 1)
	createTestEntry(t, repo, 2, 10, "theirs", 1)

	bookID := uint(10)
	queue, err := repo.GetReviewQueue(1, &bookID)

	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "alpha", queue[0].Word)
}

func TestRepository_GetBooksWithEntries(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	bookA := &entities.Book{Title: "Zen", Author: "A"}
	bookB := &entities.Book{Title: "Atlas", Author: "B"}
	empty := &entities.Book{Title: "Untouched", Author: "C"}
	require.NoError(t, db.Create(bookA).Error)
	require.NoError(t, db.Create(bookB).Error)
	require.NoError(t, db.Create(empty).Error)

	createTestEntry(t, repo, 1, bookA.ID, "koan", 1)
	createTestEntry(t, repo, 1, bookA.ID, "satori", 1)
	createTestEntry(t, repo, 1, bookB.ID, "cartography", 1)
	createTestEntry(t, repo, 2, empty.ID, "foreign", 1)

	books, err := repo.GetBooksWithEntries(1)

	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Atlas", books[0].Title)
	assert.Equal(t, "Zen", books[1].Title)
}

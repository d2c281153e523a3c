package chapters

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/inkwell/internal/database"
	"github.com/avelichko/inkwell/internal/entities"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func testChapter(bookID string, position int) *entities.Chapter {
	return &entities.Chapter{
		BookID:     bookID,
		Position:   position,
		Title:      "Chapter",
		Date:       "2026-08-30",
		WordsCount: 10,
		Content:    "some words in a chapter",
		UpdatedAt:  1000,
	}
}

func TestUpsertAndGet(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Upsert(testChapter("b1", 0)))

	got, err := repo.Get("b1", 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Chapter", got.Title)
	assert.Equal(t, 10, got.WordsCount)
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := setupTestRepo(t)

	got, err := repo.Get("b1", 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertReplacesAtSamePosition(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Upsert(testChapter("b1", 0)))

	replacement := testChapter("b1", 0)
	replacement.Title = "Rewritten"
	replacement.IsFavorite = true
	replacement.UpdatedAt = 2000
	require.NoError(t, repo.Upsert(replacement))

	all, err := repo.ForBook("b1")
	require.NoError(t, err)
	require.Len(t, all, 1, "same position must not create a second row")
	assert.Equal(t, "Rewritten", all[0].Title)
	assert.True(t, all[0].IsFavorite)
	assert.Equal(t, int64(2000), all[0].UpdatedAt)
}

func TestUpsertStoresCallerTimestampVerbatim(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Upsert(testChapter("b1", 0)))

	replacement := testChapter("b1", 0)
	replacement.UpdatedAt = 99
	require.NoError(t, repo.Upsert(replacement))

	got, err := repo.Get("b1", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.UpdatedAt, "updated_at is owned by the caller, not the ORM")
}

func TestForBookOrdersByPosition(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Upsert(testChapter("b1", 2)))
	require.NoError(t, repo.Upsert(testChapter("b1", 0)))
	require.NoError(t, repo.Upsert(testChapter("b1", 1)))
	require.NoError(t, repo.Upsert(testChapter("other", 0)))

	all, err := repo.ForBook("b1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 0, all[0].Position)
	assert.Equal(t, 1, all[1].Position)
	assert.Equal(t, 2, all[2].Position)
}

func TestDelete(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Upsert(testChapter("b1", 0)))
	require.NoError(t, repo.Upsert(testChapter("b1", 1)))

	require.NoError(t, repo.Delete("b1", 0))

	got, err := repo.Get("b1", 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	count, err := repo.CountForBook("b1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDeleteAllForBook(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Upsert(testChapter("b1", 0)))
	require.NoError(t, repo.Upsert(testChapter("b1", 1)))
	require.NoError(t, repo.Upsert(testChapter("b2", 0)))

	require.NoError(t, repo.DeleteAllForBook("b1"))

	count, err := repo.CountForBook("b1")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountForBook("b2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

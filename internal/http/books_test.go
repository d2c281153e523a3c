package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/inkwell/internal/database"
	"github.com/avelichko/inkwell/internal/database/books"
	"github.com/avelichko/inkwell/internal/database/chapters"
	"github.com/avelichko/inkwell/internal/entities"
	"github.com/avelichko/inkwell/internal/services"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *books.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	booksRepo := books.NewRepository(db)
	chaptersRepo := chapters.NewRepository(db)
	service := services.NewBookService(booksRepo, chaptersRepo, nil)

	router := NewRouter(RouterConfig{
		Database:    db,
		Books:       booksRepo,
		Chapters:    chaptersRepo,
		BookService: service,
		Version:     "test",
	})
	return router, booksRepo
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestBook(t *testing.T, router *gin.Engine, title, description string) entities.Book {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/books", bookRequest{Title: title, Description: description})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var book entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	return book
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestCreateBook(t *testing.T) {
	router, repo := setupTestRouter(t)

	book := createTestBook(t, router, "My Notebook", "ideas")
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "My Notebook", book.Title)

	stored, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "My Notebook", stored.Title)
}

func TestCreateBookRejectsBlank(t *testing.T) {
	router, _ := setupTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/books", bookRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAllBooks(t *testing.T) {
	router, _ := setupTestRouter(t)
	createTestBook(t, router, "One", "")
	createTestBook(t, router, "Two", "")

	w := doJSON(t, router, http.MethodGet, "/api/books", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Books []entities.Book `json:"books"`
		Count int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Books, 2)
}

func TestGetBookNotFound(t *testing.T) {
	router, _ := setupTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/books/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBook(t *testing.T) {
	router, _ := setupTestRouter(t)
	book := createTestBook(t, router, "Before", "")

	w := doJSON(t, router, http.MethodPut, "/api/books/"+book.ID, bookRequest{Title: "After", Description: "changed"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, "changed", updated.Description)
}

func TestDeleteBookCascades(t *testing.T) {
	router, repo := setupTestRouter(t)
	book := createTestBook(t, router, "Doomed", "")

	w := doJSON(t, router, http.MethodPut, "/api/books/"+book.ID+"/chapters/0",
		chapterRequest{Title: "ch", Content: "words here"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/books/"+book.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	count, err := repo.CountChapters(book.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSaveChapterDerivesCounts(t *testing.T) {
	router, repo := setupTestRouter(t)
	book := createTestBook(t, router, "Counter", "")

	w := doJSON(t, router, http.MethodPut, "/api/books/"+book.ID+"/chapters/0",
		chapterRequest{Title: "First", Content: "one two three four"})
	require.Equal(t, http.StatusOK, w.Code)

	var chapter entities.Chapter
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chapter))
	assert.Equal(t, 4, chapter.WordsCount)

	stored, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ChaptersCount)
}

func TestSaveChapterInvalidPosition(t *testing.T) {
	router, _ := setupTestRouter(t)
	book := createTestBook(t, router, "B", "")

	w := doJSON(t, router, http.MethodPut, "/api/books/"+book.ID+"/chapters/-1",
		chapterRequest{Title: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveChapterUnknownBook(t *testing.T) {
	router, _ := setupTestRouter(t)
	w := doJSON(t, router, http.MethodPut, "/api/books/ghost/chapters/0",
		chapterRequest{Title: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChapterLifecycle(t *testing.T) {
	router, _ := setupTestRouter(t)
	book := createTestBook(t, router, "B", "")

	for i, title := range []string{"one", "two", "three"} {
		w := doJSON(t, router, http.MethodPut,
			"/api/books/"+book.ID+"/chapters/"+strconv.Itoa(i),
			chapterRequest{Title: title, Content: "text"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/books/"+book.ID+"/chapters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Chapters []entities.Chapter `json:"chapters"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Chapters, 3)
	assert.Equal(t, "one", list.Chapters[0].Title)

	w = doJSON(t, router, http.MethodDelete, "/api/books/"+book.ID+"/chapters/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/books/"+book.ID+"/chapters/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncRoutesAbsentWithoutMirror(t *testing.T) {
	router, _ := setupTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/sync", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

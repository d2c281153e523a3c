package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/inkwell/internal/covers"
	"github.com/avelichko/inkwell/internal/database"
	"github.com/avelichko/inkwell/internal/database/books"
	"github.com/avelichko/inkwell/internal/database/chapters"
	"github.com/avelichko/inkwell/internal/entities"
	"github.com/avelichko/inkwell/internal/services"
)

func setupCoverRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := database.NewDatabase(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	coverStore, err := covers.NewStore(filepath.Join(dir, "covers"))
	require.NoError(t, err)

	booksRepo := books.NewRepository(db)
	chaptersRepo := chapters.NewRepository(db)
	service := services.NewBookService(booksRepo, chaptersRepo, coverStore)

	return NewRouter(RouterConfig{
		Database:    db,
		Books:       booksRepo,
		Chapters:    chaptersRepo,
		BookService: service,
		Version:     "test",
	})
}

func uploadCover(t *testing.T, router *gin.Engine, bookID string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/api/books/"+bookID+"/cover", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndFetchCover(t *testing.T) {
	router := setupCoverRouter(t)
	book := createTestBook(t, router, "Covered", "")

	payload := []byte("fake image bytes")
	w := uploadCover(t, router, book.ID, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.NotEmpty(t, updated.CoverPath)

	w = doJSON(t, router, http.MethodGet, "/api/books/"+book.ID+"/cover", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.Bytes())
}

func TestGetCoverMissing(t *testing.T) {
	router := setupCoverRouter(t)
	book := createTestBook(t, router, "Bare", "")

	w := doJSON(t, router, http.MethodGet, "/api/books/"+book.ID+"/cover", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadCoverUnknownBook(t *testing.T) {
	router := setupCoverRouter(t)
	w := uploadCover(t, router, "ghost", []byte("img"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCover(t *testing.T) {
	router := setupCoverRouter(t)
	book := createTestBook(t, router, "Covered", "")

	w := uploadCover(t, router, book.ID, []byte("img"))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/books/"+book.ID+"/cover", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/books/"+book.ID+"/cover", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package http

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/inkwell/internal/tasks"
)

func enqueueContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c
}

func TestEnqueuePersistsTask(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "notes.db")
	client, err := tasks.NewClient(dbPath, tasks.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	enqueue(enqueueContext(t), client, tasks.SyncBookTask{UID: "u1", BookID: "b1"})

	queueDB, err := sql.Open("sqlite3", filepath.Join(filepath.Dir(dbPath), "notes-tasks.db"))
	require.NoError(t, err)
	defer queueDB.Close()

	var count int
	require.NoError(t, queueDB.QueryRow(
		`SELECT COUNT(*) FROM backlite_tasks WHERE queue = 'sync_book'`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestEnqueueWithoutClientIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { enqueue(enqueueContext(t), nil) })
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/entities"
	"github.com/avelichko/inkwell/internal/services"
	"github.com/avelichko/inkwell/internal/tasks"
)

// ChaptersController handles chapter CRUD within a book.
type ChaptersController struct {
	reader      ChapterReader
	service     *services.BookService
	taskClient  TaskEnqueuer
	fallbackUID string
}

func NewChaptersController(reader ChapterReader, service *services.BookService, taskClient TaskEnqueuer, fallbackUID string) *ChaptersController {
	return &ChaptersController{
		reader:      reader,
		service:     service,
		taskClient:  taskClient,
		fallbackUID: fallbackUID,
	}
}

type chapterRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	IsFavorite  bool   `json:"isFavorite"`
	Content     string `json:"content"`
}

// ListChapters returns a book's chapters in position order.
// GET /api/books/:id/chapters
func (controller *ChaptersController) ListChapters(c *gin.Context) {
	chapters, err := controller.reader.ForBook(c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "list chapters")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"chapters": chapters, "count": len(chapters)})
}

// GetChapter returns one chapter by book id and position.
// GET /api/books/:id/chapters/:position
func (controller *ChaptersController) GetChapter(c *gin.Context) {
	position, ok := parsePositionParam(c, "position")
	if !ok {
		return
	}

	chapter, err := controller.reader.Get(c.Param("id"), position)
	if err != nil {
		respondInternalError(c, err, "get chapter")
		return
	}
	if chapter == nil {
		respondNotFound(c, "chapter")
		return
	}
	c.IndentedJSON(http.StatusOK, chapter)
}

// SaveChapter creates or replaces the chapter at a position. The word count
// and the book's chapter count are recomputed server-side.
// PUT /api/books/:id/chapters/:position
func (controller *ChaptersController) SaveChapter(c *gin.Context) {
	position, ok := parsePositionParam(c, "position")
	if !ok {
		return
	}

	var req chapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	chapter, err := controller.service.SaveChapter(entities.Chapter{
		BookID:      c.Param("id"),
		Position:    position,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		IsFavorite:  req.IsFavorite,
		Content:     req.Content,
	})
	switch {
	case errors.Is(err, services.ErrEmptyChapter):
		respondBadRequest(c, err.Error())
		return
	case errors.Is(err, services.ErrBookNotFound):
		respondNotFound(c, "book")
		return
	case err != nil:
		respondInternalError(c, err, "save chapter")
		return
	}

	if uid := resolveUID(c, controller.fallbackUID); uid != "" {
		enqueue(c, controller.taskClient, tasks.MirrorChapterTask{
			UID:      uid,
			BookID:   chapter.BookID,
			Position: chapter.Position,
		})
	}
	c.IndentedJSON(http.StatusOK, chapter)
}

// DeleteChapter removes the chapter at a position.
// DELETE /api/books/:id/chapters/:position
func (controller *ChaptersController) DeleteChapter(c *gin.Context) {
	position, ok := parsePositionParam(c, "position")
	if !ok {
		return
	}

	if err := controller.service.DeleteChapter(c.Param("id"), position); err != nil {
		respondInternalError(c, err, "delete chapter")
		return
	}

	// Re-push the book so the mirror's chapter set catches up
	if uid := resolveUID(c, controller.fallbackUID); uid != "" {
		enqueue(c, controller.taskClient, tasks.SyncBookTask{UID: uid, BookID: c.Param("id")})
	}
	respondSuccess(c, "chapter deleted")
}

package http

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/entities"
)

// LiveBookReader streams snapshots of the book list as it changes.
type LiveBookReader interface {
	Live(ctx context.Context) <-chan []entities.Book
}

// LiveChapterReader streams snapshots of one book's chapters as they change.
type LiveChapterReader interface {
	LiveForBook(ctx context.Context, bookID string) <-chan []entities.Chapter
}

// LiveController pushes store changes to clients over server-sent events.
// Each subscriber gets the current snapshot immediately, then a fresh one
// after every local write.
type LiveController struct {
	books    LiveBookReader
	chapters LiveChapterReader
}

func NewLiveController(books LiveBookReader, chapters LiveChapterReader) *LiveController {
	return &LiveController{books: books, chapters: chapters}
}

// StreamBooks streams the book list.
// GET /api/books/live
func (controller *LiveController) StreamBooks(c *gin.Context) {
	ctx := c.Request.Context()
	updates := controller.books.Live(ctx)

	c.Stream(func(w io.Writer) bool {
		select {
		case books, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("books", gin.H{"books": books, "count": len(books)})
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// StreamChapters streams one book's chapter list.
// GET /api/books/:id/chapters/live
func (controller *LiveController) StreamChapters(c *gin.Context) {
	ctx := c.Request.Context()
	updates := controller.chapters.LiveForBook(ctx, c.Param("id"))

	c.Stream(func(w io.Writer) bool {
		select {
		case chapters, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("chapters", gin.H{"chapters": chapters, "count": len(chapters)})
			return true
		case <-ctx.Done():
			return false
		}
	})
}

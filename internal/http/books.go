package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/services"
	"github.com/avelichko/inkwell/internal/tasks"
)

// BooksController handles book CRUD and cover management.
type BooksController struct {
	reader      BookReader
	service     *services.BookService
	taskClient  TaskEnqueuer
	fallbackUID string
}

func NewBooksController(reader BookReader, service *services.BookService, taskClient TaskEnqueuer, fallbackUID string) *BooksController {
	return &BooksController{
		reader:      reader,
		service:     service,
		taskClient:  taskClient,
		fallbackUID: fallbackUID,
	}
}

type bookRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GetAllBooks returns every book, most recently updated first.
// GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.reader.GetAll()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBook returns a single book by id.
// GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.reader.GetByID(c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// CreateBook creates a book from a title and description.
// POST /api/books
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.service.CreateBook(req.Title, req.Description)
	if errors.Is(err, services.ErrEmptyBook) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	controller.enqueuePush(c, book.ID)
	respondCreated(c, book)
}

// UpdateBook replaces a book's title and description.
// PUT /api/books/:id
func (controller *BooksController) UpdateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.service.UpdateBook(c.Param("id"), req.Title, req.Description)
	switch {
	case errors.Is(err, services.ErrEmptyBook):
		respondBadRequest(c, err.Error())
		return
	case errors.Is(err, services.ErrBookNotFound):
		respondNotFound(c, "book")
		return
	case err != nil:
		respondInternalError(c, err, "update book")
		return
	}

	controller.enqueuePush(c, book.ID)
	c.IndentedJSON(http.StatusOK, book)
}

// DeleteBook removes a book, its chapters, and its cover file. The mirror
// copy is left alone; removing remote data is an explicit separate call.
// DELETE /api/books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	err := controller.service.DeleteBook(c.Param("id"))
	if errors.Is(err, services.ErrBookNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

// enqueuePush schedules a mirror push for the book when signed in.
func (controller *BooksController) enqueuePush(c *gin.Context, bookID string) {
	uid := resolveUID(c, controller.fallbackUID)
	if uid == "" {
		return
	}
	enqueue(c, controller.taskClient, tasks.SyncBookTask{UID: uid, BookID: bookID})
}

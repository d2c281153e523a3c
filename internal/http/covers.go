package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/services"
)

// CoversController serves and manages book cover images. Covers live only
// on local disk; they are never mirrored.
type CoversController struct {
	reader  BookReader
	service *services.BookService
}

func NewCoversController(reader BookReader, service *services.BookService) *CoversController {
	return &CoversController{reader: reader, service: service}
}

// GetCover serves a book's stored cover image.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	book, err := cc.reader.GetByID(c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "get cover")
		return
	}
	if book == nil || book.CoverPath == "" {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(book.CoverPath)
}

// UploadCover stores a new cover image for a book. The request body is the
// raw image bytes.
// PUT /api/books/:id/cover
func (cc *CoversController) UploadCover(c *gin.Context) {
	book, err := cc.service.SaveCover(c.Param("id"), c.Request.Body)
	if errors.Is(err, services.ErrBookNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "upload cover")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// DeleteCover removes a book's cover image.
// DELETE /api/books/:id/cover
func (cc *CoversController) DeleteCover(c *gin.Context) {
	err := cc.service.RemoveCover(c.Param("id"))
	if errors.Is(err, services.ErrBookNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete cover")
		return
	}
	respondSuccess(c, "cover removed")
}

package mirror

import (
	"fmt"
	"strconv"

	"github.com/avelichko/inkwell/internal/entities"
)

// BookDocument is the remote representation of a book at
// users/{uid}/books/{bookId}. Cover images are deliberately absent: they
// live only on-device.
type BookDocument struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Desc          string `json:"desc"`
	ChaptersCount int    `json:"chaptersCount"`
	UpdatedAt     int64  `json:"updatedAt"`
}

// NewBookDocument builds the remote fields from a local book row.
func NewBookDocument(b entities.Book) BookDocument {
	return BookDocument{
		ID:            b.ID,
		Title:         b.Title,
		Desc:          b.Description,
		ChaptersCount: b.ChaptersCount,
		UpdatedAt:     b.UpdatedAt,
	}
}

// ChapterDocument is the remote representation of a chapter at
// users/{uid}/books/{bookId}/chapters/{position}. The document key and the
// position field are the base-10 string form of the ordinal.
type ChapterDocument struct {
	BookID      string `json:"bookId"`
	Position    string `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	WordCount   int    `json:"wordCount"`
	IsFavorite  bool   `json:"isFavorite"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// NewChapterDocument builds the remote fields from a local chapter row.
func NewChapterDocument(c entities.Chapter) ChapterDocument {
	return ChapterDocument{
		BookID:      c.BookID,
		Position:    strconv.Itoa(c.Position),
		Title:       c.Title,
		Description: c.Description,
		Date:        c.Date,
		WordCount:   c.WordsCount,
		IsFavorite:  c.IsFavorite,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToChapter converts the document back to a local row, parsing the
// stringified position.
func (d ChapterDocument) ToChapter() (entities.Chapter, error) {
	position, err := strconv.Atoi(d.Position)
	if err != nil {
		return entities.Chapter{}, fmt.Errorf("invalid chapter position %q: %w", d.Position, err)
	}
	return entities.Chapter{
		BookID:      d.BookID,
		Position:    position,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		WordsCount:  d.WordCount,
		IsFavorite:  d.IsFavorite,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

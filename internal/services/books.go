// Package services holds the write paths for books and chapters: input
// validation, derived fields (word counts, chapter counts, timestamps) and
// cover file lifecycle. Everything is persisted locally first; mirroring is
// layered on top by the sync controller and task queue.
package services

import (
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/inkwell/internal/covers"
	"github.com/avelichko/inkwell/internal/entities"
)

// ErrEmptyBook is returned when a book is submitted with both title and
// description blank.
var ErrEmptyBook = errors.New("book needs a title or a description")

// ErrEmptyChapter is returned when a chapter has no title, description, or
// content.
var ErrEmptyChapter = errors.New("chapter needs a title, description, or content")

// ErrBookNotFound is returned for operations against an unknown book id.
var ErrBookNotFound = errors.New("book not found")

// BookStore is the slice of the book repository the service uses.
type BookStore interface {
	GetByID(id string) (*entities.Book, error)
	Upsert(book *entities.Book) error
	Delete(id string) error
	CountChapters(id string) (int64, error)
	SetChaptersCount(id string, count int, updatedAt int64) error
}

// ChapterStore is the slice of the chapter repository the service uses.
type ChapterStore interface {
	Get(bookID string, position int) (*entities.Chapter, error)
	Upsert(chapter *entities.Chapter) error
	Delete(bookID string, position int) error
}

// BookService owns the validated write paths for books and chapters.
type BookService struct {
	books    BookStore
	chapters ChapterStore
	covers   *covers.Store
}

// NewBookService creates the service. The covers store may be nil when
// cover storage is unavailable; cover operations then fail gracefully.
func NewBookService(books BookStore, chapters ChapterStore, coverStore *covers.Store) *BookService {
	return &BookService{books: books, chapters: chapters, covers: coverStore}
}

// CreateBook validates input, assigns a fresh opaque id and persists the
// book locally. A blank title with a usable description gets the
// placeholder title.
func (s *BookService) CreateBook(title, description string) (*entities.Book, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" && description == "" {
		return nil, ErrEmptyBook
	}
	if title == "" {
		title = entities.PlaceholderTitle
	}

	now := time.Now().UnixMilli()
	book := &entities.Book{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		UpdatedAt:   now,
		CreatedAt:   now,
	}
	if err := s.books.Upsert(book); err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook overwrites a book's title and description, preserving the rest
// of the row (read-modify-write; the store's upsert is full-replace).
func (s *BookService) UpdateBook(id, title, description string) (*entities.Book, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" && description == "" {
		return nil, ErrEmptyBook
	}
	if title == "" {
		title = entities.PlaceholderTitle
	}

	book, err := s.books.GetByID(id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	book.Title = title
	book.Description = description
	book.UpdatedAt = time.Now().UnixMilli()
	if err := s.books.Upsert(book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes the book row, its chapters, and its cover file. The
// remote mirror is untouched: deleting remote data is a separate user
// action.
func (s *BookService) DeleteBook(id string) error {
	book, err := s.books.GetByID(id)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}

	if err := s.books.Delete(id); err != nil {
		return err
	}

	if s.covers != nil && book.CoverPath != "" {
		if err := s.covers.Remove(id); err != nil {
			// The row is already gone; an orphaned cover file is not worth
			// failing the operation over.
			log.Printf("Failed to remove cover for deleted book %s: %v", id, err)
		}
	}
	return nil
}

// SaveChapter validates and persists a chapter at (bookID, position),
// recomputing its word count and the owning book's chapter count.
func (s *BookService) SaveChapter(chapter entities.Chapter) (*entities.Chapter, error) {
	if strings.TrimSpace(chapter.Title) == "" &&
		strings.TrimSpace(chapter.Description) == "" &&
		strings.TrimSpace(chapter.Content) == "" {
		return nil, ErrEmptyChapter
	}

	book, err := s.books.GetByID(chapter.BookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	now := time.Now().UnixMilli()
	chapter.WordsCount = entities.CountWords(chapter.Content)
	chapter.UpdatedAt = now

	if err := s.chapters.Upsert(&chapter); err != nil {
		return nil, err
	}
	if err := s.refreshChapterCount(chapter.BookID, now); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// DeleteChapter removes one chapter and refreshes the book's chapter count.
func (s *BookService) DeleteChapter(bookID string, position int) error {
	if err := s.chapters.Delete(bookID, position); err != nil {
		return err
	}
	return s.refreshChapterCount(bookID, time.Now().UnixMilli())
}

// SaveCover stores an uploaded cover image and records its path on the book
// row. Covers stay on-device; the mirror never sees them.
func (s *BookService) SaveCover(bookID string, r io.Reader) (*entities.Book, error) {
	if s.covers == nil {
		return nil, errors.New("cover storage not configured")
	}

	book, err := s.books.GetByID(bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	path, err := s.covers.Save(bookID, r)
	if err != nil {
		return nil, err
	}

	book.CoverPath = path
	book.UpdatedAt = time.Now().UnixMilli()
	if err := s.books.Upsert(book); err != nil {
		return nil, err
	}
	return book, nil
}

// RemoveCover deletes the book's cover file and clears its path.
func (s *BookService) RemoveCover(bookID string) error {
	book, err := s.books.GetByID(bookID)
	if err != nil {
		return err
	}
	if book == nil {
		return ErrBookNotFound
	}

	if s.covers != nil {
		if err := s.covers.Remove(bookID); err != nil {
			return err
		}
	}

	book.CoverPath = ""
	book.UpdatedAt = time.Now().UnixMilli()
	return s.books.Upsert(book)
}

func (s *BookService) refreshChapterCount(bookID string, updatedAt int64) error {
	count, err := s.books.CountChapters(bookID)
	if err != nil {
		return err
	}
	return s.books.SetChaptersCount(bookID, int(count), updatedAt)
}

// Package chapters provides database operations for chapter management.
package chapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avelichko/inkwell/internal/database"
	"github.com/avelichko/inkwell/internal/entities"
)

// Repository handles all chapter database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new chapters repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// ForBook returns a book's chapters ordered by position.
func (r *Repository) ForBook(bookID string) ([]entities.Chapter, error) {
	var chapters []entities.Chapter
	err := r.db.DB.Where("book_id = ?", bookID).Order("position ASC").Find(&chapters).Error
	return chapters, err
}

// Get returns the chapter at (bookID, position), or nil when absent.
func (r *Repository) Get(bookID string, position int) (*entities.Chapter, error) {
	var chapter entities.Chapter
	err := r.db.DB.Where("book_id = ? AND position = ?", bookID, position).First(&chapter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// Upsert inserts the chapter or replaces the full row keyed by the
// (book_id, position) composite.
func (r *Repository) Upsert(chapter *entities.Chapter) error {
	err := r.db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_id"}, {Name: "position"}},
		UpdateAll: true,
	}).Create(chapter).Error
	if err != nil {
		return err
	}
	r.db.NotifyChanged()
	return nil
}

// Delete removes a single chapter.
func (r *Repository) Delete(bookID string, position int) error {
	err := r.db.DB.Where("book_id = ? AND position = ?", bookID, position).
		Delete(&entities.Chapter{}).Error
	if err != nil {
		return err
	}
	r.db.NotifyChanged()
	return nil
}

// DeleteAllForBook removes every chapter owned by a book.
func (r *Repository) DeleteAllForBook(bookID string) error {
	err := r.db.DB.Where("book_id = ?", bookID).Delete(&entities.Chapter{}).Error
	if err != nil {
		return err
	}
	r.db.NotifyChanged()
	return nil
}

// CountForBook returns the number of chapters a book owns.
func (r *Repository) CountForBook(bookID string) (int64, error) {
	var count int64
	err := r.db.DB.Model(&entities.Chapter{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}

// LiveForBook streams a book's chapter list ordered by position, re-emitting
// after every committed write until ctx is cancelled.
func (r *Repository) LiveForBook(ctx context.Context, bookID string) <-chan []entities.Chapter {
	out := make(chan []entities.Chapter, 1)
	signal := r.db.Changes().Subscribe(ctx)

	go func() {
		defer close(out)
		for {
			chapters, err := r.ForBook(bookID)
			if err == nil {
				select {
				case out <- chapters:
				case <-ctx.Done():
					return
				}
			}
			select {
			case _, ok := <-signal:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

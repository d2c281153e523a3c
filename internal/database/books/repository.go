// Package books provides database operations for book management.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID("d9c1...")
package books

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avelichko/inkwell/internal/database"
	"github.com/avelichko/inkwell/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new books repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// GetAll returns all books ordered by last modification, newest first.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.DB.Order("updated_at DESC").Find(&books).Error
	return books, err
}

// GetAllSnapshot returns all books without an ordering guarantee. Used by
// one-shot consumers that only need set membership.
func (r *Repository) GetAllSnapshot() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.DB.Find(&books).Error
	return books, err
}

// GetByID returns the book with the given id, or nil when no row exists.
func (r *Repository) GetByID(id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.DB.Where("id = ?", id).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Upsert inserts the book or replaces the full row keyed by id. Partial
// updates are expressed as read-modify-write at the caller.
func (r *Repository) Upsert(book *entities.Book) error {
	err := r.db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(book).Error
	if err != nil {
		return err
	}
	r.db.NotifyChanged()
	return nil
}

// Delete removes the book row and all its chapter rows in one transaction.
// The cascade is explicit rather than a foreign-key constraint so the
// behavior does not depend on the storage engine.
func (r *Repository) Delete(id string) error {
	err := r.db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.Chapter{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Book{}).Error
	})
	if err != nil {
		return err
	}
	r.db.NotifyChanged()
	return nil
}

// SetSynced flips the remote-presence flag for a book.
func (r *Repository) SetSynced(id string, synced bool) error {
	err := r.db.DB.Model(&entities.Book{}).
		Where("id = ?", id).
		Update("is_synced", synced).Error
	if err != nil {
		return err
	}
	r.db.NotifyChanged()
	return nil
}

// CountChapters returns the number of chapter rows owned by a book.
func (r *Repository) CountChapters(id string) (int64, error) {
	var count int64
	err := r.db.DB.Model(&entities.Chapter{}).Where("book_id = ?", id).Count(&count).Error
	return count, err
}

// SetChaptersCount stores the derived chapter count and bumps the
// last-modified timestamp.
func (r *Repository) SetChaptersCount(id string, count int, updatedAt int64) error {
	err := r.db.DB.Model(&entities.Book{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"chapters_count": count,
			"updated_at":     updatedAt,
		}).Error
	if err != nil {
		return err
	}
	r.db.NotifyChanged()
	return nil
}

// Live streams the full book list, newest first, re-emitting after every
// committed write. The initial snapshot is delivered immediately; the
// channel closes when ctx is cancelled.
func (r *Repository) Live(ctx context.Context) <-chan []entities.Book {
	out := make(chan []entities.Book, 1)
	signal := r.db.Changes().Subscribe(ctx)

	go func() {
		defer close(out)
		for {
			books, err := r.GetAll()
			if err == nil {
				select {
				case out <- books:
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

// Package syncer implements the local/remote reconciliation pass.
//
// The pass is remote-biased: book metadata is taken from the remote copy
// without timestamp comparison, and chapter records flow both ways as a
// union (pull everything remote, then push everything local for synced
// books). Fields that never cross the wire, the cover image and the chapter
// text, survive both directions untouched.
package syncer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/avelichko/inkwell/internal/entities"
	"github.com/avelichko/inkwell/internal/mirror"
)

// BookStore is the slice of the local book repository the syncer needs.
type BookStore interface {
	GetByID(id string) (*entities.Book, error)
	Upsert(book *entities.Book) error
	SetSynced(id string, synced bool) error
}

// ChapterStore is the slice of the local chapter repository the syncer needs.
type ChapterStore interface {
	ForBook(bookID string) ([]entities.Chapter, error)
	Get(bookID string, position int) (*entities.Chapter, error)
	Upsert(chapter *entities.Chapter) error
}

// MirrorStore is the remote document tree. *mirror.Client satisfies it; tests
// substitute an in-memory fake.
type MirrorStore interface {
	ListBooks(ctx context.Context, uid string) ([]mirror.BookDocument, error)
	UpsertBook(ctx context.Context, uid string, doc mirror.BookDocument) error
	DeleteBook(ctx context.Context, uid, bookID string) error
	UpsertChapter(ctx context.Context, uid, bookID string, doc mirror.ChapterDocument) error
	BatchUpsertChapters(ctx context.Context, uid, bookID string, docs []mirror.ChapterDocument) error
	ListChapters(ctx context.Context, uid, bookID string) ([]mirror.ChapterDocument, error)
}

// Summary reports one completed reconciliation pass.
type Summary struct {
	Processed   int       `json:"processed"`
	Failed      int       `json:"failed"`
	CompletedAt time.Time `json:"completed_at"`
}

// Syncer reconciles the local store with a user's remote mirror tree.
type Syncer struct {
	books    BookStore
	chapters ChapterStore
	mirror   MirrorStore

	mu   sync.Mutex
	last *Summary
}

// New creates a syncer over the given stores.
func New(books BookStore, chapters ChapterStore, remote MirrorStore) *Syncer {
	return &Syncer{books: books, chapters: chapters, mirror: remote}
}

// Run executes one reconciliation pass for the signed-in user: every book id
// present in the remote listing is processed by its own sub-pipeline
// (download book fields, download chapters, upload local chapters), the
// pipelines are joined, and the fold of their results is the summary.
//
// A failing sub-pipeline is logged and counted; it never aborts the others.
func (s *Syncer) Run(ctx context.Context, uid string) (Summary, error) {
	if uid == "" {
		return Summary{}, mirror.ErrNotSignedIn
	}

	docs, err := s.mirror.ListBooks(ctx, uid)
	if err != nil {
		return Summary{}, fmt.Errorf("list remote books: %w", err)
	}

	results := make(chan error, len(docs))
	var wg sync.WaitGroup
	for _, doc := range docs {
		wg.Add(1)
		go func(doc mirror.BookDocument) {
			defer wg.Done()
			results <- s.syncBook(ctx, uid, doc)
		}(doc)
	}
	wg.Wait()
	close(results)

	summary := Summary{CompletedAt: time.Now()}
	for err := range results {
		if err != nil {
			summary.Failed++
			continue
		}
		summary.Processed++
	}

	log.Printf("Mirror sync: reconciled %d books (%d failed) for user %s", summary.Processed, summary.Failed, uid)

	s.mu.Lock()
	s.last = &summary
	s.mu.Unlock()

	return summary, nil
}

// LastSummary returns the most recent completed pass, or nil when none has
// run yet.
func (s *Syncer) LastSummary() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	summary := *s.last
	return &summary
}

// syncBook runs one book's sub-pipeline: merge book fields remote-wins,
// pull all remote chapters, then push all local chapters as one batch.
// Download strictly precedes upload.
func (s *Syncer) syncBook(ctx context.Context, uid string, doc mirror.BookDocument) error {
	local, err := s.books.GetByID(doc.ID)
	if err != nil {
		return logBookErr(doc.ID, "load local book", err)
	}

	if local == nil {
		// Materialize from remote fields. Covers never travel through the
		// mirror, so the cover path starts empty.
		local = &entities.Book{
			ID:            doc.ID,
			Title:         doc.Title,
			Description:   doc.Desc,
			ChaptersCount: doc.ChaptersCount,
			UpdatedAt:     doc.UpdatedAt,
			CreatedAt:     doc.UpdatedAt,
			IsSynced:      true,
		}
	} else {
		// Remote-wins on these three fields; presence in the remote listing
		// is ground truth for the synced flag. The local cover path is
		// preserved.
		local.Title = doc.Title
		local.Description = doc.Desc
		local.UpdatedAt = doc.UpdatedAt
		local.IsSynced = true
	}

	if err := s.books.Upsert(local); err != nil {
		return logBookErr(doc.ID, "merge book", err)
	}

	remoteChapters, err := s.mirror.ListChapters(ctx, uid, doc.ID)
	if err != nil {
		return logBookErr(doc.ID, "list remote chapters", err)
	}
	for _, chDoc := range remoteChapters {
		chapter, err := chDoc.ToChapter()
		if err != nil {
			return logBookErr(doc.ID, "decode remote chapter", err)
		}
		// Chapter text never crosses the wire, like cover images. Keep the
		// local copy through the remote-wins replace.
		existing, err := s.chapters.Get(chapter.BookID, chapter.Position)
		if err != nil {
			return logBookErr(doc.ID, "load local chapter", err)
		}
		if existing != nil {
			chapter.Content = existing.Content
		}
		if err := s.chapters.Upsert(&chapter); err != nil {
			return logBookErr(doc.ID, "store remote chapter", err)
		}
	}

	if !local.IsSynced {
		return nil
	}

	localChapters, err := s.chapters.ForBook(doc.ID)
	if err != nil {
		return logBookErr(doc.ID, "load local chapters", err)
	}
	chDocs := make([]mirror.ChapterDocument, 0, len(localChapters))
	for _, ch := range localChapters {
		chDocs = append(chDocs, mirror.NewChapterDocument(ch))
	}
	if err := s.mirror.BatchUpsertChapters(ctx, uid, doc.ID, chDocs); err != nil {
		return logBookErr(doc.ID, "push local chapters", err)
	}

	return nil
}

// PushBook uploads one book's fields and its chapters to the mirror. The
// local synced flag flips to true only after the remote writes are
// confirmed; on failure it stays where it was and the error is reported as a
// retryable condition.
func (s *Syncer) PushBook(ctx context.Context, uid, bookID string) error {
	if uid == "" {
		return mirror.ErrNotSignedIn
	}

	book, err := s.books.GetByID(bookID)
	if err != nil {
		return err
	}
	if book == nil {
		return fmt.Errorf("book %s not found", bookID)
	}

	if err := s.mirror.UpsertBook(ctx, uid, mirror.NewBookDocument(*book)); err != nil {
		return fmt.Errorf("push book %s: %w", bookID, err)
	}

	chapters, err := s.chapters.ForBook(bookID)
	if err != nil {
		return err
	}
	docs := make([]mirror.ChapterDocument, 0, len(chapters))
	for _, ch := range chapters {
		docs = append(docs, mirror.NewChapterDocument(ch))
	}
	if err := s.mirror.BatchUpsertChapters(ctx, uid, bookID, docs); err != nil {
		return fmt.Errorf("push chapters of %s: %w", bookID, err)
	}

	return s.books.SetSynced(bookID, true)
}

// RemoveRemote deletes the book's remote copy and marks it unsynced locally.
// Local rows are untouched: revoking cloud membership is independent of
// local deletion.
func (s *Syncer) RemoveRemote(ctx context.Context, uid, bookID string) error {
	if uid == "" {
		return mirror.ErrNotSignedIn
	}
	if err := s.mirror.DeleteBook(ctx, uid, bookID); err != nil {
		return fmt.Errorf("delete remote book %s: %w", bookID, err)
	}
	return s.books.SetSynced(bookID, false)
}

// MirrorChapter uploads one chapter if its owning book is marked synced and
// a user is signed in; otherwise it is a no-op.
func (s *Syncer) MirrorChapter(ctx context.Context, uid string, chapter entities.Chapter) error {
	if uid == "" {
		return nil
	}
	book, err := s.books.GetByID(chapter.BookID)
	if err != nil {
		return err
	}
	if book == nil || !book.IsSynced {
		return nil
	}
	return s.mirror.UpsertChapter(ctx, uid, chapter.BookID, mirror.NewChapterDocument(chapter))
}

func logBookErr(bookID, op string, err error) error {
	log.Printf("Mirror sync: book %s: %s: %v", bookID, op, err)
	return fmt.Errorf("%s: %w", op, err)
}

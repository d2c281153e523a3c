package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/inkwell/internal/entities"
	"github.com/avelichko/inkwell/internal/mirror"
)

type fakeBookStore struct {
	mu    sync.Mutex
	books map[string]entities.Book
	errOn string
}

func newFakeBookStore() *fakeBookStore {
	return &fakeBookStore{books: map[string]entities.Book{}}
}

func (f *fakeBookStore) GetByID(id string) (*entities.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errOn == id {
		return nil, errors.New("store failure")
	}
	b, ok := f.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBookStore) Upsert(book *entities.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books[book.ID] = *book
	return nil
}

func (f *fakeBookStore) SetSynced(id string, synced bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return errors.New("book not found")
	}
	b.IsSynced = synced
	f.books[id] = b
	return nil
}

func (f *fakeBookStore) get(id string) entities.Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.books[id]
}

type chapterKey struct {
	bookID   string
	position int
}

type fakeChapterStore struct {
	mu       sync.Mutex
	chapters map[chapterKey]entities.Chapter
}

func newFakeChapterStore() *fakeChapterStore {
	return &fakeChapterStore{chapters: map[chapterKey]entities.Chapter{}}
}

func (f *fakeChapterStore) ForBook(bookID string) ([]entities.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.Chapter
	for k, c := range f.chapters {
		if k.bookID == bookID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChapterStore) Get(bookID string, position int) (*entities.Chapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chapters[chapterKey{bookID, position}]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeChapterStore) Upsert(chapter *entities.Chapter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chapters[chapterKey{chapter.BookID, chapter.Position}] = *chapter
	return nil
}

// fakeMirror is an in-memory document tree.
type fakeMirror struct {
	mu           sync.Mutex
	books        map[string]mirror.BookDocument
	chapters     map[string][]mirror.ChapterDocument
	failChapters map[string]error
	batches      []string
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{
		books:        map[string]mirror.BookDocument{},
		chapters:     map[string][]mirror.ChapterDocument{},
		failChapters: map[string]error{},
	}
}

func (f *fakeMirror) ListBooks(ctx context.Context, uid string) ([]mirror.BookDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []mirror.BookDocument
	for _, d := range f.books {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeMirror) UpsertBook(ctx context.Context, uid string, doc mirror.BookDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books[doc.ID] = doc
	return nil
}

func (f *fakeMirror) DeleteBook(ctx context.Context, uid, bookID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.books, bookID)
	delete(f.chapters, bookID)
	return nil
}

func (f *fakeMirror) UpsertChapter(ctx context.Context, uid, bookID string, doc mirror.ChapterDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chapters[bookID] = append(f.chapters[bookID], doc)
	return nil
}

func (f *fakeMirror) BatchUpsertChapters(ctx context.Context, uid, bookID string, docs []mirror.ChapterDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, bookID)
	f.chapters[bookID] = append(f.chapters[bookID], docs...)
	return nil
}

func (f *fakeMirror) ListChapters(ctx context.Context, uid, bookID string) ([]mirror.ChapterDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failChapters[bookID]; err != nil {
		return nil, err
	}
	return f.chapters[bookID], nil
}

func newTestSyncer() (*Syncer, *fakeBookStore, *fakeChapterStore, *fakeMirror) {
	books := newFakeBookStore()
	chapters := newFakeChapterStore()
	remote := newFakeMirror()
	return New(books, chapters, remote), books, chapters, remote
}

func TestRunRequiresUID(t *testing.T) {
	s, _, _, _ := newTestSyncer()
	_, err := s.Run(context.Background(), "")
	assert.ErrorIs(t, err, mirror.ErrNotSignedIn)
}

func TestRunMaterializesUnknownRemoteBook(t *testing.T) {
	s, books, chapters, remote := newTestSyncer()
	remote.books["b1"] = mirror.BookDocument{
		ID: "b1", Title: "Remote", Desc: "from cloud", ChaptersCount: 1, UpdatedAt: 5000,
	}
	remote.chapters["b1"] = []mirror.ChapterDocument{
		{BookID: "b1", Position: "0", Title: "Ch", WordCount: 3, UpdatedAt: 4000},
	}

	summary, err := s.Run(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Zero(t, summary.Failed)

	got := books.get("b1")
	assert.Equal(t, "Remote", got.Title)
	assert.Equal(t, int64(5000), got.UpdatedAt)
	assert.Equal(t, int64(5000), got.CreatedAt, "creation time inherits the remote timestamp")
	assert.True(t, got.IsSynced)
	assert.Empty(t, got.CoverPath)

	local, err := chapters.ForBook("b1")
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, 0, local[0].Position)
	assert.Equal(t, 3, local[0].WordsCount)
}

func TestRunMergesRemoteWinsPreservingCover(t *testing.T) {
	s, books, _, remote := newTestSyncer()
	books.books["b1"] = entities.Book{
		ID:        "b1",
		Title:     "Local Title",
		CoverPath: "/covers/b1.jpg",
		UpdatedAt: 9999,
		CreatedAt: 100,
		IsSynced:  false,
	}
	remote.books["b1"] = mirror.BookDocument{
		ID: "b1", Title: "Remote Title", Desc: "remote desc", UpdatedAt: 1,
	}

	_, err := s.Run(context.Background(), "u1")
	require.NoError(t, err)

	got := books.get("b1")
	assert.Equal(t, "Remote Title", got.Title, "remote wins regardless of timestamps")
	assert.Equal(t, "remote desc", got.Description)
	assert.Equal(t, int64(1), got.UpdatedAt)
	assert.Equal(t, "/covers/b1.jpg", got.CoverPath, "cover never travels through the mirror")
	assert.Equal(t, int64(100), got.CreatedAt)
	assert.True(t, got.IsSynced, "remote presence forces the synced flag")
}

func TestRunPushesLocalChaptersForSyncedBook(t *testing.T) {
	s, _, chapters, remote := newTestSyncer()
	remote.books["b1"] = mirror.BookDocument{ID: "b1", Title: "T"}
	require.NoError(t, chapters.Upsert(&entities.Chapter{
		BookID: "b1", Position: 0, Title: "Local only", WordsCount: 2,
	}))

	_, err := s.Run(context.Background(), "u1")
	require.NoError(t, err)

	assert.Contains(t, remote.batches, "b1", "local chapters are pushed as one batch")
	docs := remote.chapters["b1"]
	require.NotEmpty(t, docs)
	assert.Equal(t, "Local only", docs[len(docs)-1].Title)
}

func TestRunPreservesLocalChapterContent(t *testing.T) {
	s, _, chapters, remote := newTestSyncer()
	remote.books["b1"] = mirror.BookDocument{ID: "b1", Title: "T"}
	remote.chapters["b1"] = []mirror.ChapterDocument{
		{BookID: "b1", Position: "0", Title: "Remote title", WordCount: 5},
	}
	require.NoError(t, chapters.Upsert(&entities.Chapter{
		BookID: "b1", Position: 0, Title: "Local title", Content: "the actual text",
	}))

	_, err := s.Run(context.Background(), "u1")
	require.NoError(t, err)

	got, err := chapters.Get("b1", 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Remote title", got.Title, "metadata is remote-wins")
	assert.Equal(t, "the actual text", got.Content, "text never crosses the wire and survives the merge")
}

func TestRunLeavesLocalOnlyBooksAlone(t *testing.T) {
	s, books, chapters, remote := newTestSyncer()
	books.books["draft"] = entities.Book{ID: "draft", Title: "Draft A", IsSynced: false}
	require.NoError(t, chapters.Upsert(&entities.Chapter{BookID: "draft", Position: 0, Title: "One"}))
	require.NoError(t, chapters.Upsert(&entities.Chapter{BookID: "draft", Position: 1, Title: "Two"}))

	summary, err := s.Run(context.Background(), "u1")
	require.NoError(t, err)

	assert.Zero(t, summary.Processed, "nothing remote, nothing to process")
	assert.False(t, books.get("draft").IsSynced, "absence from the remote listing never flips the flag")
	assert.Empty(t, remote.chapters["draft"], "no data transmitted for an unsynced local book")

	local, err := chapters.ForBook("draft")
	require.NoError(t, err)
	assert.Len(t, local, 2)
}

func TestRunCountsFailuresWithoutAborting(t *testing.T) {
	s, books, _, remote := newTestSyncer()
	remote.books["good"] = mirror.BookDocument{ID: "good", Title: "Good"}
	remote.books["bad"] = mirror.BookDocument{ID: "bad", Title: "Bad"}
	remote.failChapters["bad"] = errors.New("boom")

	summary, err := s.Run(context.Background(), "u1")
	require.NoError(t, err, "per-book failures never fail the pass")
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)

	assert.Equal(t, "Good", books.get("good").Title, "healthy book still reconciled")
}

func TestRunStoresLastSummary(t *testing.T) {
	s, _, _, remote := newTestSyncer()
	remote.books["b1"] = mirror.BookDocument{ID: "b1"}

	require.Nil(t, s.LastSummary())

	_, err := s.Run(context.Background(), "u1")
	require.NoError(t, err)

	last := s.LastSummary()
	require.NotNil(t, last)
	assert.Equal(t, 1, last.Processed)
	assert.False(t, last.CompletedAt.IsZero())
}

func TestPushBookUploadsAndMarksSynced(t *testing.T) {
	s, books, chapters, remote := newTestSyncer()
	books.books["b1"] = entities.Book{ID: "b1", Title: "Push me", ChaptersCount: 1}
	require.NoError(t, chapters.Upsert(&entities.Chapter{BookID: "b1", Position: 0, Title: "Ch"}))

	require.NoError(t, s.PushBook(context.Background(), "u1", "b1"))

	assert.Equal(t, "Push me", remote.books["b1"].Title)
	assert.Contains(t, remote.batches, "b1")
	assert.True(t, books.get("b1").IsSynced)
}

func TestPushBookUnknownBook(t *testing.T) {
	s, _, _, _ := newTestSyncer()
	err := s.PushBook(context.Background(), "u1", "missing")
	assert.Error(t, err)
}

func TestRemoveRemoteKeepsLocalData(t *testing.T) {
	s, books, _, remote := newTestSyncer()
	books.books["b1"] = entities.Book{ID: "b1", Title: "Keep me", IsSynced: true}
	remote.books["b1"] = mirror.BookDocument{ID: "b1", Title: "Keep me"}

	require.NoError(t, s.RemoveRemote(context.Background(), "u1", "b1"))

	_, remoteHas := remote.books["b1"]
	assert.False(t, remoteHas)

	got := books.get("b1")
	assert.Equal(t, "Keep me", got.Title, "local row survives")
	assert.False(t, got.IsSynced)
}

func TestMirrorChapterSkipsWhenSignedOut(t *testing.T) {
	s, books, _, remote := newTestSyncer()
	books.books["b1"] = entities.Book{ID: "b1", IsSynced: true}

	err := s.MirrorChapter(context.Background(), "", entities.Chapter{BookID: "b1", Position: 0})
	require.NoError(t, err)
	assert.Empty(t, remote.chapters["b1"])
}

func TestMirrorChapterSkipsUnsyncedBook(t *testing.T) {
	s, books, _, remote := newTestSyncer()
	books.books["b1"] = entities.Book{ID: "b1", IsSynced: false}

	err := s.MirrorChapter(context.Background(), "u1", entities.Chapter{BookID: "b1", Position: 0})
	require.NoError(t, err)
	assert.Empty(t, remote.chapters["b1"])
}

func TestMirrorChapterUploadsForSyncedBook(t *testing.T) {
	s, books, _, remote := newTestSyncer()
	books.books["b1"] = entities.Book{ID: "b1", IsSynced: true}

	err := s.MirrorChapter(context.Background(), "u1", entities.Chapter{
		BookID: "b1", Position: 2, Title: "Fresh", WordsCount: 5,
	})
	require.NoError(t, err)

	require.Len(t, remote.chapters["b1"], 1)
	assert.Equal(t, "2", remote.chapters["b1"][0].Position)
	assert.Equal(t, "Fresh", remote.chapters["b1"][0].Title)
}

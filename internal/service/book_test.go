package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
	"github.com/kanineapp/kanine-server/internal/metrics"
)

func TestBookService_CreateBook(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "user-alice")
	bob := seedUser(t, s, "user-bob")
	ctx := context.Background()

	books := NewBookService(s, nil, nil, testLogger)
	categories := NewCategoryService(s, testLogger)

	t.Run("trims title", func(t *testing.T) {
		book, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "  Algebra  ", Pages: 120})
		require.NoError(t, err)
		assert.NotZero(t, book.ID)
		assert.Equal(t, "Algebra", book.Title)
		assert.Equal(t, 120, book.PageCount)
		assert.Equal(t, alice.ID, book.OwnerID)
		assert.Empty(t, book.StarredPages)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "   "})
		assertCode(t, err, domainerrors.CodeValidation)

		_, err = books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: strings.Repeat("x", 501)})
		assertCode(t, err, domainerrors.CodeValidation)

		_, err = books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Neg", Pages: -1})
		assertCode(t, err, domainerrors.CodeValidation)
	})

	t.Run("category must be owned", func(t *testing.T) {
		bobs, err := categories.CreateCategory(ctx, bob.ID, CategoryRequest{Name: "Bob's"})
		require.NoError(t, err)

		_, err = books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Sneaky", CategoryID: &bobs.ID})
		assertCode(t, err, domainerrors.CodeNotFound)

		mine, err := categories.CreateCategory(ctx, alice.ID, CategoryRequest{Name: "Math"})
		require.NoError(t, err)
		book, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Calculus", CategoryID: &mine.ID})
		require.NoError(t, err)
		require.NotNil(t, book.CategoryID)
		assert.Equal(t, mine.ID, *book.CategoryID)
	})
}

func TestBookService_GetBook_CrossUserIsNotFound(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "user-alice")
	bob := seedUser(t, s, "user-bob")
	ctx := context.Background()

	books := NewBookService(s, nil, nil, testLogger)
	book, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Private"})
	require.NoError(t, err)

	_, err = books.GetBook(ctx, bob.ID, book.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	_, err = books.GetBook(ctx, alice.ID, book.ID+100)
	assertCode(t, err, domainerrors.CodeNotFound)

	detail, err := books.GetBook(ctx, alice.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private", detail.Title)
	assert.Empty(t, detail.PageFiles)
	assert.Zero(t, detail.NoteCount)
}

func TestBookService_ListBooks(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "user-alice")
	bob := seedUser(t, s, "user-bob")
	ctx := context.Background()

	books := NewBookService(s, nil, nil, testLogger)
	categories := NewCategoryService(s, testLogger)

	math, err := categories.CreateCategory(ctx, alice.ID, CategoryRequest{Name: "Math"})
	require.NoError(t, err)

	_, err = books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Algebra", CategoryID: &math.ID})
	require.NoError(t, err)
	_, err = books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Poems"})
	require.NoError(t, err)
	_, err = books.CreateBook(ctx, bob.ID, CreateBookRequest{Title: "Bob's"})
	require.NoError(t, err)

	all, err := books.ListBooks(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := books.ListBooks(ctx, alice.ID, &math.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Algebra", filtered[0].Title)

	_, err = books.ListBooks(ctx, bob.ID, &math.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestBookService_UpdateBook(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "user-alice")
	bob := seedUser(t, s, "user-bob")
	ctx := context.Background()

	books := NewBookService(s, nil, nil, testLogger)
	categories := NewCategoryService(s, testLogger)

	math, err := categories.CreateCategory(ctx, alice.ID, CategoryRequest{Name: "Math"})
	require.NoError(t, err)
	book, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Algebra", Pages: 10})
	require.NoError(t, err)

	title := "Linear Algebra"
	updated, err := books.UpdateBook(ctx, alice.ID, book.ID, UpdateBookRequest{Title: &title, CategoryID: &math.ID})
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", updated.Title)
	assert.Equal(t, 10, updated.PageCount, "unset fields are kept")
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, math.ID, *updated.CategoryID)

	cleared, err := books.UpdateBook(ctx, alice.ID, book.ID, UpdateBookRequest{ClearCategory: true, CategoryID: &math.ID})
	require.NoError(t, err)
	assert.Nil(t, cleared.CategoryID)

	blank := " "
	_, err = books.UpdateBook(ctx, alice.ID, book.ID, UpdateBookRequest{Title: &blank})
	assertCode(t, err, domainerrors.CodeValidation)

	_, err = books.UpdateBook(ctx, bob.ID, book.ID, UpdateBookRequest{Title: &title})
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestBookService_DeleteBook(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "user-alice")
	bob := seedUser(t, s, "user-bob")
	ctx := context.Background()

	indexer := newRecordingIndexer()
	m := metrics.New()
	books := NewBookService(s, indexer, m, testLogger)
	notes := NewNoteService(s, indexer, testLogger)
	stars := NewStarService(s, m, testLogger)
	files := NewPageFileService(s, m, 0, testLogger)

	book, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Algebra"})
	require.NoError(t, err)

	n1, err := notes.CreateNote(ctx, alice.ID, CreateNoteRequest{BookID: book.ID, PageNumber: 1, Content: "one", Tags: []string{"a"}})
	require.NoError(t, err)
	n2, err := notes.CreateNote(ctx, alice.ID, CreateNoteRequest{BookID: book.ID, PageNumber: 2, Content: "two"})
	require.NoError(t, err)
	_, err = stars.ToggleStar(ctx, alice.ID, book.ID, StarRequest{PageNumber: 3})
	require.NoError(t, err)
	_, err = files.Upload(ctx, alice.ID, UploadRequest{BookID: book.ID, PageNumber: 1, FileName: "p1.pdf", Content: []byte("%PDF-1.4 test")})
	require.NoError(t, err)

	_, err = books.DeleteBook(ctx, bob.ID, book.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	deletion, err := books.DeleteBook(ctx, alice.ID, book.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{n1.ID, n2.ID}, deletion.NoteIDs)
	assert.Equal(t, 1, deletion.StarredPages)
	assert.Equal(t, 1, deletion.PageFiles)

	assert.ElementsMatch(t, []int64{n1.ID, n2.ID}, indexer.deleted)
	assert.Empty(t, indexer.indexed)

	_, err = books.GetBook(ctx, alice.ID, book.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
	_, err = notes.GetNote(ctx, alice.ID, n1.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
	_, err = files.Get(ctx, alice.ID, book.ID, 1)
	assertCode(t, err, domainerrors.CodeNotFound)

	_, err = books.DeleteBook(ctx, alice.ID, book.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	expected := `
# HELP kanine_books_deleted_total Books deleted together with their notes, stars and files.
# TYPE kanine_books_deleted_total counter
kanine_books_deleted_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "kanine_books_deleted_total"))
}

func TestBookService_DeleteBook_IndexFailureIsNotFatal(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "user-alice")
	ctx := context.Background()

	indexer := newRecordingIndexer()
	books := NewBookService(s, indexer, nil, testLogger)
	notes := NewNoteService(s, indexer, testLogger)

	book, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Algebra"})
	require.NoError(t, err)
	_, err = notes.CreateNote(ctx, alice.ID, CreateNoteRequest{BookID: book.ID, PageNumber: 1, Content: "x"})
	require.NoError(t, err)

	indexer.err = assert.AnError
	_, err = books.DeleteBook(ctx, alice.ID, book.ID)
	require.NoError(t, err)
}

func TestStarService_ToggleStar(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "user-alice")
	bob := seedUser(t, s, "user-bob")
	ctx := context.Background()

	books := NewBookService(s, nil, nil, testLogger)
	stars := NewStarService(s, nil, testLogger)

	book, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Algebra"})
	require.NoError(t, err)

	first, err := stars.ToggleStar(ctx, alice.ID, book.ID, StarRequest{PageNumber: 5})
	require.NoError(t, err)
	assert.True(t, first.Starred)
	assert.True(t, first.Book.IsStarred(5))

	second, err := stars.ToggleStar(ctx, alice.ID, book.ID, StarRequest{PageNumber: 5})
	require.NoError(t, err)
	assert.False(t, second.Starred)
	assert.Empty(t, second.Book.StarredPages)

	_, err = stars.ToggleStar(ctx, alice.ID, book.ID, StarRequest{PageNumber: 0})
	assertCode(t, err, domainerrors.CodeValidation)

	_, err = stars.ToggleStar(ctx, bob.ID, book.ID, StarRequest{PageNumber: 5})
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestStarService_ConcurrentTogglesNeverDuplicate(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "user-alice")
	ctx := context.Background()

	books := NewBookService(s, nil, nil, testLogger)
	stars := NewStarService(s, nil, testLogger)

	book, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Algebra"})
	require.NoError(t, err)

	const toggles = 6
	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for range toggles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := stars.ToggleStar(ctx, alice.ID, book.ID, StarRequest{PageNumber: 2})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	pages, err := s.ListStarredPages(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, pages, "an even number of toggles leaves the page unstarred")
}

func TestCategoryService(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "user-alice")
	bob := seedUser(t, s, "user-bob")
	ctx := context.Background()

	books := NewBookService(s, nil, nil, testLogger)
	categories := NewCategoryService(s, testLogger)

	math, err := categories.CreateCategory(ctx, alice.ID, CategoryRequest{Name: " Math "})
	require.NoError(t, err)
	assert.Equal(t, "Math", math.Name)

	_, err = categories.CreateCategory(ctx, alice.ID, CategoryRequest{Name: "Math"})
	assertCode(t, err, domainerrors.CodeAlreadyExists)

	_, err = categories.CreateCategory(ctx, bob.ID, CategoryRequest{Name: "Math"})
	require.NoError(t, err, "names are unique per user only")

	_, err = categories.CreateCategory(ctx, alice.ID, CategoryRequest{Name: strings.Repeat("c", 101)})
	assertCode(t, err, domainerrors.CodeValidation)

	book, err := books.CreateBook(ctx, alice.ID, CreateBookRequest{Title: "Algebra", CategoryID: &math.ID})
	require.NoError(t, err)

	got, err := categories.GetCategory(ctx, alice.ID, math.ID)
	require.NoError(t, err)
	require.Len(t, got.Books, 1)
	assert.Equal(t, book.ID, got.Books[0].ID)

	_, err = categories.GetCategory(ctx, bob.ID, math.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	physics, err := categories.CreateCategory(ctx, alice.ID, CategoryRequest{Name: "Physics"})
	require.NoError(t, err)

	_, err = categories.UpdateCategory(ctx, alice.ID, physics.ID, CategoryRequest{Name: "Math"})
	assertCode(t, err, domainerrors.CodeAlreadyExists)

	renamed, err := categories.UpdateCategory(ctx, alice.ID, math.ID, CategoryRequest{Name: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", renamed.Name)
	assert.Len(t, renamed.Books, 1)

	_, err = categories.UpdateCategory(ctx, bob.ID, math.ID, CategoryRequest{Name: "Mine"})
	assertCode(t, err, domainerrors.CodeNotFound)

	list, err := categories.ListCategories(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	err = categories.DeleteCategory(ctx, bob.ID, math.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	require.NoError(t, categories.DeleteCategory(ctx, alice.ID, math.ID))

	detail, err := books.GetBook(ctx, alice.ID, book.ID)
	require.NoError(t, err, "books survive their category")
	assert.Nil(t, detail.CategoryID)
	assert.Nil(t, detail.Category)

	err = categories.DeleteCategory(ctx, alice.ID, math.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
}

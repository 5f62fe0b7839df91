package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanineapp/kanine-server/internal/domain"
)

func setupTestIndex(t *testing.T) (*SearchIndex, string) {
	t.Helper()

	dir := t.TempDir()
	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index, dir
}

func note(id int64, owner string, book int64, page int, content string, tags ...string) *domain.Note {
	n := &domain.Note{
		ID:         id,
		OwnerID:    owner,
		BookID:     book,
		PageNumber: page,
		Content:    content,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now().Add(time.Duration(id) * time.Second),
	}
	for _, tag := range tags {
		n.Tags = append(n.Tags, domain.Tag{Name: tag})
	}
	return n
}

func TestNewSearchIndex(t *testing.T) {
	index, dir := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	version, err := os.ReadFile(filepath.Join(dir, "notes.version"))
	require.NoError(t, err)
	assert.Equal(t, mappingVersion, string(version))
}

func TestNewSearchIndex_RebuildsOnVersionChange(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexNote(ctx, note(1, "user-a", 1, 1, "limits")))
	require.NoError(t, index.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.version"), []byte("0"), 0o644))

	reopened, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count, "outdated index should be recreated empty")
}

func TestSearch_ScopedToOwner(t *testing.T) {
	index, _ := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexNotes(ctx, []*domain.Note{
		note(1, "user-alice", 10, 1, "Derivatives of polynomials"),
		note(2, "user-bob", 20, 1, "Derivatives everywhere"),
	}))

	res, err := index.Search(ctx, SearchParams{OwnerID: "user-alice", Query: "derivative"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int64(1), res.Hits[0].NoteID)
	assert.Equal(t, int64(10), res.Hits[0].BookID)
	assert.Equal(t, 1, res.Hits[0].PageNumber)
}

func TestSearch_RequiresOwner(t *testing.T) {
	index, _ := setupTestIndex(t)

	_, err := index.Search(context.Background(), SearchParams{Query: "x"})
	assert.Error(t, err)
}

func TestSearch_MatchesTagsExactly(t *testing.T) {
	index, _ := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexNotes(ctx, []*domain.Note{
		note(1, "user-a", 1, 1, "group axioms", "exam"),
		note(2, "user-a", 1, 2, "ring axioms", "Exam"),
	}))

	res, err := index.Search(ctx, SearchParams{OwnerID: "user-a", Query: "exam"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int64(1), res.Hits[0].NoteID)
	assert.Equal(t, []string{"exam"}, res.Hits[0].Tags)
}

func TestSearch_Filters(t *testing.T) {
	index, _ := setupTestIndex(t)
	ctx := context.Background()

	fav := note(3, "user-a", 2, 4, "vector spaces", "review")
	fav.IsFavorite = true

	require.NoError(t, index.IndexNotes(ctx, []*domain.Note{
		note(1, "user-a", 1, 1, "vector basics", "review", "chapter 1"),
		note(2, "user-a", 2, 3, "vector norms"),
		fav,
	}))

	tests := []struct {
		name   string
		params SearchParams
		want   []int64
	}{
		{"book filter", SearchParams{Query: "vector", BookID: 2}, []int64{2, 3}},
		{"tag filter", SearchParams{Query: "vector", Tag: "review"}, []int64{1, 3}},
		{"tag with space", SearchParams{Tag: "chapter 1"}, []int64{1}},
		{"favorites only", SearchParams{FavoritesOnly: true}, []int64{3}},
		{"empty query lists newest first", SearchParams{}, []int64{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.OwnerID = "user-a"
			res, err := index.Search(ctx, tt.params)
			require.NoError(t, err)

			got := make([]int64, 0, len(res.Hits))
			for _, h := range res.Hits {
				got = append(got, h.NoteID)
			}
			if tt.params.Query == "" {
				assert.Equal(t, tt.want, got)
			} else {
				assert.ElementsMatch(t, tt.want, got)
			}
		})
	}
}

func TestSearch_LimitClamped(t *testing.T) {
	index, _ := setupTestIndex(t)
	ctx := context.Background()

	notes := make([]*domain.Note, 0, 150)
	for i := range 150 {
		notes = append(notes, note(int64(i+1), "user-a", 1, 1, "lemma"))
	}
	require.NoError(t, index.IndexNotes(ctx, notes))

	res, err := index.Search(ctx, SearchParams{OwnerID: "user-a", Query: "lemma", Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, res.Hits, MaxLimit)
	assert.Equal(t, uint64(150), res.Total)
}

func TestIndexNote_Replaces(t *testing.T) {
	index, _ := setupTestIndex(t)
	ctx := context.Background()

	n := note(1, "user-a", 1, 1, "first draft")
	require.NoError(t, index.IndexNote(ctx, n))
	n.Content = "final version"
	require.NoError(t, index.IndexNote(ctx, n))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	res, err := index.Search(ctx, SearchParams{OwnerID: "user-a", Query: "draft"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestDeleteNotes(t *testing.T) {
	index, _ := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexNotes(ctx, []*domain.Note{
		note(1, "user-a", 1, 1, "one"),
		note(2, "user-a", 1, 2, "two"),
	}))

	require.NoError(t, index.DeleteNotes(ctx, []int64{1, 99}))
	require.NoError(t, index.DeleteNotes(ctx, nil))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestRebuild(t *testing.T) {
	index, _ := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.IndexNote(ctx, note(1, "user-a", 1, 1, "stale")))

	require.NoError(t, index.Rebuild(ctx, []*domain.Note{
		note(2, "user-a", 1, 1, "fresh"),
		note(3, "user-a", 1, 2, "fresher"),
	}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Search limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchParams configures a note search. OwnerID is mandatory: results never
// cross users.
type SearchParams struct {
	OwnerID string
	Query   string

	// Filters
	BookID        int64  // 0 means any book
	Tag           string // exact tag name
	FavoritesOnly bool

	// Pagination
	Limit  int
	Offset int
}

// SearchResult holds the hits of one search.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"tookMs"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit is a single matching note.
type SearchHit struct {
	NoteID     int64    `json:"noteId"`
	BookID     int64    `json:"bookId"`
	PageNumber int      `json:"pageNumber"`
	Score      float64  `json:"score"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	IsFavorite bool     `json:"isFavorite"`
	Highlight  string   `json:"highlight,omitempty"`
}

// Search runs a query against the caller's notes.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.OwnerID == "" {
		return nil, fmt.Errorf("search: owner is required")
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	params.Limit = min(params.Limit, MaxLimit)
	params.Offset = max(params.Offset, 0)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	if params.Query == "" {
		req.SortBy([]string{"-updated_at", "-_id"})
	} else {
		req.SortBy([]string{"-_score", "-updated_at"})
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("content")
	}
	req.Fields = []string{"book_id", "page_number", "content", "tags", "is_favorite"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		noteID, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping search hit with invalid id", "id", hit.ID)
			continue
		}

		h := SearchHit{NoteID: noteID, Score: hit.Score, Tags: stringSlice(hit.Fields["tags"])}
		if v, ok := hit.Fields["book_id"].(string); ok {
			h.BookID, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := hit.Fields["page_number"].(float64); ok {
			h.PageNumber = int(v)
		}
		if v, ok := hit.Fields["content"].(string); ok {
			h.Content = v
		}
		if v, ok := hit.Fields["is_favorite"].(bool); ok {
			h.IsFavorite = v
		}
		if frags := hit.Fragments["content"]; len(frags) > 0 {
			h.Highlight = frags[0]
		}

		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery combines the text query with the owner and filter terms.
func buildSearchQuery(params SearchParams) query.Query {
	owner := bleve.NewTermQuery(params.OwnerID)
	owner.SetField("owner_id")
	queries := []query.Query{owner}

	if q := strings.TrimSpace(params.Query); q != "" {
		contentMatch := bleve.NewMatchQuery(q)
		contentMatch.SetField("content")

		tagMatch := bleve.NewTermQuery(q)
		tagMatch.SetField("tags")
		tagMatch.SetBoost(2.0)

		textQueries := []query.Query{contentMatch, tagMatch}

		// Prefix match on single words for search-as-you-type.
		if len(q) >= 2 && !strings.ContainsAny(q, " \t") {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("content")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.BookID > 0 {
		book := bleve.NewTermQuery(strconv.FormatInt(params.BookID, 10))
		book.SetField("book_id")
		queries = append(queries, book)
	}

	if params.Tag != "" {
		tag := bleve.NewTermQuery(params.Tag)
		tag.SetField("tags")
		queries = append(queries, tag)
	}

	if params.FavoritesOnly {
		fav := bleve.NewBoolFieldQuery(true)
		fav.SetField("is_favorite")
		queries = append(queries, fav)
	}

	return bleve.NewConjunctionQuery(queries...)
}

// stringSlice normalizes a stored multi-valued field, which Bleve returns as
// a string for one value and []any for several.
func stringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

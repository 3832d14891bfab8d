package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/inkwellhq/ghost-mirror/internal/post"
	"github.com/inkwellhq/ghost-mirror/internal/store"
)

// Index wraps a Bleve full-text index over the local post replica.
type Index struct {
	index bleve.Index
}

// IndexedPost is the shape stored in the search index.
type IndexedPost struct {
	ID      string
	Title   string
	Content string
	Status  string
	URL     string
	Authors []string
	Tags    []string
}

// Result is one search hit.
type Result struct {
	ID        string
	Title     string
	URL       string
	Score     float64
	Fragments map[string][]string // Highlighted snippets
}

// Open opens or creates a Bleve index.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &Index{index: idx}, nil
}

// buildIndexMapping creates the index mapping. Titles use the English
// analyzer for stemming.
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("ID", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("Content", textFieldMapping)
	docMapping.AddFieldMappingsAt("Authors", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Tags", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("URL", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Close closes the index.
func (i *Index) Close() error {
	return i.index.Close()
}

func toIndexed(p post.Post) *IndexedPost {
	doc := &IndexedPost{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		Status:  p.Status,
		URL:     p.URL,
	}
	for _, a := range p.Authors {
		doc.Authors = append(doc.Authors, a.Name)
	}
	for _, t := range p.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	return doc
}

// IndexPost adds or updates one post in the index.
func (i *Index) IndexPost(p post.Post) error {
	return i.index.Index(p.ID, toIndexed(p))
}

// Delete removes a post from the index.
func (i *Index) Delete(id string) error {
	return i.index.Delete(id)
}

// Search runs a query-string query (supports quotes, boolean operators,
// fuzzy ~) with highlighting.
func (i *Index) Search(queryStr string, limit int) ([]*Result, error) {
	query := bleve.NewQueryStringQuery(queryStr)

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Fields = []string{"Title", "URL"}

	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var out []*Result
	for _, hit := range results.Hits {
		r := &Result{
			ID:        hit.ID,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		}
		if title, ok := hit.Fields["Title"].(string); ok {
			r.Title = title
		}
		if url, ok := hit.Fields["URL"].(string); ok {
			r.URL = url
		}
		out = append(out, r)
	}

	return out, nil
}

// RebuildFromStore re-indexes every post aggregate in the replica, paging
// through the store so the full set is never held in memory.
func (i *Index) RebuildFromStore(ctx context.Context, s *store.Store) error {
	const window = 100

	for offset := 0; ; offset += window {
		aggs, err := s.GetAggregatePage(ctx, offset, window)
		if err != nil {
			return fmt.Errorf("page posts: %w", err)
		}
		if len(aggs) == 0 {
			return nil
		}

		batch := i.index.NewBatch()
		for _, agg := range aggs {
			p := post.FromAggregate(agg)
			if err := batch.Index(p.ID, toIndexed(p)); err != nil {
				return fmt.Errorf("batch index %s: %w", p.ID, err)
			}
		}
		if err := i.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
	}
}

// Count returns the number of posts in the index.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

package repo

import (
	"context"

	"github.com/inkwellhq/ghost-mirror/internal/post"
	"github.com/inkwellhq/ghost-mirror/internal/store"
)

// DefaultPageSize is used when a pager is created with a non-positive size.
const DefaultPageSize = 20

// Page is one bounded window of the post collection plus the keys needed to
// request the neighboring windows.
type Page struct {
	Posts  []post.Post
	Offset int
	Limit  int

	// PrevOffset and NextOffset are nil at the respective ends of the
	// collection.
	PrevOffset *int
	NextOffset *int
}

// Pager produces bounded windows of the aggregate post collection, keyed by
// stable insertion order. Each Load is one transactional read; it never
// materializes the full set.
type Pager struct {
	store    *store.Store
	pageSize int
}

// NewPager creates a pager over the replica.
func NewPager(s *store.Store, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{store: s, pageSize: pageSize}
}

// Load reads the window starting at offset. One row beyond the window is
// fetched to decide whether a next window exists.
func (p *Pager) Load(ctx context.Context, offset int) (*Page, error) {
	if offset < 0 {
		offset = 0
	}

	aggs, err := p.store.GetAggregatePage(ctx, offset, p.pageSize+1)
	if err != nil {
		return nil, err
	}

	page := &Page{Offset: offset, Limit: p.pageSize}
	hasMore := len(aggs) > p.pageSize
	if hasMore {
		aggs = aggs[:p.pageSize]
	}
	page.Posts = make([]post.Post, 0, len(aggs))
	for _, agg := range aggs {
		page.Posts = append(page.Posts, post.FromAggregate(agg))
	}

	if offset > 0 {
		prev := offset - p.pageSize
		if prev < 0 {
			prev = 0
		}
		page.PrevOffset = &prev
	}
	if hasMore {
		next := offset + len(page.Posts)
		page.NextOffset = &next
	}
	return page, nil
}

// Invalidations returns a signal channel that fires after any write to the
// post, author, tag or cross-reference tables. An active consumer should
// reload from its nearest key rather than keep serving stale joined data.
func (p *Pager) Invalidations(ctx context.Context) <-chan struct{} {
	return p.store.Invalidations(ctx)
}

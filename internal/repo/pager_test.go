package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/inkwellhq/ghost-mirror/internal/post"
)

func TestPagerWindowsAreDisjointAndKeyed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		p := post.Post{ID: fmt.Sprintf("p%d", i), Slug: fmt.Sprintf("p%d", i), Title: fmt.Sprintf("Post %d", i), Status: "published"}
		if err := s.ReplaceAggregate(ctx, post.ToAggregate(p)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	pager := NewPager(s, 2)

	seen := map[string]bool{}
	offset := 0
	windows := 0
	for {
		page, err := pager.Load(ctx, offset)
		if err != nil {
			t.Fatalf("load offset %d: %v", offset, err)
		}
		windows++
		for _, p := range page.Posts {
			if seen[p.ID] {
				t.Fatalf("duplicate id across windows: %s", p.ID)
			}
			seen[p.ID] = true
		}
		if page.NextOffset == nil {
			if page.PrevOffset == nil || *page.PrevOffset != 2 {
				t.Fatalf("last window PrevOffset = %v, want 2", page.PrevOffset)
			}
			break
		}
		offset = *page.NextOffset
	}

	if len(seen) != 5 {
		t.Fatalf("windows covered %d posts, want 5", len(seen))
	}
	if windows != 3 {
		t.Fatalf("windows = %d, want 3", windows)
	}
}

func TestPagerFirstWindowHasNoPrev(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := post.Post{ID: "p1", Slug: "p1", Title: "Post", Status: "draft"}
	if err := s.ReplaceAggregate(ctx, post.ToAggregate(p)); err != nil {
		t.Fatal(err)
	}

	page, err := NewPager(s, 2).Load(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if page.PrevOffset != nil || page.NextOffset != nil {
		t.Fatalf("page keys = %v/%v, want nil/nil", page.PrevOffset, page.NextOffset)
	}
	if len(page.Posts) != 1 {
		t.Fatalf("posts = %d", len(page.Posts))
	}
}

func TestPagerEmptyStore(t *testing.T) {
	s := newTestStore(t)

	page, err := NewPager(s, 2).Load(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Posts) != 0 || page.NextOffset != nil {
		t.Fatalf("page = %+v", page)
	}
}

func TestPagerInvalidationOnWrite(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pager := NewPager(s, 2)
	invalidations := pager.Invalidations(ctx)

	p := post.Post{ID: "p1", Slug: "p1", Title: "Post", Status: "draft"}
	if err := s.ReplaceAggregate(ctx, post.ToAggregate(p)); err != nil {
		t.Fatal(err)
	}

	select {
	case <-invalidations:
	case <-time.After(2 * time.Second):
		t.Fatal("no invalidation signal after a write")
	}
}

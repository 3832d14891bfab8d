package sync

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/inkwellhq/ghost-mirror/internal/ghost"
	"github.com/inkwellhq/ghost-mirror/internal/post"
	"github.com/inkwellhq/ghost-mirror/internal/store"
)

// Lister pages through the remote post collection.
type Lister interface {
	ListPosts(ctx context.Context, page, limit int) ([]ghost.PostDTO, *ghost.Pagination, error)
}

// Indexer receives ingested posts for secondary indexing. May be nil.
type Indexer interface {
	IndexPost(p post.Post) error
}

// Worker handles bulk ingestion of the remote post collection into the
// local replica.
type Worker struct {
	client   Lister
	store    *store.Store
	index    Indexer
	pageSize int
	maxPosts int // Limit for testing (0 = unlimited)
}

// NewWorker creates a new sync worker. index may be nil.
func NewWorker(client Lister, s *store.Store, index Indexer, maxPosts int) *Worker {
	return &Worker{
		client:   client,
		store:    s,
		index:    index,
		pageSize: 50,
		maxPosts: maxPosts,
	}
}

// Stats holds sync statistics
type Stats struct {
	TotalPosts   int
	NewPosts     int
	UpdatedPosts int
	Errors       int
	Duration     time.Duration
}

// Sync performs a full ingestion: pages through the remote list fetch and
// replaces each post aggregate in the store. Pages stream through a small
// worker pool; the full collection is never held in memory.
func (w *Worker) Sync(ctx context.Context) (*Stats, error) {
	startTime := time.Now()
	stats := &Stats{}

	log.Println("Starting sync...")

	postChan := make(chan ghost.PostDTO, w.pageSize)
	var fetchErr error

	go func() {
		defer close(postChan)
		sent := 0
		for page := 1; ; page++ {
			posts, pagination, err := w.client.ListPosts(ctx, page, w.pageSize)
			if err != nil {
				fetchErr = fmt.Errorf("list page %d: %w", page, err)
				return
			}
			for _, p := range posts {
				if w.maxPosts > 0 && sent >= w.maxPosts {
					return
				}
				select {
				case postChan <- p:
					sent++
				case <-ctx.Done():
					fetchErr = ctx.Err()
					return
				}
			}
			if pagination == nil || pagination.Next == nil || len(posts) == 0 {
				return
			}
		}
	}()

	concurrency := 4
	var wg sync.WaitGroup
	var mu sync.Mutex

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dto := range postChan {
				if err := w.ingestPost(ctx, dto, stats, &mu); err != nil {
					log.Printf("Error syncing post %s (%s): %v\n", dto.ID, dto.Title, err)
					mu.Lock()
					stats.Errors++
					mu.Unlock()
				}
			}
		}()
	}

	wg.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}

	stats.Duration = time.Since(startTime)
	log.Printf("Sync complete: %d new, %d updated, %d errors in %v\n",
		stats.NewPosts, stats.UpdatedPosts, stats.Errors, stats.Duration)

	return stats, nil
}

// ingestPost replaces one post aggregate in the store and the search index.
func (w *Worker) ingestPost(ctx context.Context, dto ghost.PostDTO, stats *Stats, mu *sync.Mutex) error {
	p := post.FromWire(dto)

	existed, err := w.store.HasPost(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("check post: %w", err)
	}

	if err := w.store.ReplaceAggregate(ctx, post.ToAggregate(p)); err != nil {
		return fmt.Errorf("replace aggregate: %w", err)
	}

	if w.index != nil {
		if err := w.index.IndexPost(p); err != nil {
			return fmt.Errorf("index post: %w", err)
		}
	}

	mu.Lock()
	stats.TotalPosts++
	if existed {
		stats.UpdatedPosts++
	} else {
		stats.NewPosts++
	}
	mu.Unlock()

	log.Printf("✓ Synced: %s\n", p.Title)
	return nil
}

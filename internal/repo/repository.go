package repo

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/inkwellhq/ghost-mirror/internal/ghost"
	"github.com/inkwellhq/ghost-mirror/internal/post"
	"github.com/inkwellhq/ghost-mirror/internal/store"
)

// RemoteClient is the remote authority the repository reconciles against.
type RemoteClient interface {
	// UpdatePost pushes one edit and returns the server's representation.
	UpdatePost(ctx context.Context, body ghost.UpdatePostBody) (*ghost.PostDTO, error)

	// GetPost re-fetches canonical state for one id. (nil, nil) means the
	// post does not exist.
	GetPost(ctx context.Context, id string) (*ghost.PostDTO, error)
}

// Indexer receives reconciled posts for secondary indexing. May be nil.
type Indexer interface {
	IndexPost(p post.Post) error
}

// Repository orchestrates one logical edit: apply locally, push to the
// remote, re-pull canonical state, merge into the store. It is the only
// component that mutates the store's tables during an edit.
type Repository struct {
	client RemoteClient
	store  *store.Store
	index  Indexer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a repository. index may be nil when no search index is wired.
func New(client RemoteClient, s *store.Store, index Indexer) *Repository {
	return &Repository{
		client: client,
		store:  s,
		index:  index,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockPost serializes save operations per post id. Saves against different
// ids proceed independently.
func (r *Repository) lockPost(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	r.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Save pushes the session's working copy to the remote authority and folds
// the authoritative result back into the store and the session.
//
// On write success a refresh read is issued strictly afterwards; the
// refreshed post is canonical because the server may have normalized slugs,
// assigned ids to new tags or recomputed timestamps. If the refresh fails the
// write response serves as canonical instead and the save still succeeds.
// On write failure nothing is persisted and the working copy is left intact
// so the caller can retry.
func (r *Repository) Save(ctx context.Context, sess *post.EditSession) error {
	working := sess.Post()
	unlock := r.lockPost(working.ID)
	defer unlock()

	written, err := r.client.UpdatePost(ctx, post.ToUpdateBody(working))
	if err != nil {
		return fmt.Errorf("remote write: %w", err)
	}
	if written == nil {
		return fmt.Errorf("remote write: empty response")
	}

	canonical := written
	refreshed, err := r.client.GetPost(ctx, working.ID)
	if err != nil {
		log.Printf("Warning: refresh after save of %s failed, using write response: %v", working.ID, err)
	} else if refreshed != nil {
		canonical = refreshed
	}

	reconciled := post.FromWire(*canonical)
	if err := r.store.ReplaceAggregate(ctx, post.ToAggregate(reconciled)); err != nil {
		return fmt.Errorf("persist reconciled post: %w", err)
	}
	if r.index != nil {
		if err := r.index.IndexPost(reconciled); err != nil {
			log.Printf("Warning: index update for %s failed: %v", reconciled.ID, err)
		}
	}

	sess.Replace(reconciled)
	return nil
}

// Get reads one post aggregate from the replica. (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, id string) (*post.Post, error) {
	agg, err := r.store.GetAggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, nil
	}
	p := post.FromAggregate(*agg)
	return &p, nil
}

// Watch emits the post aggregate for one id, re-emitting on every store
// write that changes it. A nil emission means the post is absent.
func (r *Repository) Watch(ctx context.Context, id string) <-chan *post.Post {
	out := make(chan *post.Post, 1)
	in := r.store.WatchAggregate(ctx, id)

	go func() {
		defer close(out)
		for agg := range in {
			var p *post.Post
			if agg != nil {
				v := post.FromAggregate(*agg)
				p = &v
			}
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

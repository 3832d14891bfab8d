package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/inkwellhq/ghost-mirror/internal/ghost"
	"github.com/inkwellhq/ghost-mirror/internal/post"
	"github.com/inkwellhq/ghost-mirror/internal/store"
)

type fakeClient struct {
	updateResp  *ghost.PostDTO
	updateErr   error
	refreshResp *ghost.PostDTO
	refreshErr  error

	updateCalls  int
	refreshCalls int
	lastBody     ghost.UpdatePostBody
}

func (f *fakeClient) UpdatePost(ctx context.Context, body ghost.UpdatePostBody) (*ghost.PostDTO, error) {
	f.updateCalls++
	f.lastBody = body
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateResp, nil
}

func (f *fakeClient) GetPost(ctx context.Context, id string) (*ghost.PostDTO, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshResp, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedPost(t *testing.T, s *store.Store) post.Post {
	t.Helper()
	p := post.Post{
		ID:      "p1",
		Slug:    "hello",
		Title:   "Hello",
		Content: "<p>hi</p>",
		Status:  "published",
		Authors: []post.Author{{ID: "a1", Name: "Alice", Slug: "alice"}},
		Tags:    []post.Tag{{ID: "t1", Name: "Tech", Slug: "tech"}},
	}
	if err := s.ReplaceAggregate(context.Background(), post.ToAggregate(p)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return p
}

func strptr(s string) *string { return &s }

func wirePost(title, slug string, tags ...ghost.TagDTO) *ghost.PostDTO {
	return &ghost.PostDTO{
		ID:      "p1",
		Title:   title,
		Status:  "published",
		Content: strptr("<p>hi</p>"),
		Slug:    strptr(slug),
		Authors: []ghost.AuthorDTO{{ID: "a1", Name: "Alice", Slug: "alice"}},
		Tags:    tags,
	}
}

func TestSavePersistsRefreshedPost(t *testing.T) {
	s := newTestStore(t)
	seeded := seedPost(t, s)
	ctx := context.Background()

	client := &fakeClient{
		// The server normalizes the slug on the refresh read.
		updateResp:  wirePost("Edited", "edited", ghost.TagDTO{ID: "t1", Name: "Tech", Slug: "tech"}),
		refreshResp: wirePost("Edited", "edited-2", ghost.TagDTO{ID: "t1", Name: "Tech", Slug: "tech"}),
	}
	r := New(client, s, nil)

	sess := post.NewEditSession(seeded)
	sess.SetTitle("Edited")
	if err := r.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	if client.updateCalls != 1 || client.refreshCalls != 1 {
		t.Fatalf("calls = %d updates, %d refreshes", client.updateCalls, client.refreshCalls)
	}

	got, err := r.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Slug != "edited-2" {
		t.Fatalf("persisted slug = %q, want the refreshed one", got.Slug)
	}
	if sess.Post().Slug != "edited-2" {
		t.Fatal("session not folded to the refreshed post")
	}
}

func TestSaveFallsBackToWriteResponse(t *testing.T) {
	s := newTestStore(t)
	seeded := seedPost(t, s)
	ctx := context.Background()

	client := &fakeClient{
		updateResp: wirePost("Edited", "edited", ghost.TagDTO{ID: "t1", Name: "Tech", Slug: "tech"}),
		refreshErr: errors.New("boom"),
	}
	r := New(client, s, nil)

	sess := post.NewEditSession(seeded)
	sess.SetTitle("Edited")

	// The write itself succeeded, so a failed refresh is not fatal.
	if err := r.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := r.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Edited" {
		t.Fatalf("persisted title = %q, want the write-response post, not the pre-edit one", got.Title)
	}
}

func TestSaveWriteFailureLeavesEverythingIntact(t *testing.T) {
	s := newTestStore(t)
	seeded := seedPost(t, s)
	ctx := context.Background()

	client := &fakeClient{updateErr: errors.New("rejected")}
	r := New(client, s, nil)

	sess := post.NewEditSession(seeded)
	sess.SetTitle("Edited")

	err := r.Save(ctx, sess)
	if err == nil {
		t.Fatal("save reported success")
	}
	if client.refreshCalls != 0 {
		t.Fatal("refresh issued despite write failure")
	}

	// Nothing persisted.
	got, gerr := r.Get(ctx, "p1")
	if gerr != nil {
		t.Fatal(gerr)
	}
	if got.Title != "Hello" {
		t.Fatalf("persisted title = %q, want pre-edit", got.Title)
	}

	// The working copy keeps the edit so the caller can retry.
	if sess.Post().Title != "Edited" {
		t.Fatal("working copy rolled back")
	}
}

func TestSavePurgesPlaceholderTagIDs(t *testing.T) {
	s := newTestStore(t)
	seeded := seedPost(t, s)
	ctx := context.Background()

	reconciled := wirePost("Hello", "hello",
		ghost.TagDTO{ID: "t1", Name: "Tech", Slug: "tech"},
		ghost.TagDTO{ID: "t2", Name: "News", Slug: "news"},
	)
	client := &fakeClient{updateResp: reconciled, refreshResp: reconciled}
	r := New(client, s, nil)

	sess := post.NewEditSession(seeded)
	if !sess.AddTag("News") {
		t.Fatal("add refused")
	}

	if err := r.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The placeholder id never reaches the wire.
	for _, tag := range client.lastBody.Tags {
		if post.IsPlaceholderID(tag.ID) {
			t.Fatalf("placeholder id sent remotely: %+v", tag)
		}
	}

	// And no cross-reference row still carries it.
	got, err := r.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, tag := range got.Tags {
		if post.IsPlaceholderID(tag.ID) {
			t.Fatalf("placeholder id survived reconcile: %+v", tag)
		}
		ids = append(ids, tag.ID)
	}
	if len(ids) != 2 || ids[1] != "t2" {
		t.Fatalf("tag ids = %v, want server-assigned", ids)
	}
}

func TestSaveRefreshAbsentFallsBackToWriteResponse(t *testing.T) {
	s := newTestStore(t)
	seeded := seedPost(t, s)
	ctx := context.Background()

	client := &fakeClient{
		updateResp:  wirePost("Edited", "edited"),
		refreshResp: nil, // deleted remotely between write and refresh
	}
	r := New(client, s, nil)

	sess := post.NewEditSession(seeded)
	sess.SetTitle("Edited")
	if err := r.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := r.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Edited" {
		t.Fatalf("persisted title = %q", got.Title)
	}
}

func TestGetAbsent(t *testing.T) {
	s := newTestStore(t)
	r := New(&fakeClient{}, s, nil)

	p, err := r.Get(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatalf("post = %+v, want nil", p)
	}
}

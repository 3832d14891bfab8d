package post

import (
	"strings"
	"testing"
)

func TestAddTagDedupIsCaseInsensitive(t *testing.T) {
	sess := NewEditSession(Post{ID: "p1"})

	if !sess.AddTag("Tech") {
		t.Fatal("first add refused")
	}
	if sess.AddTag("tech") {
		t.Fatal("case-variant duplicate accepted")
	}
	if sess.AddTag(" TECH ") {
		t.Fatal("whitespace-padded duplicate accepted")
	}

	tags := sess.Post().Tags
	if len(tags) != 1 {
		t.Fatalf("tags = %+v, want exactly one", tags)
	}
	if tags[0].Name != "Tech" {
		t.Fatalf("name = %q, want the first spelling kept", tags[0].Name)
	}
}

func TestAddTagSynthesizesPlaceholderAndSlug(t *testing.T) {
	sess := NewEditSession(Post{ID: "p1"})
	sess.AddTag("Release Notes")

	tag := sess.Post().Tags[0]
	if !IsPlaceholderID(tag.ID) {
		t.Fatalf("id = %q, want placeholder", tag.ID)
	}
	if tag.Slug != "release-notes" {
		t.Fatalf("slug = %q, want release-notes", tag.Slug)
	}
}

func TestPlaceholderIDsAreUniqueAndOrdered(t *testing.T) {
	a := NewPlaceholderID()
	b := NewPlaceholderID()
	if a == b {
		t.Fatal("placeholder ids collide")
	}
	if !strings.HasPrefix(a, PlaceholderPrefix) {
		t.Fatalf("id = %q", a)
	}
}

func TestRemoveTagByValue(t *testing.T) {
	tag := Tag{ID: "t1", Name: "Tech", Slug: "tech"}
	sess := NewEditSession(Post{ID: "p1", Tags: []Tag{tag}})

	if !sess.RemoveTag(tag) {
		t.Fatal("remove failed")
	}
	if sess.RemoveTag(tag) {
		t.Fatal("second remove reported success")
	}
	if len(sess.Post().Tags) != 0 {
		t.Fatalf("tags = %+v", sess.Post().Tags)
	}
}

func TestFieldOverwrites(t *testing.T) {
	sess := NewEditSession(Post{ID: "p1", Title: "Old", Content: "<p>old</p>", Excerpt: "old"})
	sess.SetTitle("New")
	sess.SetContent("<p>new</p>")
	sess.SetExcerpt("new")

	p := sess.Post()
	if p.Title != "New" || p.Content != "<p>new</p>" || p.Excerpt != "new" {
		t.Fatalf("post = %+v", p)
	}
}

func TestSessionDoesNotAliasCallerState(t *testing.T) {
	original := Post{ID: "p1", Tags: []Tag{{ID: "t1", Name: "Tech", Slug: "tech"}}}
	sess := NewEditSession(original)
	sess.AddTag("News")

	if len(original.Tags) != 1 {
		t.Fatalf("caller's copy mutated: %+v", original.Tags)
	}

	snapshot := sess.Post()
	snapshot.Tags[0].Name = "Hacked"
	if sess.Post().Tags[0].Name != "Tech" {
		t.Fatal("snapshot aliases the working copy")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Tech":              "tech",
		"Release Notes":     "release-notes",
		"  Spaced  Name ":   "spaced--name",
		"already-slugified": "already-slugified",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

package post

import (
	"strings"

	"github.com/google/uuid"
)

// Post is the domain aggregate: one post with its associated authors and
// tags. Timestamps are opaque ISO-8601 strings as received from the remote
// authority; this layer never parses them.
type Post struct {
	ID           string
	Slug         string
	Title        string
	Content      string
	FeatureImage string
	Status       string
	Visibility   string
	CreatedAt    string
	UpdatedAt    string
	PublishedAt  string
	URL          string
	Excerpt      string
	Authors      []Author
	Tags         []Tag
}

// Author is a post author.
type Author struct {
	ID           string
	Name         string
	ProfileImage string
	Slug         string
}

// Tag is a post tag. A tag created locally during an edit carries a
// placeholder id until the remote authority assigns a real one.
type Tag struct {
	ID   string
	Name string
	Slug string
}

// PlaceholderPrefix marks locally synthesized tag ids. Such an id is never a
// stable remote identity; the reconcile step replaces it with the
// server-assigned id.
const PlaceholderPrefix = "local_"

// NewPlaceholderID synthesizes a transient tag id. The UUIDv7 suffix is
// time-ordered, so ids sort in creation order.
func NewPlaceholderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return PlaceholderPrefix + id.String()
}

// IsPlaceholderID reports whether id was synthesized locally.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// Slugify derives a tag slug from its name: trimmed, lowercased, spaces
// replaced with hyphens.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func cloneAuthors(authors []Author) []Author {
	if authors == nil {
		return nil
	}
	out := make([]Author, len(authors))
	copy(out, authors)
	return out
}

func cloneTags(tags []Tag) []Tag {
	if tags == nil {
		return nil
	}
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}

// Clone returns a copy of p that shares no slice storage with the original.
func (p Post) Clone() Post {
	p.Authors = cloneAuthors(p.Authors)
	p.Tags = cloneTags(p.Tags)
	return p
}

package store

// Post is the persisted scalar row for one post. Relationship data lives in
// the cross-reference tables, written separately by the caller.
type Post struct {
	ID           string
	Slug         string
	Title        string
	HTML         string
	FeatureImage string
	Status       string
	Visibility   string
	CreatedAt    string // ISO-8601, stored opaque
	UpdatedAt    string
	PublishedAt  string
	URL          string
	Excerpt      string
}

// Author is a persisted author row.
type Author struct {
	ID           string
	Name         string
	ProfileImage string
	Slug         string
}

// Tag is a persisted tag row.
type Tag struct {
	ID   string
	Name string
	Slug string
}

// Aggregate is a post row joined with its author and tag rows, read at one
// consistent point in time.
type Aggregate struct {
	Post    Post
	Authors []Author
	Tags    []Tag
}

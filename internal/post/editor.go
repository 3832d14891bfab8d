package post

import "strings"

// EditSession holds the working copy of one post under edit. It is owned by
// the caller and mutated synchronously; nothing is persisted or sent to the
// remote authority until the session is passed to a save. Not safe for
// concurrent use.
type EditSession struct {
	post Post
}

// NewEditSession starts an edit over a snapshot of p.
func NewEditSession(p Post) *EditSession {
	return &EditSession{post: p.Clone()}
}

// Post returns a snapshot of the working copy.
func (s *EditSession) Post() Post {
	return s.post.Clone()
}

// SetTitle overwrites the working copy's title.
func (s *EditSession) SetTitle(title string) {
	s.post.Title = title
}

// SetContent overwrites the working copy's content.
func (s *EditSession) SetContent(content string) {
	s.post.Content = content
}

// SetExcerpt overwrites the working copy's excerpt.
func (s *EditSession) SetExcerpt(excerpt string) {
	s.post.Excerpt = excerpt
}

// AddTag appends a new tag with a placeholder id and a derived slug. Tag
// identity is case-insensitive name equality within the post's tag set:
// adding a name that already exists (ignoring case) is a no-op. Reports
// whether the tag was added.
func (s *EditSession) AddTag(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, t := range s.post.Tags {
		if strings.EqualFold(t.Name, name) {
			return false
		}
	}
	s.post.Tags = append(s.post.Tags, Tag{
		ID:   NewPlaceholderID(),
		Name: name,
		Slug: Slugify(name),
	})
	return true
}

// RemoveTag removes a tag from the working copy by value equality. Reports
// whether a tag was removed.
func (s *EditSession) RemoveTag(tag Tag) bool {
	for i, t := range s.post.Tags {
		if t == tag {
			s.post.Tags = append(s.post.Tags[:i], s.post.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the working copy for the authoritative post a successful save
// folded back from the remote.
func (s *EditSession) Replace(p Post) {
	s.post = p.Clone()
}

package post

import (
	"github.com/inkwellhq/ghost-mirror/internal/ghost"
	"github.com/inkwellhq/ghost-mirror/internal/store"
)

// Conversions between the wire representation (remote DTOs), the persisted
// representation (store entities) and the domain model. All of them are pure:
// no side effects, no failure, absent wire fields defaulted deterministically.

// TagFromWire converts a wire tag. A missing id becomes the empty string,
// which means "never assigned" as opposed to a placeholder's "pending
// assignment".
func TagFromWire(dto ghost.TagDTO) Tag {
	return Tag{
		ID:   dto.ID,
		Name: dto.Name,
		Slug: dto.Slug,
	}
}

// AuthorFromWire converts a wire author.
func AuthorFromWire(dto ghost.AuthorDTO) Author {
	return Author{
		ID:           dto.ID,
		Name:         dto.Name,
		ProfileImage: dto.ProfileImage,
		Slug:         dto.Slug,
	}
}

// FromWire converts a wire post to the domain model. CreatedAt is always
// produced empty: the update-response shape never carries it. Whether that is
// intentional on the server side is unresolved; the behavior is preserved
// as-is rather than guessed at.
func FromWire(dto ghost.PostDTO) Post {
	p := Post{
		ID:           dto.ID,
		Title:        dto.Title,
		FeatureImage: dto.FeatureImage,
		Status:       dto.Status,
		Visibility:   dto.Visibility,
		CreatedAt:    "",
		UpdatedAt:    dto.UpdatedAt,
		PublishedAt:  dto.PublishedAt,
		URL:          dto.URL,
	}
	if dto.Content != nil {
		p.Content = *dto.Content
	}
	if dto.Excerpt != nil {
		p.Excerpt = *dto.Excerpt
	}
	if dto.Slug != nil {
		p.Slug = *dto.Slug
	}
	p.Authors = make([]Author, 0, len(dto.Authors))
	for _, a := range dto.Authors {
		p.Authors = append(p.Authors, AuthorFromWire(a))
	}
	p.Tags = make([]Tag, 0, len(dto.Tags))
	for _, t := range dto.Tags {
		p.Tags = append(p.Tags, TagFromWire(t))
	}
	return p
}

// ToEntity converts a domain post to its persisted scalar row. Relationship
// fields are dropped: cross-references are written separately by the
// repository, never by a conversion.
func ToEntity(p Post) store.Post {
	return store.Post{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		HTML:         p.Content,
		FeatureImage: p.FeatureImage,
		Status:       p.Status,
		Visibility:   p.Visibility,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		PublishedAt:  p.PublishedAt,
		URL:          p.URL,
		Excerpt:      p.Excerpt,
	}
}

// FromAggregate converts a joined store read back to the domain model.
func FromAggregate(agg store.Aggregate) Post {
	p := Post{
		ID:           agg.Post.ID,
		Slug:         agg.Post.Slug,
		Title:        agg.Post.Title,
		Content:      agg.Post.HTML,
		FeatureImage: agg.Post.FeatureImage,
		Status:       agg.Post.Status,
		Visibility:   agg.Post.Visibility,
		CreatedAt:    agg.Post.CreatedAt,
		UpdatedAt:    agg.Post.UpdatedAt,
		PublishedAt:  agg.Post.PublishedAt,
		URL:          agg.Post.URL,
		Excerpt:      agg.Post.Excerpt,
	}
	p.Authors = make([]Author, 0, len(agg.Authors))
	for _, a := range agg.Authors {
		p.Authors = append(p.Authors, Author{
			ID:           a.ID,
			Name:         a.Name,
			ProfileImage: a.ProfileImage,
			Slug:         a.Slug,
		})
	}
	p.Tags = make([]Tag, 0, len(agg.Tags))
	for _, t := range agg.Tags {
		p.Tags = append(p.Tags, Tag{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	return p
}

// ToAggregate converts a domain post to the store aggregate shape: the scalar
// entity plus the author and tag rows the cross-references will point at.
func ToAggregate(p Post) store.Aggregate {
	agg := store.Aggregate{Post: ToEntity(p)}
	agg.Authors = make([]store.Author, 0, len(p.Authors))
	for _, a := range p.Authors {
		agg.Authors = append(agg.Authors, store.Author{
			ID:           a.ID,
			Name:         a.Name,
			ProfileImage: a.ProfileImage,
			Slug:         a.Slug,
		})
	}
	agg.Tags = make([]store.Tag, 0, len(p.Tags))
	for _, t := range p.Tags {
		agg.Tags = append(agg.Tags, store.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	return agg
}

// ToUpdateBody builds the wire update request for a post. Placeholder and
// never-assigned tag ids are omitted so the server assigns real ones.
func ToUpdateBody(p Post) ghost.UpdatePostBody {
	body := ghost.UpdatePostBody{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Excerpt:      p.Excerpt,
		Status:       p.Status,
		FeatureImage: p.FeatureImage,
		UpdatedAt:    p.UpdatedAt,
		Visibility:   p.Visibility,
		PublishedAt:  p.PublishedAt,
		URL:          p.URL,
		Slug:         p.Slug,
	}
	body.Tags = make([]ghost.TagDTO, 0, len(p.Tags))
	for _, t := range p.Tags {
		dto := ghost.TagDTO{Name: t.Name, Slug: t.Slug}
		if t.ID != "" && !IsPlaceholderID(t.ID) {
			dto.ID = t.ID
		}
		body.Tags = append(body.Tags, dto)
	}
	return body
}

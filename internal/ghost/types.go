package ghost

// TagDTO is the tag shape used in both update requests and post responses.
// ID and Slug are optional on the wire: a tag created locally is sent without
// an id so the server assigns one.
type TagDTO struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// AuthorDTO is the author shape embedded in post responses.
type AuthorDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
	Slug         string `json:"slug"`
}

// PostDTO is the post representation the Admin API returns. Content, excerpt,
// authors and tags are optional; pointers distinguish absent from empty.
// UUID, Lexical and Mobiledoc come back on some responses but this layer
// ignores them.
type PostDTO struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Content      *string     `json:"html"`
	Excerpt      *string     `json:"excerpt"`
	FeatureImage string      `json:"feature_image"`
	Status       string      `json:"status"`
	PublishedAt  string      `json:"published_at"`
	UpdatedAt    string      `json:"updated_at"`
	CreatedAt    string      `json:"created_at"`
	URL          string      `json:"url"`
	Visibility   string      `json:"visibility"`
	Authors      []AuthorDTO `json:"authors"`
	Tags         []TagDTO    `json:"tags"`
	Slug         *string     `json:"slug"`
	UUID         string      `json:"uuid,omitempty"`
	Lexical      string      `json:"lexical,omitempty"`
	Mobiledoc    string      `json:"mobiledoc,omitempty"`
}

// UpdatePostBody is one post inside an update request envelope.
type UpdatePostBody struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"html"`
	Excerpt      string   `json:"excerpt,omitempty"`
	Tags         []TagDTO `json:"tags,omitempty"`
	Status       string   `json:"status,omitempty"`
	AuthorID     string   `json:"author_id,omitempty"`
	FeatureImage string   `json:"feature_image,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`
	Visibility   string   `json:"visibility,omitempty"`
	PublishedAt  string   `json:"published_at,omitempty"`
	URL          string   `json:"url,omitempty"`
	Slug         string   `json:"slug,omitempty"`
}

// UpdatePostRequest is the {"posts": [...]} envelope the Admin API expects.
type UpdatePostRequest struct {
	Posts []UpdatePostBody `json:"posts"`
}

// PostsResponse is the envelope every posts endpoint returns.
type PostsResponse struct {
	Posts  []PostDTO  `json:"posts"`
	Meta   *Meta      `json:"meta,omitempty"`
	Errors []APIError `json:"errors,omitempty"`
}

// Meta carries pagination info on list responses.
type Meta struct {
	Pagination Pagination `json:"pagination"`
}

// Pagination is the server's paging cursor for list fetches.
type Pagination struct {
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
	Pages int  `json:"pages"`
	Total int  `json:"total"`
	Next  *int `json:"next"`
	Prev  *int `json:"prev"`
}

// APIError is one error object from an error response body.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

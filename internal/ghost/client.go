package ghost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a Ghost Admin API instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Admin API client. baseURL is the site root,
// e.g. https://blog.example.com.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do performs one request against the posts API and decodes the
// {"posts": [...]} envelope.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*PostsResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Ghost "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	var envelope PostsResponse
	unmarshalErr := json.Unmarshal(data, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if unmarshalErr == nil && len(envelope.Errors) > 0 {
			return nil, fmt.Errorf("api error: %s", envelope.Errors[0].Message)
		}
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal response: %w", unmarshalErr)
	}

	return &envelope, nil
}

// UpdatePost pushes one edited post and returns the server's representation
// of it, which may differ from what was sent (normalized slugs, assigned
// tag ids, recomputed timestamps).
func (c *Client) UpdatePost(ctx context.Context, body UpdatePostBody) (*PostDTO, error) {
	path := fmt.Sprintf("/ghost/api/admin/posts/%s/?formats=html", url.PathEscape(body.ID))
	envelope, err := c.do(ctx, http.MethodPut, path, UpdatePostRequest{Posts: []UpdatePostBody{body}})
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if envelope == nil || len(envelope.Posts) == 0 {
		return nil, fmt.Errorf("update post: empty response")
	}
	return &envelope.Posts[0], nil
}

// GetPost re-fetches canonical state for one post id. Returns (nil, nil)
// when the post does not exist.
func (c *Client) GetPost(ctx context.Context, id string) (*PostDTO, error) {
	path := fmt.Sprintf("/ghost/api/admin/posts/%s/?formats=html&include=authors,tags", url.PathEscape(id))
	envelope, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if envelope == nil || len(envelope.Posts) == 0 {
		return nil, nil
	}
	return &envelope.Posts[0], nil
}

// ListPosts fetches one page of the post collection with authors and tags
// embedded. Pagination metadata tells the caller whether a next page exists.
func (c *Client) ListPosts(ctx context.Context, page, limit int) ([]PostDTO, *Pagination, error) {
	path := "/ghost/api/admin/posts/?formats=html&include=authors,tags" +
		"&page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
	envelope, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("list posts: %w", err)
	}
	if envelope == nil {
		return nil, nil, fmt.Errorf("list posts: empty response")
	}
	var pagination *Pagination
	if envelope.Meta != nil {
		pagination = &envelope.Meta.Pagination
	}
	return envelope.Posts, pagination, nil
}

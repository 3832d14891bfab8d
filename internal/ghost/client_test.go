package ghost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpdatePostSendsEnvelopeAndAuth(t *testing.T) {
	var gotAuth string
	var gotReq UpdatePostRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || !strings.HasPrefix(r.URL.Path, "/ghost/api/admin/posts/p1/") {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(PostsResponse{Posts: []PostDTO{{ID: "p1", Title: "Edited", Status: "published"}}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	dto, err := client.UpdatePost(context.Background(), UpdatePostBody{ID: "p1", Title: "Edited", Content: "<p>x</p>"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if gotAuth != "Ghost secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if len(gotReq.Posts) != 1 || gotReq.Posts[0].ID != "p1" {
		t.Fatalf("request envelope = %+v", gotReq)
	}
	if dto.Title != "Edited" {
		t.Fatalf("response post = %+v", dto)
	}
}

func TestUpdatePostSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(PostsResponse{Errors: []APIError{{Message: "Validation error, cannot save post."}}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	_, err := client.UpdatePost(context.Background(), UpdatePostBody{ID: "p1", Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "cannot save post") {
		t.Fatalf("err = %v", err)
	}
}

func TestGetPostAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	dto, err := client.GetPost(context.Background(), "gone")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto != nil {
		t.Fatalf("dto = %+v, want nil", dto)
	}
}

func TestListPostsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("page = %q", r.URL.Query().Get("page"))
		}
		next := 3
		json.NewEncoder(w).Encode(PostsResponse{
			Posts: []PostDTO{{ID: "p3", Title: "Three", Status: "published"}},
			Meta:  &Meta{Pagination: Pagination{Page: 2, Pages: 3, Next: &next}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	posts, pagination, err := client.ListPosts(context.Background(), 2, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "p3" {
		t.Fatalf("posts = %+v", posts)
	}
	if pagination == nil || pagination.Next == nil || *pagination.Next != 3 {
		t.Fatalf("pagination = %+v", pagination)
	}
}

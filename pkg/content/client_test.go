package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testPosts = []Summary{
	{Slug: "winter-pipe-care", Title: "Winter Pipe Care", Excerpt: "Keep pipes from freezing.", Tags: []string{"seasonal"}, PublishedAt: "2024-11-02"},
	{Slug: "water-heater-signs", Title: "Water Heater Warning Signs", Excerpt: "When to replace.", Tags: []string{"maintenance"}, PublishedAt: "2024-10-15"},
}

func testServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sites/acme/posts", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		json.NewEncoder(w).Encode(Listing{Posts: testPosts, Page: 1, PageSize: 10, Total: 2})
	})
	mux.HandleFunc("GET /sites/acme/posts/winter-pipe-care", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(Article{Summary: testPosts[0], Body: "## Insulate exposed pipes\n..."})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_List(t *testing.T) {
	srv := testServer(t, nil)
	c := NewClient(srv.URL)

	listing, err := c.List(context.Background(), "acme", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listing.Total != 2 {
		t.Fatalf("total = %d", listing.Total)
	}
	if diff := cmp.Diff(testPosts, listing.Posts); diff != "" {
		t.Fatalf("posts (-want +got):\n%s", diff)
	}
}

func TestClient_Get(t *testing.T) {
	srv := testServer(t, nil)
	c := NewClient(srv.URL)

	article, err := c.Get(context.Background(), "acme", "winter-pipe-care")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if article.Title != "Winter Pipe Care" || article.Body == "" {
		t.Fatalf("article = %+v", article)
	}
}

func TestClient_GetNotFound(t *testing.T) {
	srv := testServer(t, nil)
	c := NewClient(srv.URL)

	if _, err := c.Get(context.Background(), "acme", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL)

	if _, err := c.List(context.Background(), "acme", 0, 0); err == nil {
		t.Fatal("server error should surface")
	}
}

func TestPostCache_CachesListing(t *testing.T) {
	var hits atomic.Int64
	srv := testServer(t, &hits)
	cache := NewPostCache(NewClient(srv.URL), "acme", time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		posts, err := cache.ListPosts(ctx, "")
		if err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		if len(posts) != 2 {
			t.Fatalf("posts = %d", len(posts))
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("backend hits = %d, want a single cached fetch", got)
	}

	cache.Invalidate()
	if _, err := cache.ListPosts(ctx, ""); err != nil {
		t.Fatalf("list after invalidate: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("backend hits = %d, invalidate must force a refetch", got)
	}
}

func TestPostCache_TagFilter(t *testing.T) {
	srv := testServer(t, nil)
	cache := NewPostCache(NewClient(srv.URL), "acme", time.Minute)

	posts, err := cache.ListPosts(context.Background(), "seasonal")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "winter-pipe-care" {
		t.Fatalf("filtered posts = %+v", posts)
	}
}

package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestBluesky(t *testing.T, baseURL string) *BlueskySource {
	t.Helper()
	adapter, err := NewBluesky(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bs := adapter.(*BlueskySource)
	bs.baseURL = baseURL
	return bs
}

func bskyItem(rkey, did, handle, text string, likes int) bskyPost {
	var p bskyPost
	p.URI = "at://" + did + "/app.bsky.feed.post/" + rkey
	p.Author.DID = did
	p.Author.Handle = handle
	p.Record.Text = text
	p.Record.CreatedAt = "2026-08-30T09:00:00.000Z"
	p.LikeCount = likes
	return p
}

func TestBlueskyFetch(t *testing.T) {
	shared := bskyItem("3kabc", "did:plc:xyz", "maker.bsky.social", "new comfyui workflow", 12)
	extra := bskyItem("3kdef", "did:plc:qrs", "other.bsky.social", "sdxl turbo tips", 5)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/app.bsky.feed.searchPosts" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if sort := r.URL.Query().Get("sort"); sort != "latest" {
			t.Errorf("sort = %q, want latest", sort)
		}
		if since := r.URL.Query().Get("since"); since == "" {
			t.Error("missing since param")
		}

		// Both terms return the shared post; only the second returns extra.
		resp := bskySearchResponse{Posts: []bskyPost{shared}}
		if r.URL.Query().Get("q") == "sdxl" {
			resp.Posts = append(resp.Posts, extra)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	bs := newTestBluesky(t, srv.URL)

	posts, err := bs.Fetch(context.Background(), []string{"comfyui", "sdxl"}, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The shared post dedupes by permalink across terms.
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}

	p := posts[0]
	if p.URL != "https://bsky.app/profile/did:plc:xyz/post/3kabc" {
		t.Errorf("url = %q", p.URL)
	}
	if p.Author != "@maker.bsky.social" {
		t.Errorf("author = %q", p.Author)
	}
	if p.Score != 12 {
		t.Errorf("score = %d, want like count", p.Score)
	}
	if p.Metadata["did"] != "did:plc:xyz" {
		t.Errorf("metadata did = %v", p.Metadata["did"])
	}
}

func TestBlueskyFetch_FailedTermContinues(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(bskySearchResponse{
			Posts: []bskyPost{bskyItem("3k", "did:plc:a", "a.bsky.social", "hi", 1)},
		})
	}))
	defer srv.Close()

	bs := newTestBluesky(t, srv.URL)

	posts, err := bs.Fetch(context.Background(), []string{"term1", "term2"}, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
}

func TestBskyPostURL(t *testing.T) {
	got := bskyPostURL("at://did:plc:xyz/app.bsky.feed.post/3kabc", "did:plc:xyz")
	want := "https://bsky.app/profile/did:plc:xyz/post/3kabc"
	if got != want {
		t.Errorf("url = %q, want %q", got, want)
	}
}

package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestHN(t *testing.T, baseURL string) *HackerNewsSource {
	t.Helper()
	adapter, err := NewHackerNews(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := adapter.(*HackerNewsSource)
	h.baseURL = baseURL
	return h
}

func TestHackerNewsFetch(t *testing.T) {
	now := time.Now().Unix()

	story := hnHit{
		ObjectID: "100", Title: "Llama 4 released", URL: "https://example.com/llama4",
		Author: "pg", Points: 512, NumComments: 80, CreatedAtI: now,
	}
	recentOnly := hnHit{
		ObjectID: "101", Title: "Fresh story", StoryText: "self post text",
		Author: "dang", Points: 3, CreatedAtI: now,
	}
	// Same numeric ID as the story; the prefix must keep them apart.
	comment := hnHit{
		ObjectID: "100", CommentText: "great benchmark numbers",
		Author: "tptacek", StoryID: 99, StoryTitle: "Llama 4 released", CreatedAtI: now,
	}

	var numericFilter string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		numericFilter = r.URL.Query().Get("numericFilters")
		tags := r.URL.Query().Get("tags")

		var hits []hnHit
		switch {
		case r.URL.Path == "/search" && tags == "story":
			hits = []hnHit{story}
		case r.URL.Path == "/search_by_date" && tags == "story":
			// Overlaps with the relevance search on purpose.
			hits = []hnHit{story, recentOnly}
		case r.URL.Path == "/search" && tags == "comment":
			if hp := r.URL.Query().Get("hitsPerPage"); hp != "50" {
				t.Errorf("comment hitsPerPage = %q, want 50", hp)
			}
			hits = []hnHit{comment}
		default:
			t.Errorf("unexpected request: %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"hits": hits})
	}))
	defer srv.Close()

	h := newTestHN(t, srv.URL)

	posts, err := h.Fetch(context.Background(), []string{"llama"}, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Story 100 once (seen via both story endpoints), story 101, and
	// comment-100.
	if len(posts) != 3 {
		t.Fatalf("got %d posts, want 3", len(posts))
	}

	if posts[0].ID != "100" {
		t.Errorf("first post id = %q, want 100", posts[0].ID)
	}
	if posts[0].URL != "https://news.ycombinator.com/item?id=100" {
		t.Errorf("url = %q", posts[0].URL)
	}
	if posts[0].Score != 512 {
		t.Errorf("score = %d, want points 512", posts[0].Score)
	}
	if posts[0].Body != "https://example.com/llama4" {
		t.Errorf("body = %q, want story url when no story text", posts[0].Body)
	}

	if posts[1].ID != "101" || posts[1].Body != "self post text" {
		t.Errorf("recent-only story mapped wrong: %+v", posts[1])
	}

	c := posts[2]
	if c.ID != "comment-100" {
		t.Errorf("comment id = %q, want comment-100", c.ID)
	}
	if c.Title != "[Comment on: Llama 4 released]" {
		t.Errorf("comment title = %q", c.Title)
	}
	if c.Metadata["story_id"] != "99" || c.Metadata["type"] != "comment" {
		t.Errorf("comment metadata = %v", c.Metadata)
	}

	if !strings.HasPrefix(numericFilter, "created_at_i>") {
		t.Errorf("numericFilters = %q, want created_at_i lower bound", numericFilter)
	}
}

func TestHackerNewsFetch_EndpointErrorYieldsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := newTestHN(t, srv.URL)

	posts, err := h.Fetch(context.Background(), []string{"llama"}, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("got %d posts, want 0", len(posts))
	}
}

func TestCommentToPost_NoStoryTitle(t *testing.T) {
	post, ok := commentToPost(hnHit{ObjectID: "7", CommentText: "hi"})
	if !ok {
		t.Fatal("expected a post")
	}
	if post.Title != "[Comment]" {
		t.Errorf("title = %q, want [Comment]", post.Title)
	}
	if post.CreatedAt != "" {
		t.Errorf("created_at = %q, want empty for zero timestamp", post.CreatedAt)
	}
}

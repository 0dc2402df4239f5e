package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	hnSourceName      = "hackernews"
	hnAPIBase         = "https://hn.algolia.com/api/v1"
	hnItemURL         = "https://news.ycombinator.com/item?id="
	hnTimeout         = 30 * time.Second
	hnStoryHitsPage   = 20
	hnCommentHitsPage = 50
)

// HackerNewsSource searches Hacker News via the free Algolia API.
// Every query runs three sub-searches: relevance-ranked stories,
// recency-ranked stories, and comments.
type HackerNewsSource struct {
	client  *http.Client
	baseURL string
}

// NewHackerNews creates a Hacker News source. No credentials required.
func NewHackerNews(Config) (Adapter, error) {
	return &HackerNewsSource{
		client:  &http.Client{Timeout: hnTimeout},
		baseURL: hnAPIBase,
	}, nil
}

func (h *HackerNewsSource) Name() string {
	return hnSourceName
}

func (h *HackerNewsSource) BooleanSearch() bool {
	return true
}

func (h *HackerNewsSource) Fetch(ctx context.Context, queries []string, lookbackHours int) ([]Post, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour).Unix()

	seen := map[string]bool{}
	var posts []Post

	for i, q := range queries {
		fmt.Fprintf(os.Stderr, "  hackernews: [%d/%d] %s\n", i+1, len(queries), truncate(q, 60))

		// Relevance-ranked stories, then by-date stories to catch very
		// recent posts, then comments for extra signal.
		storyHits := h.search(ctx, q, cutoff, "story", "search", hnStoryHitsPage)
		recentHits := h.search(ctx, q, cutoff, "story", "search_by_date", hnStoryHitsPage)
		commentHits := h.search(ctx, q, cutoff, "comment", "search", hnCommentHitsPage)

		for _, hit := range append(storyHits, recentHits...) {
			if post, ok := storyToPost(hit); ok && !seen[post.ID] {
				seen[post.ID] = true
				posts = append(posts, post)
			}
		}
		for _, hit := range commentHits {
			if post, ok := commentToPost(hit); ok && !seen[post.ID] {
				seen[post.ID] = true
				posts = append(posts, post)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "  hackernews: %d posts across %d queries\n", len(posts), len(queries))
	return posts, nil
}

func (h *HackerNewsSource) search(ctx context.Context, query string, cutoff int64, tags, endpoint string, hitsPerPage int) []hnHit {
	params := url.Values{
		"query":          {query},
		"tags":           {tags},
		"numericFilters": {fmt.Sprintf("created_at_i>%d", cutoff)},
		"hitsPerPage":    {strconv.Itoa(hitsPerPage)},
	}
	reqURL := fmt.Sprintf("%s/%s?%s", h.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  hackernews: create request: %v\n", err)
		return nil
	}
	req.Header.Set("User-Agent", "local-ai-scout/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  hackernews: %s: %v\n", endpoint, err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "  hackernews: %s: HTTP %d\n", endpoint, resp.StatusCode)
		return nil
	}

	var result struct {
		Hits []hnHit `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		fmt.Fprintf(os.Stderr, "  hackernews: decode %s: %v\n", endpoint, err)
		return nil
	}
	return result.Hits
}

func storyToPost(hit hnHit) (Post, bool) {
	if hit.ObjectID == "" {
		return Post{}, false
	}

	body := hit.StoryText
	if body == "" {
		body = hit.URL
	}

	return Post{
		Source:    hnSourceName,
		ID:        hit.ObjectID,
		Title:     hit.Title,
		Body:      body,
		URL:       hnItemURL + hit.ObjectID,
		Author:    hit.Author,
		Score:     hit.Points,
		CreatedAt: isoFromUnix(hit.CreatedAtI),
		Metadata: map[string]any{
			"num_comments": hit.NumComments,
			"story_url":    hit.URL,
		},
	}, true
}

func commentToPost(hit hnHit) (Post, bool) {
	if hit.ObjectID == "" {
		return Post{}, false
	}

	title := "[Comment]"
	if hit.StoryTitle != "" {
		title = "[Comment on: " + hit.StoryTitle + "]"
	}

	storyID := ""
	if hit.StoryID != 0 {
		storyID = strconv.FormatInt(hit.StoryID, 10)
	}

	return Post{
		Source: hnSourceName,
		// Prefix keeps comment IDs from colliding with story IDs of the
		// same numeric value.
		ID:        "comment-" + hit.ObjectID,
		Title:     title,
		Body:      hit.CommentText,
		URL:       hnItemURL + hit.ObjectID,
		Author:    hit.Author,
		Score:     hit.Points,
		CreatedAt: isoFromUnix(hit.CreatedAtI),
		Metadata: map[string]any{
			"type":        "comment",
			"story_id":    storyID,
			"story_title": hit.StoryTitle,
		},
	}, true
}

func isoFromUnix(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

type hnHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	StoryText   string `json:"story_text"`
	CommentText string `json:"comment_text"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	StoryID     int64  `json:"story_id"`
	StoryTitle  string `json:"story_title"`
	CreatedAtI  int64  `json:"created_at_i"`
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	bskySourceName = "bluesky"
	bskyAPIBase    = "https://public.api.bsky.app/xrpc"
	bskyLinkHost   = "https://bsky.app"
	bskyTimeout    = 30 * time.Second
	bskyMaxResults = 100
)

// BlueskySource searches the public AT Protocol API. No auth required.
// Queries are plain topic terms, searched independently and deduplicated
// by permalink within the adapter.
type BlueskySource struct {
	maxResults int
	client     *http.Client
	baseURL    string
}

// NewBluesky creates a Bluesky source.
func NewBluesky(cfg Config) (Adapter, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > bskyMaxResults {
		maxResults = bskyMaxResults
	}
	return &BlueskySource{
		maxResults: maxResults,
		client:     &http.Client{Timeout: bskyTimeout},
		baseURL:    bskyAPIBase,
	}, nil
}

func (bs *BlueskySource) Name() string {
	return bskySourceName
}

func (bs *BlueskySource) BooleanSearch() bool {
	return false
}

func (bs *BlueskySource) Fetch(ctx context.Context, queries []string, lookbackHours int) ([]Post, error) {
	since := time.Now().UTC().
		Add(-time.Duration(lookbackHours) * time.Hour).
		Format("2006-01-02T15:04:05Z")

	seen := map[string]bool{}
	var posts []Post

	for i, term := range queries {
		fmt.Fprintf(os.Stderr, "  bluesky: [%d/%d] %s\n", i+1, len(queries), truncate(term, 50))

		results, err := bs.search(ctx, term, since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  bluesky: %v\n", err)
			continue
		}
		for _, post := range results {
			if !seen[post.URL] {
				seen[post.URL] = true
				posts = append(posts, post)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "  bluesky: %d posts across %d terms\n", len(posts), len(queries))
	return posts, nil
}

func (bs *BlueskySource) search(ctx context.Context, term, since string) ([]Post, error) {
	params := url.Values{
		"q":     {term},
		"sort":  {"latest"},
		"limit": {strconv.Itoa(bs.maxResults)},
		"since": {since},
	}
	reqURL := bs.baseURL + "/app.bsky.feed.searchPosts?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "local-ai-scout/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := bs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: HTTP %d", term, resp.StatusCode)
	}

	var result bskySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}

	posts := make([]Post, 0, len(result.Posts))
	for _, item := range result.Posts {
		posts = append(posts, bskyToPost(item))
	}
	return posts, nil
}

func bskyToPost(item bskyPost) Post {
	handle := item.Author.Handle
	if handle == "" {
		handle = "unknown"
	}

	return Post{
		Source:    bskySourceName,
		ID:        item.URI,
		Title:     "",
		Body:      item.Record.Text,
		URL:       bskyPostURL(item.URI, item.Author.DID),
		Author:    "@" + handle,
		Score:     item.LikeCount,
		CreatedAt: item.Record.CreatedAt,
		Metadata: map[string]any{
			"did":          item.Author.DID,
			"repost_count": item.RepostCount,
			"reply_count":  item.ReplyCount,
			"quote_count":  item.QuoteCount,
		},
	}
}

// bskyPostURL builds a bsky.app web URL from an AT URI.
//
// AT URI format:  at://did:plc:xxx/app.bsky.feed.post/RKEY
// Web URL format: https://bsky.app/profile/DID/post/RKEY
func bskyPostURL(uri, did string) string {
	rkey := ""
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		rkey = uri[i+1:]
	}
	return fmt.Sprintf("%s/profile/%s/post/%s", bskyLinkHost, did, rkey)
}

type bskySearchResponse struct {
	Posts []bskyPost `json:"posts"`
}

type bskyPost struct {
	URI    string `json:"uri"`
	Author struct {
		DID    string `json:"did"`
		Handle string `json:"handle"`
	} `json:"author"`
	Record struct {
		Text      string `json:"text"`
		CreatedAt string `json:"createdAt"`
	} `json:"record"`
	LikeCount   int `json:"likeCount"`
	RepostCount int `json:"repostCount"`
	ReplyCount  int `json:"replyCount"`
	QuoteCount  int `json:"quoteCount"`
}

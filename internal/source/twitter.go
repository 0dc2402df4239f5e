package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	twitterSourceName = "twitter"
	twitterAPIBase    = "https://api.twitter.com"
	twitterLinkHost   = "https://x.com"
	twitterTimeout    = 30 * time.Second
	twitterMaxResults = 100 // API cap for search/recent

	tweetFields = "author_id,created_at,public_metrics,entities,referenced_tweets"
	userFields  = "username,name,verified,public_metrics"
	expansions  = "author_id"
)

// TwitterSource fetches recent tweets via the X API v2 recent search.
// It needs a bearer token; with only a consumer-key/api-key pair it
// exchanges them for one on first fetch.
type TwitterSource struct {
	bearer      string
	consumerKey string
	apiKey      string
	maxResults  int
	client      *http.Client
	baseURL     string
	linkHost    string
}

// NewTwitter creates a Twitter source. Credentials must be present:
// either a bearer token or a consumer-key/api-key pair.
func NewTwitter(cfg Config) (Adapter, error) {
	if cfg.BearerToken == "" && (cfg.ConsumerKey == "" || cfg.APIKey == "") {
		return nil, errors.New("twitter: set X_BEARER_TOKEN (or X_CONSUMER_KEY + X_API_KEY)")
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > twitterMaxResults {
		maxResults = twitterMaxResults
	}
	return &TwitterSource{
		bearer:      cfg.BearerToken,
		consumerKey: cfg.ConsumerKey,
		apiKey:      cfg.APIKey,
		maxResults:  maxResults,
		client:      &http.Client{Timeout: twitterTimeout},
		baseURL:     twitterAPIBase,
		linkHost:    twitterLinkHost,
	}, nil
}

func (ts *TwitterSource) Name() string {
	return twitterSourceName
}

func (ts *TwitterSource) BooleanSearch() bool {
	return true
}

func (ts *TwitterSource) Fetch(ctx context.Context, queries []string, lookbackHours int) ([]Post, error) {
	if ts.bearer == "" {
		token, err := ts.exchangeToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("twitter: token exchange: %w", err)
		}
		ts.bearer = token
	}

	startTime := time.Now().UTC().
		Add(-time.Duration(lookbackHours) * time.Hour).
		Format("2006-01-02T15:04:05Z")

	var posts []Post

	for i, q := range queries {
		fmt.Fprintf(os.Stderr, "  twitter: [%d/%d] %s\n", i+1, len(queries), truncate(q, 60))

		result, err := ts.search(ctx, q, startTime)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  twitter: %v\n", err)
			continue
		}

		authors := make(map[string]string, len(result.Includes.Users))
		for _, u := range result.Includes.Users {
			authors[u.ID] = u.Username
		}

		for _, tw := range result.Data {
			username, ok := authors[tw.AuthorID]
			if !ok {
				username = "unknown"
			}
			posts = append(posts, Post{
				Source:    twitterSourceName,
				ID:        tw.ID,
				Title:     "",
				Body:      tw.Text,
				URL:       fmt.Sprintf("%s/%s/status/%s", ts.linkHost, username, tw.ID),
				Author:    "@" + username,
				Score:     tw.PublicMetrics.LikeCount,
				CreatedAt: tw.CreatedAt,
				Metadata: map[string]any{
					"retweet_count": tw.PublicMetrics.RetweetCount,
					"reply_count":   tw.PublicMetrics.ReplyCount,
					"quote_count":   tw.PublicMetrics.QuoteCount,
				},
			})
		}
	}

	fmt.Fprintf(os.Stderr, "  twitter: %d tweets across %d queries\n", len(posts), len(queries))
	return posts, nil
}

func (ts *TwitterSource) search(ctx context.Context, query, startTime string) (*tweetSearchResponse, error) {
	params := url.Values{
		"query":        {query},
		"max_results":  {strconv.Itoa(ts.maxResults)},
		"start_time":   {startTime},
		"tweet.fields": {tweetFields},
		"user.fields":  {userFields},
		"expansions":   {expansions},
	}
	reqURL := ts.baseURL + "/2/tweets/search/recent?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+ts.bearer)

	resp, err := ts.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: HTTP %d", resp.StatusCode)
	}

	var result tweetSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}
	return &result, nil
}

// exchangeToken trades a consumer-key/api-key pair for an app-only
// bearer token via the oauth2 client_credentials grant.
func (ts *TwitterSource) exchangeToken(ctx context.Context) (string, error) {
	creds := base64.StdEncoding.EncodeToString(
		[]byte(ts.consumerKey + ":" + ts.apiKey))
	body := strings.NewReader(url.Values{"grant_type": {"client_credentials"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.baseURL+"/oauth2/token", body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+creds)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if result.AccessToken == "" {
		return "", errors.New("empty access_token in response")
	}
	return result.AccessToken, nil
}

type tweetSearchResponse struct {
	Data     []tweet `json:"data"`
	Includes struct {
		Users []twitterUser `json:"users"`
	} `json:"includes"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

type tweet struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	AuthorID      string       `json:"author_id"`
	CreatedAt     string       `json:"created_at"`
	PublicMetrics tweetMetrics `json:"public_metrics"`
}

type tweetMetrics struct {
	LikeCount    int `json:"like_count"`
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	QuoteCount   int `json:"quote_count"`
}

type twitterUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package source

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	phSourceName = "producthunt"
	phFeedURL    = "https://www.producthunt.com/feed"
	phTimeout    = 30 * time.Second
	phUserAgent  = "local-ai-scout/1.0"
	phMaxResults = 100
)

// phPostIDRe extracts the numeric post ID from Atom entry IDs shaped
// like "tag:www.producthunt.com,2005:Post/1078316".
var phPostIDRe = regexp.MustCompile(`Post/(\d+)`)

// ProductHuntSource reads the public Product Hunt Atom feed. The feed
// takes no query parameters, so entries are filtered client-side against
// the topic terms. Product Hunt retired its public API in 2024; the feed
// carries no vote counts, so score is always zero.
type ProductHuntSource struct {
	maxResults int
	client     *http.Client
	feedURL    string
}

// NewProductHunt creates a Product Hunt source. No credentials required.
func NewProductHunt(cfg Config) (Adapter, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > phMaxResults {
		maxResults = phMaxResults
	}
	return &ProductHuntSource{
		maxResults: maxResults,
		client:     &http.Client{Timeout: phTimeout},
		feedURL:    phFeedURL,
	}, nil
}

func (ps *ProductHuntSource) Name() string {
	return phSourceName
}

func (ps *ProductHuntSource) BooleanSearch() bool {
	return false
}

func (ps *ProductHuntSource) Fetch(ctx context.Context, queries []string, lookbackHours int) ([]Post, error) {
	fmt.Fprintf(os.Stderr, "  producthunt: fetching feed, filtering for: %s\n",
		truncate(strings.Join(queries, ", "), 60))

	feed, err := ps.fetchFeed(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  producthunt: %v\n", err)
		return nil, nil
	}
	fmt.Fprintf(os.Stderr, "  producthunt: %d entries in feed\n", len(feed.Items))

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	var posts []Post

	for _, item := range feed.Items {
		tagline := firstParagraph(item.Content)

		if len(queries) > 0 && !matchesTopic(item.Title, tagline, queries) {
			continue
		}

		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		if published.Before(cutoff) {
			continue
		}

		body := item.Title
		if tagline != "" {
			body = item.Title + "\n\n" + tagline
		}

		posts = append(posts, Post{
			Source:    phSourceName,
			ID:        phPostID(item.GUID),
			Title:     item.Title,
			Body:      body,
			URL:       item.Link,
			Author:    phAuthor(item),
			Score:     0, // the Atom feed carries no vote counts
			CreatedAt: published.Format(time.RFC3339),
			Metadata: map[string]any{
				"tagline":     tagline,
				"product_url": item.Link,
			},
		})

		if len(posts) >= ps.maxResults {
			break
		}
	}

	fmt.Fprintf(os.Stderr, "  producthunt: %d products matched\n", len(posts))
	return posts, nil
}

func (ps *ProductHuntSource) fetchFeed(ctx context.Context) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.Client = ps.client
	fp.UserAgent = phUserAgent

	feed, err := fp.ParseURLWithContext(ps.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	return feed, nil
}

// firstParagraph extracts the text of the first <p> element from entry
// content HTML; Product Hunt puts the product tagline there.
func firstParagraph(content string) string {
	if content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("p").First().Text())
}

// matchesTopic reports whether any topic term appears in the entry's
// title or tagline. Terms match as whole phrases first; multi-word terms
// also match on any constituent word longer than two characters.
func matchesTopic(title, tagline string, terms []string) bool {
	text := strings.ToLower(title + " " + tagline)

	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(text, term) {
			return true
		}
		words := strings.Fields(term)
		if len(words) > 1 {
			for _, w := range words {
				if len(w) > 2 && strings.Contains(text, w) {
					return true
				}
			}
		}
	}
	return false
}

func phPostID(guid string) string {
	if m := phPostIDRe.FindStringSubmatch(guid); m != nil {
		return m[1]
	}
	return ""
}

func phAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return strings.TrimSpace(item.Authors[0].Name)
	}
	return ""
}

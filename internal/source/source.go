package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Post is a normalized item from any source. Adapters build posts fully
// formed; nothing mutates them afterwards.
type Post struct {
	Source    string         `json:"source"`             // origin tag: "twitter", "hackernews", ...
	ID        string         `json:"id"`                 // unique within source, not globally
	Title     string         `json:"title"`              // empty for microblog posts
	Body      string         `json:"body"`               // primary text content
	URL       string         `json:"url"`                // canonical permalink
	Author    string         `json:"author"`             // display handle, "@"-prefixed where customary
	Score     int            `json:"score"`              // source-native likes/points/upvotes
	CreatedAt string         `json:"created_at"`         // ISO 8601, empty if unknown
	Metadata  map[string]any `json:"metadata,omitempty"` // source-specific extras
}

// Key identifies a post within one run: (source, id), falling back to
// (source, url) when the source exposes no ID.
func (p Post) Key() string {
	if p.ID != "" {
		return p.Source + "\x00" + p.ID
	}
	return p.Source + "\x00" + p.URL
}

// Adapter fetches posts from one external source.
type Adapter interface {
	// Name returns the source identifier (e.g. "twitter").
	Name() string

	// BooleanSearch reports whether the source understands boolean query
	// syntax. Boolean-capable adapters get built queries; the rest get
	// plain topic terms.
	BooleanSearch() bool

	// Fetch returns posts matching the queries within the lookback
	// window. A failed query contributes zero posts and is logged; an
	// error is returned only when the adapter cannot run at all.
	Fetch(ctx context.Context, queries []string, lookbackHours int) ([]Post, error)
}

// Config carries credentials and limits shared by adapter constructors.
type Config struct {
	BearerToken string // twitter bearer token, may be empty
	ConsumerKey string // twitter consumer key for token exchange
	APIKey      string // twitter api key for token exchange
	MaxResults  int    // per-query result cap
}

// Constructor builds an adapter from shared config.
type Constructor func(cfg Config) (Adapter, error)

// All is the registry sentinel selecting every registered source.
const All = "all"

// Registry maps case-insensitive source names and aliases to adapter
// constructors.
type Registry struct {
	names        []string // canonical names in registration order
	constructors map[string]Constructor
	aliases      map[string]string
}

// NewEmpty returns a registry with no sources registered.
func NewEmpty() *Registry {
	return &Registry{
		constructors: map[string]Constructor{},
		aliases:      map[string]string{},
	}
}

// NewRegistry returns a registry with the built-in sources registered.
func NewRegistry() *Registry {
	r := NewEmpty()
	r.Register("twitter", NewTwitter, "x")
	r.Register("hackernews", NewHackerNews, "hn")
	r.Register("bluesky", NewBluesky, "bsky")
	r.Register("producthunt", NewProductHunt, "ph")
	return r
}

// Register adds a source under its canonical name plus any aliases.
func (r *Registry) Register(name string, ctor Constructor, aliases ...string) {
	name = strings.ToLower(name)
	r.names = append(r.names, name)
	r.constructors[name] = ctor
	for _, a := range aliases {
		r.aliases[strings.ToLower(a)] = name
	}
}

// Names returns the canonical source names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Aliases returns alias → canonical name pairs, sorted by alias.
func (r *Registry) Aliases() [][2]string {
	out := make([][2]string, 0, len(r.aliases))
	for a, n := range r.aliases {
		out = append(out, [2]string{a, n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Resolve maps requested names, aliases, or "all" to canonical names,
// deduplicated, in registration order for "all" and request order
// otherwise. Unknown names produce an error listing valid options.
func (r *Registry) Resolve(requested []string) ([]string, error) {
	var names []string
	seen := map[string]bool{}

	for _, req := range requested {
		req = strings.ToLower(strings.TrimSpace(req))
		if req == All {
			for _, n := range r.names {
				if !seen[n] {
					seen[n] = true
					names = append(names, n)
				}
			}
			continue
		}
		if canonical, ok := r.aliases[req]; ok {
			req = canonical
		}
		if _, ok := r.constructors[req]; !ok {
			return nil, fmt.Errorf("unknown source %q (valid: %s, %s)",
				req, strings.Join(r.names, ", "), All)
		}
		if !seen[req] {
			seen[req] = true
			names = append(names, req)
		}
	}

	return names, nil
}

// Build constructs the adapter registered under name.
func (r *Registry) Build(name string, cfg Config) (Adapter, error) {
	ctor, ok := r.constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}
	return ctor(cfg)
}

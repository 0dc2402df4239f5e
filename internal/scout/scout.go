// Package scout runs the fetch pipeline: resolve queries per source,
// fetch concurrently, deduplicate, and serialize the aggregate payload.
package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/difflabai/local-ai-scout/internal/query"
	"github.com/difflabai/local-ai-scout/internal/source"
)

// Payload is the serialized output consumed by the brief generator and
// by persistence.
type Payload struct {
	PulledAt      string        `json:"pulled_at"`
	LookbackHours int           `json:"lookback_hours"`
	Sources       []string      `json:"sources"`
	TotalPosts    int           `json:"total_posts"`
	Posts         []source.Post `json:"posts"`
}

// Encode renders the payload as indented JSON.
func (p *Payload) Encode() (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(data), nil
}

// Decode parses a payload previously produced by Encode.
func Decode(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}

// Options control one pipeline run.
type Options struct {
	Topic          string   // freeform topic for the query builder
	RawQueries     []string // bypass the query builder for every source
	DefaultQueries []string // used when topic is empty and no raw queries given
	LookbackHours  int
}

// Aggregator fetches from a set of sources and merges the results.
type Aggregator struct {
	registry *source.Registry
	cfg      source.Config
}

// New creates an aggregator over the given registry.
func New(registry *source.Registry, cfg source.Config) *Aggregator {
	return &Aggregator{registry: registry, cfg: cfg}
}

// queriesFor picks the query list for one adapter: a raw override wins
// for every source; otherwise the topic goes through the query builder
// for boolean-capable sources and plain term splitting for the rest;
// with no topic the configured defaults pass through unchanged.
func queriesFor(adapter source.Adapter, opts Options) []string {
	if len(opts.RawQueries) > 0 {
		return opts.RawQueries
	}
	if opts.Topic == "" {
		return opts.DefaultQueries
	}
	if adapter.BooleanSearch() {
		return query.BuildTopicQueries(opts.Topic)
	}
	return query.PlainTerms(opts.Topic)
}

// Run fetches from the named sources and returns the deduplicated
// aggregate. A failing source is skipped with a warning unless it is the
// only one requested, in which case its error is returned.
func (a *Aggregator) Run(ctx context.Context, names []string, opts Options) (*Payload, error) {
	adapters := make([]source.Adapter, 0, len(names))
	for _, name := range names {
		adapter, err := a.registry.Build(name, a.cfg)
		if err != nil {
			if len(names) == 1 {
				return nil, err
			}
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", name, err)
			continue
		}
		adapters = append(adapters, adapter)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no usable sources among: %v", names)
	}

	// Each adapter owns its HTTP client and dedup set, so fetches run
	// concurrently; indexed slots keep concatenation order stable.
	results := make([][]source.Post, len(adapters))
	errs := make([]error, len(adapters))

	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = adapter.Fetch(ctx, queriesFor(adapter, opts), opts.LookbackHours)
		}()
	}
	wg.Wait()

	var merged []source.Post
	var fetched []string
	for i, adapter := range adapters {
		if errs[i] != nil {
			if len(adapters) == 1 {
				return nil, errs[i]
			}
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", adapter.Name(), errs[i])
			continue
		}
		fetched = append(fetched, adapter.Name())
		merged = append(merged, results[i]...)
	}
	if len(fetched) == 0 {
		return nil, fmt.Errorf("all sources failed: %v", names)
	}

	merged = dedupe(merged)

	return &Payload{
		PulledAt:      time.Now().UTC().Format(time.RFC3339),
		LookbackHours: opts.LookbackHours,
		Sources:       fetched,
		TotalPosts:    len(merged),
		Posts:         merged,
	}, nil
}

// dedupe drops posts sharing a (source, id) key, or (source, url) when
// the id is empty. First seen wins.
func dedupe(posts []source.Post) []source.Post {
	seen := make(map[string]bool, len(posts))
	out := posts[:0]
	for _, p := range posts {
		k := p.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

// Package query builds search queries from freeform topic strings.
//
// Boolean-capable sources get quoted phrases, OR chaining, community
// handles, and a fixed negative filter. Sources without boolean search
// get plain comma-split terms.
package query

import (
	"fmt"
	"sort"
	"strings"
)

// negativeFilters excludes common spam/noise from every emitted query.
var negativeFilters = []string{
	"-is:retweet",
	"-giveaway",
	"-airdrop",
	"-whitelist",
	"-presale",
	"-NFT",
	`-"join our"`,
	`-"dm me"`,
	`-"sign up"`,
	"-is:nullcast",
}

// NegativeFilter is the clause appended to every boolean query.
var NegativeFilter = strings.Join(negativeFilters, " ")

const signalWords = `"release" OR "new" OR "benchmark" OR "comparison" OR "update" OR "workflow" OR "tutorial" OR "guide"`

// communityHandles maps lowercase topic keys to known accounts.
// Matching is substring containment in either direction.
var communityHandles = map[string][]string{
	"sdxl":             {"@StabilityAI", "@ClybAI", "@KohakuBlueleaf", "@ai_pictures"},
	"stable diffusion": {"@StabilityAI", "@ABORATORY1", "@comikidzz"},
	"pony":             {"@PurpleSmartAI"},
	"ponydiffusion":    {"@PurpleSmartAI"},
	"ponyxl":           {"@PurpleSmartAI"},
	"illustrious":      {"@aikiiin_", "@OrangeMixs"},
	"chroma":           {"@LodestoneArt", "@lodestone_art"},
	"flux":             {"@baboratory", "@bfl_ml"},
	"comfyui":          {"@comaboratory", "@comfyanonymous"},
	"image generation": {"@StabilityAI", "@bfl_ml", "@midaboratory"},
	"local ai":         {"@ggaboratory", "@ollama", "@LMStudioAI"},
	"llama":            {"@ggaboratory", "@MetaAI"},
	"ollama":           {"@ollama"},
	"mlx":              {"@ml_explore"},
}

// filler words are stripped from topic chunks before query assembly.
var filler = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "including": true,
	"models": true, "model": true, "such": true, "like": true, "also": true,
	"about": true, "from": true, "that": true, "this": true, "into": true,
	"using": true, "based": true, "their": true, "other": true, "these": true,
	// too generic on their own
	"image": true, "generation": true,
}

// extractTerms parses a topic string into multi-word phrases and single
// keywords. Commas mark phrase boundaries; chunks of two or fewer words
// keep their filler words so short chunks are not emptied.
func extractTerms(topic string) (phrases, keywords []string) {
	for _, chunk := range strings.Split(topic, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		words := strings.Fields(chunk)
		cleaned := make([]string, 0, len(words))
		for _, w := range words {
			if !filler[strings.ToLower(w)] || len(words) <= 2 {
				cleaned = append(cleaned, w)
			}
		}
		if len(cleaned) == 0 {
			cleaned = words
		}

		switch {
		case len(cleaned) >= 2:
			phrases = append(phrases, strings.Join(cleaned, " "))
		case len(cleaned) == 1 && len(cleaned[0]) > 2:
			keywords = append(keywords, cleaned[0])
		}
	}

	// No usable comma chunks: fall back to word-level extraction.
	if len(phrases) == 0 && len(keywords) == 0 {
		for _, w := range strings.Fields(topic) {
			w = strings.TrimRight(strings.TrimSpace(w), ",")
			if len(w) <= 2 || filler[strings.ToLower(w)] {
				continue
			}
			keywords = append(keywords, w)
		}
	}

	return phrases, keywords
}

// findHandles returns community accounts whose table key and a topic term
// contain each other (either direction), sorted for determinism.
func findHandles(phrases, keywords []string) []string {
	seen := map[string]bool{}
	terms := make([]string, 0, len(phrases)+len(keywords))
	for _, p := range phrases {
		terms = append(terms, strings.ToLower(p))
	}
	for _, k := range keywords {
		terms = append(terms, strings.ToLower(k))
	}

	for _, term := range terms {
		for key, accounts := range communityHandles {
			if strings.Contains(term, key) || strings.Contains(key, term) {
				for _, a := range accounts {
					seen[a] = true
				}
			}
		}
	}

	handles := make([]string, 0, len(seen))
	for h := range seen {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles
}

// BuildTopicQueries turns a freeform topic string into boolean search
// queries:
//
//  1. Broad sweep: all terms OR'd together.
//  2. Signal-filtered: top terms AND'd with signal words.
//  3. Community: from: known accounts, anchored to topic terms.
//  4. Fallback: the quoted full topic if nothing else worked.
//
// Every query carries the negative filter. Output is deterministic for a
// given topic.
func BuildTopicQueries(topic string) []string {
	phrases, keywords := extractTerms(topic)
	handles := findHandles(phrases, keywords)

	// Quote everything, single keywords included, to force exact matching.
	terms := make([]string, 0, len(phrases)+len(keywords))
	for _, p := range phrases {
		terms = append(terms, fmt.Sprintf("%q", p))
	}
	for _, k := range keywords {
		terms = append(terms, fmt.Sprintf("%q", k))
	}

	var queries []string

	if len(terms) > 0 {
		orChain := strings.Join(capped(terms, 10), " OR ")
		queries = append(queries, fmt.Sprintf("(%s) %s", orChain, NegativeFilter))
	}

	if top := capped(terms, 5); len(top) > 0 {
		queries = append(queries, fmt.Sprintf("(%s) (%s) %s",
			strings.Join(top, " OR "), signalWords, NegativeFilter))
	}

	// Pair handles with topic terms so the query is not simply
	// everything those accounts post.
	if len(handles) > 0 && len(terms) > 0 {
		froms := make([]string, 0, 6)
		for _, h := range capped(handles, 6) {
			froms = append(froms, "from:"+strings.TrimPrefix(h, "@"))
		}
		anchor := strings.Join(capped(terms, 3), " OR ")
		queries = append(queries, fmt.Sprintf("(%s) (%s) %s",
			strings.Join(froms, " OR "), anchor, NegativeFilter))
	}

	if len(queries) == 0 {
		queries = append(queries, fmt.Sprintf("%q %s", topic, NegativeFilter))
	}

	return queries
}

// PlainTerms splits a topic into standalone search terms for sources
// without boolean search. Terms are comma-delimited; a topic with no
// commas is a single term.
func PlainTerms(topic string) []string {
	var terms []string
	for _, t := range strings.Split(topic, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		terms = []string{topic}
	}
	return terms
}

func capped(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

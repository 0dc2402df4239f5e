package source

import (
	"reflect"
	"testing"
)

func TestPostKey(t *testing.T) {
	withID := Post{Source: "twitter", ID: "123", URL: "https://x.com/u/status/123"}
	withoutID := Post{Source: "producthunt", URL: "https://www.producthunt.com/posts/foo"}

	if withID.Key() != "twitter\x00123" {
		t.Errorf("key = %q, want source+id", withID.Key())
	}
	if withoutID.Key() != "producthunt\x00https://www.producthunt.com/posts/foo" {
		t.Errorf("key = %q, want source+url fallback", withoutID.Key())
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name      string
		requested []string
		want      []string
		wantErr   bool
	}{
		{"canonical", []string{"twitter"}, []string{"twitter"}, false},
		{"alias", []string{"hn"}, []string{"hackernews"}, false},
		{"case insensitive", []string{"Bluesky", "PH"}, []string{"bluesky", "producthunt"}, false},
		{"all", []string{"all"}, []string{"twitter", "hackernews", "bluesky", "producthunt"}, false},
		{"all plus name dedupes", []string{"twitter", "all"}, []string{"twitter", "hackernews", "bluesky", "producthunt"}, false},
		{"duplicate collapses", []string{"x", "twitter"}, []string{"twitter"}, false},
		{"unknown", []string{"myspace"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.requested)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistryBuild(t *testing.T) {
	r := NewRegistry()

	adapter, err := r.Build("hackernews", Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapter.Name() != "hackernews" {
		t.Errorf("name = %q, want hackernews", adapter.Name())
	}

	if _, err := r.Build("nope", Config{}); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

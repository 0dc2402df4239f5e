package query

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildTopicQueries_SDXLComfyUI(t *testing.T) {
	queries := BuildTopicQueries("SDXL, ComfyUI workflows")

	if len(queries) != 3 {
		t.Fatalf("got %d queries, want 3:\n%s", len(queries), strings.Join(queries, "\n"))
	}

	// Chunk "ComfyUI workflows" is a two-word phrase, "SDXL" a keyword.
	broad := queries[0]
	if !strings.Contains(broad, `"ComfyUI workflows"`) {
		t.Errorf("broad query missing quoted phrase: %s", broad)
	}
	if !strings.Contains(broad, `"SDXL"`) {
		t.Errorf("broad query missing quoted keyword: %s", broad)
	}
	if !strings.HasSuffix(broad, NegativeFilter) {
		t.Errorf("broad query missing negative filter: %s", broad)
	}

	if !strings.Contains(queries[1], `"release" OR "new"`) {
		t.Errorf("signal query missing signal words: %s", queries[1])
	}

	// "sdxl" matches the sdxl key, "comfyui workflows" contains the
	// comfyui key; the union is sorted and capped at 6.
	community := queries[2]
	for _, h := range []string{"from:StabilityAI", "from:comaboratory", "from:comfyanonymous"} {
		if !strings.Contains(community, h) {
			t.Errorf("community query missing %s: %s", h, community)
		}
	}
}

func TestBuildTopicQueries_Deterministic(t *testing.T) {
	topic := "SDXL, ComfyUI workflows, flux"
	first := BuildTopicQueries(topic)
	for range 5 {
		if got := BuildTopicQueries(topic); !reflect.DeepEqual(got, first) {
			t.Fatalf("non-deterministic output:\n%v\n%v", first, got)
		}
	}
}

func TestBuildTopicQueries_HandlesSortedAndCapped(t *testing.T) {
	// "sdxl" alone matches 4 accounts from a single key.
	queries := BuildTopicQueries("sdxl")
	if len(queries) != 3 {
		t.Fatalf("got %d queries, want 3", len(queries))
	}

	community := queries[2]
	wantOrder := []string{"from:ClybAI", "from:KohakuBlueleaf", "from:StabilityAI", "from:ai_pictures"}
	last := -1
	for _, h := range wantOrder {
		i := strings.Index(community, h)
		if i < 0 {
			t.Fatalf("community query missing %s: %s", h, community)
		}
		if i < last {
			t.Errorf("handle %s out of alphabetical order: %s", h, community)
		}
		last = i
	}
}

func TestBuildTopicQueries_PhraseNeverSplit(t *testing.T) {
	queries := BuildTopicQueries("stable diffusion fine tuning, other stuff")
	if !strings.Contains(queries[0], `"stable diffusion fine tuning"`) {
		t.Errorf("multi-word chunk split instead of quoted: %s", queries[0])
	}
}

func TestBuildTopicQueries_FillerStripping(t *testing.T) {
	// Fillers drop from long chunks.
	queries := BuildTopicQueries("the best models for local inference")
	if !strings.Contains(queries[0], `"best local inference"`) {
		t.Errorf("fillers not stripped from long chunk: %s", queries[0])
	}

	// Chunks of two or fewer words keep their fillers.
	queries = BuildTopicQueries("the model, sdxl")
	if !strings.Contains(queries[0], `"the model"`) {
		t.Errorf("short chunk lost its filler words: %s", queries[0])
	}
}

func TestBuildTopicQueries_FallbackQuotesWholeTopic(t *testing.T) {
	// "ai" is too short to survive extraction anywhere.
	queries := BuildTopicQueries("ai")
	if len(queries) != 1 {
		t.Fatalf("got %d queries, want 1 fallback", len(queries))
	}
	if !strings.HasPrefix(queries[0], `"ai"`) {
		t.Errorf("fallback should quote the whole topic: %s", queries[0])
	}
	if !strings.Contains(queries[0], NegativeFilter) {
		t.Errorf("fallback missing negative filter: %s", queries[0])
	}
}

func TestBuildTopicQueries_SingleKeyword(t *testing.T) {
	queries := BuildTopicQueries("llama")
	if !strings.Contains(queries[0], `"llama"`) {
		t.Errorf("single keyword not extracted: %s", queries[0])
	}
}

func TestBuildTopicQueries_NoCommunityQueryWithoutHandles(t *testing.T) {
	queries := BuildTopicQueries("quantum networking, distributed consensus")
	if len(queries) != 2 {
		t.Fatalf("got %d queries, want 2 (no community match):\n%s",
			len(queries), strings.Join(queries, "\n"))
	}
	for _, q := range queries {
		if strings.Contains(q, "from:") {
			t.Errorf("unexpected community clause: %s", q)
		}
	}
}

func TestPlainTerms(t *testing.T) {
	tests := []struct {
		topic string
		want  []string
	}{
		{"AI, automation", []string{"AI", "automation"}},
		{"single topic", []string{"single topic"}},
		{" spaced ,  terms ", []string{"spaced", "terms"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		if got := PlainTerms(tt.topic); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PlainTerms(%q) = %v, want %v", tt.topic, got, tt.want)
		}
	}
}

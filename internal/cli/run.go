package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/difflabai/local-ai-scout/internal/brief"
	"github.com/difflabai/local-ai-scout/internal/config"
	"github.com/difflabai/local-ai-scout/internal/scout"
	"github.com/difflabai/local-ai-scout/internal/store"
	"github.com/spf13/cobra"
)

var (
	runTopic     string
	runQueries   []string
	runSources   []string
	runLookback  int
	runFromFile  string
	runSave      bool
	runSavePosts bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Pull posts and generate a brief",
	RunE:  runAction,
}

func init() {
	runCmd.Flags().StringVar(&runTopic, "topic", "", "topic to scout (default: config topic or "+config.EnvFocus+")")
	runCmd.Flags().StringArrayVar(&runQueries, "queries", nil, "raw query strings, bypass the query builder")
	runCmd.Flags().StringSliceVar(&runSources, "sources", nil, "sources to pull (name, alias, or \"all\")")
	runCmd.Flags().IntVar(&runLookback, "lookback", 0, "lookback window in hours")
	runCmd.Flags().StringVar(&runFromFile, "from-file", "", "replay a saved posts JSON file instead of fetching")
	runCmd.Flags().BoolVar(&runSave, "save", false, "save the brief to the briefs directory and archive the run")
	runCmd.Flags().BoolVar(&runSavePosts, "save-posts", false, "also save the raw posts JSON")
	rootCmd.AddCommand(runCmd)
}

func runAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	topic := runTopic
	if topic == "" {
		topic = cfg.Topic
	}
	if topic != "" {
		fmt.Fprintf(os.Stderr, "Focus: %s\n", topic)
	}

	// The brief is the run's output, so a missing generator key fails
	// before any fetching happens.
	generator, err := brief.NewGenerator(cfg.LLMAPIKey, cfg.LLM.Model, cfg.LLM.MaxTokens)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var payloadJSON string
	var payload *scout.Payload

	if runFromFile != "" {
		fmt.Fprintf(os.Stderr, "Loading %s\n", runFromFile)
		data, err := os.ReadFile(runFromFile)
		if err != nil {
			return fmt.Errorf("read posts file: %w", err)
		}
		payloadJSON = string(data)
	} else {
		payload, err = pullPayload(ctx, cfg, topic, runQueries, runSources, runLookback)
		if err != nil {
			return err
		}
		payloadJSON, err = payload.Encode()
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, "Generating brief...")
	text, err := generator.Generate(ctx, brief.BuildSystemPrompt(topic), payloadJSON)
	if err != nil {
		return fmt.Errorf("generate brief: %w", err)
	}

	fmt.Println(text)

	if runSave || runSavePosts {
		if err := saveOutputs(ctx, cfg, topic, payload, payloadJSON, text); err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, "Done.")
	return nil
}

// pullPayload resolves sources and runs the aggregator. Shared by run
// and pull.
func pullPayload(ctx context.Context, cfg *config.Config, topic string, rawQueries, sourceNames []string, lookback int) (*scout.Payload, error) {
	if len(sourceNames) == 0 {
		sourceNames = cfg.Sources
	}
	if lookback <= 0 {
		lookback = cfg.LookbackHours
	}

	registry := newRegistry()
	names, err := registry.Resolve(sourceNames)
	if err != nil {
		return nil, err
	}

	if len(rawQueries) > 0 {
		fmt.Fprintf(os.Stderr, "Using %d raw queries\n", len(rawQueries))
	}

	agg := scout.New(registry, sourceConfig(cfg))
	fmt.Fprintln(os.Stderr, "Pulling posts...")

	payload, err := agg.Run(ctx, names, scout.Options{
		Topic:          topic,
		RawQueries:     rawQueries,
		DefaultQueries: cfg.Queries,
		LookbackHours:  lookback,
	})
	if err != nil {
		return nil, fmt.Errorf("pull posts: %w", err)
	}
	return payload, nil
}

func saveOutputs(ctx context.Context, cfg *config.Config, topic string, payload *scout.Payload, payloadJSON, briefText string) error {
	if err := os.MkdirAll(cfg.BriefsDir, 0o755); err != nil {
		return fmt.Errorf("create briefs dir: %w", err)
	}
	dateStr := time.Now().Format("2006-01-02")

	if runSave {
		path := filepath.Join(cfg.BriefsDir, dateStr+".md")
		if err := os.WriteFile(path, []byte(briefText), 0o644); err != nil {
			return fmt.Errorf("write brief: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Brief -> %s\n", path)
	}

	if runSavePosts {
		path := filepath.Join(cfg.BriefsDir, dateStr+"-posts.json")
		if err := os.WriteFile(path, []byte(payloadJSON), 0o644); err != nil {
			return fmt.Errorf("write posts: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Posts -> %s\n", path)
	}

	// Replayed runs (no fresh payload) are not archived.
	if runSave && payload != nil {
		db, err := store.Open(cfg.ArchivePath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer func() { _ = db.Close() }()

		id, err := db.InsertRun(ctx, store.RunInput{
			Topic:         topic,
			Sources:       payload.Sources,
			LookbackHours: payload.LookbackHours,
			TotalPosts:    payload.TotalPosts,
			Payload:       payloadJSON,
			Brief:         briefText,
			CreatedAt:     time.Now(),
		})
		if err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Archived run %d\n", id)
	}

	return nil
}

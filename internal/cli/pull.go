package cli

import (
	"fmt"
	"os"

	"github.com/difflabai/local-ai-scout/internal/config"
	"github.com/difflabai/local-ai-scout/internal/source"
	"github.com/spf13/cobra"
)

var (
	pullTopic    string
	pullQueries  []string
	pullSources  []string
	pullLookback int
	pullOut      string
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull posts and print the payload JSON (no brief)",
	RunE:  pullAction,
}

func init() {
	pullCmd.Flags().StringVar(&pullTopic, "topic", "", "topic to scout")
	pullCmd.Flags().StringArrayVar(&pullQueries, "queries", nil, "raw query strings, bypass the query builder")
	pullCmd.Flags().StringSliceVar(&pullSources, "sources", nil, "sources to pull (name, alias, or \"all\")")
	pullCmd.Flags().IntVar(&pullLookback, "lookback", 0, "lookback window in hours")
	pullCmd.Flags().StringVar(&pullOut, "out", "", "write payload to file instead of stdout")
	rootCmd.AddCommand(pullCmd)
}

func pullAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	topic := pullTopic
	if topic == "" {
		topic = cfg.Topic
	}

	payload, err := pullPayload(cmd.Context(), cfg, topic, pullQueries, pullSources, pullLookback)
	if err != nil {
		return err
	}

	payloadJSON, err := payload.Encode()
	if err != nil {
		return err
	}

	if pullOut != "" {
		if err := os.WriteFile(pullOut, []byte(payloadJSON), 0o644); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Payload -> %s (%d posts)\n", pullOut, payload.TotalPosts)
		return nil
	}

	fmt.Println(payloadJSON)
	return nil
}

func newRegistry() *source.Registry {
	return source.NewRegistry()
}

func sourceConfig(cfg *config.Config) source.Config {
	return source.Config{
		BearerToken: cfg.BearerToken,
		ConsumerKey: cfg.ConsumerKey,
		APIKey:      cfg.APIKey,
		MaxResults:  cfg.MaxResults,
	}
}

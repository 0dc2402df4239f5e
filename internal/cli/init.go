package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/difflabai/local-ai-scout/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config directory with an example config",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	path := filepath.Join(configDir, config.DefaultConfigFile)
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
		return nil
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return nil
}

const exampleConfig = `# scout configuration
#
# Credentials come from the environment:
#   X_BEARER_TOKEN   X API bearer token
#                    (or X_CONSUMER_KEY + X_API_KEY for token exchange)
#   NANOGPT_API_KEY  LLM API key
#   SCOUT_FOCUS      topic override when none is set here

topic: ""

# Raw queries used when no topic is configured. Bypass the query builder.
queries: []

lookback_hours: 24
max_results: 100

# name, alias, or "all"
sources:
  - all

llm:
  model: deepseek-ai/DeepSeek-V3
  max_tokens: 4000

briefs_dir: briefs
archive_path: .scout/scout.db
`

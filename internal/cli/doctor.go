package cli

import (
	"fmt"
	"os"

	"github.com/difflabai/local-ai-scout/internal/config"
	"github.com/difflabai/local-ai-scout/internal/store"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and credentials",
	RunE:  doctorAction,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func doctorAction(_ *cobra.Command, _ []string) error {
	ok := true

	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "config (%d sources, lookback %dh, model %s)",
		len(cfg.Sources), cfg.LookbackHours, cfg.LLM.Model)

	// Twitter credentials: either a bearer token or an exchangeable pair.
	switch {
	case cfg.BearerToken != "":
		printCheck(true, "twitter auth: %s", config.EnvBearerToken)
	case cfg.ConsumerKey != "" && cfg.APIKey != "":
		printCheck(true, "twitter auth: %s + %s", config.EnvConsumerKey, config.EnvAPIKey)
	default:
		printCheck(false, "twitter auth: set %s (or %s + %s); runs with --sources twitter will fail",
			config.EnvBearerToken, config.EnvConsumerKey, config.EnvAPIKey)
		ok = false
	}

	if cfg.LLMAPIKey != "" {
		printCheck(true, "llm auth: %s", config.EnvLLMAPIKey)
	} else {
		printCheck(false, "llm auth: set %s", config.EnvLLMAPIKey)
		ok = false
	}

	if focus := os.Getenv(config.EnvFocus); focus != "" {
		printCheck(true, "%s=%q", config.EnvFocus, focus)
	}

	db, err := store.Open(cfg.ArchivePath)
	if err != nil {
		printCheck(false, "archive: %v", err)
		ok = false
	} else {
		_ = db.Close()
		printCheck(true, "archive %s", cfg.ArchivePath)
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

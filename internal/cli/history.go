package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/difflabai/local-ai-scout/internal/config"
	"github.com/difflabai/local-ai-scout/internal/store"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List archived briefs, or print one by ID",
	Args:  cobra.MaximumNArgs(1),
	RunE:  historyAction,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func historyAction(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.ArchivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		run, err := db.GetRun(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(run.Brief)
		return nil
	}

	runs, err := db.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	for _, r := range runs {
		topic := r.Topic
		if topic == "" {
			topic = "(default queries)"
		}
		fmt.Printf("%4d  %s  %-40s  %d posts  [%s]\n",
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04"),
			topic,
			r.TotalPosts,
			strings.Join(r.Sources, ", "))
	}
	return nil
}

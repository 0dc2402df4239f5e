package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered sources and aliases",
	Run: func(_ *cobra.Command, _ []string) {
		registry := newRegistry()
		fmt.Println("Sources:")
		for _, name := range registry.Names() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("Aliases:")
		for _, pair := range registry.Aliases() {
			fmt.Printf("  %s -> %s\n", pair[0], pair[1])
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

package main

import (
	"os"

	"github.com/difflabai/local-ai-scout/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

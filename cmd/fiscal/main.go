package main

import (
	"os"

	"github.com/wonny/fiscalrisk/cmd/fiscal/commands"
)

// main is the entry point for the fiscal CLI: go run ./cmd/fiscal [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

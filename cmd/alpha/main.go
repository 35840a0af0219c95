package main

import (
	"os"

	"github.com/wonny/alpha-engine/backend/cmd/alpha/commands"
)

// main is the entry point for the alpha CLI: go run ./cmd/alpha [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

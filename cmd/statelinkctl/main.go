package main

import (
	"os"

	"github.com/statelink/statelink-backend/cmd/statelinkctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

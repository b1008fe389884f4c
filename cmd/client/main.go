package main

import (
	"os"

	"github.com/cbodonnell/dirtydishes/cmd/client/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

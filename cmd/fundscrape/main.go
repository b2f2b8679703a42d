// Package main is the entry point for the fundscrape CLI.
package main

import (
	"os"

	"github.com/jmylchreest/fundscrape/cmd/fundscrape/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the hangar CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/hangar/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the fmto command.
package main

import (
	"os"

	"github.com/leapstack-labs/fmto/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"ghgcli/internal/cli"
	"ghgcli/pkg/contracts"
)

func main() {
	if err := cli.NewRootCmd(contracts.Version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates a crossed --fail-on tier from real failures
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrTierReached):
		return 2
	default:
		return 1
	}
}

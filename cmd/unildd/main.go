package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/simonhull/unildd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Per-file failures were already reported next to their output.
		if !errors.Is(err, cli.ErrReadFailed) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// ABOUTME: Entry point for the hxplay resource browser and auditioner
// ABOUTME: Runs the CLI and maps errors to the process exit code
package main

import (
	"fmt"
	"os"

	"github.com/hxtool/hxplay/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

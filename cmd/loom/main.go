// Command loom serves, renders and scaffolds Loom applications.
package main

import (
	"fmt"
	"os"

	"github.com/loom-ui/loom/cmd/loom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

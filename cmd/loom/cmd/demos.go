package cmd

import (
	"fmt"

	"github.com/loom-ui/loom/cmd/loom/internal/demos"
)

func init() {
	RegisterCommand(&Command{
		Name:  "demos",
		Short: "List the bundled demos",
		Long: `List the demo applications that "loom serve" and "loom render" accept.`,
		Usage: "loom demos",
		Run:   runDemos,
	})
}

func runDemos(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("demos takes no arguments")
	}
	for _, d := range demos.All() {
		fmt.Fprintf(stdout, "  %-12s %s\n", d.Name, d.Short)
	}
	return nil
}

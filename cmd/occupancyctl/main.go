// Command occupancyctl is an offline companion to occupancyd: it validates a
// location hierarchy config, replays a scripted sequence of events against it
// without ever starting a server, prints a hierarchy's initial snapshot, and
// restores a snapshot file into a fresh engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "occupancyctl",
		Short: "Validate, simulate, and inspect occupancyx location hierarchies",
	}
	root.AddCommand(validateCmd())
	root.AddCommand(simulateCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(restoreCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command rostertool is a thin CLI exercising the versioned-tree core
// against files on disk: manifest hashing, change-set diff, roster-
// delta construction/application, and restricted-commit splitting. All
// decisions live in the library packages (pkg/roster, pkg/changeset,
// pkg/rosterdelta, pkg/restriction, ...); this command only wires them to
// argv and stdio, per specification §1's treatment of CLI parsing as an
// external collaborator.
//
// Grounded on the teacher's root-command wiring (mutagen's
// cmd/mutagen/main.go builds one cobra.Command tree with subcommands
// registered in a single init), adapted to this tool's much smaller
// surface.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/archivekeep/rosettavcs/pkg/logging"
)

var log = logging.RootLogger.Sublogger("rostertool")

var rootCommand = &cobra.Command{
	Use:   "rostertool",
	Short: "Inspect and manipulate versioned-tree rosters, change sets, and deltas",
}

func init() {
	cobra.EnableCommandSorting = false
	rootCommand.AddCommand(
		manifestCommand,
		diffCommand,
		deltaCommand,
		restrictCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

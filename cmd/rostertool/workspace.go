package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivekeep/rosettavcs/pkg/workspace"
)

var workspaceCommand = &cobra.Command{
	Use:   "workspace-hash",
	Short: "Print a random placeholder manifest hash for an uncommitted workspace revision",
	Args:  cobra.NoArgs,
	RunE:  workspaceMain,
}

func init() {
	rootCommand.AddCommand(workspaceCommand)
}

func workspaceMain(command *cobra.Command, arguments []string) error {
	fmt.Println(workspace.NewPlaceholderHash())
	return nil
}

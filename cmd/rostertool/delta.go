package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/archivekeep/rosettavcs/pkg/rosterdelta"
	"github.com/archivekeep/rosettavcs/pkg/rosterio"
)

var deltaCommand = &cobra.Command{
	Use:   "delta",
	Short: "Construct or apply a roster delta (§4.6)",
}

var deltaMakeCommand = &cobra.Command{
	Use:   "make <from-roster-file> <to-roster-file>",
	Short: "Compute the roster delta between two stored (roster, marking) pairs",
	Args:  cobra.ExactArgs(2),
	RunE:  deltaMakeMain,
}

var deltaApplyCommand = &cobra.Command{
	Use:   "apply <roster-file> <delta-file>",
	Short: "Apply a roster delta onto a stored (roster, marking) pair",
	Args:  cobra.ExactArgs(2),
	RunE:  deltaApplyMain,
}

func init() {
	deltaCommand.AddCommand(deltaMakeCommand, deltaApplyCommand)
}

func deltaMakeMain(command *cobra.Command, arguments []string) error {
	from, err := loadRoster(arguments[0])
	if err != nil {
		return err
	}
	to, err := loadRoster(arguments[1])
	if err != nil {
		return err
	}

	d := rosterdelta.Make(from.roster, from.marking, to.roster, to.marking, nil)

	out := d.Serialize()
	fmt.Fprintln(os.Stderr, color.CyanString("delta size: %s", humanize.Bytes(uint64(len(out)))))
	fmt.Print(string(out))
	return nil
}

func deltaApplyMain(command *cobra.Command, arguments []string) error {
	pair, err := loadRoster(arguments[0])
	if err != nil {
		return err
	}
	deltaBytes, err := os.ReadFile(arguments[1])
	if err != nil {
		return errors.Wrap(err, "reading delta file")
	}

	d, err := rosterdelta.Parse(deltaBytes)
	if err != nil {
		return errors.Wrap(err, "parsing delta")
	}

	if err := d.Apply(pair.roster, pair.marking); err != nil {
		return errors.Wrap(err, "applying delta")
	}
	if err := pair.roster.CheckSane(); err != nil {
		return errors.Wrap(err, "resulting roster failed sanity check")
	}

	out, err := rosterio.Serialize(pair.roster, pair.marking)
	if err != nil {
		return errors.Wrap(err, "serializing result")
	}
	fmt.Print(string(out))
	return nil
}

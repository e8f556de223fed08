package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/archivekeep/rosettavcs/pkg/changeset"
	"github.com/archivekeep/rosettavcs/pkg/rosterio"
)

var diffCommand = &cobra.Command{
	Use:   "diff <from-roster-file> <to-roster-file>",
	Short: "Compute and print the change set between two stored rosters",
	Args:  cobra.ExactArgs(2),
	RunE:  diffMain,
}

func loadRoster(path string) (*rosterPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	r, m, err := rosterio.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &rosterPair{r, m}, nil
}

func diffMain(command *cobra.Command, arguments []string) error {
	from, err := loadRoster(arguments[0])
	if err != nil {
		return err
	}
	to, err := loadRoster(arguments[1])
	if err != nil {
		return err
	}

	cs, err := changeset.Make(from.roster, to.roster)
	if err != nil {
		return errors.Wrap(err, "computing change set")
	}

	fmt.Print(string(cs.Serialize()))
	return nil
}

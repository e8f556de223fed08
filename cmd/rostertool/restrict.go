package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/archivekeep/rosettavcs/pkg/changeset"
	"github.com/archivekeep/rosettavcs/pkg/restriction"
)

// restrictionProfile is the on-disk shape of a restriction, loaded from a
// YAML file the way the teacher loads session/project configuration
// (mutagen's pkg/configuration parses YAML profiles with gopkg.in/yaml.v3).
// Include/exclude entries may be literal internal paths or doublestar
// glob patterns; globs are expanded against the union of the "from" and
// "to" rosters' paths at load time.
type restrictionProfile struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Depth   int      `yaml:"depth"`
}

func loadRestrictionProfile(path string, from, to *rosterPair) (*restriction.Restriction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading restriction profile")
	}
	var profile restrictionProfile
	profile.Depth = -1
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, errors.Wrap(err, "parsing restriction profile")
	}

	candidates := append(from.roster.AllPaths(), to.roster.AllPaths()...)
	r, err := restriction.NewFromGlobs(profile.Include, profile.Exclude, profile.Depth, candidates)
	if err != nil {
		return nil, errors.Wrap(err, "expanding restriction profile")
	}
	return r, nil
}

var restrictConfiguration struct {
	profile      string
	singleParent bool
}

var restrictCommand = &cobra.Command{
	Use:   "restrict <from-roster-file> <to-roster-file>",
	Short: "Split the change set between two rosters into included/excluded halves (§4.3, §4.7)",
	Args:  cobra.ExactArgs(2),
	RunE:  restrictMain,
}

func init() {
	flags := restrictCommand.Flags()
	flags.StringVar(&restrictConfiguration.profile, "profile", "", "YAML restriction profile file (include/exclude globs, depth)")
	flags.BoolVar(&restrictConfiguration.singleParent, "single-parent", true, "whether the workspace has a single parent (required for a non-empty exclusion)")
}

func restrictMain(command *cobra.Command, arguments []string) error {
	from, err := loadRoster(arguments[0])
	if err != nil {
		return err
	}
	to, err := loadRoster(arguments[1])
	if err != nil {
		return err
	}

	r, err := loadRestrictionProfile(restrictConfiguration.profile, from, to)
	if err != nil {
		return err
	}
	if err := r.CheckPathsExist(from.roster, to.roster); err != nil {
		return err
	}

	cs, err := changeset.Make(from.roster, to.roster)
	if err != nil {
		return errors.Wrap(err, "computing change set")
	}

	included, excluded, err := restriction.Split(cs, r, restrictConfiguration.singleParent)
	if err != nil {
		return errors.Wrap(err, "splitting change set")
	}

	fmt.Println("# included")
	fmt.Print(string(included.Serialize()))
	fmt.Println("# excluded")
	fmt.Print(string(excluded.Serialize()))
	return nil
}

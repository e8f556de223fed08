package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/archivekeep/rosettavcs/pkg/hash"
	"github.com/archivekeep/rosettavcs/pkg/manifestio"
	"github.com/archivekeep/rosettavcs/pkg/rosterio"
)

var manifestConfiguration struct {
	// algorithm selects the content hash algorithm (see hash.Algorithm).
	algorithm string
}

var manifestCommand = &cobra.Command{
	Use:   "manifest <roster-file>",
	Short: "Render a stored roster's manifest form and its content hash",
	Args:  cobra.ExactArgs(1),
	RunE:  manifestMain,
}

func init() {
	flags := manifestCommand.Flags()
	flags.StringVar(&manifestConfiguration.algorithm, "algorithm", "blake2b-160", "content hash algorithm (blake2b-160 or sha1)")
}

func parseAlgorithm(name string) (hash.Algorithm, error) {
	switch name {
	case "blake2b-160":
		return hash.AlgorithmBLAKE2b160, nil
	case "sha1":
		return hash.AlgorithmSHA1, nil
	default:
		return hash.AlgorithmDefault, errors.Errorf("unknown hash algorithm %q", name)
	}
}

func manifestMain(command *cobra.Command, arguments []string) error {
	data, err := os.ReadFile(arguments[0])
	if err != nil {
		return errors.Wrap(err, "reading roster file")
	}

	r, _, err := rosterio.Parse(data)
	if err != nil {
		return errors.Wrap(err, "parsing roster")
	}

	alg, err := parseAlgorithm(manifestConfiguration.algorithm)
	if err != nil {
		return err
	}

	manifest := manifestio.Serialize(r)
	sum := alg.Sum(manifest)

	fmt.Printf("%s %s\n", color.GreenString("manifest hash:"), sum)
	fmt.Printf("%s %s (%s)\n", color.CyanString("manifest size:"), humanize.Bytes(uint64(len(manifest))), alg.Description())
	log.Debug("computed manifest hash for ", arguments[0])
	return nil
}

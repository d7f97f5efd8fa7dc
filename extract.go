// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/p-rev/swbf-unmunge/msh"
	"github.com/p-rev/swbf-unmunge/munge"
	"github.com/p-rev/swbf-unmunge/saver"
)

func extractCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{
			Name:        "version",
			Usage:       "game version of the input (swbf, swbf2)",
			Value:       "swbf2",
			Destination: &versionName,
		},
		&cli.StringFlag{
			Name:        "outdir",
			Aliases:     []string{"o"},
			Usage:       "directory to extract into",
			Value:       ".",
			Destination: &outDir,
		},
	)
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract the assets of munged files",
		ArgsUsage: "<file>...",
		Flags:     flags,
		Action:    runExtract,
	}
}

func parsePlatform(name string) (munge.Platform, error) {
	switch name {
	case "pc":
		return munge.PlatformPC, nil
	case "ps2":
		return munge.PlatformPS2, nil
	case "xbox":
		return munge.PlatformXbox, nil
	}
	return munge.PlatformPC, errors.Errorf("unknown platform %q", name)
}

// parseVersion validates the game version the input claims to be. The
// material dialect is detected per chunk, so the version only labels the
// run.
func parseVersion(name string) (string, error) {
	switch name {
	case "swbf", "swbf2":
		return name, nil
	}
	return "", errors.Errorf("unknown game version %q", name)
}

func runExtract(ctx context.Context, cmd *cli.Command) error {
	applyConfig(cmd, loadConfig())
	munge.Verbose = verbose

	platform, err := parsePlatform(platformName)
	if err != nil {
		return err
	}
	version, err := parseVersion(versionName)
	if err != nil {
		return err
	}
	if cmd.Args().Len() == 0 {
		return errors.New("no input files")
	}
	if verbose {
		log.Printf("extracting %s %s assets into %s", version, platform, outDir)
	}

	s := saver.New(outDir)
	builders := msh.NewBuilderMap()

	for _, file := range cmd.Args().Slice() {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if err := munge.HandleUcfb(data, platform, s, builders); err != nil {
			return errors.Wrapf(err, "processing %s", file)
		}
	}

	if verbose {
		for _, name := range builders.Names() {
			log.Printf("decoded model %s with %d segment(s)", name, len(builders.Get(name).Models()))
		}
	}
	return nil
}

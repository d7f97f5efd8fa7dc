// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/p-rev/swbf-unmunge/modl"
	"github.com/p-rev/swbf-unmunge/msh"
	"github.com/p-rev/swbf-unmunge/munge"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Dump the decoded models of munged files as JSON",
		ArgsUsage: "<file>...",
		Flags:     commonFlags(),
		Action:    runInspect,
	}
}

type modelDump struct {
	Name   string
	Bbox   msh.Bbox
	Models []msh.Model
}

func runInspect(ctx context.Context, cmd *cli.Command) error {
	applyConfig(cmd, loadConfig())

	platform, err := parsePlatform(platformName)
	if err != nil {
		return err
	}
	if cmd.Args().Len() == 0 {
		return errors.New("no input files")
	}

	builders := msh.NewBuilderMap()
	magicModl := ucfb.MagicNumber("modl")

	for _, file := range cmd.Args().Slice() {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		root, err := ucfb.NewReader(data)
		if err != nil {
			return errors.Wrapf(err, "reading %s", file)
		}
		for root.More() {
			chunk, err := root.ReadChild()
			if err != nil {
				return errors.Wrapf(err, "reading %s", file)
			}
			if chunk.Magic() != magicModl {
				continue
			}
			if verbose {
				log.Printf("processing %s chunk of %d bytes", ucfb.MagicString(chunk.Magic()), chunk.Size())
			}
			switch platform {
			case munge.PlatformPS2:
				err = modl.HandleModelPS2(chunk, builders)
			case munge.PlatformXbox:
				err = modl.HandleModelXbox(chunk, builders)
			default:
				err = modl.HandleModel(chunk, builders)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping model chunk in %s: %v\n", file, err)
			}
		}
	}

	dumps := make([]modelDump, 0, builders.Len())
	for _, name := range builders.Names() {
		builder := builders.Get(name)
		dumps = append(dumps, modelDump{
			Name:   name,
			Bbox:   builder.Bbox(),
			Models: builder.Models(),
		})
	}

	out, err := json.MarshalIndent(dumps, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}

package main

import "github.com/urfave/cli/v3"

var (
	platformName string
	versionName  string
	outDir       string
	verbose      bool
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "platform",
			Aliases:     []string{"p"},
			Usage:       "input platform (pc, ps2, xbox)",
			Value:       "pc",
			Destination: &platformName,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "log per-chunk progress",
			Destination: &verbose,
		},
	}
}

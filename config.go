// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the optional configuration file
// (~/.config/swbf-unmunge/config.yaml) supplying flag defaults.
type Config struct {
	Platform string `yaml:"platform"`
	Version  string `yaml:"version"`
	OutDir   string `yaml:"out_dir"`
	Verbose  *bool  `yaml:"verbose"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "swbf-unmunge", "config.yaml")
}

func loadConfig() Config {
	var cfg Config
	path := configPath()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	// A malformed config file is ignored rather than fatal.
	_ = yaml.Unmarshal(data, &cfg)
	return cfg
}

// applyConfig fills in defaults from the config file for flags the user
// did not set on the command line.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.Platform != "" && !c.IsSet("platform") {
		platformName = cfg.Platform
	}
	if cfg.Version != "" && !c.IsSet("version") {
		versionName = cfg.Version
	}
	if cfg.OutDir != "" && !c.IsSet("outdir") {
		outDir = cfg.OutDir
	}
	if cfg.Verbose != nil && !c.IsSet("verbose") {
		verbose = *cfg.Verbose
	}
}

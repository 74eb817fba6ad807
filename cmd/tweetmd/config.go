package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ttm-go/tweetmd/config"
)

var cmdConfig = &cli.Command{
	Name:  "config",
	Usage: "sub-commands for the config file",
	Subcommands: []*cli.Command{
		&cli.Command{
			Name:  "init",
			Usage: "write a config file with the default settings",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "force",
					Usage: "overwrite an existing config file",
				},
			},
			Action: runConfigInit,
		},
		&cli.Command{
			Name:   "show",
			Usage:  "print the effective settings",
			Action: runConfigShow,
		},
	},
}

func runConfigInit(cctx *cli.Context) error {
	path := cctx.String("config")
	if path == "" {
		if existing, err := config.DefaultPath(); err == nil {
			path = existing
		} else if !errors.Is(err, config.ErrNoConfig) {
			return err
		}
	}
	if path != "" && !cctx.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}
	s := config.Default()
	written, err := s.Save(path)
	if err != nil {
		return err
	}
	fmt.Println(written)
	return nil
}

func runConfigShow(cctx *cli.Context) error {
	s, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}
	s.BearerToken = ""
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	fmt.Print(string(b))
	return nil
}

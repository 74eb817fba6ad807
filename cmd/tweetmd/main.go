package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	_ "go.uber.org/automaxprocs"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(-1)
	}
}

var renderFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "bearer-token",
		Usage:   "Twitter API bearer token, or a TTM service key",
		EnvVars: []string{"TTM_API_KEY", "TWITTER_BEARER_TOKEN"},
	},
	&cli.StringFlag{
		Name:    "vault",
		Aliases: []string{"V"},
		Usage:   "directory notes and assets are written to",
		Value:   ".",
		EnvVars: []string{"TWEETMD_VAULT"},
	},
	&cli.StringFlag{
		Name:  "filename",
		Usage: "note file name template, eg \"[[handle]] - [[id]]\"",
	},
	&cli.StringFlag{
		Name:  "note-location",
		Usage: "folder for new notes, relative to the vault",
	},
	&cli.BoolFlag{
		Name:  "download-assets",
		Usage: "save avatars and images next to the note",
	},
	&cli.BoolFlag{
		Name:  "condensed",
		Usage: "render threads by the same author as one note body",
	},
	&cli.BoolFlag{
		Name:  "text",
		Usage: "print the Markdown instead of writing a note",
	},
}

func run(args []string) error {

	app := cli.App{
		Name:    "tweetmd",
		Usage:   "save tweets and threads as Markdown notes",
		Version: versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (default: $XDG_CONFIG_HOME/tweetmd/config.yaml)",
				EnvVars: []string{"TWEETMD_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log verbosity level (eg: warn, info, debug)",
				Value:   "warn",
				EnvVars: []string{"TWEETMD_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "log output format: text or json",
				Value:   "text",
				EnvVars: []string{"TWEETMD_LOG_FORMAT"},
			},
		},
		Before: func(cctx *cli.Context) error {
			configLogger(cctx, os.Stderr)
			return nil
		},
	}
	app.Commands = []*cli.Command{
		cmdGet,
		cmdThread,
		cmdTimeline,
		cmdFilename,
		cmdConfig,
		cmdServe,
	}
	return app.Run(args)
}

package main

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/urfave/cli/v2"

	"github.com/ttm-go/tweetmd/filename"
	"github.com/ttm-go/tweetmd/tweet"
)

var cmdFilename = &cli.Command{
	Name:      "filename",
	Usage:     "preview a file name or folder template without fetching anything",
	ArgsUsage: `<template>`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "handle",
			Value: "kbravh",
		},
		&cli.StringFlag{
			Name:  "name",
			Value: "Karey Higuera",
		},
		&cli.StringFlag{
			Name:  "id",
			Value: "1303753964291338240",
		},
		&cli.StringFlag{
			Name:  "tweet-text",
			Value: "I've just created a Node.js CLI tool to save tweets as Markdown",
		},
		&cli.StringFlag{
			Name:  "date",
			Usage: "creation date of the sample tweet, in any common format (default: now)",
		},
		&cli.BoolFlag{
			Name:  "directory",
			Usage: "render as a folder path rather than a note file name",
		},
	},
	Action: runFilename,
}

func runFilename(cctx *cli.Context) error {
	tmpl := cctx.Args().First()
	if tmpl == "" {
		tmpl = filename.DefaultTemplate
	}
	settings, err := loadSettings(cctx)
	if err != nil {
		return err
	}

	created := time.Now()
	if cctx.IsSet("date") {
		created, err = dateparse.ParseIn(cctx.String("date"), settings.Location())
		if err != nil {
			return fmt.Errorf("parsing --date: %w", err)
		}
	}
	post := &tweet.Post{
		ID:        cctx.String("id"),
		Text:      cctx.String("tweet-text"),
		CreatedAt: created,
		Author: &tweet.Author{
			Name:   cctx.String("name"),
			Handle: cctx.String("handle"),
		},
	}

	kind := filename.KindFile
	if cctx.Bool("directory") {
		kind = filename.KindDirectory
	}
	fmt.Println(filename.Render(tmpl, post, settings.DateOptions(), kind))
	return nil
}

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ttm-go/tweetmd/timeline"
	"github.com/ttm-go/tweetmd/vault"
)

var cmdTimeline = &cli.Command{
	Name:  "timeline",
	Usage: "prepend new tweets from followed handles to their timeline notes",
	Flags: append([]cli.Flag{
		&cli.StringSliceFlag{
			Name:  "handle",
			Usage: "handle to poll; replaces poll_handles from the config file",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "number of handles polled at once",
			Value: 4,
		},
	}, renderFlags...),
	Action: runTimeline,
}

func runTimeline(cctx *cli.Context) error {
	ctx := cctx.Context
	settings, err := loadSettings(cctx)
	if err != nil {
		return err
	}
	if cctx.IsSet("handle") {
		settings.PollHandles = cctx.StringSlice("handle")
	}
	if len(settings.PollHandleList()) == 0 {
		return fmt.Errorf("no handles to poll: set poll_handles or pass --handle")
	}
	f, err := newFetcher(settings)
	if err != nil {
		return err
	}
	v, err := vault.NewDir(cctx.String("vault"))
	if err != nil {
		return err
	}

	p := &timeline.Poller{
		Fetcher:     f,
		Vault:       v,
		Notifier:    stderrNotifier{},
		Concurrency: cctx.Int("concurrency"),
	}
	results, err := p.Poll(ctx, settings)
	for _, r := range results {
		if r.Err != nil || r.Path == "" {
			continue
		}
		fmt.Printf("%s\t%d new\n", r.Path, r.Posts)
	}
	return err
}

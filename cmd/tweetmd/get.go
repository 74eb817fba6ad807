package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ttm-go/tweetmd/notes"
	"github.com/ttm-go/tweetmd/vault"
)

var cmdGet = &cli.Command{
	Name:      "get",
	Usage:     "save a tweet as a Markdown note",
	ArgsUsage: `<url-or-id>`,
	Flags:     renderFlags,
	Action:    runGet,
}

func newSaver(cctx *cli.Context) (*notes.Saver, *notes.Request, error) {
	settings, err := loadSettings(cctx)
	if err != nil {
		return nil, nil, err
	}
	f, err := newFetcher(settings)
	if err != nil {
		return nil, nil, err
	}
	v, err := vault.NewDir(cctx.String("vault"))
	if err != nil {
		return nil, nil, err
	}
	s := &notes.Saver{
		Fetcher:  f,
		Vault:    v,
		Notifier: stderrNotifier{},
	}
	return s, &notes.Request{Post: cctx.Args().First(), Settings: settings}, nil
}

func save(cctx *cli.Context, thread bool) error {
	ctx := cctx.Context
	if cctx.Args().Len() != 1 {
		return fmt.Errorf("expected a single tweet URL or ID")
	}
	s, req, err := newSaver(cctx)
	if err != nil {
		return err
	}
	req.Thread = thread

	res, err := s.Save(ctx, *req)
	if err != nil {
		return err
	}
	if res.Path == "" {
		fmt.Println(res.Markdown)
		return nil
	}
	fmt.Println(res.Path)
	if res.DownloadErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", res.DownloadErr)
	}
	return nil
}

func runGet(cctx *cli.Context) error {
	return save(cctx, false)
}

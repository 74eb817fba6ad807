package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"github.com/xlab/treeprint"

	"github.com/ttm-go/tweetmd/notes"
	"github.com/ttm-go/tweetmd/richtext"
	"github.com/ttm-go/tweetmd/thread"
)

var cmdThread = &cli.Command{
	Name:      "thread",
	Usage:     "save a tweet and every tweet it replies to as one note",
	ArgsUsage: `<url-or-id>`,
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "tree",
			Usage: "only print the reply chain, do not render it",
		},
	}, renderFlags...),
	Action: runThread,
}

func runThread(cctx *cli.Context) error {
	if !cctx.Bool("tree") {
		return save(cctx, true)
	}

	ctx := cctx.Context
	if cctx.Args().Len() != 1 {
		return fmt.Errorf("expected a single tweet URL or ID")
	}
	settings, err := loadSettings(cctx)
	if err != nil {
		return err
	}
	id, err := notes.ResolveID(cctx.Args().First())
	if err != nil {
		return err
	}
	f, err := newFetcher(settings)
	if err != nil {
		return err
	}
	chain, err := thread.BuildChain(ctx, id, f, settings.CondensedThread)
	if err != nil {
		return err
	}

	tree := treeprint.NewWithRoot("thread " + id)
	branch := tree
	for _, link := range chain {
		user := link.Post.User()
		label := fmt.Sprintf("@%s %s: %s", user.Handle, link.Post.ID, richtext.Preview(link.Post.Text, 60))
		if link.Condensed {
			label += " (condensed)"
		}
		branch = branch.AddBranch(label)
	}
	fmt.Print(tree.String())
	return nil
}

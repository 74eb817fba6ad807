package markdown

import (
	"context"
	"fmt"
	"strings"

	"github.com/ttm-go/tweetmd/thread"
)

const (
	threadSeparator    = "\n\n---\n\n"
	condensedSeparator = "\n\n"
)

// RenderChain renders every post of chain, root first. The root is
// rendered as a normal note and every reply in thread mode, condensed when
// its link is marked so.
func RenderChain(ctx context.Context, r *Renderer, chain thread.Chain) (string, error) {
	parts := make([]string, 0, len(chain))
	for i, link := range chain {
		mode := ModeThread
		if i == 0 {
			mode = ModeNormal
		}
		md, err := r.renderPost(ctx, link.Post, mode, i > 0 && link.Condensed)
		if err != nil {
			return "", fmt.Errorf("rendering thread post %s: %w", link.Post.ID, err)
		}
		parts = append(parts, md)
	}

	sep := threadSeparator
	if r.Settings.CondensedThread {
		sep = condensedSeparator
	}
	return strings.Join(parts, sep), nil
}

package markdown

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ttm-go/tweetmd/config"
	"github.com/ttm-go/tweetmd/download"
	"github.com/ttm-go/tweetmd/filename"
	"github.com/ttm-go/tweetmd/tweet"
	"github.com/ttm-go/tweetmd/vault"
)

func sizeSuffix(size int) string {
	if size <= 0 {
		return ""
	}
	return "|" + strconv.Itoa(size)
}

// assetDir renders the asset folder template for post and applies alter, so
// the result can be used as a link target in the note.
func (r *Renderer) assetDir(post *tweet.Post, alter filename.Alter) string {
	tmpl := filename.DecodeURI(r.Settings.AssetFolder())
	dir := filename.Render(tmpl, post, r.Settings.DateOptions(), filename.KindDirectory)
	return filename.Sanitize(dir, alter, filename.KindDirectory)
}

func (r *Renderer) avatarLine(post *tweet.Post, user tweet.Author) string {
	s := r.Settings
	obsidian := s.ImageEmbedStyle == config.EmbedStyleObsidian && s.DownloadAssets
	alter := filename.AlterEncode
	if obsidian {
		alter = filename.AlterDecode
	}
	local := vault.NormalizePath(r.assetDir(post, alter) + "/" + user.AvatarFilename())
	if obsidian {
		return "![[" + local + sizeSuffix(s.AvatarSize) + "]]"
	}
	target := user.AvatarURL
	if s.DownloadAssets {
		target = local
	}
	return "![" + user.Handle + sizeSuffix(s.AvatarSize) + "](" + target + ")"
}

func altText(m tweet.Media) string {
	return strings.ReplaceAll(m.AltText, "\n", " ")
}

// mediaLines embeds the post's photos. Videos and GIFs are skipped.
func (r *Renderer) mediaLines(post *tweet.Post) []string {
	s := r.Settings
	size := sizeSuffix(s.ImageSize)
	markdownStyle := s.ImageEmbedStyle != config.EmbedStyleObsidian
	alter := filename.AlterDecode
	if markdownStyle {
		alter = filename.AlterEncode
	}

	var out []string
	for _, m := range post.Media {
		if m.Kind != tweet.MediaPhoto {
			continue
		}
		if !s.DownloadAssets {
			out = append(out, "", "!["+altText(m)+size+"]("+m.URL+")")
			continue
		}
		local := vault.NormalizePath(r.assetDir(post, alter) + "/" + filename.Sanitize(m.Key, alter, filename.KindFile) + ".jpg")
		if markdownStyle {
			out = append(out, "", "!["+altText(m)+size+"]("+local+")")
		} else {
			out = append(out, "", "![["+local+size+"]]")
		}
	}
	return out
}

type asset struct {
	url   string
	title string
}

// registerDownloads hands the avatar and photos of post that are not yet in
// the vault to the download manager. Problems here never fail the render.
func (r *Renderer) registerDownloads(ctx context.Context, post *tweet.Post, user tweet.Author) {
	if r.Downloads == nil || r.Vault == nil {
		return
	}
	dir := vault.NormalizePath(r.assetDir(post, filename.AlterDecode))
	if err := r.Vault.CreateFolder(ctx, dir); err != nil && !errors.Is(err, vault.ErrExists) {
		r.logger().Debug("creating asset folder", "dir", dir, "err", err)
	}

	var assets []asset
	if r.Settings.Avatars && user.AvatarURL != "" {
		assets = append(assets, asset{url: user.AvatarURL, title: user.AvatarFilename()})
	}
	if r.Settings.IncludeImages {
		for _, m := range post.Media {
			if m.Kind == tweet.MediaPhoto && m.URL != "" {
				assets = append(assets, asset{url: m.URL, title: m.Key + ".jpg"})
			}
		}
	}

	client := r.HTTPClient
	if client == nil {
		client = download.DefaultHTTPClient()
	}
	var tasks []download.Task
	for _, a := range assets {
		dest := vault.Join(dir, a.title)
		exists, err := r.Vault.Exists(ctx, dest)
		if err != nil {
			r.logger().Debug("checking asset", "dest", dest, "err", err)
		}
		if exists {
			continue
		}
		tasks = append(tasks, download.Fetch(client, r.Vault, a.url, dest))
	}
	if len(tasks) == 0 {
		return
	}
	if err := r.Downloads.Register(tasks...); err != nil {
		r.logger().Warn("registering downloads", "id", post.ID, "err", err)
	}
}

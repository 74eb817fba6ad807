package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ttm-go/tweetmd/client"
	"github.com/ttm-go/tweetmd/config"
)

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cctx.String("log-format")) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// loadSettings reads the config file and applies any render flags set on
// the command line.
func loadSettings(cctx *cli.Context) (*config.Settings, error) {
	s, err := config.Load(cctx.String("config"))
	if err != nil {
		return nil, err
	}
	if cctx.IsSet("bearer-token") {
		s.BearerToken = cctx.String("bearer-token")
	}
	if cctx.IsSet("filename") {
		s.Filename = cctx.String("filename")
	}
	if cctx.IsSet("note-location") {
		s.NoteLocation = cctx.String("note-location")
	}
	if cctx.IsSet("download-assets") {
		s.DownloadAssets = cctx.Bool("download-assets")
	}
	if cctx.IsSet("condensed") {
		s.CondensedThread = cctx.Bool("condensed")
	}
	if cctx.Bool("text") {
		s.EmbedMethod = config.EmbedMethodText
	}
	return s, s.Validate()
}

// newFetcher builds a caching API client for one command invocation.
func newFetcher(s *config.Settings) (client.Fetcher, error) {
	inner, err := client.New(s.ResolveBearerToken(), client.Options{Logger: slog.Default()})
	if err != nil {
		return nil, err
	}
	return client.NewCachingClient(inner, 512, 10*time.Minute), nil
}

// stderrNotifier prints user facing messages to stderr.
type stderrNotifier struct{}

func (stderrNotifier) Notify(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

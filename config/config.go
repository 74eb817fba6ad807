// Package config holds the user settings that shape rendered notes, loaded
// from a YAML file in the XDG config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/ttm-go/tweetmd/datefmt"
)

const relPath = "tweetmd/config.yaml"

const (
	EmbedStyleMarkdown = "markdown"
	EmbedStyleObsidian = "obsidian"

	EmbedMethodFile = "file"
	EmbedMethodText = "text"
)

var ErrNoConfig = errors.New("no config file found")

type Settings struct {
	BearerToken string `yaml:"bearer_token,omitempty"`

	NoteLocation   string `yaml:"note_location"`
	Filename       string `yaml:"filename"`
	DownloadAssets bool   `yaml:"download_assets"`
	AssetLocation  string `yaml:"asset_location"`

	DateFormat string `yaml:"date_format"`
	DateLocale string `yaml:"date_locale"`
	Timezone   string `yaml:"timezone"`

	IncludeLinks    bool   `yaml:"include_links"`
	IncludeImages   bool   `yaml:"include_images"`
	IncludeDate     bool   `yaml:"include_date"`
	EscapeHashtags  bool   `yaml:"escape_hashtags"`
	Avatars         bool   `yaml:"avatars"`
	AvatarSize      int    `yaml:"avatar_size,omitempty"`
	ImageSize       int    `yaml:"image_size,omitempty"`
	ImageEmbedStyle string `yaml:"image_embed_style"`

	Frontmatter         bool     `yaml:"frontmatter"`
	CSSClass            string   `yaml:"cssclass,omitempty"`
	Tags                []string `yaml:"tags,omitempty"`
	FreeformFrontmatter []string `yaml:"freeform_frontmatter,omitempty"`

	CondensedThread bool   `yaml:"condensed_thread"`
	EmbedMethod     string `yaml:"embed_method"`

	PollHandles  []string `yaml:"poll_handles,omitempty"`
	PollFilename string   `yaml:"poll_filename"`
}

func Default() Settings {
	return Settings{
		NoteLocation:    ".",
		Filename:        "[[handle]] - [[id]]",
		AssetLocation:   "assets",
		DateFormat:      datefmt.DefaultFormat,
		DateLocale:      datefmt.DefaultLocale,
		Timezone:        "UTC",
		IncludeLinks:    true,
		IncludeImages:   true,
		IncludeDate:     true,
		Avatars:         true,
		ImageEmbedStyle: EmbedStyleMarkdown,
		Frontmatter:     true,
		EmbedMethod:     EmbedMethodFile,
		PollFilename:    "Timeline - [[handle]]",
	}
}

// DefaultPath returns the config file location, or ErrNoConfig if there is
// none yet.
func DefaultPath() (string, error) {
	p, err := xdg.SearchConfigFile(relPath)
	if err != nil {
		return "", ErrNoConfig
	}
	return p, nil
}

// Load reads settings from path over the defaults. An empty path means the
// default location, where a missing file is not an error.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return &s, nil
		}
		path = p
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &s, nil
}

// Save writes s to path, or to the default location when path is empty,
// and returns the path written.
func (s *Settings) Save(path string) (string, error) {
	if path == "" {
		p, err := xdg.ConfigFile(relPath)
		if err != nil {
			return "", err
		}
		path = p
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0600)
}

func (s *Settings) Validate() error {
	switch s.ImageEmbedStyle {
	case EmbedStyleMarkdown, EmbedStyleObsidian:
	default:
		return fmt.Errorf("unknown image embed style %q", s.ImageEmbedStyle)
	}
	switch s.EmbedMethod {
	case EmbedMethodFile, EmbedMethodText:
	default:
		return fmt.Errorf("unknown embed method %q", s.EmbedMethod)
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q", s.Timezone)
		}
	}
	if s.DateLocale != "" && !datefmt.Supported(s.DateLocale) {
		return fmt.Errorf("unsupported date locale %q", s.DateLocale)
	}
	if s.AvatarSize < 0 || s.ImageSize < 0 {
		return fmt.Errorf("image sizes must not be negative")
	}
	return nil
}

// ResolveBearerToken returns the configured token, falling back to the
// TTM_API_KEY and TWITTER_BEARER_TOKEN environment variables.
func (s *Settings) ResolveBearerToken() string {
	for _, tok := range []string{s.BearerToken, os.Getenv("TTM_API_KEY"), os.Getenv("TWITTER_BEARER_TOKEN")} {
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok
		}
	}
	return ""
}

func (s *Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *Settings) DateOptions() datefmt.Options {
	return datefmt.Options{
		Format:   s.DateFormat,
		Locale:   s.DateLocale,
		Location: s.Location(),
	}
}

// AssetFolder is the asset location template, "assets" when unset.
func (s *Settings) AssetFolder() string {
	if s.AssetLocation == "" {
		return "assets"
	}
	return s.AssetLocation
}

// PollHandleList normalizes PollHandles: "@" prefixes and whitespace are
// dropped, and comma separated entries are split.
func (s *Settings) PollHandleList() []string {
	var out []string
	for _, entry := range s.PollHandles {
		for _, h := range strings.Split(entry, ",") {
			h = strings.Join(strings.Fields(h), "")
			h = strings.TrimLeft(h, "@")
			if h != "" {
				out = append(out, h)
			}
		}
	}
	return out
}

// Package vault is the note store: a tree of folders and files addressed by
// slash separated paths relative to the vault root.
package vault

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrExists   = errors.New("file already exists")
	ErrNotFound = errors.New("file not found")
	ErrBadPath  = errors.New("path escapes the vault")
)

type Vault interface {
	Exists(ctx context.Context, path string) (bool, error)
	// CreateFolder creates path and any missing parents. Creating an
	// existing folder is not an error.
	CreateFolder(ctx context.Context, path string) error
	// CreateTextFile and CreateBinaryFile fail with ErrExists rather than
	// overwrite.
	CreateTextFile(ctx context.Context, path string, content string) error
	CreateBinaryFile(ctx context.Context, path string, data []byte) error
	ReadTextFile(ctx context.Context, path string) (string, error)
	// WriteTextFile replaces the contents of a file, creating it if needed.
	WriteTextFile(ctx context.Context, path string, content string) error
}

// NormalizePath converts a user supplied path to the canonical vault form:
// forward slashes, no duplicate or surrounding slashes, no "." segments,
// non-breaking spaces replaced, NFC normalized.
// An empty result stands for the vault root.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.ReplaceAll(p, "\u00a0", " ")
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		out = append(out, part)
	}
	return norm.NFC.String(strings.Join(out, "/"))
}

// Join normalizes the concatenation of elems.
func Join(elems ...string) string {
	return NormalizePath(strings.Join(elems, "/"))
}

// Parent returns the parent folder of a normalized path.
func Parent(p string) string {
	p = NormalizePath(p)
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

func checkPath(p string) error {
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return ErrBadPath
		}
	}
	return nil
}

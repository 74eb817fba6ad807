package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir is a vault rooted at a directory on local disk.
type Dir struct {
	Root string
}

var _ Vault = (*Dir)(nil)

func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening vault: %s is not a directory", abs)
	}
	return &Dir{Root: abs}, nil
}

func (d *Dir) resolve(p string) (string, error) {
	p = NormalizePath(p)
	if err := checkPath(p); err != nil {
		return "", fmt.Errorf("%w: %s", err, p)
	}
	return filepath.Join(d.Root, filepath.FromSlash(p)), nil
}

func (d *Dir) Exists(ctx context.Context, p string) (bool, error) {
	full, err := d.resolve(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (d *Dir) CreateFolder(ctx context.Context, p string) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0755)
}

func (d *Dir) create(p string, data []byte) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, p)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(full)
		return err
	}
	return f.Close()
}

func (d *Dir) CreateTextFile(ctx context.Context, p string, content string) error {
	return d.create(p, []byte(content))
}

func (d *Dir) CreateBinaryFile(ctx context.Context, p string, data []byte) error {
	return d.create(p, data)
}

func (d *Dir) ReadTextFile(ctx context.Context, p string) (string, error) {
	full, err := d.resolve(p)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return "", err
	}
	return string(b), nil
}

func (d *Dir) WriteTextFile(ctx context.Context, p string, content string) error {
	full, err := d.resolve(p)
	if err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0644)
}

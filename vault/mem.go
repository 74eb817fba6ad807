package vault

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Mem is an in-memory vault, used by tests and by the HTTP service, which
// renders notes without writing them anywhere.
type Mem struct {
	lk      sync.Mutex
	files   map[string][]byte
	folders map[string]bool
}

var _ Vault = (*Mem)(nil)

func NewMem() *Mem {
	return &Mem{
		files:   make(map[string][]byte),
		folders: map[string]bool{"": true},
	}
}

func (m *Mem) Exists(ctx context.Context, p string) (bool, error) {
	p = NormalizePath(p)
	m.lk.Lock()
	defer m.lk.Unlock()
	_, ok := m.files[p]
	return ok || m.folders[p], nil
}

func (m *Mem) CreateFolder(ctx context.Context, p string) error {
	p = NormalizePath(p)
	if err := checkPath(p); err != nil {
		return err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	m.mkdirAll(p)
	return nil
}

// mkdirAll must be called with lk held.
func (m *Mem) mkdirAll(p string) {
	for p != "" {
		m.folders[p] = true
		p = Parent(p)
	}
}

func (m *Mem) create(p string, data []byte) error {
	p = NormalizePath(p)
	if err := checkPath(p); err != nil {
		return err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	if _, ok := m.files[p]; ok {
		return fmt.Errorf("%w: %s", ErrExists, p)
	}
	if !m.folders[Parent(p)] {
		return fmt.Errorf("%w: folder %q", ErrNotFound, Parent(p))
	}
	m.files[p] = append([]byte(nil), data...)
	return nil
}

func (m *Mem) CreateTextFile(ctx context.Context, p string, content string) error {
	return m.create(p, []byte(content))
}

func (m *Mem) CreateBinaryFile(ctx context.Context, p string, data []byte) error {
	return m.create(p, data)
}

func (m *Mem) ReadTextFile(ctx context.Context, p string) (string, error) {
	p = NormalizePath(p)
	m.lk.Lock()
	defer m.lk.Unlock()
	b, ok := m.files[p]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return string(b), nil
}

func (m *Mem) WriteTextFile(ctx context.Context, p string, content string) error {
	p = NormalizePath(p)
	if err := checkPath(p); err != nil {
		return err
	}
	m.lk.Lock()
	defer m.lk.Unlock()
	if !m.folders[Parent(p)] {
		return fmt.Errorf("%w: folder %q", ErrNotFound, Parent(p))
	}
	m.files[p] = []byte(content)
	return nil
}

// Files lists every file path in the vault, sorted.
func (m *Mem) Files() []string {
	m.lk.Lock()
	defer m.lk.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Bytes returns the raw contents of a file, or nil if it does not exist.
func (m *Mem) Bytes(p string) []byte {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.files[NormalizePath(p)]
}

// Package download runs asset downloads in the background while a note is
// rendered, and joins them once the note is written.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ttm-go/tweetmd/tweet"
)

var ErrFinalized = errors.New("download manager already finalized")

// Task writes one asset to Dest. Run receives the manager's context and
// returns the number of bytes written.
type Task struct {
	Dest string
	Run  func(ctx context.Context) (int64, error)
}

type Result struct {
	Dest     string
	Bytes    int64
	Duration time.Duration
	Err      error
}

// Manager starts tasks as soon as they are registered. Destinations are
// deduplicated, so registering the same avatar for every post of a thread
// downloads it once.
type Manager struct {
	ctx    context.Context
	notify func()
	logger *slog.Logger

	once  sync.Once
	group errgroup.Group
	seen  *xsync.MapOf[string, struct{}]

	lk        sync.Mutex
	results   []Result
	finalized bool
}

// NewManager returns a manager whose tasks run under ctx. notify, if not
// nil, is called once, on the first registration that starts a task.
func NewManager(ctx context.Context, notify func()) *Manager {
	return &Manager{
		ctx:    ctx,
		notify: notify,
		logger: slog.Default().With("system", "download"),
		seen:   xsync.NewMapOf[string, struct{}](),
	}
}

func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m.logger = logger.With("system", "download")
	return m
}

// Register starts every task whose destination has not been seen before.
func (m *Manager) Register(tasks ...Task) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.finalized {
		return ErrFinalized
	}

	started := 0
	for _, task := range tasks {
		if task.Dest != "" {
			if _, loaded := m.seen.LoadOrStore(task.Dest, struct{}{}); loaded {
				m.logger.Debug("skipping duplicate download", "dest", task.Dest)
				continue
			}
		}
		idx := len(m.results)
		m.results = append(m.results, Result{Dest: task.Dest})
		m.start(idx, task)
		started++
	}

	if started > 0 && m.notify != nil {
		m.once.Do(m.notify)
	}
	return nil
}

// start must be called with lk held.
func (m *Manager) start(idx int, task Task) {
	m.group.Go(func() error {
		start := time.Now()
		n, err := task.Run(m.ctx)
		dur := time.Since(start)

		m.lk.Lock()
		m.results[idx].Bytes = n
		m.results[idx].Duration = dur
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", tweet.ErrAssetDownload, task.Dest, err)
			m.results[idx].Err = err
		}
		m.lk.Unlock()

		if err != nil {
			assetsFailed.Inc()
			m.logger.Warn("asset download failed", "dest", task.Dest, "err", err)
			return err
		}
		assetsDownloaded.Inc()
		assetBytes.Add(float64(n))
		m.logger.Debug("asset downloaded", "dest", task.Dest, "bytes", n, "duration", dur)
		return nil
	})
}

// Finalize waits for every registered task. It returns the result of each
// task in registration order and, if any task failed, the first failure.
// A manager can be finalized once.
func (m *Manager) Finalize() ([]Result, error) {
	m.lk.Lock()
	if m.finalized {
		m.lk.Unlock()
		return nil, ErrFinalized
	}
	m.finalized = true
	m.lk.Unlock()

	err := m.group.Wait()

	m.lk.Lock()
	defer m.lk.Unlock()
	out := make([]Result, len(m.results))
	copy(out, m.results)
	return out, err
}

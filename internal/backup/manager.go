// Package backup keeps rotating on-disk snapshots of the product catalogue.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	defaultInterval = 15 * time.Minute
	defaultKeepLast = 12

	filePrefix = "catalogue-"
	fileSuffix = ".duckdb"
	// Fixed width so lexical order is chronological.
	stampLayout = "20060102-150405.000000000"
)

// Config controls periodic catalogue snapshots.
type Config struct {
	Interval time.Duration
	LocalDir string
	KeepLast int
}

// Snapshotter is the store contract the manager needs.
type Snapshotter interface {
	DBPath() string
	SnapshotTo(ctx context.Context, dstPath string) error
}

// Manager takes a snapshot every interval and keeps the newest KeepLast.
type Manager struct {
	store Snapshotter
	cfg   Config
	now   func() time.Time
}

// NewManager validates cfg and prepares the snapshot directory.
func NewManager(store Snapshotter, cfg Config) (*Manager, error) {
	if store == nil {
		return nil, errors.New("backup: nil snapshotter")
	}
	if strings.TrimSpace(store.DBPath()) == "" {
		return nil, errors.New("backup: store is in-memory, nothing to snapshot")
	}
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, errors.New("backup: local dir is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = defaultKeepLast
	}
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: create local dir: %w", err)
	}
	return &Manager{store: store, cfg: cfg, now: time.Now}, nil
}

// Run snapshots once at start, then every interval until ctx is done. A
// final snapshot is taken on the way out. Failed snapshots are logged and
// do not stop the loop.
func (m *Manager) Run(ctx context.Context) error {
	if _, err := m.RunOnce(ctx); err != nil {
		log.Printf("backup: startup snapshot failed: %v", err)
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.RunOnce(ctx); err != nil {
				log.Printf("backup: periodic snapshot failed: %v", err)
			}
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := m.RunOnce(final); err != nil {
				return fmt.Errorf("backup: final snapshot: %w", err)
			}
			return nil
		}
	}
}

// RunOnce writes one snapshot, prunes old ones and returns the new path.
func (m *Manager) RunOnce(ctx context.Context) (string, error) {
	name := filePrefix + m.now().UTC().Format(stampLayout) + fileSuffix
	localPath := filepath.Join(m.cfg.LocalDir, name)

	if err := m.store.SnapshotTo(ctx, localPath); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	log.Printf("backup: created snapshot %s", localPath)

	if err := pruneLocalBackups(m.cfg.LocalDir, m.cfg.KeepLast); err != nil {
		return localPath, fmt.Errorf("prune local backups: %w", err)
	}
	return localPath, nil
}

func pruneLocalBackups(localDir string, keepLast int) error {
	if keepLast <= 0 {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(localDir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return err
	}
	if len(matches) <= keepLast {
		return nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	for _, oldPath := range matches[keepLast:] {
		if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

package duckdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrInMemoryStore is returned when a catalogue snapshot is requested from a
// store that was opened without a file.
var ErrInMemoryStore = errors.New("duckdb: in-memory store cannot be snapshotted")

// DBPath returns the catalogue file, or "" for an in-memory store.
func (s *Store) DBPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dbPath
}

// SnapshotTo writes a copy of the catalogue file to dstPath. Product writes
// are blocked only while the WAL is folded into the file.
func (s *Store) SnapshotTo(ctx context.Context, dstPath string) error {
	src, err := s.checkpoint(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("duckdb: snapshot dir: %w", err)
	}
	if err := writeSnapshot(ctx, src, dstPath); err != nil {
		return fmt.Errorf("duckdb: snapshot %s: %w", dstPath, err)
	}
	return nil
}

// checkpoint flushes pending product writes and returns the catalogue file.
func (s *Store) checkpoint(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbPath == "" {
		return "", ErrInMemoryStore
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(qctx, "CHECKPOINT"); err != nil {
		return "", fmt.Errorf("duckdb: checkpoint catalogue: %w", err)
	}
	return s.dbPath, nil
}

// writeSnapshot copies src into a temporary file beside dst and renames it
// into place, so dst is either absent or complete.
func writeSnapshot(ctx context.Context, src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(out.Name())
		}
	}()

	if _, err = io.Copy(out, ctxReader{ctx: ctx, r: in}); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Rename(out.Name(), dst)
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

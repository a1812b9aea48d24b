// Command stockroom-devserver runs a local inventory service for the
// stockroom client, backed by DuckDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tinytelemetry/stockroom/internal/backup"
	"github.com/tinytelemetry/stockroom/internal/duckdb"
	"github.com/tinytelemetry/stockroom/internal/httpserver"

	"golang.org/x/sync/errgroup"
)

type devConfig struct {
	Addr     string
	DBPath   string
	SeedPath string
	Host     string

	BackupDir      string
	BackupInterval time.Duration
	BackupKeep     int
}

func main() {
	var cfg devConfig
	flag.StringVar(&cfg.Addr, "addr", "127.0.0.1:5000", "listen address")
	flag.StringVar(&cfg.DBPath, "db", "", "DuckDB file (default in-memory)")
	flag.StringVar(&cfg.SeedPath, "seed", "", "YAML fixture of products to load at start")
	flag.StringVar(&cfg.BackupDir, "backup-dir", "", "directory for rotating catalogue snapshots (requires -db)")
	flag.DurationVar(&cfg.BackupInterval, "backup-interval", 15*time.Minute, "time between catalogue snapshots")
	flag.IntVar(&cfg.BackupKeep, "backup-keep", 12, "number of catalogue snapshots to keep")
	flag.StringVar(&cfg.Host, "host", "", "host reported by /utils/host (default: the request's Host header)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg devConfig) error {
	store, err := duckdb.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if cfg.SeedPath != "" {
		seeds, err := duckdb.LoadSeed(cfg.SeedPath)
		if err != nil {
			return err
		}
		n, err := store.SeedProducts(context.Background(), seeds)
		if err != nil {
			return err
		}
		log.Printf("devserver: seeded %d of %d products from %s", n, len(seeds), cfg.SeedPath)
	}

	var backups *backup.Manager
	if cfg.BackupDir != "" {
		backups, err = backup.NewManager(store, backup.Config{
			Interval: cfg.BackupInterval,
			LocalDir: cfg.BackupDir,
			KeepLast: cfg.BackupKeep,
		})
		if err != nil {
			return err
		}
	}

	srv := httpserver.NewServer(cfg.Addr, store)
	srv.SetAdvertisedHost(cfg.Host)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}
	log.Printf("devserver: listening on http://%s", srv.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		log.Printf("devserver: shutting down (signal again to force)")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()
		select {
		case <-sigCh:
			log.Printf("devserver: forced shutdown")
		case <-deadline.C:
			log.Printf("devserver: shutdown timed out")
		}
		os.Exit(1)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop()
	})
	if backups != nil {
		g.Go(func() error { return backups.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Printf("devserver: shutdown error: %v", err)
		return err
	}
	return nil
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Krimson/eeg-explorer/viewer/internal/config"
	"github.com/Krimson/eeg-explorer/viewer/internal/dataset"
	"github.com/Krimson/eeg-explorer/viewer/internal/recording"
)

const seedParallelism = 4

func newSeedCmd() *cobra.Command {
	var (
		backend string
		dir     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upload local recordings into a content store",
		Long: `Upload every sub-*_ses-*_*.csv of a directory into a redis or postgres
content store. Files that are not valid EEG tables are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, backend, dir)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", config.BackendRedis, "target store: redis or postgres")
	cmd.Flags().StringVar(&dir, "dir", "", "source directory (default DATA_DIR)")
	return cmd
}

func runSeed(cmd *cobra.Command, backend, dir string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = a.cfg.DataDir
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("source directory: %w", err)
	}

	ctx := cmd.Context()
	remote, closeStore, err := a.openStore(ctx, backend)
	if err != nil {
		return err
	}
	defer closeStore()

	w, ok := remote.(dataset.Writer)
	if !ok {
		return fmt.Errorf("backend %q is read-only", backend)
	}
	if pg, ok := remote.(*dataset.PostgresStore); ok {
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	cache, err := dataset.NewLocalCache(dir)
	if err != nil {
		return err
	}

	n, err := seedObjects(ctx, cache, w, a.log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d recordings to %s\n", n, remote.Name())
	return nil
}

// seedObjects загружает все валидные записи из директории кэша
func seedObjects(ctx context.Context, cache *dataset.LocalCache, w dataset.Writer, log zerolog.Logger) (int, error) {
	names, err := cache.List()
	if err != nil {
		return 0, err
	}

	var uploaded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedParallelism)

	for _, name := range names {
		session, err := recording.ParseKey(name)
		if err != nil {
			log.Debug().Str("file", name).Msg("not a recording, skipped")
			continue
		}
		key := session.Key()

		g.Go(func() error {
			data, err := os.ReadFile(cache.Path(key))
			if err != nil {
				return err
			}
			if _, err := dataset.ParseTable(bytes.NewReader(data)); err != nil {
				log.Warn().Err(err).Str("file", name).Msg("invalid table, skipped")
				return nil
			}
			if err := w.Put(gctx, key.Filename(), data); err != nil {
				return err
			}
			uploaded.Add(1)
			log.Info().Str("key", key.String()).Int("bytes", len(data)).Msg("uploaded")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(uploaded.Load()), err
	}
	return int(uploaded.Load()), nil
}

package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Krimson/eeg-explorer/viewer/internal/recording"
)

// LocalCache is the local dataset directory. Entries are written once per
// key and never evicted.
type LocalCache struct {
	dir string
}

// NewLocalCache creates the directory if needed.
func NewLocalCache(dir string) (*LocalCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &LocalCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *LocalCache) Dir() string {
	return c.dir
}

// Path returns the expected local path for a key.
func (c *LocalCache) Path(key recording.Key) string {
	return filepath.Join(c.dir, key.Filename())
}

// Open returns the cached file for key. A missing entry is reported as
// ok=false with a nil error.
func (c *LocalCache) Open(key recording.Key) (io.ReadCloser, bool, error) {
	f, err := os.Open(c.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open cached dataset %s: %w", key, err)
	}
	return f, true, nil
}

// Write stores data under key. The bytes land in a temporary file first and
// are renamed into place, so readers never see a partial file. Concurrent
// writers of the same key are last-writer-wins.
func (c *LocalCache) Write(key recording.Key, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, c.Path(key)); err != nil {
		return fmt.Errorf("failed to move %s into cache: %w", key, err)
	}
	return nil
}

// List returns the names of the cached .csv files.
func (c *LocalCache) List() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

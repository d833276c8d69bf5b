package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krimson/eeg-explorer/viewer/internal/dataset"
)

const recordingCSV = "Time,Fp1,Fz\n0,1,2\n0.5,3,4\n"

func localEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("STORE_BACKEND", "none")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSubjectsCommand(t *testing.T) {
	dir := localEnv(t)
	for _, name := range []string{"sub-03_ses-1_eyesopen.csv", "sub-01_ses-2_eyesclosed.csv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(recordingCSV), 0o644))
	}

	out, err := execute(t, "subjects")
	require.NoError(t, err)
	assert.Equal(t, "01\n03\n", out)
}

func TestSubjectsCommand_NoDatasets(t *testing.T) {
	localEnv(t)

	_, err := execute(t, "subjects")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_datasets_found")
}

func TestFetchCommand(t *testing.T) {
	dir := localEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub-01_ses-1_eyesopen.csv"), []byte(recordingCSV), 0o644))

	out, err := execute(t, "fetch", "sub-01", "NS", "Eyes Open")
	require.NoError(t, err)
	assert.Contains(t, out, "key:      sub-01_ses-1_eyesopen")
	assert.Contains(t, out, "rows:     2")
	assert.Contains(t, out, "channels: Fp1, Fz")

	_, err = execute(t, "fetch", "01", "SD", "Eyes Open")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset_unavailable")

	_, err = execute(t, "fetch", "01", "awake", "Eyes Open")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_selection")
}

func TestServeCommand_RejectsMissingBrainImage(t *testing.T) {
	localEnv(t)
	t.Setenv("BRAIN_IMAGE_PATH", filepath.Join(t.TempDir(), "missing.png"))

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BRAIN_IMAGE_PATH")
}

type memoryWriter struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryWriter) Put(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
	return nil
}

func TestSeedObjects(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"sub-01_ses-1_eyesopen.csv":   recordingCSV,
		"sub-02_ses-2_eyesclosed.csv": recordingCSV,
		"sub-03_ses-1_eyesopen.csv":   "Fp1,Fz\n1,2\n", // no Time column
		"readme.csv":                  recordingCSV,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	cache, err := dataset.NewLocalCache(dir)
	require.NoError(t, err)
	w := &memoryWriter{objects: map[string][]byte{}}

	n, err := seedObjects(context.Background(), cache, w, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, w.objects, "sub-01_ses-1_eyesopen.csv")
	assert.Contains(t, w.objects, "sub-02_ses-2_eyesclosed.csv")
	assert.NotContains(t, w.objects, "sub-03_ses-1_eyesopen.csv")
}

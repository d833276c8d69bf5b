package dataset

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need live servers and are skipped unless
// EEG_TEST_REDIS_ADDR or EEG_TEST_POSTGRES_DSN is set.

func testWritableStore(t *testing.T, s interface {
	RemoteStore
	Lister
	Writer
}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := "sub-" + uuid.NewString()[:8] + "_ses-1_eyesopen.csv"

	_, err := s.Fetch(ctx, name)
	assert.True(t, errors.Is(err, ErrObjectNotFound), "got %v", err)

	require.NoError(t, s.Put(ctx, name, []byte(sampleCSV)))

	data, err := s.Fetch(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, name)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("EEG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EEG_TEST_REDIS_ADDR not set")
	}

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)

	store := NewRedisStore(client, "eeg:test:"+uuid.NewString()[:8]+":", 1<<20)
	t.Cleanup(func() { _ = store.Close() })

	testWritableStore(t, store)
}

func TestRedisStore_SizeLimit(t *testing.T) {
	addr := os.Getenv("EEG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EEG_TEST_REDIS_ADDR not set")
	}

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)

	store := NewRedisStore(client, "eeg:test:"+uuid.NewString()[:8]+":", 8)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "big.csv", []byte(sampleCSV)))

	_, err = store.Fetch(ctx, "big.csv")
	var tooLarge *ObjectTooLargeError
	assert.True(t, errors.As(err, &tooLarge), "got %v", err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("EEG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("EEG_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStoreFromDSN(ctx, dsn, 1<<20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.EnsureSchema(ctx))
	testWritableStore(t, store)
}

func TestPostgresStore_SizeLimit(t *testing.T) {
	dsn := os.Getenv("EEG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("EEG_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStoreFromDSN(ctx, dsn, 8)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.EnsureSchema(ctx))

	name := "big-" + uuid.NewString()[:8] + ".csv"
	require.NoError(t, store.Put(ctx, name, []byte(sampleCSV)))

	_, err = store.Fetch(ctx, name)
	var tooLarge *ObjectTooLargeError
	assert.True(t, errors.As(err, &tooLarge), "got %v", err)

	_, err = store.Fetch(ctx, "missing-"+uuid.NewString()[:8]+".csv")
	assert.True(t, errors.Is(err, ErrObjectNotFound), "got %v", err)
}

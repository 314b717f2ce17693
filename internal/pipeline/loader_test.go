package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/finburn/internal/store"
)

func TestLoad(t *testing.T) {
	dir := writeDataset(t, 3, 10)
	if err := os.WriteFile(filepath.Join(dir, "transactions", "bad.json"), []byte("[{"), 0o600); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	result, err := Load(context.Background(), dir, func(current, total int) {
		calls.Add(1)
		if total != 7 {
			t.Errorf("progress total = %d, want 7", total)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result.TotalFiles)
	assert.Equal(t, 6, result.ParsedFiles)
	assert.Equal(t, 1, result.FileErrors)
	assert.Len(t, result.Transactions, 30)
	assert.Len(t, result.Expenses, 30)
	assert.Equal(t, int32(7), calls.Load())
	assert.NotEmpty(t, result.Version)
}

func TestLoad_EmptyDir(t *testing.T) {
	result, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	require.NoError(t, err)
	assert.Zero(t, result.TotalFiles)
	assert.NotEmpty(t, result.Version)
}

func TestLoad_Cancelled(t *testing.T) {
	dir := writeDataset(t, 4, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, dir, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDatasetVersion(t *testing.T) {
	a := DatasetVersion([]FileStamp{{Path: "a", MtimeNs: 1, SizeBytes: 2}, {Path: "b", MtimeNs: 3, SizeBytes: 4}})
	b := DatasetVersion([]FileStamp{{Path: "b", MtimeNs: 3, SizeBytes: 4}, {Path: "a", MtimeNs: 1, SizeBytes: 2}})
	c := DatasetVersion([]FileStamp{{Path: "a", MtimeNs: 1, SizeBytes: 5}, {Path: "b", MtimeNs: 3, SizeBytes: 4}})
	if a != b {
		t.Errorf("version depends on input order: %s vs %s", a, b)
	}
	if a == c {
		t.Error("version did not change with file size")
	}
}

func TestLoadWithCache(t *testing.T) {
	dir := writeDataset(t, 2, 5)
	cache, err := store.Open(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	first, err := LoadWithCache(ctx, dir, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)
	assert.Equal(t, 4, first.Reparsed)
	assert.Len(t, first.Transactions, 10)

	second, err := LoadWithCache(ctx, dir, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, second.CacheHits)
	assert.Equal(t, 0, second.Reparsed)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, first.Transactions, second.Transactions)
	assert.Equal(t, first.Expenses, second.Expenses)

	// Modify one file and remove another.
	changed := filepath.Join(dir, "transactions", "000.jsonl")
	require.NoError(t, os.WriteFile(changed, []byte(`{"date":"2024/01/01","amount":1}`+"\n"), 0o600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(changed, future, future))
	require.NoError(t, os.Remove(filepath.Join(dir, "expenses", "001.jsonl")))

	third, err := LoadWithCache(ctx, dir, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Reparsed)
	assert.Equal(t, 2, third.CacheHits)
	assert.Equal(t, 1, third.Pruned)
	assert.Len(t, third.Transactions, 6)
	assert.Len(t, third.Expenses, 5)
	assert.NotEqual(t, second.Version, third.Version)
}

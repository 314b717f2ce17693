package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/source"
	"github.com/theirongolddev/finburn/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Pruned    int
}

// LoadWithCache discovers, diffs against cache, parses only changed files,
// and returns the combined result set in file order. Files that disappeared
// from disk are pruned from the cache.
func LoadWithCache(ctx context.Context, dataDir string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	stamps := stampFiles(files)
	result := &CachedLoadResult{
		LoadResult: LoadResult{TotalFiles: len(files), Version: DatasetVersion(stamps)},
	}

	present := make(map[string]FileStamp, len(stamps))
	for _, s := range stamps {
		present[s.Path] = s
	}
	for path := range tracked {
		if _, ok := present[path]; ok {
			continue
		}
		if err := cache.DeleteFile(path); err != nil {
			log.L.WithError(err).WithField("file", path).Warn("pruning vanished file")
			continue
		}
		result.Pruned++
	}

	// Diff: partition into changed and unchanged
	var toReparse []source.DiscoveredFile
	var unchanged []string

	for _, f := range files {
		stamp, ok := present[f.Path]
		if !ok {
			result.FileErrors++
			continue
		}
		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == stamp.MtimeNs && cached.SizeBytes == stamp.SizeBytes {
			unchanged = append(unchanged, f.Path)
			result.ParseErrors += cached.ParseErrors
		} else {
			toReparse = append(toReparse, f)
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	byFile := make(map[string]*store.FileRecords, len(files))

	if len(unchanged) > 0 {
		txs, exps, err := cache.LoadFiles(unchanged)
		if err != nil {
			return nil, fmt.Errorf("loading cached records: %w", err)
		}
		for _, p := range unchanged {
			byFile[p] = &store.FileRecords{}
		}
		for _, t := range txs {
			if fr, ok := byFile[t.FilePath]; ok {
				fr.Transactions = append(fr.Transactions, t)
			}
		}
		for _, e := range exps {
			if fr, ok := byFile[e.FilePath]; ok {
				fr.Expenses = append(fr.Expenses, e)
			}
		}
		result.ParsedFiles += len(unchanged)
	}

	if len(toReparse) > 0 {
		results, err := parseAll(ctx, toReparse, func(n int) {
			if progressFn != nil {
				progressFn(n+result.CacheHits, result.TotalFiles)
			}
		})
		if err != nil {
			return nil, err
		}

		for i, pr := range results {
			f := toReparse[i]
			if pr.Err != nil {
				result.FileErrors++
				log.L.WithError(pr.Err).WithField("file", f.Path).Debug("skipping unreadable file")
				continue
			}
			result.ParsedFiles++
			result.ParseErrors += pr.ParseErrors

			recs := &store.FileRecords{
				Kind:         string(f.Kind),
				Transactions: pr.Transactions,
				Expenses:     pr.Expenses,
				ParseErrors:  pr.ParseErrors,
			}
			byFile[f.Path] = recs

			stamp := present[f.Path]
			if err := cache.SaveFile(f.Path, *recs, stamp.MtimeNs, stamp.SizeBytes); err != nil {
				log.L.WithError(err).WithField("file", f.Path).Warn("caching parsed file")
			}
		}
	}

	for _, f := range files {
		if fr, ok := byFile[f.Path]; ok {
			result.Transactions = append(result.Transactions, fr.Transactions...)
			result.Expenses = append(result.Expenses, fr.Expenses...)
		}
	}

	log.L.WithFields(log.Fields{
		"files":      result.TotalFiles,
		"cache_hits": result.CacheHits,
		"reparsed":   result.Reparsed,
		"pruned":     result.Pruned,
	}).Debug("incremental load complete")

	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "finburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "finburn")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "metrics.db")
}

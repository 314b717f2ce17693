package daemon

import (
	"context"

	"github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/store"
)

//go:generate mockgen -destination=mocks/loader.go -package=mocks github.com/theirongolddev/finburn/internal/daemon Loader

// Loader produces the current dataset for each poll.
type Loader interface {
	Load(ctx context.Context) (*pipeline.LoadResult, error)
}

// DirLoader loads exports from a data directory, using the SQLite cache when enabled.
type DirLoader struct {
	DataDir   string
	UseCache  bool
	CachePath string
}

// Load implements Loader. A cache that cannot be opened or read falls back to a full parse.
func (l DirLoader) Load(ctx context.Context) (*pipeline.LoadResult, error) {
	if l.UseCache {
		path := l.CachePath
		if path == "" {
			path = pipeline.CachePath()
		}
		cache, err := store.Open(path)
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(ctx, l.DataDir, cache, nil)
			if loadErr == nil {
				return &cr.LoadResult, nil
			}
			log.L.WithError(loadErr).Warn("cached load failed, reparsing")
		} else {
			log.L.WithError(err).Warn("cache unavailable")
		}
	}

	return pipeline.Load(ctx, l.DataDir, nil)
}

package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/source"
)

// versionNamespace scopes dataset version UUIDs.
var versionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/theirongolddev/finburn/dataset"))

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Transactions []model.TransactionRecord
	Expenses     []model.ExpenseRecord
	TotalFiles   int
	ParsedFiles  int
	ParseErrors  int
	FileErrors   int
	// Version changes whenever any input file is added, removed or modified.
	Version string
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// FileStamp identifies one version of an input file.
type FileStamp struct {
	Path      string
	MtimeNs   int64
	SizeBytes int64
}

// DatasetVersion derives a stable UUID from the set of file stamps.
func DatasetVersion(stamps []FileStamp) string {
	sorted := make([]FileStamp, len(stamps))
	copy(sorted, stamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var b strings.Builder
	for _, s := range sorted {
		b.WriteString(s.Path)
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(s.MtimeNs, 10))
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(s.SizeBytes, 10))
		b.WriteByte('\n')
	}
	return uuid.NewSHA1(versionNamespace, []byte(b.String())).String()
}

func stampFiles(files []source.DiscoveredFile) []FileStamp {
	stamps := make([]FileStamp, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		stamps = append(stamps, FileStamp{Path: f.Path, MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()})
	}
	return stamps
}

// workerCount bounds the parse pool.
func workerCount(n int) int {
	w := runtime.GOMAXPROCS(0)
	if w < 1 {
		w = 4
	}
	return min(w, max(n, 1))
}

// parseAll parses files with a bounded worker pool. Results keep input order.
// onDone, when set, is called after each file with the running count.
func parseAll(ctx context.Context, files []source.DiscoveredFile, onDone func(n int)) ([]source.ParseResult, error) {
	results := make([]source.ParseResult, len(files))
	var processed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(files)))
	for i := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = source.ParseFile(files[i])
			n := processed.Add(1)
			if onDone != nil {
				onDone(int(n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Load discovers and parses every export under dataDir.
// It uses a bounded worker pool for parallel parsing.
func Load(ctx context.Context, dataDir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	result := &LoadResult{TotalFiles: len(files), Version: DatasetVersion(stampFiles(files))}
	if len(files) == 0 {
		return result, nil
	}

	results, err := parseAll(ctx, files, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})
	if err != nil {
		return nil, err
	}

	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Transactions = append(result.Transactions, pr.Transactions...)
		result.Expenses = append(result.Expenses, pr.Expenses...)
	}

	return result, nil
}

// Package cmd implements the finburn CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/store"
)

var (
	flagDays    int
	flagFrom    string
	flagTo      string
	flagSource  string
	flagNoCache bool
	flagDataDir string
	flagQuiet   bool
	flagJSON    bool
)

// appCfg is loaded once per invocation before any command runs.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "finburn",
	Short:             "Financial metrics CLI",
	Long:              "Aggregate sales and expense exports into revenue, cost, growth and runway metrics.",
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 30, "Time window in days (0 = all history)")
	rootCmd.PersistentFlags().StringVar(&flagFrom, "from", "", "Range start date (overrides --days)")
	rootCmd.PersistentFlags().StringVar(&flagTo, "to", "", "Range end date (default today)")
	rootCmd.PersistentFlags().StringVarP(&flagSource, "source", "s", "", "Filter transactions to a source (substring match)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding transaction and expense exports")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print machine-readable JSON")
}

// prepare loads .env, the config file and logging before any command runs.
func prepare(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appCfg = cfg

	if err := log.Init(cfg.General.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	cli.SetCurrency(cfg.General.Currency)

	flagDataDir = cfg.ResolveDataDir(flagDataDir)
	if f := cmd.Flag("days"); f != nil && !f.Changed {
		flagDays = cfg.General.DefaultDays
	}
	if flagJSON {
		flagQuiet = true
	}
	return nil
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData(ctx context.Context) (*pipeline.LoadResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", flagDataDir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			log.L.WithError(err).Debug("cache open failed")
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(ctx, flagDataDir, cache, progressFn)
			if err == nil {
				if !flagQuiet && cr.TotalFiles > 0 {
					if cr.Reparsed == 0 {
						fmt.Fprintf(os.Stderr, "\r  Loaded %s files from cache    \n", cli.FormatNumber(int64(cr.CacheHits)))
					} else {
						fmt.Fprintf(os.Stderr, "\r  %s cached + %d reparsed    \n", cli.FormatNumber(int64(cr.CacheHits)), cr.Reparsed)
					}
				}
				reportLoadErrors(&cr.LoadResult)
				return &cr.LoadResult, nil
			}
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			log.L.WithError(err).Warn("cache-assisted load failed")
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "\n  Cache error, falling back to full parse\n")
			}
		}
	}

	result, err := pipeline.Load(ctx, flagDataDir, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s files    \n", cli.FormatNumber(int64(result.ParsedFiles)))
	}
	reportLoadErrors(result)
	return result, nil
}

func reportLoadErrors(r *pipeline.LoadResult) {
	if flagQuiet || (r.ParseErrors == 0 && r.FileErrors == 0) {
		return
	}
	fmt.Fprintf(os.Stderr, "  Skipped %d malformed records, %d unreadable files\n", r.ParseErrors, r.FileErrors)
}

// reportRange resolves --from/--to/--days against now.
func reportRange(now time.Time) (*model.DateRange, error) {
	if flagDays < 0 {
		return nil, fmt.Errorf("--days must be >= 0, got %d", flagDays)
	}
	rng, err := pipeline.ResolveRange(flagFrom, flagTo, flagDays, now)
	if err != nil {
		return nil, fmt.Errorf("--from/--to: %w", err)
	}
	return rng, nil
}

func rangeLabel(rng *model.DateRange) string {
	switch {
	case rng == nil:
		return "All time"
	case flagFrom == "" && flagTo == "":
		return fmt.Sprintf("Last %dd", flagDays)
	}
	return fmt.Sprintf("%s to %s", rng.Start, rng.End)
}

// report bundles one loaded dataset with the metrics computed for the
// requested range and source.
type report struct {
	data   *pipeline.LoadResult
	engine *pipeline.Engine
	rng    *model.DateRange
	txs    []model.TransactionRecord
	snap   model.MetricsSnapshot
}

func (r *report) empty() bool {
	return len(r.data.Transactions) == 0 && len(r.data.Expenses) == 0
}

func buildReport(ctx context.Context, tune func(*pipeline.Engine)) (*report, error) {
	eng := appCfg.Engine()
	if tune != nil {
		tune(eng)
	}
	rng, err := reportRange(time.Now())
	if err != nil {
		return nil, err
	}

	data, err := loadData(ctx)
	if err != nil {
		return nil, err
	}

	txs := pipeline.FilterBySource(data.Transactions, flagSource)
	return &report{
		data:   data,
		engine: eng,
		rng:    rng,
		txs:    txs,
		snap:   eng.ComputeWindow(txs, data.Expenses, rng),
	}, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func printNoData() {
	fmt.Println("\n  No transactions or expenses found.")
	fmt.Printf("  Put exports under %s/transactions and %s/expenses.\n", flagDataDir, flagDataDir)
}

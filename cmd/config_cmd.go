package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finburn/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	if flagJSON {
		return printJSON(cfg)
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory: %s\n", flagDataDir)
	fmt.Printf("    Default days:   %d\n", cfg.General.DefaultDays)
	fmt.Printf("    Currency:       %s\n", cfg.General.Currency)
	if cfg.General.LogLevel != "" {
		fmt.Printf("    Log level:      %s\n", cfg.General.LogLevel)
	}
	fmt.Println()

	fmt.Println("  [Report]")
	fmt.Printf("    Trend window: %s\n", cfg.TrendWindow())
	granularity := cfg.Report.Granularity
	if granularity == "" {
		granularity = "auto"
	}
	fmt.Printf("    Granularity:  %s\n", granularity)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Classification]")
	if len(cfg.Classification.Rules) == 0 {
		fmt.Println("    No user rules (built-in rules only)")
	}
	for _, r := range cfg.Classification.Rules {
		field := r.Field
		if field == "" {
			field = "any"
		}
		fmt.Printf("    %-16s %s contains [%s] -> %s / %s\n",
			r.Name, field, strings.Join(r.Contains, ", "), r.AccountingType, r.Category)
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", cfg.DaemonInterval())
	fmt.Printf("    Events:   %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v every %ds\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  Run `finburn setup` to reconfigure.")
	return nil
}

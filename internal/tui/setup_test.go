package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

func TestSetupValuesRoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	v := SetupValuesFrom(cfg, "/srv/exports")
	if v.DataDir != "/srv/exports" || v.Days != 30 || v.TrendWindow != string(pipeline.WindowCalendar) {
		t.Fatalf("SetupValuesFrom = %+v", v)
	}

	v.DataDir = "  /data  "
	v.Days = 90
	v.Currency = "USD"
	v.TrendWindow = string(pipeline.WindowRange)
	v.Theme = "tokyo-night"
	v.AutoRefresh = false
	v.Apply(&cfg)

	if cfg.General.DataDir != "/data" {
		t.Errorf("DataDir = %q, want %q", cfg.General.DataDir, "/data")
	}
	if cfg.General.DefaultDays != 90 || cfg.General.Currency != "USD" {
		t.Errorf("General = %+v", cfg.General)
	}
	if cfg.TrendWindow() != pipeline.WindowRange {
		t.Errorf("TrendWindow() = %q, want %q", cfg.TrendWindow(), pipeline.WindowRange)
	}
	if cfg.TUI.AutoRefresh {
		t.Error("AutoRefresh = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDataSummary(t *testing.T) {
	dir := t.TempDir()
	if got := DataSummary(dir); !strings.HasPrefix(got, "No exports found") {
		t.Errorf("DataSummary(empty) = %q", got)
	}

	for _, p := range []string{"transactions/jan.json", "expenses/jan.json"} {
		full := filepath.Join(dir, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("[]"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	want := "Found 1 transaction and 1 expense files"
	if got := DataSummary(dir); !strings.HasPrefix(got, want) {
		t.Errorf("DataSummary = %q, want prefix %q", got, want)
	}
}

func TestValidateDataDir(t *testing.T) {
	if err := validateDataDir("   "); err == nil {
		t.Error("validateDataDir(blank) = nil, want error")
	}
}

package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/source"
	"github.com/theirongolddev/finburn/internal/tui/theme"
)

// SetupValues are the answers collected by the setup form.
type SetupValues struct {
	DataDir     string
	Days        int
	Currency    string
	TrendWindow string
	Theme       string
	AutoRefresh bool
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config, dataDir string) SetupValues {
	return SetupValues{
		DataDir:     dataDir,
		Days:        cfg.General.DefaultDays,
		Currency:    cfg.General.Currency,
		TrendWindow: string(cfg.TrendWindow()),
		Theme:       cfg.Appearance.Theme,
		AutoRefresh: cfg.TUI.AutoRefresh,
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.DataDir = strings.TrimSpace(v.DataDir)
	cfg.General.DefaultDays = v.Days
	cfg.General.Currency = v.Currency
	cfg.Report.TrendWindow = v.TrendWindow
	cfg.Appearance.Theme = v.Theme
	cfg.TUI.AutoRefresh = v.AutoRefresh
}

// SaveSetup merges the answers into the stored config and writes it.
// A config that no longer loads is replaced by defaults.
func SaveSetup(v SetupValues) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	v.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, config.Save(cfg)
}

// DataSummary describes what a data directory holds, for the welcome note.
func DataSummary(dataDir string) string {
	files, err := source.ScanDir(dataDir)
	if err != nil || len(files) == 0 {
		return fmt.Sprintf("No exports found in %s yet.", dataDir)
	}
	kinds := source.CountKinds(files)
	return fmt.Sprintf("Found %d transaction and %d expense files in %s.",
		kinds[source.KindTransactions]+kinds[source.KindMixed],
		kinds[source.KindExpenses]+kinds[source.KindMixed],
		dataDir)
}

var daysOptions = []huh.Option[int]{
	huh.NewOption("7 days", 7),
	huh.NewOption("30 days", 30),
	huh.NewOption("90 days", 90),
	huh.NewOption("365 days", 365),
	huh.NewOption("All history", 0),
}

// NewSetupForm builds the setup wizard bound to v.
func NewSetupForm(summary string, v *SetupValues) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to finburn").
				Description(summary),
			huh.NewInput().
				Title("Data directory").
				Description("Holds transactions/ and expenses/ exports").
				Value(&v.DataDir).
				Validate(validateDataDir),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Default time range").
				Options(daysOptions...).
				Value(&v.Days),
			huh.NewSelect[string]().
				Title("Currency").
				Options(huh.NewOptions("VND", "USD", "EUR")...).
				Value(&v.Currency),
			huh.NewSelect[string]().
				Title("Growth comparison").
				Options(
					huh.NewOption("This month vs last month", string(pipeline.WindowCalendar)),
					huh.NewOption("Selected range vs the one before", string(pipeline.WindowRange)),
				).
				Value(&v.TrendWindow),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
			huh.NewConfirm().
				Title("Auto-refresh the dashboard?").
				Value(&v.AutoRefresh),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

func validateDataDir(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("data directory is required")
	}
	if fi, err := os.Stat(s); err == nil && !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", s)
	}
	return nil
}

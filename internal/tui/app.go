// Package tui provides the interactive Bubble Tea dashboard for finburn.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finburn/internal/cache"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/store"
	"github.com/theirongolddev/finburn/internal/tui/components"
	"github.com/theirongolddev/finburn/internal/tui/theme"
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Data     *pipeline.LoadResult
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg struct {
	Data     *pipeline.LoadResult
	LoadTime time.Duration
	Err      error
}

// Options configures a new dashboard.
type Options struct {
	DataDir  string
	Days     int
	Source   string
	UseCache bool
	Config   config.Config
	// Setup forces the first-run wizard even when a config file exists.
	Setup bool
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	data     *pipeline.LoadResult
	loaded   bool
	loadTime time.Duration
	loadErr  error

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Pre-computed for the current range
	memo        *pipeline.Memoizer
	granularity model.Granularity // empty selects by range length
	rng         *model.DateRange
	snap        model.MetricsSnapshot

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Filter state
	days   int
	source string

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues // bound by the huh form, shared across App copies
	needSetup bool
	setupErr  error

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	cfg      config.Config
	dataDir  string
	useCache bool
	now      func() time.Time
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	minRefreshInterval = 10 * time.Second
)

// daysCycle is the order the d key steps through. 0 means all history.
var daysCycle = []int{7, 30, 90, 365, 0}

var granularityCycle = []model.Granularity{"", model.Daily, model.Weekly, model.Monthly}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refreshInterval := time.Duration(opts.Config.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < minRefreshInterval {
		refreshInterval = time.Minute
	}

	engine := opts.Config.Engine()
	return App{
		cfg:             opts.Config,
		dataDir:         opts.DataDir,
		useCache:        opts.UseCache,
		days:            opts.Days,
		source:          opts.Source,
		needSetup:       opts.Setup || !config.Exists(),
		autoRefresh:     opts.Config.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		memo:            &pipeline.Memoizer{Engine: engine, Cache: cache.NewSnapshots(64, 30*time.Minute)},
		granularity:     engine.Granularity,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
		now:             time.Now,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.dataDir, a.useCache, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// recompute refreshes the snapshot for the current range, source and granularity.
func (a *App) recompute() {
	if a.data == nil {
		return
	}
	a.rng = pipeline.LastDays(a.now(), a.days)

	eng := *a.memo.Engine
	eng.Granularity = a.granularity
	memo := pipeline.Memoizer{Engine: &eng, Cache: a.memo.Cache}

	txs := pipeline.FilterBySource(a.data.Transactions, a.source)
	version := a.data.Version
	if version != "" {
		version += "|source=" + strings.ToLower(a.source)
	}
	a.snap, _ = memo.ComputeWindow(version, txs, a.data.Expenses, a.rng)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = a.now()
		a.loadErr = msg.Err
		if msg.Data != nil {
			a.data = msg.Data
			a.recompute()
		}

		if a.needSetup {
			vals := SetupValuesFrom(a.cfg, a.dataDir)
			a.setupVals = &vals
			a.setupForm = NewSetupForm(DataSummary(a.dataDir), a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && a.setupForm == nil {
			if a.now().Sub(a.lastRefresh) >= a.refreshInterval {
				a.refreshing = true
				cmds = append(cmds, refreshDataCmd(a.dataDir, a.useCache))
			}
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = a.now()
		a.loadErr = msg.Err
		if msg.Data != nil {
			a.data = msg.Data
			a.loadTime = msg.LoadTime
			a.recompute()
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.useCache)
		}
	case "R":
		a.autoRefresh = !a.autoRefresh
		// best-effort persistence; the dashboard keeps the toggle either way
		if config.Exists() {
			a.cfg.TUI.AutoRefresh = a.autoRefresh
			if err := config.Save(a.cfg); err != nil {
				log.L.WithError(err).Warn("saving auto-refresh setting")
			}
		}
	case "d":
		a.days = nextDays(a.days)
		a.recompute()
	case "g":
		a.granularity = nextGranularity(a.granularity)
		a.recompute()
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg, err := SaveSetup(*a.setupVals)
		a.setupErr = err
		a.applyConfig(cfg)
		a.needSetup = false
		a.setupForm = nil
		if a.dataDir != "" {
			return a, refreshDataCmd(a.dataDir, a.useCache)
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// applyConfig adopts settings chosen in the setup form.
func (a *App) applyConfig(cfg config.Config) {
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	cli.SetCurrency(cfg.General.Currency)
	a.days = cfg.General.DefaultDays
	a.autoRefresh = cfg.TUI.AutoRefresh
	if dir := cfg.ResolveDataDir(""); dir != "" {
		a.dataDir = dir
	}
	engine := cfg.Engine()
	a.memo = &pipeline.Memoizer{Engine: engine, Cache: a.memo.Cache}
	a.granularity = engine.Granularity
	a.recompute()
}

func nextDays(d int) int {
	for i, v := range daysCycle {
		if v == d {
			return daysCycle[(i+1)%len(daysCycle)]
		}
	}
	return daysCycle[0]
}

func nextGranularity(g model.Granularity) model.Granularity {
	for i, v := range granularityCycle {
		if v == g {
			return granularityCycle[(i+1)%len(granularityCycle)]
		}
	}
	return granularityCycle[0]
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func (a App) rangeLabel() string {
	if a.rng == nil {
		return "all time"
	}
	if a.days > 0 {
		return fmt.Sprintf("%dd", a.days)
	}
	return fmt.Sprintf("%s..%s", a.rng.Start, a.rng.End)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(5, a.height)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  finburn needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ finburn"))
	b.WriteString(subtitleStyle.Render(" · Financial Metrics"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing exports\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Scanning " + a.dataDir))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	section := func(b *strings.Builder, name string, binds [][2]string) {
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, bind := range binds {
			fmt.Fprintf(b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	section(&b, "Navigation", [][2]string{
		{"o s c t", "Jump to tab"},
		{"← →", "Previous / Next tab"},
	})
	b.WriteString("\n")
	section(&b, "Filters", [][2]string{
		{"d", "Cycle range: 7d, 30d, 90d, 365d, all"},
		{"g", "Cycle buckets: auto, daily, weekly, monthly"},
	})
	b.WriteString("\n")
	section(&b, "Actions", [][2]string{
		{"r", "Refresh data"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	})
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + filter pill
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	filterStr := pillStyle.Render(" ") + pillAccent.Render(a.rangeLabel())
	if a.source != "" {
		filterStr += pillStyle.Render(" │ ") + pillAccent.Render(a.source)
	}
	filterStr += pillStyle.Render(" │ ") + pillAccent.Render(string(a.snap.Granularity))
	if a.setupErr != nil {
		filterStr += pillStyle.Render(" │ ") + lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render("config not saved: "+a.setupErr.Error())
	}
	filterRow := lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filterStr)

	header := components.RenderTabBar(a.activeTab, w) + "\n" + filterRow

	// 2. Status bar
	info := components.StatusInfo{
		LoadTime:    a.loadTime,
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
	}
	if a.data != nil {
		info.Files = a.data.TotalFiles
		info.Skipped = a.data.ParseErrors + a.data.FileErrors
	}
	statusBar := components.RenderStatusBar(w, info)

	// 3. Content zone height
	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	// 4. Tab content
	var content string
	switch {
	case a.loadErr != nil && a.data == nil:
		content = components.ContentCard("Load failed", a.loadErr.Error(), cw)
	case a.data == nil || (len(a.data.Transactions) == 0 && len(a.data.Expenses) == 0):
		content = components.ContentCard("No data",
			fmt.Sprintf("No transaction or expense exports found in %s.\nPress r after adding files.", a.dataDir), cw)
	default:
		switch a.activeTab {
		case 0:
			content = a.renderOverviewTab(cw)
		case 1:
			content = a.renderSalesTab(cw)
		case 2:
			content = a.renderCostsTab(cw)
		case 3:
			content = a.renderTrendTab(cw)
		}
	}

	// 5. Truncate + pad to exactly contentH lines, fill gaps between cards
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Loading ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(dataDir string, useCache bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send: a full channel drops the update and the next one catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			data, err := load(context.Background(), dataDir, useCache, progressFn)
			sub <- DataLoadedMsg{Data: data, LoadTime: time.Since(start), Err: err}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads data in the background without progress UI.
func refreshDataCmd(dataDir string, useCache bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		data, err := load(context.Background(), dataDir, useCache, nil)
		return RefreshDataMsg{Data: data, LoadTime: time.Since(start), Err: err}
	}
}

// load prefers the incremental SQLite path and falls back to a full parse.
func load(ctx context.Context, dataDir string, useCache bool, progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	if useCache {
		c, err := store.Open(pipeline.CachePath())
		if err == nil {
			cr, loadErr := pipeline.LoadWithCache(ctx, dataDir, c, progressFn)
			_ = c.Close()
			if loadErr == nil {
				return &cr.LoadResult, nil
			}
			log.L.WithError(loadErr).Warn("cache-assisted load failed")
		}
	}
	return pipeline.Load(ctx, dataDir, progressFn)
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}

package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

var fixedNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.Local)

func sampleData() *pipeline.LoadResult {
	tx := func(date string, amount int64, src string) model.TransactionRecord {
		return model.TransactionRecord{OccurredOn: datekey.MustParse(date), Amount: decimal.NewFromInt(amount), Source: src}
	}
	return &pipeline.LoadResult{
		Transactions: []model.TransactionRecord{
			tx("2024/03/01", 500_000, "Shopee"),
			tx("2024/03/10", 300_000, "Lazada"),
			tx("2024/01/05", 900_000, "Shopee"),
		},
		Expenses: []model.ExpenseRecord{
			{OccurredOn: datekey.MustParse("2024/03/05"), Amount: decimal.NewFromInt(200_000), RawType: "Nhập hàng"},
		},
		TotalFiles:  2,
		ParsedFiles: 2,
		Version:     "test",
	}
}

func testApp(t *testing.T) App {
	t.Helper()
	a := NewApp(Options{DataDir: "/data", Days: 30, Config: config.DefaultConfig()})
	a.needSetup = false
	a.now = func() time.Time { return fixedNow }
	a.memo.Engine.Now = a.now

	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	m, _ = m.(App).Update(DataLoadedMsg{Data: sampleData(), LoadTime: time.Second})
	return m.(App)
}

func press(t *testing.T, a App, key tea.KeyMsg) App {
	t.Helper()
	m, _ := a.Update(key)
	return m.(App)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDataLoadedComputesSnapshot(t *testing.T) {
	a := testApp(t)
	require.True(t, a.loaded)
	require.NotNil(t, a.rng)
	assert.Equal(t, "2024/02/13", string(a.rng.Start))
	assert.Equal(t, 800_000.0, a.snap.Financial.TotalRevenue)
	assert.Equal(t, 200_000.0, a.snap.Financial.TotalExpenses)
	assert.Equal(t, model.Daily, a.snap.Granularity)
}

func TestKeyNavigation(t *testing.T) {
	a := testApp(t)

	a = press(t, a, runes("c"))
	assert.Equal(t, 2, a.activeTab)
	a = press(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 3, a.activeTab)
	a = press(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, a.activeTab)
	a = press(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 3, a.activeTab)

	a = press(t, a, runes("?"))
	assert.True(t, a.showHelp)
	a = press(t, a, runes("s"))
	assert.False(t, a.showHelp)
	assert.Equal(t, 3, a.activeTab, "key that closes help is swallowed")
}

func TestDaysAndGranularityCycle(t *testing.T) {
	a := testApp(t)

	a = press(t, a, runes("d"))
	assert.Equal(t, 90, a.days)
	assert.Equal(t, 1_700_000.0, a.snap.Financial.TotalRevenue)

	a = press(t, a, runes("d"))
	a = press(t, a, runes("d"))
	assert.Equal(t, 0, a.days)
	assert.Nil(t, a.rng)

	a = press(t, a, runes("d"))
	assert.Equal(t, 7, a.days)

	a = press(t, a, runes("g"))
	assert.Equal(t, model.Daily, a.granularity)
	a = press(t, a, runes("g"))
	a = press(t, a, runes("g"))
	assert.Equal(t, model.Monthly, a.snap.Granularity)
	a = press(t, a, runes("g"))
	assert.Equal(t, model.Granularity(""), a.granularity)
}

func TestSourceFilter(t *testing.T) {
	a := testApp(t)
	a.source = "lazada"
	a.recompute()
	assert.Equal(t, 300_000.0, a.snap.Financial.TotalRevenue)
	assert.Equal(t, 1, a.snap.Revenue.TotalTransactions)
}

func TestViewRendersEveryTab(t *testing.T) {
	a := testApp(t)
	for i := range 4 {
		a.activeTab = i
		out := a.View()
		assert.NotEmpty(t, out)
		assert.LessOrEqual(t, len(strings.Split(out, "\n")), 45, "tab %d overflows the terminal", i)
	}

	a.width = 60
	assert.Contains(t, a.View(), "too narrow")
}

func TestViewLoadFailure(t *testing.T) {
	a := NewApp(Options{DataDir: "/missing", Config: config.DefaultConfig()})
	a.needSetup = false
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.(App).Update(DataLoadedMsg{Err: errors.New("boom")})
	assert.Contains(t, m.(App).View(), "boom")
}

func TestRefreshMessageReplacesData(t *testing.T) {
	a := testApp(t)
	a.refreshing = true
	data := sampleData()
	data.Transactions = data.Transactions[:1]
	data.Version = "test-2"

	m, _ := a.Update(RefreshDataMsg{Data: data, LoadTime: time.Millisecond})
	a = m.(App)
	assert.False(t, a.refreshing)
	assert.Equal(t, 500_000.0, a.snap.Financial.TotalRevenue)
}

func TestNextDaysUnknownValue(t *testing.T) {
	if got := nextDays(14); got != 7 {
		t.Errorf("nextDays(14) = %d, want 7", got)
	}
}

package daemon

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/theirongolddev/finburn/internal/cache"
	"github.com/theirongolddev/finburn/internal/daemon/mocks"
	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

var fixedNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.Local)

func txRec(date string, amount int64, src string) model.TransactionRecord {
	return model.TransactionRecord{OccurredOn: datekey.MustParse(date), Amount: decimal.NewFromInt(amount), Source: src}
}

func expRec(date string, amount int64, rawType string) model.ExpenseRecord {
	return model.ExpenseRecord{OccurredOn: datekey.MustParse(date), Amount: decimal.NewFromInt(amount), RawType: rawType}
}

func dataset(version string, txs ...model.TransactionRecord) *pipeline.LoadResult {
	return &pipeline.LoadResult{
		Transactions: txs,
		Expenses:     []model.ExpenseRecord{expRec("2024/03/02", 30, "Quảng cáo")},
		TotalFiles:   2,
		ParsedFiles:  2,
		Version:      version,
	}
}

func newTestService(t *testing.T, loader Loader, cfg Config) *Service {
	t.Helper()
	log.SetupTestLogger(io.Discard)
	cfg.Loader = loader
	cfg.Engine = &pipeline.Engine{Now: func() time.Time { return fixedNow }}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewSnapshots(16, time.Hour)
	}
	s := New(cfg)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Revenue:        1_000_000,
		Expenses:       400_000,
		NetProfit:      600_000,
		Transactions:   10,
		ExpenseRecords: 4,
	}
	curr := Snapshot{
		Revenue:        1_250_000,
		Expenses:       410_500,
		NetProfit:      839_500,
		Transactions:   12,
		ExpenseRecords: 5,
	}

	delta := diffSnapshots(prev, curr)
	if delta.Transactions != 2 {
		t.Fatalf("Transactions delta = %d, want 2", delta.Transactions)
	}
	if delta.ExpenseRecords != 1 {
		t.Fatalf("ExpenseRecords delta = %d, want 1", delta.ExpenseRecords)
	}
	if math.Abs(delta.Revenue-250_000) > 1e-9 {
		t.Fatalf("Revenue delta = %.2f, want 250000", delta.Revenue)
	}
	if math.Abs(delta.NetProfit-239_500) > 1e-9 {
		t.Fatalf("NetProfit delta = %.2f, want 239500", delta.NetProfit)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		DataDir:      ".",
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(Config{DataDir: "/data", UseCache: true})
	assert.Equal(t, time.Minute, s.cfg.Interval)
	assert.Equal(t, 200, s.cfg.EventsBuffer)
	assert.Equal(t, "127.0.0.1:8787", s.cfg.Addr)
	assert.Equal(t, DirLoader{DataDir: "/data", UseCache: true}, s.cfg.Loader)
}

func TestPollOnce_SnapshotThenDelta(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)

	first := dataset("v1", txRec("2024/03/01", 100, "Shopee"))
	second := dataset("v2", txRec("2024/03/01", 100, "Shopee"), txRec("2024/03/10", 50, "Lazada"))
	gomock.InOrder(
		loader.EXPECT().Load(gomock.Any()).Return(first, nil),
		loader.EXPECT().Load(gomock.Any()).Return(second, nil),
		loader.EXPECT().Load(gomock.Any()).Return(second, nil),
	)

	s := newTestService(t, loader, Config{})
	ctx := context.Background()

	s.PollOnce(ctx)
	s.PollOnce(ctx)
	s.PollOnce(ctx)

	st := s.snapshotStatus()
	assert.Equal(t, int64(3), st.PollCount)
	assert.Empty(t, st.LastError)
	assert.Equal(t, 150.0, st.Summary.Revenue)
	assert.Equal(t, 30.0, st.Summary.Expenses)
	assert.Equal(t, 2, st.Summary.Transactions)
	assert.Equal(t, "v2", st.Summary.Version)

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()

	require.Len(t, events, 2, "unchanged third poll must not publish")
	assert.Equal(t, EventSnapshot, events[0].Type)
	assert.Equal(t, int64(1), events[0].ID)
	assert.Equal(t, EventDelta, events[1].Type)
	assert.Equal(t, 50.0, events[1].Delta.Revenue)
	assert.Equal(t, 1, events[1].Delta.Transactions)
	assert.Equal(t, 0, events[1].Delta.ExpenseRecords)
}

func TestPollOnce_SourceFilterAndWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(dataset("v1",
		txRec("2024/03/12", 100, "Shopee"),
		txRec("2024/03/12", 70, "Lazada"),
		txRec("2024/02/01", 1000, "Shopee"),
	), nil)

	s := newTestService(t, loader, Config{Days: 7, Source: "shopee"})
	s.PollOnce(context.Background())

	st := s.snapshotStatus()
	assert.Equal(t, 100.0, st.Summary.Revenue, "only Shopee inside the last 7 days")
	assert.Equal(t, 1, st.Summary.Transactions)
	assert.Equal(t, 0.0, st.Summary.Expenses, "expense on 03/02 falls outside the window")
}

func TestPollOnce_LoaderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(nil, errors.New("disk gone"))

	s := newTestService(t, loader, Config{})
	s.PollOnce(context.Background())

	st := s.snapshotStatus()
	assert.Equal(t, "disk gone", st.LastError)
	assert.Equal(t, int64(1), st.PollCount)
	assert.Equal(t, 0, st.EventCount)
	assert.False(t, s.hasSnapshot)
}

func TestCompute_MemoizesByVersion(t *testing.T) {
	snaps := cache.NewSnapshots(8, time.Hour)
	s := newTestService(t, nil, Config{Cache: snaps})
	data := dataset("v1", txRec("2024/03/01", 100, "Shopee"))

	_ = s.compute(data, nil, "")
	_ = s.compute(data, nil, "")
	_ = s.compute(data, nil, "shopee")

	hits, misses := snaps.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestCompute_NoDataset(t *testing.T) {
	s := newTestService(t, nil, Config{})
	rng := &model.DateRange{Start: "2024/03/01", End: "2024/03/13"}

	snap := s.compute(nil, rng, "")
	assert.Equal(t, 0.0, snap.Financial.TotalRevenue)
	assert.Equal(t, model.Daily, snap.Granularity)
}

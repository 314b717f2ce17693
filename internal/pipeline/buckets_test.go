package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/finburn/internal/model"
)

func TestAggregateBuckets_DailyFillsGaps(t *testing.T) {
	rng := mustRange(t, "2024/01/01", "2024/01/05")
	txs := []model.TransactionRecord{
		tx("2024/01/02", 100, "A"),
		tx("2024/01/02", 50, "B"),
		tx("2024/01/09", 999, "A"), // outside range
		tx("", 777, "A"),           // undated
	}
	exps := []model.ExpenseRecord{exp("2024/01/05", 30, "", "")}

	buckets := AggregateBuckets(txs, exps, rng, model.Daily, fixedNow)
	require.Len(t, buckets, 5)

	assert.Equal(t, "2024/01/01", buckets[0].Key)
	assert.Equal(t, "01/01", buckets[0].Label)
	assert.Equal(t, 150.0, buckets[1].Revenue)
	assert.Equal(t, 30.0, buckets[4].Expense)
	assert.Equal(t, -30.0, buckets[4].Profit())

	for i := 1; i < len(buckets); i++ {
		if buckets[i].Key <= buckets[i-1].Key {
			t.Fatalf("keys not strictly ascending at %d: %s <= %s", i, buckets[i].Key, buckets[i-1].Key)
		}
	}
}

func TestAggregateBuckets_WeeklyAnchorsOnMonday(t *testing.T) {
	// 2024/01/03 is a Wednesday; its week starts 2024/01/01.
	rng := mustRange(t, "2024/01/03", "2024/02/14")
	txs := []model.TransactionRecord{
		tx("2024/01/07", 10, "A"), // Sunday of the first week
		tx("2024/01/08", 20, "A"), // Monday of the second week
	}

	buckets := AggregateBuckets(txs, nil, rng, model.Weekly, fixedNow)
	require.NotEmpty(t, buckets)
	assert.Equal(t, "2024/01/01", buckets[0].Key)
	assert.Equal(t, "01/01", buckets[0].Label)
	assert.Equal(t, 10.0, buckets[0].Revenue)
	assert.Equal(t, "2024/01/08", buckets[1].Key)
	assert.Equal(t, 20.0, buckets[1].Revenue)
	assert.Equal(t, "2024/02/12", buckets[len(buckets)-1].Key)
	assert.Len(t, buckets, 7)
}

func TestAggregateBuckets_DefaultTrailingYear(t *testing.T) {
	txs := []model.TransactionRecord{
		tx("2024/03/01", 5, "A"),
		tx("2023/04/30", 7, "A"),
		tx("2023/03/31", 9, "A"), // thirteen months back
	}

	buckets := AggregateBuckets(txs, nil, nil, model.Monthly, fixedNow)
	require.Len(t, buckets, 12)
	assert.Equal(t, "2023/04", buckets[0].Key)
	assert.Equal(t, "04/2023", buckets[0].Label)
	assert.Equal(t, 7.0, buckets[0].Revenue)
	assert.Equal(t, "2024/03", buckets[11].Key)
	assert.Equal(t, 5.0, buckets[11].Revenue)
}

func TestAggregateBuckets_InvertedRangeIsEmpty(t *testing.T) {
	buckets := AggregateBuckets([]model.TransactionRecord{tx("2024/01/02", 1, "A")}, nil,
		mustRange(t, "2024/02/01", "2024/01/01"), model.Daily, fixedNow)
	assert.NotNil(t, buckets)
	assert.Empty(t, buckets)
}

func TestAggregateBuckets_Conservation(t *testing.T) {
	rng := mustRange(t, "2023/11/01", "2024/02/29")
	txs := []model.TransactionRecord{
		tx("2023/11/15", 100, "A"),
		tx("2023/12/31", 200, "A"),
		tx("2024/02/29", 300, "A"),
	}
	for _, g := range []model.Granularity{model.Daily, model.Weekly, model.Monthly} {
		var sum float64
		for _, b := range AggregateBuckets(txs, nil, rng, g, fixedNow) {
			sum += b.Revenue
		}
		assert.Equal(t, 600.0, sum, "granularity %s", g)
	}
}

func TestBucketKeysCount(t *testing.T) {
	rng := model.DateRange{Start: "2024/01/15", End: "2024/04/02"}
	assert.Len(t, BucketKeys(rng, model.Daily), 79)
	assert.Len(t, BucketKeys(rng, model.Monthly), 4)
}

// Package store provides a SQLite-backed cache for parsed records and snapshots.
package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// insertChunk bounds rows per INSERT to stay under SQLite's variable limit.
const insertChunk = 400

// Cache provides SQLite-backed record caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "opening cache db")
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked state for a file.
type FileInfo struct {
	Kind        string
	MtimeNs     int64
	SizeBytes   int64
	ParseErrors int
}

// FileRecords is everything parsed from one file.
type FileRecords struct {
	Kind         string
	Transactions []model.TransactionRecord
	Expenses     []model.ExpenseRecord
	ParseErrors  int
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := sq.Select("file_path", "kind", "mtime_ns", "size_bytes", "parse_errors").
		From("file_tracker").
		RunWith(c.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(err, "querying file tracker")
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.Kind, &fi.MtimeNs, &fi.SizeBytes, &fi.ParseErrors); err != nil {
			return nil, errors.Wrap(err, "scanning file tracker")
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces every cached record of path and updates its tracker entry.
func (c *Cache) SaveFile(path string, recs FileRecords, mtimeNs, sizeBytes int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteFileRows(tx, path); err != nil {
		return err
	}

	for start := 0; start < len(recs.Transactions); start += insertChunk {
		q := sq.Insert("transactions").Columns("file_path", "record_id", "occurred_on", "amount", "source")
		for _, t := range recs.Transactions[start:min(start+insertChunk, len(recs.Transactions))] {
			q = q.Values(path, t.ID, string(t.OccurredOn), t.Amount.String(), t.Source)
		}
		if _, err := q.RunWith(tx).Exec(); err != nil {
			return errors.Wrapf(err, "inserting transactions for %s", path)
		}
	}

	for start := 0; start < len(recs.Expenses); start += insertChunk {
		q := sq.Insert("expenses").Columns(
			"file_path", "record_id", "occurred_on", "amount",
			"raw_type", "raw_category", "accounting_type", "standard_name",
		)
		for _, e := range recs.Expenses[start:min(start+insertChunk, len(recs.Expenses))] {
			q = q.Values(path, e.ID, string(e.OccurredOn), e.Amount.String(),
				e.RawType, e.RawCategory, e.AccountingType, e.StandardName)
		}
		if _, err := q.RunWith(tx).Exec(); err != nil {
			return errors.Wrapf(err, "inserting expenses for %s", path)
		}
	}

	_, err = sq.Replace("file_tracker").
		Columns("file_path", "kind", "mtime_ns", "size_bytes", "parse_errors", "parsed_at").
		Values(path, recs.Kind, mtimeNs, sizeBytes, recs.ParseErrors, time.Now().UTC().Format(time.RFC3339)).
		RunWith(tx).
		Exec()
	if err != nil {
		return errors.Wrap(err, "updating file tracker")
	}

	return errors.Wrap(tx.Commit(), "committing")
}

// DeleteFile removes a file's records and its tracker entry.
func (c *Cache) DeleteFile(path string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteFileRows(tx, path); err != nil {
		return err
	}
	if _, err := sq.Delete("file_tracker").Where(sq.Eq{"file_path": path}).RunWith(tx).Exec(); err != nil {
		return errors.Wrap(err, "deleting file tracker")
	}
	return errors.Wrap(tx.Commit(), "committing")
}

func deleteFileRows(tx *sql.Tx, path string) error {
	for _, table := range []string{"transactions", "expenses"} {
		if _, err := sq.Delete(table).Where(sq.Eq{"file_path": path}).RunWith(tx).Exec(); err != nil {
			return errors.Wrapf(err, "clearing %s for %s", table, path)
		}
	}
	return nil
}

// LoadFiles reads the cached records of the given files. A nil paths slice
// loads every file.
func (c *Cache) LoadFiles(paths []string) ([]model.TransactionRecord, []model.ExpenseRecord, error) {
	if paths != nil && len(paths) == 0 {
		return nil, nil, nil
	}

	txQuery := sq.Select("file_path", "record_id", "occurred_on", "amount", "source").
		From("transactions").
		OrderBy("file_path", "rowid")
	expQuery := sq.Select("file_path", "record_id", "occurred_on", "amount",
		"raw_type", "raw_category", "accounting_type", "standard_name").
		From("expenses").
		OrderBy("file_path", "rowid")
	if paths != nil {
		txQuery = txQuery.Where(sq.Eq{"file_path": paths})
		expQuery = expQuery.Where(sq.Eq{"file_path": paths})
	}

	txs, err := c.loadTransactions(txQuery)
	if err != nil {
		return nil, nil, err
	}
	exps, err := c.loadExpenses(expQuery)
	if err != nil {
		return nil, nil, err
	}
	return txs, exps, nil
}

func (c *Cache) loadTransactions(q sq.SelectBuilder) ([]model.TransactionRecord, error) {
	rows, err := q.RunWith(c.db).Query()
	if err != nil {
		return nil, errors.Wrap(err, "querying transactions")
	}
	defer func() { _ = rows.Close() }()

	var out []model.TransactionRecord
	for rows.Next() {
		var t model.TransactionRecord
		var date sql.NullString
		var amount string
		if err := rows.Scan(&t.FilePath, &t.ID, &date, &amount, &t.Source); err != nil {
			return nil, errors.Wrap(err, "scanning transaction")
		}
		t.OccurredOn = datekey.Key(date.String)
		t.Amount = parseStoredAmount(amount)
		out = append(out, t)
	}
	return out, errors.Wrap(rows.Err(), "iterating transactions")
}

func (c *Cache) loadExpenses(q sq.SelectBuilder) ([]model.ExpenseRecord, error) {
	rows, err := q.RunWith(c.db).Query()
	if err != nil {
		return nil, errors.Wrap(err, "querying expenses")
	}
	defer func() { _ = rows.Close() }()

	var out []model.ExpenseRecord
	for rows.Next() {
		var e model.ExpenseRecord
		var date, rawType, rawCategory, accType, stdName sql.NullString
		var amount string
		if err := rows.Scan(&e.FilePath, &e.ID, &date, &amount, &rawType, &rawCategory, &accType, &stdName); err != nil {
			return nil, errors.Wrap(err, "scanning expense")
		}
		e.OccurredOn = datekey.Key(date.String)
		e.Amount = parseStoredAmount(amount)
		e.RawType = rawType.String
		e.RawCategory = rawCategory.String
		e.AccountingType = accType.String
		e.StandardName = stdName.String
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "iterating expenses")
}

func parseStoredAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// RecordCounts returns the number of cached transactions and expenses.
func (c *Cache) RecordCounts() (txs, exps int, err error) {
	if err = sq.Select("COUNT(*)").From("transactions").RunWith(c.db).QueryRow().Scan(&txs); err != nil {
		return 0, 0, errors.Wrap(err, "counting transactions")
	}
	if err = sq.Select("COUNT(*)").From("expenses").RunWith(c.db).QueryRow().Scan(&exps); err != nil {
		return 0, 0, errors.Wrap(err, "counting expenses")
	}
	return txs, exps, nil
}

// GetSnapshot returns the memoized snapshot stored under key.
func (c *Cache) GetSnapshot(key string) (model.MetricsSnapshot, bool, error) {
	var payload string
	err := sq.Select("payload").From("snapshots").Where(sq.Eq{"memo_key": key}).
		RunWith(c.db).QueryRow().Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MetricsSnapshot{}, false, nil
	}
	if err != nil {
		return model.MetricsSnapshot{}, false, errors.Wrap(err, "reading snapshot")
	}

	var snap model.MetricsSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return model.MetricsSnapshot{}, false, errors.Wrap(err, "decoding snapshot")
	}
	return snap, true, nil
}

// PutSnapshot stores snap under key.
func (c *Cache) PutSnapshot(key string, snap model.MetricsSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	_, err = sq.Replace("snapshots").
		Columns("memo_key", "payload", "created_at").
		Values(key, string(payload), time.Now().UTC().Format(time.RFC3339)).
		RunWith(c.db).
		Exec()
	return errors.Wrap(err, "writing snapshot")
}

// PruneSnapshots deletes snapshots created before cutoff.
func (c *Cache) PruneSnapshots(cutoff time.Time) (int64, error) {
	res, err := sq.Delete("snapshots").
		Where(sq.Lt{"created_at": cutoff.UTC().Format(time.RFC3339)}).
		RunWith(c.db).
		Exec()
	if err != nil {
		return 0, errors.Wrap(err, "pruning snapshots")
	}
	return res.RowsAffected()
}

// Snapshots adapts the snapshot table to a memoizer cache. Storage errors are
// logged and reported as misses.
func (c *Cache) Snapshots() *SnapshotTable {
	return &SnapshotTable{cache: c}
}

// SnapshotTable is a snapshot cache backed by SQLite.
type SnapshotTable struct {
	cache *Cache
}

// Get implements the memoizer cache port.
func (s *SnapshotTable) Get(key string) (model.MetricsSnapshot, bool) {
	snap, ok, err := s.cache.GetSnapshot(key)
	if err != nil {
		log.L.WithError(err).WithField("key", key).Warn("snapshot cache read failed")
		return model.MetricsSnapshot{}, false
	}
	return snap, ok
}

// Put implements the memoizer cache port.
func (s *SnapshotTable) Put(key string, snap model.MetricsSnapshot) {
	if err := s.cache.PutSnapshot(key, snap); err != nil {
		log.L.WithError(err).WithField("key", key).Warn("snapshot cache write failed")
	}
}

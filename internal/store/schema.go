package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
    file_path            TEXT NOT NULL,
    record_id            TEXT NOT NULL,
    occurred_on          TEXT,
    amount               TEXT NOT NULL,
    source               TEXT NOT NULL,
    PRIMARY KEY (file_path, record_id)
);

CREATE TABLE IF NOT EXISTS expenses (
    file_path            TEXT NOT NULL,
    record_id            TEXT NOT NULL,
    occurred_on          TEXT,
    amount               TEXT NOT NULL,
    raw_type             TEXT,
    raw_category         TEXT,
    accounting_type      TEXT,
    standard_name        TEXT,
    PRIMARY KEY (file_path, record_id)
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    kind                 TEXT NOT NULL,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parse_errors         INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
    memo_key             TEXT PRIMARY KEY,
    payload              TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(occurred_on);
CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(occurred_on);
`

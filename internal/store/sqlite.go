package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/form990-cli/internal/form990"
)

// SQLiteStore implements Store using modernc.org/sqlite. Rows are kept as
// ordered JSON objects so remapped column names need no schema change.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS filing_runs (
	id                  TEXT PRIMARY KEY,
	object_id           TEXT NOT NULL,
	form                TEXT NOT NULL,
	header_failed       BOOLEAN NOT NULL DEFAULT 0,
	balance_failed      BOOLEAN NOT NULL DEFAULT 0,
	compensation_failed BOOLEAN NOT NULL DEFAULT 0,
	people              INTEGER NOT NULL DEFAULT 0,
	row_count           INTEGER NOT NULL DEFAULT 0,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS filing_rows (
	object_id TEXT NOT NULL,
	row_num   INTEGER NOT NULL,
	payload   TEXT NOT NULL,
	PRIMARY KEY (object_id, row_num)
);

CREATE INDEX IF NOT EXISTS idx_filing_runs_object_id ON filing_runs(object_id, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveFiling(ctx context.Context, f *form990.Filing, rows []*form990.Record) (*Run, error) {
	run := newRun(f, len(rows))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM filing_rows WHERE object_id = ?`, f.ID); err != nil {
		return nil, eris.Wrapf(err, "sqlite: clear rows for %s", f.ID)
	}
	for i, r := range rows {
		payload, err := json.Marshal(r)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: marshal row %d of %s", i, f.ID)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO filing_rows (object_id, row_num, payload) VALUES (?, ?, ?)`,
			f.ID, i, string(payload),
		); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert row %d of %s", i, f.ID)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO filing_runs (id, object_id, form, header_failed, balance_failed, compensation_failed, people, row_count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ObjectID, run.Form,
		run.Failures.Header, run.Failures.Balance, run.Failures.Compensation,
		run.People, run.Rows, run.CreatedAt,
	); err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert run for %s", f.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, objectID string, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, object_id, form, header_failed, balance_failed, compensation_failed, people, row_count, created_at FROM filing_runs WHERE object_id = ? ORDER BY created_at DESC LIMIT ?`,
		objectID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ObjectID, &r.Form,
			&r.Failures.Header, &r.Failures.Balance, &r.Failures.Compensation,
			&r.People, &r.Rows, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// RowPayloads returns the stored JSON rows of a filing in row order.
func (s *SQLiteStore) RowPayloads(ctx context.Context, objectID string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM filing_rows WHERE object_id = ? ORDER BY row_num`,
		objectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query rows")
	}
	defer rows.Close() //nolint:errcheck

	var out []json.RawMessage
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		out = append(out, json.RawMessage(payload))
	}
	return out, eris.Wrap(rows.Err(), "sqlite: rows iterate")
}

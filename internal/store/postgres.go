package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/form990-cli/internal/db"
	"github.com/sells-group/form990-cli/internal/form990"
)

const compensationTable = "irs990.compensation"

// PostgresStore implements Store using pgxpool. Rows land in typed columns
// of irs990.compensation; columns the table lacks, such as remapped names,
// are kept in its extra JSONB column.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return migrate(ctx, s.pool)
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveFiling replaces every stored row of the filing and records the run in
// one transaction. Rows from an earlier build, including typed or extra
// values a different remap produced, do not survive.
func (s *PostgresStore) SaveFiling(ctx context.Context, f *form990.Filing, rows []*form990.Record) (*Run, error) {
	run := newRun(f, len(rows))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: begin save for %s", f.ID)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `DELETE FROM irs990.compensation WHERE object_id = $1`, f.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: clear rows for %s", f.ID)
	}

	if len(rows) > 0 {
		cols, values := compensationRows(f.ID, rows)
		// tx satisfies db.Pool; the upsert runs in a savepoint of it.
		n, err := db.BulkUpsert(ctx, tx, db.UpsertConfig{
			Table:        compensationTable,
			Columns:      cols,
			ConflictKeys: []string{"object_id", "row_num"},
		}, values)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: save rows for %s", f.ID)
		}
		zap.L().Debug("compensation rows written",
			zap.String("object_id", f.ID),
			zap.Int64("replaced", tag.RowsAffected()),
			zap.Int64("rows", n),
		)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO irs990.filing_runs (id, object_id, form, header_failed, balance_failed, compensation_failed, people, row_count, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.ObjectID, run.Form,
		run.Failures.Header, run.Failures.Balance, run.Failures.Compensation,
		run.People, run.Rows, run.CreatedAt,
	); err != nil {
		return nil, eris.Wrapf(err, "postgres: insert run for %s", f.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrapf(err, "postgres: commit save for %s", f.ID)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, objectID string, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, object_id, form, header_failed, balance_failed, compensation_failed, people, row_count, created_at FROM irs990.filing_runs WHERE object_id = $1 ORDER BY created_at DESC LIMIT $2`,
		objectID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ObjectID, &r.Form,
			&r.Failures.Header, &r.Failures.Balance, &r.Failures.Compensation,
			&r.People, &r.Rows, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

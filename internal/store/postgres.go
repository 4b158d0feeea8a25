package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-cli/internal/config"
	"github.com/sells-group/geo-cli/internal/db"
	"github.com/sells-group/geo-cli/internal/model"
	"github.com/sells-group/geo-cli/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	retry   resilience.RetryConfig
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_result": `SELECT result FROM runs WHERE id = $1`,
	"save_run": `INSERT INTO runs (id, query, brand, visibility_rate, hypotheses, recommendations, summary_doc, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			visibility_rate = EXCLUDED.visibility_rate,
			hypotheses      = EXCLUDED.hypotheses,
			recommendations = EXCLUDED.recommendations,
			summary_doc     = EXCLUDED.summary_doc,
			result          = EXCLUDED.result`,
	"delete_run_observations": `DELETE FROM run_observations WHERE run_id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *config.PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
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

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{
		pool:    pool,
		closeFn: pool.Close,
		retry:   resilience.RetryConfig{MaxAttempts: 3, ShouldRetry: retryable},
	}, nil
}

// retryable reports whether a Postgres error is worth retrying: connection
// failures, serialization failures, and deadlocks.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"):
			return true
		case pgErr.Code == "40001" || pgErr.Code == "40P01":
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	query           TEXT NOT NULL,
	brand           TEXT NOT NULL,
	visibility_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	hypotheses      INTEGER NOT NULL DEFAULT 0,
	recommendations INTEGER NOT NULL DEFAULT 0,
	summary_doc     TEXT NOT NULL DEFAULT '',
	result          JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_brand ON runs(brand);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);

CREATE TABLE IF NOT EXISTS run_observations (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	platform        TEXT NOT NULL,
	query           TEXT NOT NULL,
	brand_mentioned BOOLEAN NOT NULL,
	position        INTEGER,
	citation_rank   INTEGER,
	competitors     TEXT[] NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_run_observations_run_id ON run_observations(run_id);
CREATE INDEX IF NOT EXISTS idx_run_observations_platform ON run_observations(platform);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// observationColumns is the COPY column list for run_observations.
var observationColumns = []string{"run_id", "platform", "query", "brand_mentioned", "position", "citation_rank", "competitors"}

func (s *PostgresStore) SaveResult(ctx context.Context, result *model.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	return resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, preparedStatements["save_run"],
			result.ID, result.Request.Query, result.Request.BrandDomain,
			result.Comparison.BrandScore.MentionRate,
			len(result.Hypotheses), len(result.Recommendations),
			summaryDocument(result), resultJSON, result.Timestamp.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: save result %s", result.ID)
		}

		// Re-saving a run replaces its observation rows.
		if _, err := s.pool.Exec(ctx, preparedStatements["delete_run_observations"], result.ID); err != nil {
			return eris.Wrapf(err, "postgres: delete observations %s", result.ID)
		}

		rows := make([][]any, 0, len(result.Observations))
		for _, obs := range result.Observations {
			rows = append(rows, []any{
				result.ID, string(obs.Platform), obs.Query, obs.BrandMentioned,
				obs.Position, obs.CitationRank, obs.CompetitorsMentioned,
			})
		}
		if _, err := db.CopyFrom(ctx, s.pool, "run_observations", observationColumns, rows); err != nil {
			return eris.Wrapf(err, "postgres: copy observations %s", result.ID)
		}
		return nil
	})
}

func (s *PostgresStore) GetResult(ctx context.Context, id string) (*model.Result, error) {
	return resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*model.Result, error) {
		var resultJSON []byte
		err := s.pool.QueryRow(ctx, preparedStatements["get_result"], id).Scan(&resultJSON)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, eris.Errorf("run not found: %s", id)
			}
			return nil, eris.Wrapf(err, "postgres: get result %s", id)
		}

		var r model.Result
		if err := json.Unmarshal(resultJSON, &r); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal result %s", id)
		}
		return &r, nil
	})
}

func (s *PostgresStore) ListRecent(ctx context.Context, brand string, limit int) ([]RunSummary, error) {
	query := `SELECT id, query, brand, visibility_rate, hypotheses, recommendations, created_at FROM runs`
	var args []any
	argIdx := 1

	if brand != "" {
		query += ` WHERE brand = $1`
		args = append(args, brand)
		argIdx++
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, limit)

	return resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]RunSummary, error) {
		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list runs")
		}
		defer rows.Close()

		var summaries []RunSummary
		for rows.Next() {
			var rs RunSummary
			if err := rows.Scan(&rs.ID, &rs.Query, &rs.Brand, &rs.VisibilityRate, &rs.Hypotheses, &rs.Recommendations, &rs.CreatedAt); err != nil {
				return nil, eris.Wrap(err, "postgres: scan run summary")
			}
			summaries = append(summaries, rs)
		}
		return summaries, eris.Wrap(rows.Err(), "postgres: list runs iterate")
	})
}

func (s *PostgresStore) Search(ctx context.Context, text string, limit int) ([]SearchHit, error) {
	return resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]SearchHit, error) {
		rows, err := s.pool.Query(ctx,
			`SELECT id, query, brand, visibility_rate, hypotheses, recommendations, summary_doc, created_at
			 FROM runs ORDER BY created_at DESC LIMIT $1`,
			searchScanLimit,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: search runs")
		}
		defer rows.Close()

		var candidates []searchCandidate
		for rows.Next() {
			var c searchCandidate
			if err := rows.Scan(&c.summary.ID, &c.summary.Query, &c.summary.Brand, &c.summary.VisibilityRate,
				&c.summary.Hypotheses, &c.summary.Recommendations, &c.doc, &c.summary.CreatedAt); err != nil {
				return nil, eris.Wrap(err, "postgres: scan search candidate")
			}
			candidates = append(candidates, c)
		}
		if err := rows.Err(); err != nil {
			return nil, eris.Wrap(err, "postgres: search runs iterate")
		}
		return rankHits(text, candidates, limit), nil
	})
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM runs`)
	return eris.Wrap(err, "postgres: clear runs")
}

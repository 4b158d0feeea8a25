package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geo-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	query           TEXT NOT NULL,
	brand           TEXT NOT NULL,
	visibility_rate REAL NOT NULL DEFAULT 0,
	hypotheses      INTEGER NOT NULL DEFAULT 0,
	recommendations INTEGER NOT NULL DEFAULT 0,
	summary_doc     TEXT NOT NULL DEFAULT '',
	result          TEXT NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_brand ON runs(brand);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveResult(ctx context.Context, result *model.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, query, brand, visibility_rate, hypotheses, recommendations, summary_doc, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			visibility_rate = excluded.visibility_rate,
			hypotheses      = excluded.hypotheses,
			recommendations = excluded.recommendations,
			summary_doc     = excluded.summary_doc,
			result          = excluded.result`,
		result.ID, result.Request.Query, result.Request.BrandDomain,
		result.Comparison.BrandScore.MentionRate,
		len(result.Hypotheses), len(result.Recommendations),
		summaryDocument(result), string(resultJSON), result.Timestamp.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save result %s", result.ID)
}

func (s *SQLiteStore) GetResult(ctx context.Context, id string) (*model.Result, error) {
	var resultJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM runs WHERE id = ?`, id,
	).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get result %s", id)
	}

	var r model.Result
	if err := json.Unmarshal([]byte(resultJSON), &r); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal result %s", id)
	}
	return &r, nil
}

func (s *SQLiteStore) ListRecent(ctx context.Context, brand string, limit int) ([]RunSummary, error) {
	query := `SELECT id, query, brand, visibility_rate, hypotheses, recommendations, created_at FROM runs WHERE 1=1`
	var args []any

	if brand != "" {
		query += ` AND brand = ?`
		args = append(args, brand)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(&rs.ID, &rs.Query, &rs.Brand, &rs.VisibilityRate, &rs.Hypotheses, &rs.Recommendations, &rs.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run summary")
		}
		summaries = append(summaries, rs)
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// searchScanLimit caps how many recent rows Search loads for ranking.
const searchScanLimit = 500

func (s *SQLiteStore) Search(ctx context.Context, text string, limit int) ([]SearchHit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, brand, visibility_rate, hypotheses, recommendations, summary_doc, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`,
		searchScanLimit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search runs")
	}
	defer rows.Close()

	var candidates []searchCandidate
	for rows.Next() {
		var c searchCandidate
		if err := rows.Scan(&c.summary.ID, &c.summary.Query, &c.summary.Brand, &c.summary.VisibilityRate,
			&c.summary.Hypotheses, &c.summary.Recommendations, &c.doc, &c.summary.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search candidate")
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: search runs iterate")
	}
	return rankHits(text, candidates, limit), nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	return eris.Wrap(err, "sqlite: clear runs")
}

// Package store persists completed analysis runs for the history and
// comparison commands. Two backends: SQLite for local use, Postgres for
// shared deployments.
package store

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-cli/internal/config"
	"github.com/sells-group/geo-cli/internal/model"
)

// RunSummary is the condensed view of a stored run used by listings.
type RunSummary struct {
	ID              string    `json:"id"`
	Query           string    `json:"query"`
	Brand           string    `json:"brand"`
	VisibilityRate  float64   `json:"visibility_rate"`
	Hypotheses      int       `json:"hypotheses"`
	Recommendations int       `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
}

// SearchHit pairs a summary with its similarity score in [0, 1].
type SearchHit struct {
	RunSummary
	Score float64 `json:"score"`
}

// Store defines the persistence interface for analysis history.
type Store interface {
	SaveResult(ctx context.Context, result *model.Result) error
	GetResult(ctx context.Context, id string) (*model.Result, error)
	ListRecent(ctx context.Context, brand string, limit int) ([]RunSummary, error)
	Search(ctx context.Context, text string, limit int) ([]SearchHit, error)
	Clear(ctx context.Context) error

	Migrate(ctx context.Context) error
	Close() error
}

// New selects a backend from cfg.Driver. An empty driver defaults to SQLite.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "geo.db"
		}
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, cfg.Postgres)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

const defaultListLimit = 20

// summaryDocument flattens the searchable text of a run into one lowercase
// document. Stored alongside the result so Search never has to unmarshal
// full result payloads.
func summaryDocument(r *model.Result) string {
	var b strings.Builder
	b.WriteString(r.Request.Query)
	b.WriteByte(' ')
	b.WriteString(r.Request.BrandDomain)
	for _, c := range r.Request.Competitors {
		b.WriteByte(' ')
		b.WriteString(c)
	}
	for _, h := range r.Hypotheses {
		b.WriteByte(' ')
		b.WriteString(h.Title)
		b.WriteByte(' ')
		b.WriteString(h.Explanation)
	}
	for _, rec := range r.Recommendations {
		b.WriteByte(' ')
		b.WriteString(rec.Title)
	}
	b.WriteByte(' ')
	b.WriteString(r.Summary)
	return strings.ToLower(b.String())
}

// tokenize splits text into a set of lowercase word tokens.
func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// jaccard returns |A intersect B| / |A union B| for two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersect := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersect++
		}
	}
	union := len(a) + len(b) - intersect
	if union == 0 {
		return 0
	}
	return float64(intersect) / float64(union)
}

// searchCandidate is a stored run plus its summary document, as loaded by a
// backend for similarity ranking.
type searchCandidate struct {
	summary RunSummary
	doc     string
}

// rankHits scores candidates against the query text, drops zero scores, and
// returns the top hits in descending score order. Ties keep the candidate
// order, which backends provide newest-first.
func rankHits(text string, candidates []searchCandidate, limit int) []SearchHit {
	query := tokenize(text)
	hits := make([]SearchHit, 0, len(candidates))
	for _, c := range candidates {
		score := jaccard(query, tokenize(c.doc))
		if score == 0 {
			continue
		}
		hits = append(hits, SearchHit{RunSummary: c.summary, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

package orchestrator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geo-cli/internal/analyze"
	"github.com/sells-group/geo-cli/internal/model"
)

// collectOutcome is the joined result of the fan-out stage. Observations are
// in task completion order, which is not deterministic; downstream scoring
// does not depend on order.
type collectOutcome struct {
	observations []model.Observation
	errors       []model.StepError
	total        int
}

// collect runs one search task per (variation, platform) pair through a
// bounded worker pool. Individual task failures never fail the stage; they
// are recorded and the rest of the pool keeps going. Caller cancellation
// still aborts everything via ctx.
func (o *Orchestrator) collect(ctx context.Context, p plan, req model.AnalysisRequest) collectOutcome {
	type task struct {
		query    string
		platform model.Platform
	}

	var tasks []task
	for _, q := range p.variations {
		for _, platform := range p.platforms {
			tasks = append(tasks, task{query: q, platform: platform})
		}
	}

	out := collectOutcome{total: len(tasks)}
	timeout := time.Duration(o.cfg.QueryTimeoutSecs) * time.Second

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxConcurrent)

	for _, tk := range tasks {
		g.Go(func() error {
			obs, err := o.collectOne(gCtx, tk.platform, tk.query, req, timeout)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.errors = append(out.errors, model.StepError{
					Step:      stepCollect,
					Platform:  tk.platform,
					Query:     tk.query,
					Message:   err.Error(),
					Timestamp: time.Now().UTC(),
				})
				zap.L().Warn("collect task failed",
					zap.String("platform", string(tk.platform)),
					zap.String("query", tk.query),
					zap.Error(err))
				return nil
			}
			out.observations = append(out.observations, obs)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (o *Orchestrator) collectOne(ctx context.Context, platform model.Platform, query string, req model.AnalysisRequest, timeout time.Duration) (model.Observation, error) {
	searcher, err := o.searchers.Lookup(platform)
	if err != nil {
		return model.Observation{}, err
	}

	tctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	answer, err := searcher.Search(tctx, query)
	if err != nil {
		return model.Observation{}, err
	}

	return analyze.BuildObservation(platform, query, req.BrandDomain, req.Competitors, answer.Text, answer.Citations), nil
}

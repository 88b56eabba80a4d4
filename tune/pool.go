package tune

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/hupe1980/knntune/resource"
)

// Pool runs trials concurrently. Concurrency and trial-start pacing are
// governed by a resource.Controller; a nil controller runs everything
// unthrottled.
type Pool struct {
	controller *resource.Controller
	logger     *slog.Logger
}

// NewPool creates a trial pool. Either argument may be nil.
func NewPool(controller *resource.Controller, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pool{controller: controller, logger: logger}
}

// Run schedules all trials and returns a channel that yields exactly one
// Result per trial. The channel is closed once every trial has reported.
// Result order is completion order, not grid order.
//
// A panicking trial does not take the run down: the panic is recovered and
// reported as a Result whose Err is an *ErrWorkerFailure tagged with the
// trial's hyperparameters.
func (p *Pool) Run(ctx context.Context, trials []*Trial) <-chan Result {
	results := make(chan Result, len(trials))

	var wg sync.WaitGroup
	for _, t := range trials {
		wg.Add(1)
		go func(t *Trial) {
			defer wg.Done()
			results <- p.runTrial(ctx, t)
		}(t)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (p *Pool) runTrial(ctx context.Context, t *Trial) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("trial panicked",
				slog.Int("k", t.k),
				slog.String("metric", t.metric.String()),
				slog.Any("panic", r),
			)
			res = Result{
				K:      t.k,
				Metric: t.metric,
				Err:    &ErrWorkerFailure{K: t.k, Metric: t.metric, Err: fmt.Errorf("panic: %v", r)},
			}
		}
	}()

	if err := p.controller.WaitTrial(ctx); err != nil {
		return Result{K: t.k, Metric: t.metric, Err: err}
	}
	if err := p.controller.AcquireWorker(ctx); err != nil {
		return Result{K: t.k, Metric: t.metric, Err: err}
	}
	defer p.controller.ReleaseWorker()

	res = t.Run(ctx)

	p.logger.Debug("trial finished",
		slog.Int("k", res.K),
		slog.String("metric", res.Metric.String()),
		slog.Float64("quality", res.Quality),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res
}

// Collect drains a result channel into a slice sorted by (k, metric), which
// makes the output order deterministic regardless of completion order.
func Collect(results <-chan Result) []Result {
	var out []Result
	for res := range results {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].K != out[j].K {
			return out[i].K < out[j].K
		}
		return out[i].Metric < out[j].Metric
	})
	return out
}

// Best returns the successful result with the highest quality. Quality
// ties go to the smaller k, then to metric declaration order. The second
// return is false when no trial succeeded.
func Best(results []Result) (Result, bool) {
	var best Result
	found := false
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if !found || better(res, best) {
			best = res
			found = true
		}
	}
	return best, found
}

func better(a, b Result) bool {
	if a.Quality != b.Quality {
		return a.Quality > b.Quality
	}
	if a.K != b.K {
		return a.K < b.K
	}
	return a.Metric < b.Metric
}

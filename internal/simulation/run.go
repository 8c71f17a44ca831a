package simulation

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/logging"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"
)

// RunConfig is a full calculation request.
type RunConfig struct {
	Settings TeamSettings
	Members  []MemberSettings
	Options  Options
	Workers  int // 0 uses GOMAXPROCS
}

// Run spreads the iterations over workers. Each worker owns a Simulator and
// a cursor from rng.Partition, so the result depends on the worker count
// but never on scheduling. A shared cooking state forces a single worker.
func Run(ctx context.Context, cfg RunConfig) (Results, error) {
	opts := cfg.Options
	logger := logging.OrDiscard(opts.Logger)
	start := time.Now()

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if opts.Cooking != nil || opts.EventLog {
		workers = 1
	}
	workers = max(1, min(workers, opts.Iterations))

	base := opts.Rng
	if base == nil {
		base = rng.New()
	}
	cursors := []*rng.Source{base}
	if workers > 1 {
		cursors = base.Partition(workers)
	}

	sims := make([]*Simulator, workers)
	for i := range sims {
		o := opts
		o.Rng = cursors[i]
		o.Iterations = opts.Iterations / workers
		if i < opts.Iterations%workers {
			o.Iterations++
		}
		sim, err := New(cfg.Settings, cfg.Members, o)
		if err != nil {
			return Results{}, err
		}
		sims[i] = sim
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, sim := range sims {
		g.Go(func() error {
			_, err := sim.Run(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Results{}, err
	}

	var merged tally
	for _, sim := range sims {
		merged.merge(sim.tally())
	}
	res := sims[0].resultsFrom(merged)
	logger.Info("simulation finished", "workers", workers, "elapsed", time.Since(start).Round(time.Millisecond), "results", res)
	return res, nil
}

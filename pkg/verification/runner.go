package verification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the outcome of one harness run.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Result records one harness run.
type Result struct {
	Module   string
	Name     string
	Status   Status
	Duration time.Duration
	Err      error
}

// ID is "module/name".
func (r Result) ID() string {
	return r.Module + "/" + r.Name
}

// Runner executes harnesses with bounded concurrency.
type Runner struct {
	// Concurrency caps parallel harnesses. Zero means GOMAXPROCS.
	Concurrency int
	// Timeout bounds each harness. Zero means no bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Run executes every harness and returns their results in input order.
// A failing harness never stops the others. Harnesses not started before ctx
// is done are reported as skipped.
func (r *Runner) Run(ctx context.Context, harnesses []Harness) *Report {
	limit := r.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	results := make([]Result, len(harnesses))
	var g errgroup.Group
	g.SetLimit(limit)
	started := time.Now()
	for i, h := range harnesses {
		g.Go(func() error {
			results[i] = r.runOne(ctx, h)
			logger.Debug("harness finished",
				"harness", h.ID(),
				"status", results[i].Status,
				"duration", results[i].Duration)
			return nil
		})
	}
	_ = g.Wait()
	return &Report{Results: results, Elapsed: time.Since(started)}
}

func (r *Runner) runOne(ctx context.Context, h Harness) (res Result) {
	res = Result{Module: h.Module, Name: h.Name}
	if err := ctx.Err(); err != nil {
		res.Status = StatusSkipped
		res.Err = err
		return res
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if p := recover(); p != nil {
			res.Status = StatusFail
			res.Err = fmt.Errorf("harness panicked: %v", p)
		}
	}()
	err := h.Check(ctx)
	switch {
	case err == nil:
		res.Status = StatusPass
	case errors.Is(err, context.Canceled):
		res.Status = StatusSkipped
		res.Err = err
	default:
		res.Status = StatusFail
		res.Err = err
	}
	return res
}

package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"docgen/internal/domain"
	"docgen/internal/infra"
)

// requestExecutor is what the worker loop needs from an Executor.
type requestExecutor interface {
	Execute(ctx context.Context, req *domain.GenerationRequest) error
}

// WorkerOptions configures one claim→execute loop instance.
type WorkerOptions struct {
	WorkerID     string
	Concurrency  int
	PollInterval time.Duration
	ClaimTimeout time.Duration
	ClaimLimit   int
}

// Worker polls the request store, claims eligible requests and executes them
// on a bounded pool. Any number of workers may run the same loop against the
// same store; the claim statement arbitrates ownership.
type Worker struct {
	opts     WorkerOptions
	repo     domain.RequestRepository
	executor requestExecutor
	clock    Clock
	logger   infra.Logger

	inFlight atomic.Int64
}

func NewWorker(opts WorkerOptions, repo domain.RequestRepository, executor requestExecutor, clock Clock, logger infra.Logger) *Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.ClaimLimit <= 0 {
		opts.ClaimLimit = opts.Concurrency
	}
	return &Worker{
		opts:     opts,
		repo:     repo,
		executor: executor,
		clock:    clock,
		logger:   logger,
	}
}

// Run loops until ctx is cancelled, then waits for in-flight executions.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().
		Str("worker_id", w.opts.WorkerID).
		Int("concurrency", w.opts.Concurrency).
		Dur("claim_timeout", w.opts.ClaimTimeout).
		Msg("worker: started")

	var group errgroup.Group
	for {
		select {
		case <-ctx.Done():
			err := group.Wait()
			w.logger.Info().Str("worker_id", w.opts.WorkerID).Msg("worker: stopped")
			if err != nil {
				return err
			}
			return ctx.Err()
		default:
		}

		if n := w.tick(ctx, &group); n == 0 {
			w.sleep(ctx)
		}
	}
}

// tick claims up to the free pool slots and dispatches them. Claiming only
// what can start immediately keeps claimed rows from idling toward the
// staleness cutoff behind a slow render.
func (w *Worker) tick(ctx context.Context, group *errgroup.Group) int {
	free := w.opts.Concurrency - int(w.inFlight.Load())
	if free <= 0 {
		return 0
	}
	limit := w.opts.ClaimLimit
	if free < limit {
		limit = free
	}

	now := w.clock.Now()
	claimed, err := w.repo.Claim(ctx, w.opts.WorkerID, limit, now, now.Add(-w.opts.ClaimTimeout))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("worker: claim failed, backing off")
		}
		return 0
	}

	for _, req := range claimed {
		req := req
		if prev := req.ClaimedAt; req.StartedAt != nil && prev != nil && req.StartedAt.Before(*prev) {
			// A reclaim of somebody's stale claim; duplicate execution is
			// possible and accepted, but worth a trace.
			w.logger.Warn().
				Str("request_id", req.ID).
				Time("first_started_at", *req.StartedAt).
				Msg("worker: reclaimed stale request")
		}
		w.inFlight.Add(1)
		group.Go(func() error {
			defer w.inFlight.Add(-1)
			if err := w.executor.Execute(ctx, req); err != nil {
				w.logger.Error().Err(err).Str("request_id", req.ID).Msg("worker: execution not recorded")
			}
			return nil
		})
	}
	return len(claimed)
}

func (w *Worker) sleep(ctx context.Context) {
	timer := time.NewTimer(w.opts.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"docgen/internal/adapter/repo/memory"
	"docgen/internal/domain"
	"docgen/internal/infra"
)

type countingExecutor struct {
	mu       sync.Mutex
	repo     domain.RequestRepository
	clock    Clock
	workerID string
	seen     map[string]int
}

func (c *countingExecutor) Execute(ctx context.Context, req *domain.GenerationRequest) error {
	c.mu.Lock()
	c.seen[req.ID]++
	c.mu.Unlock()
	_, err := c.repo.MarkCompleted(ctx, req.ID, c.workerID, "doc-"+req.ID, c.clock.Now())
	return err
}

func (c *countingExecutor) executions(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[id]
}

func TestWorkerDrainsPendingRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := memory.NewStore()
	clock := SystemClock()
	logger := infra.NewLogger("test", "worker")

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		req, err := domain.NewRequest(domain.RequestSpec{
			TenantID:   "tenant-1",
			TemplateID: "tpl-1",
			VariantID:  "var-1",
			Target:     domain.VersionTarget("ver-1"),
		}, clock.Now())
		if err != nil {
			t.Fatalf("NewRequest: %v", err)
		}
		if err := store.Create(ctx, req); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, req.ID)
	}

	exec := &countingExecutor{repo: store, clock: clock, workerID: "w1", seen: map[string]int{}}
	worker := NewWorker(WorkerOptions{
		WorkerID:     "w1",
		Concurrency:  2,
		PollInterval: 5 * time.Millisecond,
		ClaimTimeout: time.Minute,
		ClaimLimit:   2,
	}, store, exec, clock, logger)

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		progress, err := allCompleted(ctx, store, ids)
		if err != nil {
			t.Fatalf("poll: %v", err)
		}
		if progress {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("worker did not drain the queue in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	for _, id := range ids {
		if n := exec.executions(id); n != 1 {
			t.Fatalf("request %s executed %d times, want 1", id, n)
		}
	}
}

func allCompleted(ctx context.Context, store *memory.Store, ids []string) (bool, error) {
	for _, id := range ids {
		req, err := store.Get(ctx, id)
		if err != nil {
			return false, err
		}
		if req.Status != domain.StatusCompleted {
			return false, nil
		}
	}
	return true, nil
}

func TestWorkerDefaultsClampOptions(t *testing.T) {
	store := memory.NewStore()
	exec := &countingExecutor{repo: store, clock: SystemClock(), workerID: "w1", seen: map[string]int{}}
	w := NewWorker(WorkerOptions{WorkerID: "w1"}, store, exec, SystemClock(), infra.NewLogger("test", "worker"))
	if w.opts.Concurrency != 1 {
		t.Fatalf("Concurrency = %d, want 1", w.opts.Concurrency)
	}
	if w.opts.ClaimLimit != 1 {
		t.Fatalf("ClaimLimit = %d, want concurrency", w.opts.ClaimLimit)
	}
	if w.opts.PollInterval <= 0 {
		t.Fatalf("PollInterval not defaulted")
	}
}

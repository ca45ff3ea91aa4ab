package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"docgen/internal/domain"
)

// Store is an in-memory domain.RequestRepository. It mirrors the conditional
// update semantics of the PostgreSQL repository under a single mutex, which
// makes it the reference implementation for concurrency tests and a
// zero-dependency backend for local development.
type Store struct {
	mu       sync.Mutex
	requests map[string]*domain.GenerationRequest
}

func NewStore() *Store {
	return &Store{requests: make(map[string]*domain.GenerationRequest)}
}

func (s *Store) Create(ctx context.Context, req *domain.GenerationRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = clone(req)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.GenerationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(req), nil
}

func (s *Store) Claim(ctx context.Context, workerID string, limit int, now, staleBefore time.Time) ([]*domain.GenerationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	eligible := make([]*domain.GenerationRequest, 0)
	for _, req := range s.requests {
		if claimable(req, staleBefore) {
			eligible = append(eligible, req)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].CreatedAt.Equal(eligible[j].CreatedAt) {
			return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
		}
		return eligible[i].ID < eligible[j].ID
	})
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}

	claimed := make([]*domain.GenerationRequest, 0, len(eligible))
	for _, req := range eligible {
		req.Status = domain.StatusInProgress
		req.ClaimedBy = strptr(workerID)
		t := now.UTC()
		req.ClaimedAt = &t
		if req.StartedAt == nil {
			req.StartedAt = &t
		}
		claimed = append(claimed, clone(req))
	}
	return claimed, nil
}

func claimable(req *domain.GenerationRequest, staleBefore time.Time) bool {
	switch req.Status {
	case domain.StatusPending:
		return true
	case domain.StatusInProgress:
		return req.ClaimedAt != nil && req.ClaimedAt.Before(staleBefore)
	}
	return false
}

func (s *Store) MarkCompleted(ctx context.Context, id, workerID, documentID string, completedAt time.Time) (bool, error) {
	return s.finish(ctx, id, workerID, completedAt, func(req *domain.GenerationRequest) {
		req.Status = domain.StatusCompleted
		req.DocumentID = strptr(documentID)
	})
}

func (s *Store) MarkFailed(ctx context.Context, id, workerID, errorMessage string, completedAt time.Time) (bool, error) {
	return s.finish(ctx, id, workerID, completedAt, func(req *domain.GenerationRequest) {
		req.Status = domain.StatusFailed
		req.ErrorMessage = strptr(errorMessage)
	})
}

func (s *Store) finish(ctx context.Context, id, workerID string, completedAt time.Time, apply func(*domain.GenerationRequest)) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return false, nil
	}
	// Same guard as the SQL statement: still in progress and still ours.
	if req.Status != domain.StatusInProgress || req.ClaimedBy == nil || *req.ClaimedBy != workerID {
		return false, nil
	}
	apply(req)
	t := completedAt.UTC()
	req.CompletedAt = &t
	return true, nil
}

func (s *Store) Cancel(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok || !req.IsCancellable() {
		return false, nil
	}
	req.Status = domain.StatusCancelled
	t := completedAt.UTC()
	req.CompletedAt = &t
	return true, nil
}

func (s *Store) ListByBatch(ctx context.Context, batchID string) ([]*domain.GenerationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.GenerationRequest
	for _, req := range s.requests {
		if req.BatchID != nil && *req.BatchID == batchID {
			out = append(out, clone(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) BatchProgress(ctx context.Context, batchID string) (domain.BatchProgress, error) {
	progress := domain.BatchProgress{BatchID: batchID}
	members, err := s.ListByBatch(ctx, batchID)
	if err != nil {
		return progress, err
	}
	for _, req := range members {
		progress.Add(req.Status, 1)
	}
	return progress, nil
}

func (s *Store) DeleteExpired(ctx context.Context, cutoff, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, req := range s.requests {
		if !req.IsTerminal() {
			continue
		}
		reference := req.CreatedAt
		if req.CompletedAt != nil {
			reference = *req.CompletedAt
		}
		if reference.Before(cutoff) || (req.ExpiresAt != nil && req.ExpiresAt.Before(now)) {
			delete(s.requests, id)
			deleted++
		}
	}
	return deleted, nil
}

func clone(req *domain.GenerationRequest) *domain.GenerationRequest {
	out := *req
	out.BatchID = copyptr(req.BatchID)
	out.VersionID = copyptr(req.VersionID)
	out.EnvironmentID = copyptr(req.EnvironmentID)
	out.DocumentID = copyptr(req.DocumentID)
	out.ErrorMessage = copyptr(req.ErrorMessage)
	out.ClaimedBy = copyptr(req.ClaimedBy)
	out.ClaimedAt = copytime(req.ClaimedAt)
	out.StartedAt = copytime(req.StartedAt)
	out.CompletedAt = copytime(req.CompletedAt)
	out.ExpiresAt = copytime(req.ExpiresAt)
	out.Data = append([]byte(nil), req.Data...)
	return &out
}

func strptr(s string) *string { return &s }

func copyptr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copytime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var _ domain.RequestRepository = (*Store)(nil)

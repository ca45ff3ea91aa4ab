package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"docgen/internal/domain"
	"docgen/internal/infra"
)

// Service is the producer-facing contract over the request store: submit,
// cancel and read operations. It is a library surface; transports sit on top.
type Service struct {
	repo   domain.RequestRepository
	clock  Clock
	logger infra.Logger
}

func NewService(repo domain.RequestRepository, clock Clock, logger infra.Logger) *Service {
	return &Service{repo: repo, clock: clock, logger: logger}
}

// Submit validates the spec and persists a PENDING request. Validation
// failures never reach the store.
func (s *Service) Submit(ctx context.Context, spec domain.RequestSpec) (*domain.GenerationRequest, error) {
	req, err := domain.NewRequest(spec, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("request_id", req.ID).
		Str("tenant_id", req.TenantID).
		Str("correlation_id", req.CorrelationID).
		Msg("service: request submitted")
	return req, nil
}

// SubmitBatch validates every spec before creating any request, stamps them
// with a shared batch id (minting one when absent) and persists them. The
// batch imposes no atomicity: members succeed and fail independently from
// here on.
func (s *Service) SubmitBatch(ctx context.Context, batchID string, specs []domain.RequestSpec) (string, []*domain.GenerationRequest, error) {
	if len(specs) == 0 {
		return "", nil, fmt.Errorf("%w: batch needs at least one request", domain.ErrInvalidRequest)
	}
	if batchID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", nil, fmt.Errorf("generate batch id: %w", err)
		}
		batchID = id.String()
	}

	now := s.clock.Now()
	requests := make([]*domain.GenerationRequest, 0, len(specs))
	for i, spec := range specs {
		spec.BatchID = batchID
		req, err := domain.NewRequest(spec, now)
		if err != nil {
			return "", nil, fmt.Errorf("request %d: %w", i, err)
		}
		requests = append(requests, req)
	}
	for _, req := range requests {
		if err := s.repo.Create(ctx, req); err != nil {
			return "", nil, err
		}
	}
	s.logger.Info().
		Str("batch_id", batchID).
		Int("size", len(requests)).
		Msg("service: batch submitted")
	return batchID, requests, nil
}

// Get fetches a request by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.GenerationRequest, error) {
	return s.repo.Get(ctx, id)
}

// Cancel marks a still-cancellable request CANCELLED. Cancellation is
// cooperative: an in-flight render keeps running but its terminal write will
// lose the guard and be discarded.
func (s *Service) Cancel(ctx context.Context, id string) (bool, error) {
	cancelled, err := s.repo.Cancel(ctx, id, s.clock.Now())
	if err != nil {
		return false, err
	}
	if cancelled {
		s.logger.Info().Str("request_id", id).Msg("service: request cancelled")
	}
	return cancelled, nil
}

// ListByBatch returns the members of a batch in creation order.
func (s *Service) ListByBatch(ctx context.Context, batchID string) ([]*domain.GenerationRequest, error) {
	return s.repo.ListByBatch(ctx, batchID)
}

// BatchProgress aggregates member statuses for a batch.
func (s *Service) BatchProgress(ctx context.Context, batchID string) (domain.BatchProgress, error) {
	return s.repo.BatchProgress(ctx, batchID)
}

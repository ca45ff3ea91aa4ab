package domain

import (
	"context"
	"time"
)

// RequestRepository defines persistence for generation requests. The two
// conditional transitions (Claim and MarkCompleted/MarkFailed/Cancel) are the
// only mutation choke points; every implementation must make them atomic
// compare-and-set operations, never read-then-write.
type RequestRepository interface {
	// Create inserts a PENDING request.
	Create(ctx context.Context, req *GenerationRequest) error

	// Get fetches a request by id, ErrNotFound when absent.
	Get(ctx context.Context, id string) (*GenerationRequest, error)

	// Claim transitions up to limit eligible rows (PENDING, or IN_PROGRESS
	// with claimed_at older than staleBefore) to IN_PROGRESS owned by
	// workerID, oldest-created first, and returns only the rows this call
	// won. Terminal rows are never eligible.
	Claim(ctx context.Context, workerID string, limit int, now, staleBefore time.Time) ([]*GenerationRequest, error)

	// MarkCompleted records a successful outcome. The write only lands while
	// the row is still IN_PROGRESS and claimed by workerID; the returned
	// bool reports whether this caller won the write.
	MarkCompleted(ctx context.Context, id, workerID, documentID string, completedAt time.Time) (bool, error)

	// MarkFailed records a terminal failure under the same guard as
	// MarkCompleted.
	MarkFailed(ctx context.Context, id, workerID, errorMessage string, completedAt time.Time) (bool, error)

	// Cancel transitions a still-cancellable request to CANCELLED. Returns
	// false when the row is already terminal or absent.
	Cancel(ctx context.Context, id string, completedAt time.Time) (bool, error)

	// ListByBatch returns batch members ordered by id (creation order).
	ListByBatch(ctx context.Context, batchID string) ([]*GenerationRequest, error)

	// BatchProgress aggregates member statuses for a batch id.
	BatchProgress(ctx context.Context, batchID string) (BatchProgress, error)

	// DeleteExpired removes terminal rows whose completion (or creation,
	// for rows abandoned before completing) predates cutoff, or whose
	// expires_at passed. Non-terminal rows are never deleted.
	DeleteExpired(ctx context.Context, cutoff, now time.Time) (int64, error)
}

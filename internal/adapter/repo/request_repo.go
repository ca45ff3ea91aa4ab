package repo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"docgen/internal/domain"
	"docgen/internal/infra"
	"docgen/internal/sqlinline"
)

// RequestRepositoryPG implements domain.RequestRepository on PostgreSQL.
// The claim and terminal-write statements are single conditional
// UPDATE ... RETURNING rounds; correctness under concurrent workers rests on
// that, not on any application-level locking.
type RequestRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewRequestRepository creates a request repository over the given executor.
func NewRequestRepository(sql infra.SQLExecutor) *RequestRepositoryPG {
	return &RequestRepositoryPG{sql: sql}
}

func (r *RequestRepositoryPG) Create(ctx context.Context, req *domain.GenerationRequest) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertRequest,
		req.ID,
		req.BatchID,
		req.TenantID,
		req.TemplateID,
		req.VariantID,
		req.VersionID,
		req.EnvironmentID,
		req.Data,
		req.Filename,
		req.CorrelationID,
		req.Status,
		req.CreatedAt,
		req.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *RequestRepositoryPG) Get(ctx context.Context, id string) (*domain.GenerationRequest, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QGetRequest, id)
	req, err := scanRequest(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *RequestRepositoryPG) Claim(ctx context.Context, workerID string, limit int, now, staleBefore time.Time) ([]*domain.GenerationRequest, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.sql.Query(ctx, sqlinline.QClaimRequests, workerID, limit, now.UTC(), staleBefore.UTC())
	if err != nil {
		return nil, fmt.Errorf("claim requests: %w", err)
	}
	defer rows.Close()

	var claimed []*domain.GenerationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim requests: %w", err)
	}
	// UPDATE ... FROM does not preserve the CTE ordering; ids are UUIDv7 so
	// an id sort restores oldest-created-first.
	sort.Slice(claimed, func(i, j int) bool { return claimed[i].ID < claimed[j].ID })
	return claimed, nil
}

func (r *RequestRepositoryPG) MarkCompleted(ctx context.Context, id, workerID, documentID string, completedAt time.Time) (bool, error) {
	return r.guardedWrite(ctx, sqlinline.QMarkRequestCompleted, id, workerID, documentID, completedAt.UTC())
}

func (r *RequestRepositoryPG) MarkFailed(ctx context.Context, id, workerID, errorMessage string, completedAt time.Time) (bool, error) {
	return r.guardedWrite(ctx, sqlinline.QMarkRequestFailed, id, workerID, errorMessage, completedAt.UTC())
}

func (r *RequestRepositoryPG) Cancel(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QCancelRequest, id, completedAt.UTC())
	var got string
	if err := row.Scan(&got); err != nil {
		if infra.IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("cancel request: %w", err)
	}
	return true, nil
}

func (r *RequestRepositoryPG) ListByBatch(ctx context.Context, batchID string) ([]*domain.GenerationRequest, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListBatchRequests, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch: %w", err)
	}
	defer rows.Close()

	var out []*domain.GenerationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *RequestRepositoryPG) BatchProgress(ctx context.Context, batchID string) (domain.BatchProgress, error) {
	progress := domain.BatchProgress{BatchID: batchID}
	rows, err := r.sql.Query(ctx, sqlinline.QBatchProgress, batchID)
	if err != nil {
		return progress, fmt.Errorf("batch progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.RequestStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return progress, err
		}
		progress.Add(status, count)
	}
	return progress, rows.Err()
}

func (r *RequestRepositoryPG) DeleteExpired(ctx context.Context, cutoff, now time.Time) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteExpiredRequests, cutoff.UTC(), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RequestRepositoryPG) guardedWrite(ctx context.Context, query, id, workerID, payload string, completedAt time.Time) (bool, error) {
	row := r.sql.QueryRow(ctx, query, id, workerID, payload, completedAt)
	var got string
	if err := row.Scan(&got); err != nil {
		if infra.IsNoRows(err) {
			// Guard lost: the claim was stolen, cancelled, or already
			// finished. The other writer's outcome is authoritative.
			return false, nil
		}
		return false, fmt.Errorf("record outcome: %w", err)
	}
	return true, nil
}

func scanRequest(row pgx.Row) (*domain.GenerationRequest, error) {
	var req domain.GenerationRequest
	if err := row.Scan(
		&req.ID,
		&req.BatchID,
		&req.TenantID,
		&req.TemplateID,
		&req.VariantID,
		&req.VersionID,
		&req.EnvironmentID,
		&req.Data,
		&req.Filename,
		&req.CorrelationID,
		&req.Status,
		&req.DocumentID,
		&req.ErrorMessage,
		&req.ClaimedBy,
		&req.ClaimedAt,
		&req.CreatedAt,
		&req.StartedAt,
		&req.CompletedAt,
		&req.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

var _ domain.RequestRepository = (*RequestRepositoryPG)(nil)

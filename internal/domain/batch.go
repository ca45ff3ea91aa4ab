package domain

// BatchState is derived from member statuses, never stored.
type BatchState string

const (
	BatchStatePending               BatchState = "PENDING"
	BatchStateInProgress            BatchState = "IN_PROGRESS"
	BatchStateCompleted             BatchState = "COMPLETED"
	BatchStateCompletedWithFailures BatchState = "COMPLETED_WITH_FAILURES"
)

// BatchProgress aggregates member request statuses for one batch id. It is
// computed by grouping rows; no stored aggregate exists to drift out of sync.
type BatchProgress struct {
	BatchID    string `json:"batch_id"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"in_progress"`
	Completed  int    `json:"completed"`
	Failed     int    `json:"failed"`
	Cancelled  int    `json:"cancelled"`
}

// Terminal counts members that reached a final state.
func (p BatchProgress) Terminal() int {
	return p.Completed + p.Failed + p.Cancelled
}

// Done reports whether every member is terminal. Partial failure still
// counts as done; members succeed and fail independently.
func (p BatchProgress) Done() bool {
	return p.Total > 0 && p.Terminal() == p.Total
}

// State derives the batch-level state from the counters.
func (p BatchProgress) State() BatchState {
	switch {
	case !p.Done() && p.Terminal() == 0 && p.InProgress == 0:
		return BatchStatePending
	case !p.Done():
		return BatchStateInProgress
	case p.Failed > 0 || p.Cancelled > 0:
		return BatchStateCompletedWithFailures
	default:
		return BatchStateCompleted
	}
}

// Add folds one member status into the counters.
func (p *BatchProgress) Add(status RequestStatus, n int) {
	p.Total += n
	switch status {
	case StatusPending:
		p.Pending += n
	case StatusInProgress:
		p.InProgress += n
	case StatusCompleted:
		p.Completed += n
	case StatusFailed:
		p.Failed += n
	case StatusCancelled:
		p.Cancelled += n
	}
}

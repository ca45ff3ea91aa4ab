package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestStatus enumerates generation request lifecycle states.
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusFailed     RequestStatus = "FAILED"
	StatusCancelled  RequestStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition (other than deletion)
// can occur from s.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// RenderTarget designates the template version a request renders against:
// either an explicit version id, or an environment whose active version is
// looked up at execution time. The zero value is invalid; use VersionTarget
// or EnvironmentTarget.
type RenderTarget struct {
	versionID     string
	environmentID string
}

// VersionTarget pins the request to an explicit template version.
func VersionTarget(versionID string) RenderTarget {
	return RenderTarget{versionID: strings.TrimSpace(versionID)}
}

// EnvironmentTarget defers version selection to the active version of the
// given environment at execution time.
func EnvironmentTarget(environmentID string) RenderTarget {
	return RenderTarget{environmentID: strings.TrimSpace(environmentID)}
}

// Version returns the explicit version id, if this is a version target.
func (t RenderTarget) Version() (string, bool) {
	return t.versionID, t.versionID != ""
}

// Environment returns the environment id, if this is an environment target.
func (t RenderTarget) Environment() (string, bool) {
	return t.environmentID, t.environmentID != ""
}

func (t RenderTarget) valid() bool {
	return (t.versionID != "") != (t.environmentID != "")
}

// RequestSpec carries the producer-supplied inputs for a new request.
type RequestSpec struct {
	TenantID      string
	TemplateID    string
	VariantID     string
	Target        RenderTarget
	Data          json.RawMessage
	Filename      string
	CorrelationID string
	BatchID       string
	TTL           time.Duration
}

// GenerationRequest is the unit of work: one document to be rendered from a
// versioned template. The row in generation_requests is the single source of
// truth for its state.
type GenerationRequest struct {
	ID            string
	BatchID       *string
	TenantID      string
	TemplateID    string
	VariantID     string
	VersionID     *string
	EnvironmentID *string
	Data          json.RawMessage
	Filename      string
	CorrelationID string
	Status        RequestStatus
	DocumentID    *string
	ErrorMessage  *string
	ClaimedBy     *string
	ClaimedAt     *time.Time
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	ExpiresAt     *time.Time
}

// NewRequest validates spec and builds a PENDING request. Ids are UUIDv7 so
// creation order is recoverable by sorting on id. Invalid specs never reach
// the store.
func NewRequest(spec RequestSpec, now time.Time) (*GenerationRequest, error) {
	if strings.TrimSpace(spec.TenantID) == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(spec.TemplateID) == "" {
		return nil, fmt.Errorf("%w: template id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(spec.VariantID) == "" {
		return nil, fmt.Errorf("%w: variant id is required", ErrInvalidRequest)
	}
	if !spec.Target.valid() {
		return nil, ErrInvalidTarget
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate request id: %w", err)
	}

	req := &GenerationRequest{
		ID:            id.String(),
		TenantID:      strings.TrimSpace(spec.TenantID),
		TemplateID:    strings.TrimSpace(spec.TemplateID),
		VariantID:     strings.TrimSpace(spec.VariantID),
		Data:          spec.Data,
		Filename:      NormalizeFilename(spec.Filename),
		CorrelationID: strings.TrimSpace(spec.CorrelationID),
		Status:        StatusPending,
		CreatedAt:     now.UTC(),
	}
	if len(req.Data) == 0 {
		req.Data = json.RawMessage(`{}`)
	}
	if v, ok := spec.Target.Version(); ok {
		req.VersionID = &v
	}
	if e, ok := spec.Target.Environment(); ok {
		req.EnvironmentID = &e
	}
	if b := strings.TrimSpace(spec.BatchID); b != "" {
		req.BatchID = &b
	}
	if spec.TTL > 0 {
		exp := req.CreatedAt.Add(spec.TTL)
		req.ExpiresAt = &exp
	}
	return req, nil
}

// IsTerminal reports whether the request reached a final state.
func (r *GenerationRequest) IsTerminal() bool { return r.Status.IsTerminal() }

// IsCancellable reports whether an external cancel may still land.
func (r *GenerationRequest) IsCancellable() bool {
	return r.Status == StatusPending || r.Status == StatusInProgress
}

// IsPartOfBatch reports whether the request shares a batch id with others.
func (r *GenerationRequest) IsPartOfBatch() bool { return r.BatchID != nil }

// Target rebuilds the render target from the persisted columns.
func (r *GenerationRequest) Target() RenderTarget {
	if r.VersionID != nil {
		return VersionTarget(*r.VersionID)
	}
	if r.EnvironmentID != nil {
		return EnvironmentTarget(*r.EnvironmentID)
	}
	return RenderTarget{}
}

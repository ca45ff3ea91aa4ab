package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docgen/internal/domain"
)

type submitRequestPayload struct {
	TenantID      string          `json:"tenant_id"`
	TemplateID    string          `json:"template_id"`
	VariantID     string          `json:"variant_id"`
	VersionID     string          `json:"version_id,omitempty"`
	EnvironmentID string          `json:"environment_id,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	Filename      string          `json:"filename,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	TTLSeconds    int             `json:"ttl_seconds,omitempty"`
}

func (p submitRequestPayload) spec() domain.RequestSpec {
	spec := domain.RequestSpec{
		TenantID:      p.TenantID,
		TemplateID:    p.TemplateID,
		VariantID:     p.VariantID,
		Data:          p.Data,
		Filename:      p.Filename,
		CorrelationID: p.CorrelationID,
	}
	switch {
	case p.VersionID != "" && p.EnvironmentID != "":
		// Leave the zero target; validation rejects it with ErrInvalidTarget.
	case p.VersionID != "":
		spec.Target = domain.VersionTarget(p.VersionID)
	case p.EnvironmentID != "":
		spec.Target = domain.EnvironmentTarget(p.EnvironmentID)
	}
	if p.TTLSeconds > 0 {
		spec.TTL = time.Duration(p.TTLSeconds) * time.Second
	}
	return spec
}

type requestResponse struct {
	ID            string          `json:"id"`
	BatchID       *string         `json:"batch_id,omitempty"`
	TenantID      string          `json:"tenant_id"`
	TemplateID    string          `json:"template_id"`
	VariantID     string          `json:"variant_id"`
	VersionID     *string         `json:"version_id,omitempty"`
	EnvironmentID *string         `json:"environment_id,omitempty"`
	Filename      string          `json:"filename"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Status        string          `json:"status"`
	DocumentID    *string         `json:"document_id,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}

func toResponse(req *domain.GenerationRequest) requestResponse {
	return requestResponse{
		ID:            req.ID,
		BatchID:       req.BatchID,
		TenantID:      req.TenantID,
		TemplateID:    req.TemplateID,
		VariantID:     req.VariantID,
		VersionID:     req.VersionID,
		EnvironmentID: req.EnvironmentID,
		Filename:      req.Filename,
		CorrelationID: req.CorrelationID,
		Status:        string(req.Status),
		DocumentID:    req.DocumentID,
		ErrorMessage:  req.ErrorMessage,
		CreatedAt:     req.CreatedAt,
		StartedAt:     req.StartedAt,
		CompletedAt:   req.CompletedAt,
		ExpiresAt:     req.ExpiresAt,
	}
}

// SubmitRequest enqueues one generation request.
func (a *App) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var payload submitRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req, err := a.Service.Submit(r.Context(), payload.spec())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrInvalidTarget) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue request")
		return
	}
	a.json(w, http.StatusAccepted, toResponse(req))
}

// GetRequest returns one request by id.
func (a *App) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := a.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "request not found")
			return
		}
		a.Logger.Error().Err(err).Str("request_id", id).Msg("handlers: get failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load request")
		return
	}
	a.json(w, http.StatusOK, toResponse(req))
}

// CancelRequest marks a request CANCELLED while it is still cancellable.
func (a *App) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cancelled, err := a.Service.Cancel(r.Context(), id)
	if err != nil {
		a.Logger.Error().Err(err).Str("request_id", id).Msg("handlers: cancel failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to cancel request")
		return
	}
	if !cancelled {
		if _, err := a.Service.Get(r.Context(), id); errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "request not found")
			return
		}
		a.error(w, http.StatusConflict, "conflict", "request already terminal")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": id, "status": string(domain.StatusCancelled)})
}

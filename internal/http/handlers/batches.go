package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docgen/internal/domain"
)

type submitBatchPayload struct {
	BatchID  string                 `json:"batch_id,omitempty"`
	Requests []submitRequestPayload `json:"requests"`
}

// SubmitBatch enqueues a group of requests under one batch id. All specs are
// validated up front so a bad member never leaves a partial batch behind.
func (a *App) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var payload submitBatchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	specs := make([]domain.RequestSpec, 0, len(payload.Requests))
	for _, req := range payload.Requests {
		specs = append(specs, req.spec())
	}
	batchID, requests, err := a.Service.SubmitBatch(r.Context(), payload.BatchID, specs)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrInvalidTarget) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: batch submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue batch")
		return
	}
	out := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toResponse(req))
	}
	a.json(w, http.StatusAccepted, map[string]any{
		"batch_id": batchID,
		"requests": out,
	})
}

// BatchProgress reports the aggregate status counters for a batch.
func (a *App) BatchProgress(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	progress, err := a.Service.BatchProgress(r.Context(), batchID)
	if err != nil {
		a.Logger.Error().Err(err).Str("batch_id", batchID).Msg("handlers: batch progress failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load batch")
		return
	}
	if progress.Total == 0 {
		a.error(w, http.StatusNotFound, "not_found", "batch not found")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"batch_id":    progress.BatchID,
		"state":       string(progress.State()),
		"total":       progress.Total,
		"pending":     progress.Pending,
		"in_progress": progress.InProgress,
		"completed":   progress.Completed,
		"failed":      progress.Failed,
		"cancelled":   progress.Cancelled,
	})
}

// ListBatchRequests returns batch members in creation order.
func (a *App) ListBatchRequests(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	requests, err := a.Service.ListByBatch(r.Context(), batchID)
	if err != nil {
		a.Logger.Error().Err(err).Str("batch_id", batchID).Msg("handlers: batch list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list batch")
		return
	}
	if len(requests) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "batch not found")
		return
	}
	out := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toResponse(req))
	}
	a.json(w, http.StatusOK, map[string]any{"batch_id": batchID, "requests": out})
}

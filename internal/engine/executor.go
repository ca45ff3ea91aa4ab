package engine

import (
	"context"
	"errors"
	"fmt"

	"docgen/internal/domain"
	"docgen/internal/infra"
)

// Executor drives one claimed request through resolution, rendering and
// outcome recording. It is never invoked concurrently for the same request
// id; the claim coordinator guarantees single ownership.
type Executor struct {
	workerID string
	repo     domain.RequestRepository
	versions ActiveVersionResolver
	catalog  TemplateResolver
	renderer Renderer
	contents ContentStore
	clock    Clock
	logger   infra.Logger
}

func NewExecutor(
	workerID string,
	repo domain.RequestRepository,
	versions ActiveVersionResolver,
	catalog TemplateResolver,
	renderer Renderer,
	contents ContentStore,
	clock Clock,
	logger infra.Logger,
) *Executor {
	return &Executor{
		workerID: workerID,
		repo:     repo,
		versions: versions,
		catalog:  catalog,
		renderer: renderer,
		contents: contents,
		clock:    clock,
		logger:   logger,
	}
}

// Execute resolves, renders and records the outcome for a claimed request.
// Request-level failures (resolution, rendering) are written to the row and
// never returned; the returned error is reserved for store outages, which
// leave the row to the staleness reclaim.
func (e *Executor) Execute(ctx context.Context, req *domain.GenerationRequest) error {
	documentID, genErr := e.generate(ctx, req)
	if genErr != nil {
		e.logger.Warn().
			Str("request_id", req.ID).
			Str("correlation_id", req.CorrelationID).
			Err(genErr).
			Msg("executor: request failed")
		return e.record(ctx, req, func() (bool, error) {
			return e.repo.MarkFailed(ctx, req.ID, e.workerID, genErr.Error(), e.clock.Now())
		})
	}

	e.logger.Info().
		Str("request_id", req.ID).
		Str("document_id", documentID).
		Msg("executor: request completed")
	return e.record(ctx, req, func() (bool, error) {
		return e.repo.MarkCompleted(ctx, req.ID, e.workerID, documentID, e.clock.Now())
	})
}

// record performs the guarded terminal write. Losing the guard means another
// claimant or a cancel already settled the row; our result is discarded and
// the produced content, if any, stays unreferenced.
func (e *Executor) record(ctx context.Context, req *domain.GenerationRequest, write func() (bool, error)) error {
	won, err := write()
	if err != nil {
		return fmt.Errorf("record outcome for %s: %w", req.ID, err)
	}
	if !won {
		e.logger.Warn().
			Str("request_id", req.ID).
			Msg("executor: terminal write lost, result discarded")
	}
	return nil
}

func (e *Executor) generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	versionID, err := e.resolveVersion(ctx, req)
	if err != nil {
		return "", err
	}

	tmpl, err := e.catalog.ResolveTemplate(ctx, versionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("template version %s not found", versionID)
		}
		return "", fmt.Errorf("resolve template %s: %w", versionID, err)
	}

	pdf, err := e.renderer.Render(ctx, tmpl, req.Data)
	if err != nil {
		// RenderError kinds are preserved through Error(), not interpreted.
		return "", err
	}

	ref, err := e.contents.Put(ctx, pdf, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}
	return string(ref), nil
}

func (e *Executor) resolveVersion(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	target := req.Target()
	if versionID, ok := target.Version(); ok {
		return versionID, nil
	}
	environmentID, ok := target.Environment()
	if !ok {
		return "", fmt.Errorf("request %s has no render target", req.ID)
	}
	versionID, err := e.versions.ResolveActiveVersion(ctx, req.VariantID, environmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("no active version for variant %s in environment %s", req.VariantID, environmentID)
		}
		return "", fmt.Errorf("resolve active version: %w", err)
	}
	return versionID, nil
}

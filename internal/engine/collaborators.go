package engine

import (
	"context"
	"encoding/json"
	"fmt"
)

// TemplateDocument is resolved template content for one version. The node
// tree inside Content is opaque to this package; only the renderer
// interprets it.
type TemplateDocument struct {
	VersionID  string
	TemplateID string
	VariantID  string
	Content    json.RawMessage
}

// ActiveVersionResolver looks up the version currently designated for an
// environment/variant pair.
type ActiveVersionResolver interface {
	ResolveActiveVersion(ctx context.Context, variantID, environmentID string) (string, error)
}

// TemplateResolver fetches template content for a resolved version.
type TemplateResolver interface {
	ResolveTemplate(ctx context.Context, versionID string) (*TemplateDocument, error)
}

// RenderErrorKind classifies renderer failures. The orchestrator preserves
// the kind in the recorded error message but attaches no semantics to it.
type RenderErrorKind string

const (
	RenderErrorValidation RenderErrorKind = "validation"
	RenderErrorExecution  RenderErrorKind = "execution"
	RenderErrorTimeout    RenderErrorKind = "timeout"
)

// RenderError is the structured failure contract of the renderer.
type RenderError struct {
	Kind    RenderErrorKind
	Message string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %s", e.Kind, e.Message)
}

// Renderer turns template content plus request data into document bytes.
// Render-level timeouts are the renderer's responsibility, surfaced as a
// RenderError with kind timeout.
type Renderer interface {
	Render(ctx context.Context, tmpl *TemplateDocument, data json.RawMessage) ([]byte, error)
}

// ContentRef addresses a stored blob.
type ContentRef string

// ContentStore persists rendered bytes. Delete exists for a content
// retention policy layered outside this package; request cleanup never
// cascades into it.
type ContentStore interface {
	Put(ctx context.Context, data []byte, contentType string) (ContentRef, error)
	Delete(ctx context.Context, ref ContentRef) (bool, error)
}

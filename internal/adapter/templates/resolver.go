package templates

import (
	"context"
	"fmt"

	"docgen/internal/domain"
	"docgen/internal/engine"
	"docgen/internal/infra"
	"docgen/internal/sqlinline"
)

// CatalogPG resolves active versions and template content from the shared
// PostgreSQL catalog tables (environment_versions, template_versions).
type CatalogPG struct {
	sql infra.SQLExecutor
}

func NewCatalog(sql infra.SQLExecutor) *CatalogPG {
	return &CatalogPG{sql: sql}
}

// ResolveActiveVersion returns the version currently designated for the
// variant/environment pair, domain.ErrNotFound when no activation exists.
func (c *CatalogPG) ResolveActiveVersion(ctx context.Context, variantID, environmentID string) (string, error) {
	row := c.sql.QueryRow(ctx, sqlinline.QActiveVersion, variantID, environmentID)
	var versionID string
	if err := row.Scan(&versionID); err != nil {
		if infra.IsNoRows(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("resolve active version: %w", err)
	}
	return versionID, nil
}

// ResolveTemplate fetches template content for a version id.
func (c *CatalogPG) ResolveTemplate(ctx context.Context, versionID string) (*engine.TemplateDocument, error) {
	row := c.sql.QueryRow(ctx, sqlinline.QTemplateVersion, versionID)
	var doc engine.TemplateDocument
	if err := row.Scan(&doc.VersionID, &doc.TemplateID, &doc.VariantID, &doc.Content); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve template: %w", err)
	}
	return &doc, nil
}

var (
	_ engine.ActiveVersionResolver = (*CatalogPG)(nil)
	_ engine.TemplateResolver      = (*CatalogPG)(nil)
)

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docgen/internal/engine"
	"docgen/internal/infra"
)

// ErrMissingBaseURL indicates the client was configured without an endpoint.
var ErrMissingBaseURL = errors.New("render: base url is required")

// Options configures the renderer client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client calls an external render service over HTTP and normalizes its
// failures into engine.RenderError values. The service owns layout, fonts
// and render-level timeouts; this client only classifies.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
	timeout    time.Duration
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("render: invalid base url: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     opts.Logger,
		timeout:    timeout,
	}, nil
}

type renderPayload struct {
	VersionID string          `json:"version_id"`
	Template  json.RawMessage `json:"template"`
	Data      json.RawMessage `json:"data"`
}

type renderErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Render posts template content and bound data, returning the rendered
// document bytes.
func (c *Client) Render(ctx context.Context, tmpl *engine.TemplateDocument, data json.RawMessage) ([]byte, error) {
	if tmpl == nil {
		return nil, &engine.RenderError{Kind: engine.RenderErrorValidation, Message: "template is required"}
	}
	body, err := json.Marshal(renderPayload{
		VersionID: tmpl.VersionID,
		Template:  tmpl.Content,
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("render: encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("render: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &engine.RenderError{Kind: engine.RenderErrorTimeout, Message: err.Error()}
		}
		return nil, fmt.Errorf("render: call service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		pdf, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("render: read response: %w", err)
		}
		if len(pdf) == 0 {
			return nil, &engine.RenderError{Kind: engine.RenderErrorExecution, Message: "render service returned an empty document"}
		}
		return pdf, nil
	}

	renderErr := c.classify(resp)
	if c.logger != nil {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("kind", string(renderErr.Kind)).
			Msg("render: service rejected request")
	}
	return nil, renderErr
}

func (c *Client) classify(resp *http.Response) *engine.RenderError {
	message := fmt.Sprintf("render service returned status %d", resp.StatusCode)
	var parsed renderErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != "" {
		message = parsed.Error
	}

	kind := engine.RenderErrorExecution
	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		kind = engine.RenderErrorValidation
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		kind = engine.RenderErrorTimeout
	}
	// The service may self-classify; trust it when the kind is known.
	switch engine.RenderErrorKind(parsed.Kind) {
	case engine.RenderErrorValidation, engine.RenderErrorExecution, engine.RenderErrorTimeout:
		kind = engine.RenderErrorKind(parsed.Kind)
	}
	return &engine.RenderError{Kind: kind, Message: message}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

var _ engine.Renderer = (*Client)(nil)

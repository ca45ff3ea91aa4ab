package render

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"docgen/internal/engine"
)

func testTemplate() *engine.TemplateDocument {
	return &engine.TemplateDocument{
		VersionID:  "ver-1",
		TemplateID: "tpl-1",
		VariantID:  "var-1",
		Content:    json.RawMessage(`{"nodes":[{"type":"text"}]}`),
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "   "}); !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("err = %v, want ErrMissingBaseURL", err)
	}
}

func TestRenderPostsPayloadAndReturnsDocument(t *testing.T) {
	var gotPath, gotAccept string
	var gotPayload map[string]json.RawMessage
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 rendered"))
	})

	pdf, err := client.Render(context.Background(), testTemplate(), json.RawMessage(`{"name":"Ada"}`))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(pdf) != "%PDF-1.7 rendered" {
		t.Fatalf("pdf = %q", pdf)
	}
	if gotPath != "/render" {
		t.Fatalf("path = %q, want /render", gotPath)
	}
	if gotAccept != "application/pdf" {
		t.Fatalf("Accept = %q", gotAccept)
	}
	if string(gotPayload["version_id"]) != `"ver-1"` {
		t.Fatalf("version_id = %s", gotPayload["version_id"])
	}
	if string(gotPayload["data"]) != `{"name":"Ada"}` {
		t.Fatalf("data = %s", gotPayload["data"])
	}
}

func TestRenderClassifiesByStatusCode(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   engine.RenderErrorKind
	}{
		{"bad request", http.StatusBadRequest, engine.RenderErrorValidation},
		{"unprocessable", http.StatusUnprocessableEntity, engine.RenderErrorValidation},
		{"request timeout", http.StatusRequestTimeout, engine.RenderErrorTimeout},
		{"gateway timeout", http.StatusGatewayTimeout, engine.RenderErrorTimeout},
		{"internal", http.StatusInternalServerError, engine.RenderErrorExecution},
		{"bad gateway", http.StatusBadGateway, engine.RenderErrorExecution},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			_, err := client.Render(context.Background(), testTemplate(), json.RawMessage(`{}`))
			var renderErr *engine.RenderError
			if !errors.As(err, &renderErr) {
				t.Fatalf("err = %v, want *engine.RenderError", err)
			}
			if renderErr.Kind != tc.want {
				t.Fatalf("kind = %q, want %q", renderErr.Kind, tc.want)
			}
		})
	}
}

func TestRenderTrustsSelfClassifiedErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "field total is not a number",
			"kind":  "validation",
		})
	})
	_, err := client.Render(context.Background(), testTemplate(), json.RawMessage(`{}`))
	var renderErr *engine.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("err = %v, want *engine.RenderError", err)
	}
	if renderErr.Kind != engine.RenderErrorValidation {
		t.Fatalf("kind = %q, want validation from body", renderErr.Kind)
	}
	if renderErr.Message != "field total is not a number" {
		t.Fatalf("message = %q", renderErr.Message)
	}
}

func TestRenderEmptyDocumentIsExecutionError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	_, err := client.Render(context.Background(), testTemplate(), json.RawMessage(`{}`))
	var renderErr *engine.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("err = %v, want *engine.RenderError", err)
	}
	if renderErr.Kind != engine.RenderErrorExecution {
		t.Fatalf("kind = %q, want execution", renderErr.Kind)
	}
}

func TestRenderNilTemplateIsValidationError(t *testing.T) {
	client, err := NewClient(Options{BaseURL: "http://renderer.local"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Render(context.Background(), nil, json.RawMessage(`{}`))
	var renderErr *engine.RenderError
	if !errors.As(err, &renderErr) || renderErr.Kind != engine.RenderErrorValidation {
		t.Fatalf("err = %v, want validation RenderError", err)
	}
}

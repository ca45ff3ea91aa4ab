package domain

import (
	"testing"
	"time"
)

func validSpec() RequestSpec {
	return RequestSpec{
		TenantID:   "tenant-1",
		TemplateID: "f4b0c2ce-8f0a-4a1d-9a64-0a4f6f3d2b11",
		VariantID:  "0a2d5c8e-1b44-4e8a-b8e1-7f9c3d6a5e20",
		Target:     VersionTarget("7c1e9b3a-42d0-4f6b-8a57-d92c0e4f1a63"),
		Filename:   "Invoice 2026-08.pdf",
	}
}

func TestNewRequestDefaults(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	req, err := NewRequest(validSpec(), now)
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	if req.ID == "" {
		t.Fatalf("expected generated id")
	}
	if req.Status != StatusPending {
		t.Fatalf("Status = %q, want %q", req.Status, StatusPending)
	}
	if !req.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v, want %v", req.CreatedAt, now)
	}
	if string(req.Data) != "{}" {
		t.Fatalf("Data = %q, want empty object", req.Data)
	}
	if req.IsTerminal() || !req.IsCancellable() || req.IsPartOfBatch() {
		t.Fatalf("fresh request predicates wrong: terminal=%v cancellable=%v batch=%v",
			req.IsTerminal(), req.IsCancellable(), req.IsPartOfBatch())
	}
	if req.ExpiresAt != nil {
		t.Fatalf("ExpiresAt should be nil without TTL")
	}
}

func TestNewRequestIDsAreTimeOrdered(t *testing.T) {
	now := time.Now().UTC()
	first, err := NewRequest(validSpec(), now)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := NewRequest(validSpec(), now.Add(time.Second))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if !(first.ID < second.ID) {
		t.Fatalf("ids not ordered by creation: %q then %q", first.ID, second.ID)
	}
}

func TestNewRequestTargetMutualExclusion(t *testing.T) {
	now := time.Now().UTC()

	spec := validSpec()
	spec.Target = RenderTarget{}
	if _, err := NewRequest(spec, now); err != ErrInvalidTarget {
		t.Fatalf("no target: err = %v, want ErrInvalidTarget", err)
	}

	spec.Target = VersionTarget("   ")
	if _, err := NewRequest(spec, now); err != ErrInvalidTarget {
		t.Fatalf("blank version target: err = %v, want ErrInvalidTarget", err)
	}
}

func TestNewRequestRequiredFields(t *testing.T) {
	now := time.Now().UTC()
	for name, mutate := range map[string]func(*RequestSpec){
		"tenant":   func(s *RequestSpec) { s.TenantID = " " },
		"template": func(s *RequestSpec) { s.TemplateID = "" },
		"variant":  func(s *RequestSpec) { s.VariantID = "" },
	} {
		spec := validSpec()
		mutate(&spec)
		if _, err := NewRequest(spec, now); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestNewRequestEnvironmentTargetAndTTL(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	spec := validSpec()
	spec.Target = EnvironmentTarget("env-prod")
	spec.BatchID = "0198f1a2-0000-7000-8000-000000000001"
	spec.TTL = 48 * time.Hour

	req, err := NewRequest(spec, now)
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	if req.VersionID != nil {
		t.Fatalf("VersionID should be nil for environment target")
	}
	if req.EnvironmentID == nil || *req.EnvironmentID != "env-prod" {
		t.Fatalf("EnvironmentID = %v, want env-prod", req.EnvironmentID)
	}
	if !req.IsPartOfBatch() {
		t.Fatalf("expected batch membership")
	}
	if req.ExpiresAt == nil || !req.ExpiresAt.Equal(now.Add(48*time.Hour)) {
		t.Fatalf("ExpiresAt = %v, want %v", req.ExpiresAt, now.Add(48*time.Hour))
	}

	env, ok := req.Target().Environment()
	if !ok || env != "env-prod" {
		t.Fatalf("Target().Environment() = %q/%v", env, ok)
	}
}

func TestStatusTerminality(t *testing.T) {
	terminal := []RequestStatus{StatusCompleted, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []RequestStatus{StatusPending, StatusInProgress} {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

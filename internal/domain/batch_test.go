package domain

import "testing"

func TestBatchProgressCounters(t *testing.T) {
	var p BatchProgress
	p.Add(StatusPending, 2)
	p.Add(StatusInProgress, 1)
	p.Add(StatusCompleted, 3)
	p.Add(StatusFailed, 1)
	p.Add(StatusCancelled, 1)

	if p.Total != 8 {
		t.Fatalf("Total = %d, want 8", p.Total)
	}
	if p.Terminal() != 5 {
		t.Fatalf("Terminal() = %d, want 5", p.Terminal())
	}
	if p.Done() {
		t.Fatalf("batch with pending members should not be done")
	}
}

func TestBatchProgressState(t *testing.T) {
	cases := []struct {
		name string
		p    BatchProgress
		want BatchState
	}{
		{"all pending", BatchProgress{Total: 3, Pending: 3}, BatchStatePending},
		{"some running", BatchProgress{Total: 3, Pending: 1, InProgress: 2}, BatchStateInProgress},
		{"partially done", BatchProgress{Total: 3, Pending: 1, Completed: 2}, BatchStateInProgress},
		{"all completed", BatchProgress{Total: 3, Completed: 3}, BatchStateCompleted},
		{"partial failure", BatchProgress{Total: 3, Completed: 2, Failed: 1}, BatchStateCompletedWithFailures},
		{"cancelled member", BatchProgress{Total: 2, Completed: 1, Cancelled: 1}, BatchStateCompletedWithFailures},
	}
	for _, tc := range cases {
		if got := tc.p.State(); got != tc.want {
			t.Fatalf("%s: State() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

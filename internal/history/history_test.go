package history

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

// resetHistory resets the singleton so each test gets a fresh DB.
func resetHistory(t *testing.T) {
	t.Helper()
	historyDB = nil
	historyErr = nil
	historyOnce = sync.Once{}
	SetPath(filepath.Join(t.TempDir(), "history.db"))
}

func TestRecord_Basic(t *testing.T) {
	resetHistory(t)
	ctx := context.Background()

	id, err := Record(ctx, Attempt{
		JobKey:  "abc123def456",
		URL:     "https://www.indeed.com/viewjob?jk=abc123def456",
		Title:   "Desenvolvedor Go Pleno",
		Company: "Acme",
		Status:  "submitted",
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive id, got %d", id)
	}
}

func TestRecord_Validation(t *testing.T) {
	resetHistory(t)
	ctx := context.Background()

	if _, err := Record(ctx, Attempt{Status: "submitted"}); err == nil {
		t.Error("expected error when job key and url are both empty")
	}
	if _, err := Record(ctx, Attempt{JobKey: "abc123def456"}); err == nil {
		t.Error("expected error when status is empty")
	}
}

func TestRecent_FilterAndOrder(t *testing.T) {
	resetHistory(t)
	ctx := context.Background()

	for _, a := range []Attempt{
		{JobKey: "k1", URL: "https://www.indeed.com/viewjob?jk=k1", Status: "submitted"},
		{JobKey: "k2", URL: "https://www.indeed.com/viewjob?jk=k2", Status: "skipped", Reason: "external_apply"},
		{JobKey: "k3", URL: "https://www.indeed.com/viewjob?jk=k3", Status: "submitted"},
	} {
		if _, err := Record(ctx, a); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	all, err := Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].JobKey != "k3" {
		t.Errorf("newest first: got %q, want k3", all[0].JobKey)
	}

	skipped, err := Recent(ctx, "skipped", 10)
	if err != nil {
		t.Fatalf("Recent filter error: %v", err)
	}
	if len(skipped) != 1 || skipped[0].Reason != "external_apply" {
		t.Errorf("skipped = %+v, want one entry with reason external_apply", skipped)
	}
}

func TestRecent_Empty(t *testing.T) {
	resetHistory(t)

	attempts, err := Recent(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("expected no attempts, got %d", len(attempts))
	}
}

func TestCountByStatus(t *testing.T) {
	resetHistory(t)
	ctx := context.Background()

	for _, status := range []string{"submitted", "submitted", "failed"} {
		if _, err := Record(ctx, Attempt{JobKey: "k", URL: "u", Status: status}); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	counts, err := CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus error: %v", err)
	}
	if counts["submitted"] != 2 || counts["failed"] != 1 {
		t.Errorf("counts = %v, want submitted:2 failed:1", counts)
	}
}

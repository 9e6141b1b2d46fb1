package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.json")
	return Open(path), path
}

func TestRegistry_MarkAppliedAndSkipped(t *testing.T) {
	r, _ := newTestRegistry(t)

	if r.IsKnown("abc123def456") {
		t.Error("fresh registry should know nothing")
	}

	r.MarkApplied("abc123def456")
	r.MarkSkipped("fff000fff000", "external_apply")

	if !r.IsKnown("abc123def456") || !r.IsKnown("fff000fff000") {
		t.Error("both keys should be known")
	}
	if got := r.StatusOf("abc123def456"); got != "applied" {
		t.Errorf("StatusOf applied = %q", got)
	}
	if got := r.StatusOf("fff000fff000"); got != "skipped:external_apply" {
		t.Errorf("StatusOf skipped = %q", got)
	}
	if got := r.StatusOf("unknown00000"); got != "" {
		t.Errorf("StatusOf unknown = %q, want empty", got)
	}
}

func TestRegistry_EmptyReasonSkipIsStillKnown(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.MarkSkipped("abc123def456", "")

	if !r.IsKnown("abc123def456") {
		t.Error("a skipped key must be known regardless of its reason")
	}
	if got := r.StatusOf("abc123def456"); got != "skipped:" {
		t.Errorf("StatusOf = %q, want skipped:", got)
	}
}

func TestRegistry_SkippedPromotesToApplied(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.MarkSkipped("abc123def456", "no_apply_button")
	r.MarkApplied("abc123def456")

	if got := r.StatusOf("abc123def456"); got != "applied" {
		t.Errorf("StatusOf = %q, want applied after promotion", got)
	}
	if r.SkippedCount() != 0 {
		t.Errorf("SkippedCount = %d, want 0 after promotion", r.SkippedCount())
	}
}

func TestRegistry_AppliedNeverDemoted(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.MarkApplied("abc123def456")
	r.MarkSkipped("abc123def456", "external_apply")

	if got := r.StatusOf("abc123def456"); got != "applied" {
		t.Errorf("StatusOf = %q, applied must stay applied", got)
	}
	if r.SkippedCount() != 0 {
		t.Errorf("SkippedCount = %d, want 0", r.SkippedCount())
	}
}

func TestRegistry_MarkAppliedIdempotent(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.MarkApplied("abc123def456")
	r.MarkApplied("abc123def456")

	if r.AppliedCount() != 1 {
		t.Errorf("AppliedCount = %d, want 1", r.AppliedCount())
	}
}

func TestRegistry_PersistsAcrossOpens(t *testing.T) {
	r, path := newTestRegistry(t)
	r.MarkApplied("abc123def456")
	r.MarkSkipped("fff000fff000", "redirected_external")

	reopened := Open(path)
	if got := reopened.StatusOf("abc123def456"); got != "applied" {
		t.Errorf("reopened StatusOf = %q, want applied", got)
	}
	if got := reopened.StatusOf("fff000fff000"); got != "skipped:redirected_external" {
		t.Errorf("reopened StatusOf = %q", got)
	}
}

func TestRegistry_FileShape(t *testing.T) {
	r, path := newTestRegistry(t)
	r.MarkApplied("zzz999zzz999")
	r.MarkApplied("abc123def456")
	r.MarkSkipped("fff000fff000", "no_apply_button")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read registry file: %v", err)
	}

	var f struct {
		Applied []string          `json:"applied"`
		Skipped map[string]string `json:"skipped"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("registry file is not valid json: %v", err)
	}
	if len(f.Applied) != 2 || f.Applied[0] != "abc123def456" || f.Applied[1] != "zzz999zzz999" {
		t.Errorf("applied = %v, want sorted [abc123def456 zzz999zzz999]", f.Applied)
	}
	if f.Skipped["fff000fff000"] != "no_apply_button" {
		t.Errorf("skipped = %v", f.Skipped)
	}
}

func TestRegistry_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := Open(path)
	if r.AppliedCount() != 0 || r.SkippedCount() != 0 {
		t.Error("corrupt registry should start empty")
	}
	r.MarkApplied("abc123def456")
	if !Open(path).IsKnown("abc123def456") {
		t.Error("registry should be writable after corrupt start")
	}
}

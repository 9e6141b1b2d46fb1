package answers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// fakeGenerative records calls and returns a scripted answer.
type fakeGenerative struct {
	answer string
	err    error
	calls  int
}

func (f *fakeGenerative) Answer(_ context.Context, question string, options []string, jobTitle string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func newTestResolver(t *testing.T, gen Generative) (*Resolver, *Cache) {
	t.Helper()
	cache := OpenCache(filepath.Join(t.TempDir(), "answers.json"))
	return NewResolver(cache, gen), cache
}

func TestResolver_RulesBeforeGenerative(t *testing.T) {
	gen := &fakeGenerative{answer: "whatever"}
	r, _ := newTestResolver(t, gen)

	answer, ok := r.Resolve(context.Background(), Question{Label: "Você é PCD?", Kind: "text"})
	if !ok || answer != "Não" {
		t.Fatalf("Resolve = (%q, %v), want (Não, true)", answer, ok)
	}
	if gen.calls != 0 {
		t.Errorf("generative consulted %d times for a rule-covered question", gen.calls)
	}
}

func TestResolver_CacheBeforeGenerative(t *testing.T) {
	gen := &fakeGenerative{answer: "generated"}
	r, cache := newTestResolver(t, gen)

	cache.Store("Anos de experiência com Python", "text", "5", nil)

	answer, ok := r.Resolve(context.Background(), Question{
		Label: "Anos de experiência com Python?",
		Kind:  "text",
	})
	if !ok || answer != "5" {
		t.Fatalf("Resolve = (%q, %v), want cached 5", answer, ok)
	}
	if gen.calls != 0 {
		t.Errorf("generative consulted %d times for a cached question", gen.calls)
	}
}

func TestResolver_GenerativeFallbackFeedsCache(t *testing.T) {
	gen := &fakeGenerative{answer: "Trabalho com Go desde 2019."}
	r, cache := newTestResolver(t, gen)

	q := Question{Label: "Descreva sua experiência com Go", Kind: "textarea"}

	answer, ok := r.Resolve(context.Background(), q)
	if !ok || answer != gen.answer {
		t.Fatalf("Resolve = (%q, %v), want generative answer", answer, ok)
	}
	if gen.calls != 1 {
		t.Fatalf("generative calls = %d, want 1", gen.calls)
	}

	// Second resolution of the same question is served from the cache.
	answer, ok = r.Resolve(context.Background(), q)
	if !ok || answer != gen.answer {
		t.Fatalf("second Resolve = (%q, %v), want cache hit", answer, ok)
	}
	if gen.calls != 1 {
		t.Errorf("generative calls = %d after cache warm-up, want 1", gen.calls)
	}
	if cache.Size() != 1 {
		t.Errorf("cache size = %d, want 1", cache.Size())
	}
}

func TestResolver_GenerativeDriftSnapsToOption(t *testing.T) {
	gen := &fakeGenerative{answer: "I would say probably yes"}
	r, _ := newTestResolver(t, gen)

	answer, ok := r.Resolve(context.Background(), Question{
		Label:   "Disponibilidade imediata?",
		Kind:    "radio",
		Options: []string{"Sim", "Não"},
	})
	if !ok {
		t.Fatal("expected an answer")
	}
	if answer != "Sim" && answer != "Não" {
		t.Errorf("answer %q is not one of the options", answer)
	}
}

func TestResolver_GenerativeErrorLeavesUnanswered(t *testing.T) {
	gen := &fakeGenerative{err: errors.New("quota exceeded")}
	r, _ := newTestResolver(t, gen)

	if answer, ok := r.Resolve(context.Background(), Question{
		Label: "Quais frameworks você domina?",
		Kind:  "text",
	}); ok {
		t.Errorf("Resolve = %q, want unanswered on generative error", answer)
	}
	if r.Unanswered() != 1 {
		t.Errorf("Unanswered = %d, want 1", r.Unanswered())
	}
}

func TestResolver_NoGenerativeTier(t *testing.T) {
	r, _ := newTestResolver(t, nil)

	if answer, ok := r.Resolve(context.Background(), Question{
		Label: "Quais frameworks você domina?",
		Kind:  "text",
	}); ok {
		t.Errorf("Resolve = %q, want unanswered without a generative tier", answer)
	}
}

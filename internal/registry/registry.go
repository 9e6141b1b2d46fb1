// Package registry keeps the durable record of processed job keys so
// repeated runs never reprocess the same posting.
package registry

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Registry tracks two categories of processed postings: applied (the
// application was submitted) and skipped (the posting cannot be applied
// to by this tool, with the reason). "applied" is terminal: a skipped
// key may be promoted to applied, never the reverse. Single-process use
// only; every mutation rewrites the backing file atomically.
type Registry struct {
	path    string
	applied map[string]bool
	skipped map[string]string
}

// registryFile is the on-disk shape: a sorted applied list plus a
// skipped key→reason map.
type registryFile struct {
	Applied []string          `json:"applied"`
	Skipped map[string]string `json:"skipped"`
}

// Open loads the registry from path. A missing or corrupt file starts
// an empty registry.
func Open(path string) *Registry {
	r := &Registry{
		path:    path,
		applied: make(map[string]bool),
		skipped: make(map[string]string),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return r
	}
	var f registryFile
	if err := json.Unmarshal(data, &f); err != nil {
		slog.Warn("registry: corrupt store, starting empty", slog.Any("error", err))
		return r
	}
	for _, k := range f.Applied {
		r.applied[k] = true
	}
	for k, reason := range f.Skipped {
		r.skipped[k] = reason
	}
	return r
}

// IsKnown reports whether the key was already processed, applied or
// skipped alike.
func (r *Registry) IsKnown(key string) bool {
	if r.applied[key] {
		return true
	}
	_, ok := r.skipped[key]
	return ok
}

// MarkApplied records a submitted application. Idempotent; clears any
// prior skipped record for the key.
func (r *Registry) MarkApplied(key string) {
	r.applied[key] = true
	delete(r.skipped, key)
	r.save()
}

// MarkSkipped records why a posting cannot be applied to. No-op when
// the key is already applied.
func (r *Registry) MarkSkipped(key, reason string) {
	if r.applied[key] {
		return
	}
	r.skipped[key] = reason
	r.save()
}

// StatusOf returns "applied", "skipped:<reason>", or "" for an unknown
// key.
func (r *Registry) StatusOf(key string) string {
	if r.applied[key] {
		return "applied"
	}
	if reason, ok := r.skipped[key]; ok {
		return "skipped:" + reason
	}
	return ""
}

// AppliedCount returns the number of applied keys.
func (r *Registry) AppliedCount() int { return len(r.applied) }

// SkippedCount returns the number of skipped keys.
func (r *Registry) SkippedCount() int { return len(r.skipped) }

func (r *Registry) save() {
	f := registryFile{
		Applied: make([]string, 0, len(r.applied)),
		Skipped: r.skipped,
	}
	for k := range r.applied {
		f.Applied = append(f.Applied, k)
	}
	sort.Strings(f.Applied)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		slog.Warn("registry: marshal failed", slog.Any("error", err))
		return
	}
	if err := atomicWrite(r.path, data); err != nil {
		slog.Warn("registry: write failed", slog.Any("error", err))
	}
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

package answers

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultThreshold is the minimum Jaccard score a cached entry needs to
// be reused for a new question.
const DefaultThreshold = 0.5

// mergeThreshold collapses near-duplicate phrasings of the same question
// into one entry on store, bounding cache growth.
const mergeThreshold = 0.85

// Entry is one cached question/answer pair. Matching is by (input type,
// token-set similarity), never by exact label equality.
type Entry struct {
	Label     string   `json:"label"`
	Tokens    []string `json:"tokens"`
	InputType string   `json:"input_type"`
	Answer    string   `json:"answer"`
	Options   []string `json:"options"`
}

// Cache is the durable, similarity-indexed store of previously given
// answers. Single-process use only; every mutation rewrites the backing
// file atomically.
type Cache struct {
	path    string
	entries []Entry
}

// OpenCache loads the cache from path. A missing or corrupt file is
// treated as an empty cache, never as an error.
func OpenCache(path string) *Cache {
	c := &Cache{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		slog.Warn("answer cache: corrupt store, starting empty", slog.Any("error", err))
		c.entries = nil
	}
	return c
}

// Store records a question/answer pair. When an existing entry of the
// same kind is nearly identical (similarity > 0.85) its answer and
// options are overwritten in place instead of appending.
func (c *Cache) Store(label, inputType, answer string, options []string) {
	tokens := Tokenize(label)
	if len(tokens) == 0 {
		return
	}

	for i := range c.entries {
		if c.entries[i].InputType != inputType {
			continue
		}
		if Similarity(tokens, c.entries[i].Tokens) > mergeThreshold {
			c.entries[i].Answer = answer
			if len(options) > 0 {
				c.entries[i].Options = options
			}
			c.save()
			return
		}
	}

	if options == nil {
		options = []string{}
	}
	c.entries = append(c.entries, Entry{
		Label:     label,
		Tokens:    tokens,
		InputType: inputType,
		Answer:    answer,
		Options:   options,
	})
	c.save()
}

// Lookup finds the best-matching stored answer for a question of the
// same input type. Below threshold there is no match. For enumerated
// kinds the stored free-text answer is mapped onto the closest supplied
// option; an unmappable answer counts as a miss.
func (c *Cache) Lookup(label, inputType string, options []string, threshold float64) (string, bool) {
	query := Tokenize(label)
	if len(query) == 0 {
		return "", false
	}

	bestScore := 0.0
	var best *Entry
	for i := range c.entries {
		if c.entries[i].InputType != inputType {
			continue
		}
		if score := Similarity(query, c.entries[i].Tokens); score > bestScore {
			bestScore = score
			best = &c.entries[i]
		}
	}
	if best == nil || bestScore < threshold {
		return "", false
	}

	if len(options) > 0 && (inputType == "select" || inputType == "radio") {
		if opt := BestOptionMatch(best.Answer, options); opt != "" {
			return opt, true
		}
		return "", false
	}
	return best.Answer, true
}

// Size returns the number of stored entries.
func (c *Cache) Size() int { return len(c.entries) }

// save rewrites the store atomically: full marshal to a temp file in the
// same directory, then rename over the old one.
func (c *Cache) save() {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		slog.Warn("answer cache: marshal failed", slog.Any("error", err))
		return
	}
	if c.entries == nil {
		data = []byte("[]")
	}
	if err := atomicWrite(c.path, data); err != nil {
		slog.Warn("answer cache: write failed", slog.Any("error", err))
	}
}

// atomicWrite writes data to path via a temp file + rename so a crash
// mid-write never leaves a half-applied store behind.
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

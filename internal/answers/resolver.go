package answers

import (
	"context"
	"log/slog"
	"strings"
)

// Generative is the external collaborator consulted when neither the
// rules nor the cache can answer a question. Implementations must fail
// closed: an error or empty string, never an invented option.
type Generative interface {
	Answer(ctx context.Context, question string, options []string, jobTitle string) (string, error)
}

// Tier is one strategy in the ordered resolution chain. Attempt returns
// the answer and true, or false when this tier has nothing to offer.
type Tier interface {
	Attempt(ctx context.Context, q Question) (string, bool)
}

// Resolver runs the tiers in order and returns the first answer
// produced. Unanswerable questions are left alone and counted.
type Resolver struct {
	tiers      []Tier
	unanswered int
}

// NewResolver builds the standard chain: fixed rules, then the cache,
// then the generative fallback (nil gen disables the last tier).
func NewResolver(cache *Cache, gen Generative) *Resolver {
	tiers := []Tier{rulesTier{}, &cacheTier{cache: cache}}
	if gen != nil {
		tiers = append(tiers, &generativeTier{gen: gen, cache: cache})
	}
	return &Resolver{tiers: tiers}
}

// Resolve produces a value for the question, or false when every tier
// declined. The miss is recorded for diagnostics; the caller moves on to
// the next field.
func (r *Resolver) Resolve(ctx context.Context, q Question) (string, bool) {
	for _, tier := range r.tiers {
		if answer, ok := tier.Attempt(ctx, q); ok && answer != "" {
			return answer, true
		}
	}
	r.unanswered++
	slog.Debug("answers: field left unanswered", slog.String("label", q.Label), slog.String("kind", q.Kind))
	return "", false
}

// Unanswered returns how many questions no tier could answer.
func (r *Resolver) Unanswered() int { return r.unanswered }

// cacheTier reuses a previously given answer when a stored question of
// the same kind is similar enough.
type cacheTier struct {
	cache *Cache
}

func (t *cacheTier) Attempt(_ context.Context, q Question) (string, bool) {
	if t.cache == nil {
		return "", false
	}
	return t.cache.Lookup(q.Label, q.Kind, q.Options, DefaultThreshold)
}

// generativeTier delegates to the external collaborator and writes
// successful answers back into the cache.
type generativeTier struct {
	gen   Generative
	cache *Cache
}

func (t *generativeTier) Attempt(ctx context.Context, q Question) (string, bool) {
	raw, err := t.gen.Answer(ctx, q.Label, q.Options, q.JobTitle)
	if err != nil {
		slog.Warn("answers: generative fallback failed", slog.String("label", q.Label), slog.Any("error", err))
		return "", false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	answer := raw
	if len(q.Options) > 0 {
		answer = ""
		lower := strings.ToLower(raw)
		for _, opt := range q.Options {
			ol := strings.ToLower(opt)
			if ol == lower || strings.Contains(lower, ol) {
				answer = opt
				break
			}
		}
		// The collaborator drifted off the option list; take the first
		// option as the safe default.
		if answer == "" {
			answer = q.Options[0]
		}
	}

	if t.cache != nil {
		t.cache.Store(q.Label, q.Kind, answer, q.Options)
	}
	return answer, true
}

package wizard

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/indeed"
)

// ResolveContext finds the browsing context that currently hosts the
// wizard's interactive controls. The wizard usually loads on the
// smartapply origin inside a nested frame, but navigation between steps
// can swap the hosting context, so this runs at the start of every step.
//
// Resolution order: a frame on the known wizard host, then the
// highest-scoring frame by interactive-control density, then the
// top-level document.
func ResolveContext(ctx context.Context, page browser.Page) browser.Context {
	frames, err := page.Frames(ctx)
	if err != nil {
		slog.Debug("wizard: frame enumeration failed", slog.Any("error", err))
		return page
	}

	for _, f := range frames {
		if !strings.Contains(f.URL(ctx), indeed.WizardHost) {
			continue
		}
		buttons, inputs, _, err := f.ControlCounts(ctx)
		if err != nil {
			slog.Debug("wizard: wizard-host frame not accessible", slog.Any("error", err))
			continue
		}
		slog.Debug("wizard: using wizard-host frame",
			slog.Int("buttons", buttons), slog.Int("inputs", inputs))
		return f
	}

	var best browser.Context
	bestScore := 0
	for _, f := range frames {
		buttons, inputs, selects, err := f.ControlCounts(ctx)
		if err != nil {
			continue
		}
		score := buttons*3 + inputs + selects
		if score > bestScore {
			bestScore = score
			best = f
		}
	}
	if best != nil && bestScore > 1 {
		slog.Debug("wizard: using fallback frame", slog.Int("score", bestScore))
		return best
	}

	return page
}

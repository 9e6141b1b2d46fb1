package wizard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
)

// clickSpec is the one reusable click primitive: try attribute selector
// candidates with a bounded wait each, then fall back to a keyword scan
// over all visible buttons. Used by the apply-button locator, the
// resume/cover-letter reveal steps and the advance action.
type clickSpec struct {
	selectors []string // attribute selectors, in priority order
	texts     []string // positive keywords against text + accessible label
	exclude   []string // buttons matching these are never clicked
}

// tryClick returns true after the first successful click.
func tryClick(ctx context.Context, bc browser.Context, spec clickSpec, selTimeout time.Duration) bool {
	for _, sel := range spec.selectors {
		if err := bc.ClickSelector(ctx, sel, selTimeout); err == nil {
			slog.Debug("wizard: clicked selector", slog.String("selector", sel))
			return true
		}
	}
	if len(spec.texts) == 0 {
		return false
	}

	buttons, err := bc.Buttons(ctx)
	if err != nil {
		slog.Debug("wizard: button scan failed", slog.Any("error", err))
		return false
	}
	for _, b := range buttons {
		combined := strings.ToLower(b.Text + " " + b.AriaLabel)
		if b.Disabled || matchesAny(combined, spec.exclude) {
			continue
		}
		if matchesAny(combined, spec.texts) {
			if err := bc.Click(ctx, b.Ref); err != nil {
				slog.Debug("wizard: click failed", slog.String("text", b.Text), slog.Any("error", err))
				continue
			}
			slog.Debug("wizard: clicked button", slog.String("text", b.Text))
			return true
		}
	}
	return false
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// pause sleeps for d unless the context ends first.
func pause(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

package wizard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
)

// Advance presses whatever moves the wizard forward on the current
// step and classifies what it pressed: "submitted" for a final submit,
// "continued" for any intermediate step, "none" when no forward
// affordance exists.
func Advance(ctx context.Context, bc browser.Context) string {
	if tryClick(ctx, bc, clickSpec{texts: submitTexts, exclude: skipKeywords}, 2*time.Second) {
		return "submitted"
	}
	if tryClick(ctx, bc, clickSpec{texts: continueTexts, exclude: skipKeywords}, 2*time.Second) {
		return "continued"
	}

	buttons, err := bc.Buttons(ctx)
	if err != nil {
		slog.Debug("wizard: advance button scan failed", slog.Any("error", err))
		return "none"
	}

	for _, b := range buttons {
		if b.Disabled {
			continue
		}
		haystack := strings.ToLower(b.Text + " " + b.AriaLabel)
		if matchesAny(haystack, skipKeywords) {
			continue
		}
		if matchesAny(haystack, submitKeywords) {
			if bc.Click(ctx, b.Ref) == nil {
				return "submitted"
			}
		}
		if matchesAny(haystack, continueKeywords) {
			if bc.Click(ctx, b.Ref) == nil {
				return "continued"
			}
		}
	}

	// Single-button steps sometimes carry bespoke wording. Press the
	// one plausible forward button rather than stalling.
	for _, b := range buttons {
		if b.Disabled {
			continue
		}
		text := strings.TrimSpace(b.Text)
		if text == "" || len(text) > 50 {
			continue
		}
		if matchesAny(strings.ToLower(text+" "+b.AriaLabel), skipKeywords) {
			continue
		}
		if bc.Click(ctx, b.Ref) == nil {
			slog.Debug("wizard: advanced via fallback button", slog.String("text", text))
			return "continued"
		}
	}

	return "none"
}

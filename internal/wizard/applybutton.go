package wizard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
)

// ApplyResult is the apply-button locator's three-way contract.
type ApplyResult int

const (
	// ApplyClicked: the in-platform apply flow was started.
	ApplyClicked ApplyResult = iota
	// ApplyExternal: only an "apply on company site" path exists.
	ApplyExternal
	// ApplyNotFound: no apply control anywhere after all retries.
	ApplyNotFound
)

const applyAttempts = 5

// FindApplyButton locates and activates the control that starts the
// application flow. Before clicking anything it checks for external
// apply markers: an external-only posting must be detected, not
// accidentally clicked through. Controls can render late, so the whole
// procedure retries with short pauses.
func FindApplyButton(ctx context.Context, bc browser.Context) ApplyResult {
	for attempt := 0; attempt < applyAttempts; attempt++ {
		buttons, err := bc.Buttons(ctx)
		if err != nil {
			slog.Debug("wizard: apply button scan failed", slog.Any("error", err))
			buttons = nil
		}
		for _, b := range buttons {
			if isExternalApply(b) {
				slog.Warn("wizard: external company apply detected, skipping job")
				return ApplyExternal
			}
		}

		if tryClick(ctx, bc, clickSpec{selectors: applySelectors, texts: applyTexts}, 5*time.Second) {
			return ApplyClicked
		}

		// Heuristic fallback over all visible buttons.
		for _, b := range buttons {
			combined := strings.ToLower(b.Text + " " + b.AriaLabel)
			if b.Disabled || isExternalApply(b) || matchesAny(strings.ToLower(b.AriaLabel), closeKeywords) {
				continue
			}
			if matchesAny(combined, applyPositive) {
				if err := bc.Click(ctx, b.Ref); err == nil {
					return ApplyClicked
				}
			}
		}

		if attempt < applyAttempts-1 {
			pause(ctx, time.Second)
		}
	}
	return ApplyNotFound
}

func isExternalApply(b browser.Button) bool {
	combined := strings.ToLower(b.Text + " " + b.AriaLabel)
	return matchesAny(combined, externalApplyKeywords)
}

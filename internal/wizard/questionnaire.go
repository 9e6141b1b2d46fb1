package wizard

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/answers"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
)

// DeriveLabel picks the human-readable label for a form field, in
// priority order: associated label element, accessible label,
// placeholder, nearest ancestor label/legend text. Deterministic for a
// given field so repeated visits hit the same cache entries.
func DeriveLabel(f browser.Field) string {
	for _, candidate := range []string{f.LabelText, f.AriaLabel, f.Placeholder, f.AncestorLabel} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

// Questionnaire fills every currently-unanswered field of a wizard step
// exactly once. Field-level failures are contained: one bad field never
// aborts the step, let alone the job.
type Questionnaire struct {
	Resolver *answers.Resolver
}

// Fill walks the step's form controls. Already-filled fields and fields
// with no derivable label are skipped; everything else goes through the
// tiered resolver and is applied with the field's native set-value
// operation.
func (q *Questionnaire) Fill(ctx context.Context, bc browser.Context, jobTitle string) {
	fields, err := bc.Fields(ctx)
	if err != nil {
		slog.Debug("wizard: field scan failed", slog.Any("error", err))
		return
	}

	for _, f := range fields {
		switch f.Kind {
		case browser.KindText, browser.KindTextarea:
			q.fillText(ctx, bc, f, jobTitle)
		case browser.KindSelect:
			q.fillSelect(ctx, bc, f, jobTitle)
		case browser.KindRadio:
			q.fillRadio(ctx, bc, f, jobTitle)
		case browser.KindFile:
			// The resume step owns file inputs.
		}
	}
}

func (q *Questionnaire) fillText(ctx context.Context, bc browser.Context, f browser.Field, jobTitle string) {
	if strings.TrimSpace(f.Value) != "" {
		return
	}
	label := DeriveLabel(f)
	if label == "" {
		return
	}
	answer, ok := q.Resolver.Resolve(ctx, answers.Question{
		Label:    label,
		Kind:     f.InputType,
		JobTitle: jobTitle,
	})
	if !ok {
		return
	}
	if err := bc.Fill(ctx, f.Ref, answer); err != nil {
		slog.Debug("wizard: fill failed", slog.String("label", label), slog.Any("error", err))
		return
	}
	slog.Info("wizard: filled field", slog.String("label", label), slog.String("answer", truncate(answer, 50)))
}

func (q *Questionnaire) fillSelect(ctx context.Context, bc browser.Context, f browser.Field, jobTitle string) {
	if f.Value != "" || len(f.Options) == 0 {
		return
	}
	label := DeriveLabel(f)
	if label == "" {
		return
	}
	answer, ok := q.Resolver.Resolve(ctx, answers.Question{
		Label:    label,
		Kind:     "select",
		Options:  f.Options,
		JobTitle: jobTitle,
	})
	if !ok {
		return
	}
	if err := bc.SelectOption(ctx, f.Ref, answer); err != nil {
		slog.Debug("wizard: select failed", slog.String("label", label), slog.Any("error", err))
		return
	}
	slog.Info("wizard: selected option", slog.String("label", label), slog.String("answer", answer))
}

func (q *Questionnaire) fillRadio(ctx context.Context, bc browser.Context, f browser.Field, jobTitle string) {
	if f.Value != "" || len(f.Options) == 0 {
		return
	}
	label := DeriveLabel(f)
	if label == "" {
		return
	}
	answer, ok := q.Resolver.Resolve(ctx, answers.Question{
		Label:    label,
		Kind:     "radio",
		Options:  f.Options,
		JobTitle: jobTitle,
	})
	if !ok {
		return
	}
	for i, opt := range f.Options {
		if opt != answer || i >= len(f.OptionRefs) {
			continue
		}
		if err := bc.Click(ctx, f.OptionRefs[i]); err != nil {
			slog.Debug("wizard: radio click failed", slog.String("label", label), slog.Any("error", err))
			return
		}
		slog.Info("wizard: selected radio", slog.String("label", label), slog.String("answer", answer))
		return
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

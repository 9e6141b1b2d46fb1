// Package browser abstracts the authenticated browsing session the bot
// drives: one session, one tab per job, and the browsing contexts (top
// document or nested frames) that host the wizard's controls. The
// chromedp implementation lives in cdp.go; tests substitute fakes.
package browser

import (
	"context"
	"time"
)

// Button is one visible button in a browsing context. Ref is an opaque
// handle valid until the next Buttons scan.
type Button struct {
	Ref       string `json:"ref"`
	Text      string `json:"text"`
	AriaLabel string `json:"label"`
	Disabled  bool   `json:"disabled"`
}

// FieldKind tags the variant of a form control.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindRadio    FieldKind = "radio"
	KindFile     FieldKind = "file"
)

// Field is a tagged variant over the interactive form controls the
// questionnaire and resume handlers care about. Label-bearing attributes
// are carried raw; deriving the human-readable label is the wizard's
// job so it stays deterministic and testable.
type Field struct {
	Ref           string    `json:"ref"`
	Kind          FieldKind `json:"kind"`
	InputType     string    `json:"inputType"` // concrete type attr for text-likes
	Value         string    `json:"value"`     // current value, "" when unfilled
	LabelText     string    `json:"labelText"` // associated <label for=...> text
	AriaLabel     string    `json:"ariaLabel"`
	Placeholder   string    `json:"placeholder"`
	AncestorLabel string    `json:"ancestorLabel"` // nearest ancestor label/legend text
	Options       []string  `json:"options"`       // select option texts / radio labels
	OptionRefs    []string  `json:"optionRefs"`    // radio: ref per option, same order
	Accept        string    `json:"accept"`        // file inputs: accept attribute
}

// Cookie is a name/value pair from the session's cookie jar.
type Cookie struct {
	Name  string
	Value string
}

// Context is one browsing context: the top-level document or a nested
// frame. The hosting context of the wizard can change between steps, so
// callers re-resolve rather than hold on to one.
type Context interface {
	// URL returns the context's current address.
	URL(ctx context.Context) string
	// Buttons scans the context for visible buttons.
	Buttons(ctx context.Context) ([]Button, error)
	// Click activates a button or element by its scan ref.
	Click(ctx context.Context, ref string) error
	// ClickSelector waits up to timeout for sel to match a visible
	// element and clicks it.
	ClickSelector(ctx context.Context, sel string, timeout time.Duration) error
	// Fields scans the context for form controls.
	Fields(ctx context.Context) ([]Field, error)
	// Fill sets a text-like control's value.
	Fill(ctx context.Context, ref, value string) error
	// SelectOption picks a select option by its visible text.
	SelectOption(ctx context.Context, ref, option string) error
	// UploadFile attaches a local file to a file input.
	UploadFile(ctx context.Context, ref, path string) error
	// ControlCounts counts visible buttons, text/number inputs and
	// selects, for frame scoring.
	ControlCounts(ctx context.Context) (buttons, inputs, selects int, err error)
	// Evaluate runs a JavaScript expression in the context and decodes
	// the result into out (nil to discard).
	Evaluate(ctx context.Context, js string, out any) error
}

// Page is a tab: the top-level browsing context plus navigation and
// frame enumeration.
type Page interface {
	Context
	Navigate(ctx context.Context, url string) error
	// WaitReady waits up to timeout for the document to become
	// interactive. Best effort: a slow page is not an error.
	WaitReady(ctx context.Context, timeout time.Duration)
	// Frames enumerates the nested browsing contexts, excluding the
	// page itself.
	Frames(ctx context.Context) ([]Context, error)
	// HTML returns the serialized top-level document.
	HTML(ctx context.Context) (string, error)
	// Cookies returns the session cookies visible to this page.
	Cookies(ctx context.Context) ([]Cookie, error)
	// Close closes the tab. Safe to call more than once.
	Close()
}

// Session is the authenticated browsing session. One tab per job,
// opened fresh and closed on every exit path.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close()
}

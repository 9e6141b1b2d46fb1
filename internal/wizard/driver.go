package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/answers"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/indeed"
)

// Status is the three-way outcome of one application attempt.
type Status string

const (
	// StatusSubmitted: the application went through.
	StatusSubmitted Status = "submitted"
	// StatusSkipped: the job cannot be applied to on the platform.
	// Skips are definitive for the posting and worth remembering.
	StatusSkipped Status = "skipped"
	// StatusFailed: something transient went wrong. The job stays
	// unknown to the registry and gets retried on a later run.
	StatusFailed Status = "failed"
)

// Skip reasons. Only these three are definitive properties of a posting.
const (
	ReasonNoApplyButton      = "no_apply_button"
	ReasonExternalApply      = "external_apply"
	ReasonRedirectedExternal = "redirected_external"
)

// Failure reasons, never persisted.
const (
	ReasonNotPlatform   = "non_indeed_url"
	ReasonWizardFailed  = "wizard_failed_to_load"
	ReasonWizardTimeout = "wizard_timeout"
	ReasonStepBudget    = "step_budget_exceeded"
	ReasonNoAdvance     = "no_advance_button"
	ReasonUnhandled     = "unhandled_error"
)

// Outcome reports what happened to one job.
type Outcome struct {
	Status Status
	Reason string // skip or failure reason, empty on submit
}

// Persistent reports whether the outcome should be recorded as a skip
// in the registry. Only skips caused by the posting itself qualify;
// transient failures must stay retryable.
func (o Outcome) Persistent() bool {
	if o.Status != StatusSkipped {
		return false
	}
	switch o.Reason {
	case ReasonNoApplyButton, ReasonExternalApply, ReasonRedirectedExternal:
		return true
	}
	return false
}

// DocumentGenerator produces a tailored CV and cover letter for a job.
// A nil generator, or one that errors, means applying with the stored
// platform resume.
type DocumentGenerator interface {
	Generate(ctx context.Context, job indeed.JobInfo) (cvPath, coverPath string, err error)
}

const (
	// MaxSteps bounds the wizard loop. A healthy flow finishes well
	// inside this; exceeding it means the flow is looping.
	MaxSteps = 10
	// Budget bounds wall time for the whole step loop.
	Budget = 60 * time.Second

	wizardWaitAttempts = 10
	wizardWaitDelay    = 2 * time.Second
)

// Driver runs the application wizard for a single job: open a fresh
// tab, start the flow, fill and advance each step, report the outcome.
type Driver struct {
	Session  browser.Session
	Resolver *answers.Resolver
	Docs     DocumentGenerator
	CVPath   string // fallback CV when Docs is nil or fails
	Verify   bool   // advisory check of the applied listing after submit
}

// Apply runs the full flow for jobURL. It never panics out: any
// unhandled error inside the flow becomes a Failed outcome.
func (d *Driver) Apply(ctx context.Context, jobURL string) (outcome Outcome) {
	if !indeed.IsPlatformURL(jobURL) {
		slog.Warn("wizard: refusing non-platform url", slog.String("url", jobURL))
		return Outcome{Status: StatusSkipped, Reason: ReasonNotPlatform}
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("wizard: unhandled error", slog.Any("panic", r))
			outcome = Outcome{Status: StatusFailed, Reason: ReasonUnhandled}
		}
	}()

	page, err := d.Session.NewPage(ctx)
	if err != nil {
		slog.Error("wizard: opening tab failed", slog.Any("error", err))
		return Outcome{Status: StatusFailed, Reason: ReasonUnhandled}
	}
	defer page.Close()

	if err := page.Navigate(ctx, jobURL); err != nil {
		slog.Warn("wizard: navigation failed", slog.String("url", jobURL), slog.Any("error", err))
		return Outcome{Status: StatusFailed, Reason: ReasonUnhandled}
	}
	page.WaitReady(ctx, 15*time.Second)
	pause(ctx, 2*time.Second)

	job := d.scrapeJob(ctx, page, jobURL)

	switch FindApplyButton(ctx, page) {
	case ApplyExternal:
		return Outcome{Status: StatusSkipped, Reason: ReasonExternalApply}
	case ApplyNotFound:
		return Outcome{Status: StatusSkipped, Reason: ReasonNoApplyButton}
	}

	if !d.waitForWizard(ctx, page) {
		// Clicking apply on some postings navigates straight to the
		// company's own site.
		if !indeed.IsPlatformURL(page.URL(ctx)) {
			return Outcome{Status: StatusSkipped, Reason: ReasonRedirectedExternal}
		}
		return Outcome{Status: StatusFailed, Reason: ReasonWizardFailed}
	}

	return d.runSteps(ctx, page, d.resumeStep(ctx, job), job.Title)
}

// scrapeJob captures the posting's metadata before the apply click
// mutates the page. Failures degrade to an empty JobInfo.
func (d *Driver) scrapeJob(ctx context.Context, page browser.Page, jobURL string) indeed.JobInfo {
	html, err := page.HTML(ctx)
	if err != nil {
		slog.Debug("wizard: page snapshot failed", slog.Any("error", err))
		return indeed.JobInfo{URL: jobURL}
	}
	job := indeed.ScrapeJob(html, jobURL)
	if job.Title != "" {
		slog.Info("wizard: job identified",
			slog.String("title", job.Title), slog.String("company", job.Company))
	}
	return job
}

// waitForWizard polls until some browsing context exposes interactive
// buttons. The wizard may live in a smartapply frame or in the top
// document after a full-page navigation; either is acceptable.
func (d *Driver) waitForWizard(ctx context.Context, page browser.Page) bool {
	for attempt := 0; attempt < wizardWaitAttempts; attempt++ {
		bc := ResolveContext(ctx, page)
		if buttons, _, _, err := bc.ControlCounts(ctx); err == nil && buttons > 0 {
			return true
		}
		if !indeed.IsPlatformURL(page.URL(ctx)) {
			return false
		}
		pause(ctx, wizardWaitDelay)
	}
	slog.Warn("wizard: flow never presented controls")
	return false
}

// resumeStep builds the resume handler, preferring tailored documents
// when a generator is wired and succeeds.
func (d *Driver) resumeStep(ctx context.Context, job indeed.JobInfo) *ResumeStep {
	step := &ResumeStep{CVPath: d.CVPath}
	if d.Docs == nil {
		return step
	}
	cv, cover, err := d.Docs.Generate(ctx, job)
	if err != nil {
		slog.Warn("wizard: document generation failed, using stored resume", slog.Any("error", err))
		return step
	}
	step.CVPath = cv
	step.CoverPath = cover
	return step
}

// runSteps is the main wizard loop: resolve context, handle the resume
// step if this is it, fill the questions, advance, repeat. Bounded by
// both a step count and a wall clock. The resume handler runs inside
// the loop because the resume screen may show up on any step and the
// hosting context can change between steps.
func (d *Driver) runSteps(ctx context.Context, page browser.Page, resume *ResumeStep, jobTitle string) Outcome {
	q := &Questionnaire{Resolver: d.Resolver}
	deadline := time.Now().Add(Budget)

	for step := 0; step < MaxSteps; step++ {
		if time.Now().After(deadline) {
			slog.Warn("wizard: time budget exceeded", slog.Int("step", step))
			return Outcome{Status: StatusFailed, Reason: ReasonWizardTimeout}
		}
		if err := ctx.Err(); err != nil {
			return Outcome{Status: StatusFailed, Reason: ReasonUnhandled}
		}

		if !indeed.IsPlatformURL(page.URL(ctx)) {
			return Outcome{Status: StatusSkipped, Reason: ReasonRedirectedExternal}
		}

		bc := ResolveContext(ctx, page)
		resume.Run(ctx, bc, page)
		q.Fill(ctx, bc, jobTitle)

		switch Advance(ctx, bc) {
		case "submitted":
			slog.Info("wizard: application submitted", slog.Int("steps", step+1))
			pause(ctx, 2*time.Second)
			d.confirmSubmission(ctx, page)
			return Outcome{Status: StatusSubmitted}
		case "continued":
			pause(ctx, 2*time.Second)
			if addr := strings.ToLower(page.URL(ctx)); matchesAny(addr, confirmationMarkers) {
				slog.Info("wizard: confirmation page reached")
				return Outcome{Status: StatusSubmitted}
			}
		case "none":
			slog.Warn("wizard: no way forward on current step", slog.Int("step", step))
			return Outcome{Status: StatusFailed, Reason: ReasonNoAdvance}
		}
	}

	slog.Warn("wizard: step budget exceeded")
	return Outcome{Status: StatusFailed, Reason: ReasonStepBudget}
}

// confirmSubmission checks the applied-jobs listing for the job key.
// Purely advisory: the submit click already decided the outcome, a
// verification miss is only logged.
func (d *Driver) confirmSubmission(ctx context.Context, page browser.Page) {
	if !d.Verify {
		return
	}
	key := indeed.ExtractJobKey(page.URL(ctx))
	if key == "" {
		return
	}
	if err := d.verifyAppliedListing(ctx, key); err != nil {
		slog.Warn("wizard: applied-listing verification inconclusive",
			slog.String("key", key), slog.Any("error", err))
	}
}

func (d *Driver) verifyAppliedListing(ctx context.Context, key string) error {
	page, err := d.Session.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, indeed.AppliedListingURL); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	page.WaitReady(ctx, 15*time.Second)
	pause(ctx, 2*time.Second)

	html, err := page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if strings.Contains(html, "jk="+key) || strings.Contains(html, "vjk="+key) || strings.Contains(html, key) {
		slog.Info("wizard: submission confirmed on applied listing", slog.String("key", key))
		return nil
	}
	return fmt.Errorf("job %s not in applied listing yet", key)
}

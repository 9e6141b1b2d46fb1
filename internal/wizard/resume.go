package wizard

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/indeed"
)

// ResumeStep attaches the tailored CV (and, best-effort, a cover
// letter) on the wizard's resume step. With no tailored document it is
// a no-op and the platform's default resume selection stands. It never
// fails the job.
type ResumeStep struct {
	CVPath    string
	CoverPath string

	done bool
}

// Run works through the attach strategies in order, first success wins:
// an existing file input accepting non-image files; reveal one through
// the resume-options UI; an in-frame API upload on the wizard host; a
// pre-existing stored resume card. Called once per wizard step, since
// the resume screen is not always the first one; steps that expose no
// resume controls are left untouched and the next step retries. After a
// success, or after settling for the stored resume card, later calls
// are no-ops.
func (r *ResumeStep) Run(ctx context.Context, bc browser.Context, page browser.Page) {
	if r.CVPath == "" || r.done {
		return
	}

	uploaded := r.uploadDirect(ctx, bc)

	if !uploaded {
		uploaded = r.uploadViaUI(ctx, bc)
	}

	if !uploaded && strings.Contains(bc.URL(ctx), indeed.WizardHost) {
		uploaded = r.uploadViaAPI(ctx, bc, page)
	}

	if uploaded {
		r.done = true
	} else {
		// A stored-resume card marks this as the resume screen even
		// without an upload control. Settle for the default resume.
		for _, sel := range resumeCardSelectors {
			if err := bc.ClickSelector(ctx, sel, 2*time.Second); err == nil {
				slog.Info("wizard: using stored resume, no custom upload succeeded")
				r.done = true
				break
			}
		}
	}
	if !r.done {
		return
	}

	pause(ctx, time.Second)

	if r.CoverPath != "" {
		r.attachCoverLetter(ctx, bc)
	}
}

// uploadDirect feeds the CV to the first file input accepting non-image
// files, visible or hidden.
func (r *ResumeStep) uploadDirect(ctx context.Context, bc browser.Context) bool {
	fields, err := bc.Fields(ctx)
	if err != nil {
		return false
	}
	for _, f := range fields {
		if f.Kind != browser.KindFile || strings.Contains(strings.ToLower(f.Accept), "image") {
			continue
		}
		if err := bc.UploadFile(ctx, f.Ref, r.CVPath); err != nil {
			continue
		}
		pause(ctx, 2*time.Second)
		slog.Info("wizard: uploaded CV via file input", slog.String("path", r.CVPath))
		return true
	}
	return false
}

// uploadViaUI clicks through the resume-options affordance to reveal a
// file input, then retries the direct upload.
func (r *ResumeStep) uploadViaUI(ctx context.Context, bc browser.Context) bool {
	if !tryClick(ctx, bc, clickSpec{selectors: resumeOptionsSelectors, texts: resumeOptionsTexts}, 2*time.Second) {
		return false
	}
	pause(ctx, time.Second)

	if !tryClick(ctx, bc, clickSpec{selectors: resumeUploadSelectors, texts: resumeUploadTexts}, 2*time.Second) {
		return false
	}
	pause(ctx, time.Second)

	if r.uploadDirect(ctx, bc) {
		slog.Info("wizard: uploaded CV via resume options flow", slog.String("path", r.CVPath))
		return true
	}
	return false
}

// wizardTokens are the session artifacts the in-frame upload request
// needs: csrf token and, when discoverable, the SPA's api key and
// application id.
type wizardTokens struct {
	CSRFToken     string
	CTK           string
	APIKey        string
	ApplicationID string
	JobKey        string
}

// extractTokensJS digs the api key and application id out of the SPA:
// meta tags, data attributes, window globals, and finally inline script
// bodies.
const extractTokensJS = `
(() => {
  const result = {};
  const meta = document.querySelector('meta[name*="api-key"], meta[name*="apiKey"]');
  if (meta) result.apiKey = meta.getAttribute('content');
  const appEl = document.querySelector('[data-application-id]');
  if (appEl) result.applicationId = appEl.getAttribute('data-application-id');
  if (window.__INDEED_APPLY_CONFIG__) {
    result.apiKey = result.apiKey || window.__INDEED_APPLY_CONFIG__.apiKey;
    result.applicationId = result.applicationId || window.__INDEED_APPLY_CONFIG__.applicationId;
  }
  if (!result.apiKey || !result.applicationId) {
    for (const s of document.querySelectorAll('script')) {
      const text = s.textContent || '';
      if (!result.apiKey) {
        const m = text.match(/['"](ia-api-key|apiKey)['"]\s*[:=]\s*['"]([a-f0-9]{20,})['"]/);
        if (m) result.apiKey = m[2];
      }
      if (!result.applicationId) {
        const m = text.match(/applicationId['"]\s*[:=]\s*['"]([^'"]+)['"]/);
        if (m) result.applicationId = m[1];
      }
    }
  }
  return result;
})()
`

func (r *ResumeStep) harvestTokens(ctx context.Context, bc browser.Context, page browser.Page) wizardTokens {
	var tokens wizardTokens
	tokens.JobKey = indeed.ExtractJobKey(bc.URL(ctx))

	cookies, err := page.Cookies(ctx)
	if err != nil {
		slog.Debug("wizard: cookie read failed", slog.Any("error", err))
	}
	for _, c := range cookies {
		switch c.Name {
		case "INDEED_CSRF_TOKEN":
			tokens.CSRFToken = c.Value
		case "CTK":
			tokens.CTK = c.Value
		}
	}

	var spa struct {
		APIKey        string `json:"apiKey"`
		ApplicationID string `json:"applicationId"`
	}
	if err := bc.Evaluate(ctx, extractTokensJS, &spa); err != nil {
		slog.Debug("wizard: token extraction failed", slog.Any("error", err))
	}
	tokens.APIKey = spa.APIKey
	tokens.ApplicationID = spa.ApplicationID
	return tokens
}

// uploadViaAPI posts the CV to the wizard's file endpoint with a
// fetch() issued from inside the wizard-host frame, so same-origin
// credentials apply. Last resort before giving up on a custom resume.
func (r *ResumeStep) uploadViaAPI(ctx context.Context, bc browser.Context, page browser.Page) bool {
	tokens := r.harvestTokens(ctx, bc, page)
	if tokens.CSRFToken == "" {
		slog.Warn("wizard: api upload skipped, missing csrf token")
		return false
	}

	data, err := os.ReadFile(r.CVPath)
	if err != nil {
		slog.Warn("wizard: api upload failed to read file", slog.Any("error", err))
		return false
	}

	args, err := json.Marshal(map[string]string{
		"b64":       base64.StdEncoding.EncodeToString(data),
		"filename":  filepath.Base(r.CVPath),
		"csrfToken": tokens.CSRFToken,
		"apiKey":    tokens.APIKey,
		"appId":     tokens.ApplicationID,
		"jobKey":    tokens.JobKey,
	})
	if err != nil {
		return false
	}

	js := fmt.Sprintf(`
(async ({b64, filename, csrfToken, apiKey, appId, jobKey}) => {
  try {
    const bytes = atob(b64);
    const arr = new Uint8Array(bytes.length);
    for (let i = 0; i < bytes.length; i++) arr[i] = bytes.charCodeAt(i);
    const blob = new Blob([arr], { type: 'application/pdf' });

    const fd = new FormData();
    fd.append('file', blob, filename);

    const headers = {
      'ia-upload-category': 'resume',
      'x-xsrf-token': csrfToken,
    };
    if (apiKey) headers['ia-api-key'] = apiKey;
    if (appId) headers['ia-application-id'] = appId;
    if (jobKey) headers['ia-job-key'] = jobKey;

    const resp = await fetch('/api/v1/files', {
      method: 'POST',
      headers: headers,
      body: fd,
      credentials: 'include',
    });
    if (!resp.ok) {
      return { error: true, status: resp.status };
    }
    return { error: false };
  } catch (e) {
    return { error: true, message: e.message };
  }
})(%s)
`, args)

	var result struct {
		Error   bool   `json:"error"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := bc.Evaluate(ctx, js, &result); err != nil {
		slog.Warn("wizard: api upload evaluate failed", slog.Any("error", err))
		return false
	}
	if result.Error {
		slog.Warn("wizard: api resume upload rejected",
			slog.Int("status", result.Status), slog.String("message", result.Message))
		return false
	}
	slog.Info("wizard: resume uploaded via api", slog.String("file", filepath.Base(r.CVPath)))
	return true
}

// attachCoverLetter follows the same has-control → reveal-control →
// attach pattern as the resume. Always non-fatal.
func (r *ResumeStep) attachCoverLetter(ctx context.Context, bc browser.Context) {
	ref := r.findCoverInput(ctx, bc)
	if ref == "" {
		if !tryClick(ctx, bc, clickSpec{texts: coverLetterTexts}, 2*time.Second) {
			return
		}
		pause(ctx, time.Second)
		ref = r.findCoverInput(ctx, bc)
	}
	if ref == "" {
		return
	}
	if err := bc.UploadFile(ctx, ref, r.CoverPath); err != nil {
		slog.Debug("wizard: cover letter upload failed", slog.Any("error", err))
		return
	}
	pause(ctx, 2*time.Second)
	slog.Info("wizard: uploaded cover letter", slog.String("path", r.CoverPath))
}

// findCoverInput prefers a file input whose labeling mentions the cover
// letter, otherwise any non-image file input revealed by the affordance.
func (r *ResumeStep) findCoverInput(ctx context.Context, bc browser.Context) string {
	fields, err := bc.Fields(ctx)
	if err != nil {
		return ""
	}
	fallback := ""
	for _, f := range fields {
		if f.Kind != browser.KindFile || strings.Contains(strings.ToLower(f.Accept), "image") {
			continue
		}
		hint := strings.ToLower(f.LabelText + " " + f.AriaLabel + " " + f.AncestorLabel)
		if matchesAny(hint, coverFileHints) {
			return f.Ref
		}
		if fallback == "" {
			fallback = f.Ref
		}
	}
	return fallback
}

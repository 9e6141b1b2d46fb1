package browser

import (
	"strings"
	"testing"

	"github.com/chromedp/cdproto/target"
)

func TestOwnedIframeTargets(t *testing.T) {
	// Targets() is browser-wide: alongside this tab's wizard frame it
	// reports other tabs' pages and their ad iframes.
	infos := []*target.Info{
		{TargetID: "wizard-frame", Type: "iframe", URL: "https://smartapply.indeed.com/form"},
		{TargetID: "listing-ad", Type: "iframe", URL: "https://ads.example.com/mosaic"},
		{TargetID: "listing-tab", Type: "page", URL: "https://br.indeed.com/jobs"},
		{TargetID: "job-tab", Type: "page", URL: "https://br.indeed.com/viewjob"},
	}
	owned := map[string]bool{
		"job-tab":      true,
		"wizard-frame": true,
	}

	kept := ownedIframeTargets(infos, owned)

	if len(kept) != 1 {
		t.Fatalf("kept %d targets, want 1", len(kept))
	}
	if kept[0].TargetID != "wizard-frame" {
		t.Errorf("kept target = %q, want wizard-frame", kept[0].TargetID)
	}
}

func TestJSArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fld-3", `"fld-3"`},
		{`aspas "duplas"`, `"aspas \"duplas\""`},
		{"linha\nquebrada", `"linha\nquebrada"`},
	}
	for _, tt := range tests {
		if got := jsArg(tt.in); got != tt.want {
			t.Errorf("jsArg(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	// Non-BMP runes must never surface as Go's \U escape, which is not
	// valid inside a JavaScript string literal.
	if got := jsArg("ok \U0001F600"); strings.Contains(got, `\U`) {
		t.Errorf("jsArg emitted a Go-style escape: %s", got)
	}
}

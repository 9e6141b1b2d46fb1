package wizard

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/answers"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
)

func newTestDriver(t *testing.T, page *fakePage) *Driver {
	t.Helper()
	cache := answers.OpenCache(filepath.Join(t.TempDir(), "answers.json"))
	return &Driver{
		Session:  &fakeSession{pages: []*fakePage{page}},
		Resolver: answers.NewResolver(cache, nil),
	}
}

const jobViewHTML = `<html><body>
  <h1 data-testid="jobsearch-JobInfoHeader-title">Desenvolvedor Sênior</h1>
  <div data-testid="inlineHeader-companyName">Acme</div>
</body></html>`

func TestDriver_Apply_SubmitsThreeStepWizard(t *testing.T) {
	page := newFakePage("https://br.indeed.com/viewjob?jk=abc123def456")
	page.html = jobViewHTML
	page.buttons = []browser.Button{{Ref: "apply", Text: "Candidatura simplificada"}}
	page.onClick = func(ref string) {
		switch ref {
		case "apply":
			page.buttons = []browser.Button{{Ref: "cont", Text: "Continuar"}}
			page.fields = []browser.Field{{
				Ref: "sal", Kind: browser.KindText, InputType: "text",
				LabelText: "Pretensão salarial",
			}}
		case "cont":
			page.buttons = []browser.Button{{Ref: "send", Text: "Enviar candidatura"}}
			page.fields = nil
		case "send":
			page.buttons = nil
		}
	}

	d := newTestDriver(t, page)
	outcome := d.Apply(context.Background(), "https://br.indeed.com/viewjob?jk=abc123def456")

	if outcome.Status != StatusSubmitted {
		t.Fatalf("outcome = %+v, want submitted", outcome)
	}
	// The salary question was answered from the posting's seniority.
	if got := page.fills["sal"]; got != "14000" {
		t.Errorf("salary fill = %q, want 14000", got)
	}
	if !page.closed {
		t.Error("tab was not closed")
	}
}

func TestDriver_Apply_UploadsCVWhenResumeStepComesLater(t *testing.T) {
	page := newFakePage("https://br.indeed.com/viewjob?jk=abc123def456")
	page.html = jobViewHTML
	page.buttons = []browser.Button{{Ref: "apply", Text: "Candidatura simplificada"}}
	page.onClick = func(ref string) {
		switch ref {
		case "apply":
			// First wizard screen has no upload control at all.
			page.buttons = []browser.Button{{Ref: "cont", Text: "Continuar"}}
			page.fields = nil
		case "cont":
			page.buttons = []browser.Button{{Ref: "send", Text: "Enviar candidatura"}}
			page.fields = []browser.Field{{Ref: "cv", Kind: browser.KindFile, InputType: "file"}}
		case "send":
			page.buttons = nil
			page.fields = nil
		}
	}

	d := newTestDriver(t, page)
	d.CVPath = "/tmp/cv-tailored.pdf"
	outcome := d.Apply(context.Background(), "https://br.indeed.com/viewjob?jk=abc123def456")

	if outcome.Status != StatusSubmitted {
		t.Fatalf("outcome = %+v, want submitted", outcome)
	}
	if got := page.uploads["cv"]; got != d.CVPath {
		t.Errorf("cv upload = %q, want %q", got, d.CVPath)
	}
}

func TestDriver_Apply_NoApplyButton(t *testing.T) {
	page := newFakePage("https://br.indeed.com/viewjob?jk=abc123def456")
	page.buttons = []browser.Button{{Ref: "save", Text: "Salvar vaga"}}

	d := newTestDriver(t, page)
	outcome := d.Apply(context.Background(), "https://br.indeed.com/viewjob?jk=abc123def456")

	if outcome.Status != StatusSkipped || outcome.Reason != ReasonNoApplyButton {
		t.Fatalf("outcome = %+v, want skipped/no_apply_button", outcome)
	}
	if !outcome.Persistent() {
		t.Error("no_apply_button must be a persistent skip")
	}
	if !page.closed {
		t.Error("tab was not closed")
	}
}

func TestDriver_Apply_ExternalApplyOnly(t *testing.T) {
	page := newFakePage("https://br.indeed.com/viewjob?jk=abc123def456")
	page.buttons = []browser.Button{{Ref: "ext", Text: "Candidatar-se no site da empresa"}}

	d := newTestDriver(t, page)
	outcome := d.Apply(context.Background(), "https://br.indeed.com/viewjob?jk=abc123def456")

	if outcome.Status != StatusSkipped || outcome.Reason != ReasonExternalApply {
		t.Fatalf("outcome = %+v, want skipped/external_apply", outcome)
	}
}

func TestDriver_Apply_RedirectedToCompanySite(t *testing.T) {
	page := newFakePage("https://br.indeed.com/viewjob?jk=abc123def456")
	page.buttons = []browser.Button{{Ref: "apply", Text: "Candidatura simplificada"}}
	page.onClick = func(ref string) {
		if ref == "apply" {
			page.addr = "https://careers.example.com/form"
			page.buttons = nil
		}
	}

	d := newTestDriver(t, page)
	outcome := d.Apply(context.Background(), "https://br.indeed.com/viewjob?jk=abc123def456")

	if outcome.Status != StatusSkipped || outcome.Reason != ReasonRedirectedExternal {
		t.Fatalf("outcome = %+v, want skipped/redirected_external", outcome)
	}
}

func TestDriver_Apply_RefusesNonPlatformURL(t *testing.T) {
	d := newTestDriver(t, newFakePage(""))

	outcome := d.Apply(context.Background(), "https://careers.example.com/job/1")
	if outcome.Status != StatusSkipped || outcome.Reason != ReasonNotPlatform {
		t.Fatalf("outcome = %+v, want skipped/non_indeed_url", outcome)
	}
	if outcome.Persistent() {
		t.Error("a non-platform url must not be recorded in the registry")
	}
}

func TestQuestionnaire_FillsSelectAndRadio(t *testing.T) {
	cache := answers.OpenCache(filepath.Join(t.TempDir(), "answers.json"))
	cache.Store("Qual seu nível de inglês?", "select", "Avançado", []string{"Básico", "Avançado"})

	bc := newFakeContext("https://smartapply.indeed.com/form")
	bc.fields = []browser.Field{
		{
			Ref: "lang", Kind: browser.KindSelect, LabelText: "Qual seu nível de inglês?",
			Options: []string{"Básico", "Avançado"},
		},
		{
			Ref: "pcd", Kind: browser.KindRadio, AncestorLabel: "Você é PCD?",
			Options: []string{"Sim", "Não"}, OptionRefs: []string{"r-sim", "r-nao"},
		},
		{
			Ref: "done", Kind: browser.KindText, InputType: "text",
			LabelText: "Nome completo", Value: "já preenchido",
		},
	}

	q := &Questionnaire{Resolver: answers.NewResolver(cache, nil)}
	q.Fill(context.Background(), bc, "Desenvolvedor")

	if got := bc.selected["lang"]; got != "Avançado" {
		t.Errorf("select = %q, want Avançado", got)
	}
	if len(bc.clicked) != 1 || bc.clicked[0] != "r-nao" {
		t.Errorf("radio clicks = %v, want [r-nao]", bc.clicked)
	}
	if _, ok := bc.fills["done"]; ok {
		t.Error("already-filled field was overwritten")
	}
}

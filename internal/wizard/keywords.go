// Package wizard drives Indeed's multi-step application flow: find the
// hosting browsing context, start the flow, fill each step, advance,
// and report a three-way outcome. The wizard's structure varies by
// locale and A/B test, so everything here works off keyword sets and
// layered fallbacks rather than a single selector.
package wizard

// The keyword tables below cover the locales Indeed serves the bot:
// Portuguese, English, French, German and Spanish. Matching is always
// case-insensitive substring over a button's visible text and
// accessible label.

// externalApplyKeywords mark an "apply on company site" affordance.
// Seeing one anywhere means the posting is external-apply-only.
var externalApplyKeywords = []string{
	"site da empresa", "company site", "company's site",
	"site de l'entreprise", "unternehmenswebsite",
	"sitio de la empresa", "external site",
}

// applySelectors are tried first, with a bounded wait each. Attribute
// selectors survive locale changes; the css class one tracks Indeed's
// current button markup.
var applySelectors = []string{
	`button:has(span[class*="css-1ebo7dz"])`,
	`button[id*="indeedApplyButton"]`,
	`[data-testid="indeedApplyButton"]`,
}

// applyTexts identify the in-platform apply button by visible text.
var applyTexts = []string{
	"candidatura simplificada", "candidatar", "postuler",
	"apply now", "apply",
}

// applyPositive is the looser keyword set for the heuristic scan over
// all visible buttons.
var applyPositive = []string{"postuler", "apply", "candidat", "bewerben", "postular"}

// closeKeywords exclude dismiss/close affordances from any positive scan.
var closeKeywords = []string{"close", "cancel", "fermer", "annuler", "fechar"}

// submitTexts and continueTexts advance the wizard; submit always wins
// over continue.
var submitTexts = []string{
	"déposer ma candidature", "soumettre", "submit your application",
	"submit", "enviar candidatura", "enviar", "apply", "bewerben",
	"postular",
}

var continueTexts = []string{
	"continuer", "continue", "continuar", "next", "próximo",
	"suivant", "weiter",
}

var submitKeywords = []string{
	"submit", "soumettre", "enviar", "déposer", "apply", "bewerben",
	"postular", "candidatura",
}

var continueKeywords = []string{
	"continue", "continuer", "continuar", "next", "próximo",
	"suivant", "weiter",
}

// skipKeywords are never clicked by the advance heuristics: they move
// backwards or abandon the flow.
var skipKeywords = []string{
	"back", "previous", "anterior", "retour", "cancel", "close",
	"fechar", "voltar", "précédent",
}

// Resume step affordances.

var resumeOptionsSelectors = []string{
	`[data-testid*="resume"] button`,
	`[data-testid*="Resume"] button`,
}

var resumeOptionsTexts = []string{
	"opções de currículo", "resume options", "opções", "options",
	"change", "alterar",
}

var resumeUploadSelectors = []string{
	`[data-testid="ResumeUploadButton"]`,
	`[data-testid*="upload"]`,
}

var resumeUploadTexts = []string{
	"carregar um arquivo diferente", "upload a different file",
	"upload a different", "carregar", "upload",
}

var resumeCardSelectors = []string{
	`[data-testid="FileResumeCardHeader-title"]`,
	`[data-testid="fileResumeCard"]`,
	`[data-testid="ResumeCard"]`,
	`div[class*="ResumeCard"]`,
	`div[class*="resume-card"]`,
	`[data-testid="resume-display-text"]`,
}

var coverLetterTexts = []string{
	"carta de apresentação", "cover letter", "carta",
}

// coverFileHints pick the right file input after the cover-letter
// affordance was revealed.
var coverFileHints = []string{"cover", "carta"}

// confirmationMarkers in the page address signal a completed
// application independently of any button outcome.
var confirmationMarkers = []string{"confirmation", "submitted", "success"}

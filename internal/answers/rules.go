package answers

import (
	"context"
	"strings"
)

// Question is the uniform projection of a form field the resolution
// tiers work on. JobTitle is passed explicitly so the tiers stay
// reentrant; there is no ambient "current job" state.
type Question struct {
	Label    string
	Kind     string // input type: text, email, tel, number, textarea, select, radio
	Options  []string
	JobTitle string
}

// Enumerated reports whether the question offers a fixed option list.
func (q Question) Enumerated() bool {
	return len(q.Options) > 0 && (q.Kind == "select" || q.Kind == "radio")
}

// Fixed-rule tables, matched case-insensitively as substrings of the
// label. Portuguese plus English, same as the questions Indeed renders
// for the locales the bot targets.

var negativeAnswerRules = [][]string{
	{"pcd", "deficiência", "deficiencia", "disability", "handicap", "pessoa com deficiência"},
	{"portador", "necessidade especial", "special need"},
}

var negativeOptionKeywords = []string{"não", "nao", "no", "none", "nenhuma", "nenhum"}

var contractorKeywords = []string{
	"regime", "contratação", "modelo de contratação", "tipo de contrato",
	"clt ou pj", "pj ou clt",
}

var salaryKeywords = []string{
	"pretensão salarial", "salário", "remuneração", "salary",
	"compensation", "expectativa salarial",
}

// Seniority ladder: title keyword sets mapped to a fixed monthly figure.
var salaryLadder = []struct {
	keywords []string
	figure   string
}{
	{[]string{"junior", "júnior", "jr", "trainee", "estágio", "estagiário", "intern"}, "3000"},
	{[]string{"pleno", "mid", "middle", "intermediário", "mid-level", "mid level"}, "9000"},
	{[]string{"sênior", "senior", "sr", "lead", "principal", "staff", "especialista"}, "14000"},
}

const defaultSalary = "9000"

// SalaryForTitle walks the seniority ladder against a job title and
// returns the matching figure, or the default when the level is unclear.
func SalaryForTitle(title string) string {
	lower := strings.ToLower(title)
	for _, level := range salaryLadder {
		if containsAny(lower, level.keywords) {
			return level.figure
		}
	}
	return defaultSalary
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// matchOption maps an abstract rule answer onto the closest available
// option by case-insensitive exact-or-substring match. Returns "" when
// no option matches.
func matchOption(answer string, options []string) string {
	lower := strings.ToLower(answer)
	for _, opt := range options {
		ol := strings.ToLower(strings.TrimSpace(opt))
		if ol == lower || strings.Contains(ol, lower) || strings.Contains(lower, ol) {
			return opt
		}
	}
	return ""
}

// rulesTier answers known question families from fixed tables:
// disability/diversity → negative, employment model → contractor,
// compensation → seniority-ladder salary.
type rulesTier struct{}

func (rulesTier) Attempt(_ context.Context, q Question) (string, bool) {
	label := strings.ToLower(q.Label)

	for _, keywords := range negativeAnswerRules {
		if !containsAny(label, keywords) {
			continue
		}
		if len(q.Options) > 0 {
			for _, opt := range q.Options {
				ol := strings.ToLower(strings.TrimSpace(opt))
				if containsAny(ol, negativeOptionKeywords) {
					return opt, true
				}
			}
		}
		if q.Enumerated() {
			return "", false
		}
		return "Não", true
	}

	if containsAny(label, contractorKeywords) {
		if len(q.Options) > 0 {
			if opt := matchOption("pj", q.Options); opt != "" {
				return opt, true
			}
		}
		if q.Enumerated() {
			return "", false
		}
		return "PJ", true
	}

	if containsAny(label, salaryKeywords) {
		figure := SalaryForTitle(q.JobTitle)
		if len(q.Options) > 0 {
			if opt := matchOption(figure, q.Options); opt != "" {
				return opt, true
			}
			if q.Enumerated() {
				return "", false
			}
		}
		return figure, true
	}

	return "", false
}

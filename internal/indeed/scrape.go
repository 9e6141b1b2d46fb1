package indeed

import (
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// JobInfo is what a job page exposes about itself: the header fields and
// the description as Markdown. Consumed by the tailored-document
// generator and the salary ladder.
type JobInfo struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ScrapeJob extracts title, company, location and description from a job
// page. Missing fields stay empty; a page that parses at all never fails.
func ScrapeJob(pageHTML, jobURL string) JobInfo {
	info := JobInfo{URL: jobURL}

	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		slog.Debug("scrape: job page parse failed", slog.Any("error", err))
		return info
	}

	info.Title = ScrapeJobTitle(doc)
	if n := findByAttr(doc, "data-testid", "inlineHeader-companyName"); n != nil {
		info.Company = strings.TrimSpace(textContent(n))
	}
	if n := findByAttr(doc, "data-testid", "jobsearch-JobInfoHeader-companyLocation"); n != nil {
		info.Location = strings.TrimSpace(textContent(n))
	}

	if n := findByAttr(doc, "id", "jobDescriptionText"); n != nil {
		md, err := htmltomarkdown.ConvertString(outerHTML(n))
		if err != nil {
			slog.Debug("scrape: description conversion failed", slog.Any("error", err))
			info.Description = strings.TrimSpace(textContent(n))
		} else {
			info.Description = strings.TrimSpace(md)
		}
	}
	return info
}

// ScrapeJobTitle finds the posting title in a parsed job page. The title
// feeds the salary ladder, so the same page must always yield the same
// string.
func ScrapeJobTitle(doc *html.Node) string {
	if n := findByAttr(doc, "data-testid", "jobsearch-JobInfoHeader-title"); n != nil {
		if t := strings.TrimSpace(textContent(n)); t != "" {
			return t
		}
	}
	if n := findByAttr(doc, "data-testid", "jobTitle"); n != nil {
		if t := strings.TrimSpace(textContent(n)); t != "" {
			return t
		}
	}
	if n := findByTag(doc, "h1"); n != nil {
		return strings.TrimSpace(textContent(n))
	}
	return ""
}

// ScrapeJobTitleHTML is ScrapeJobTitle over raw markup.
func ScrapeJobTitleHTML(pageHTML string) string {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}
	return ScrapeJobTitle(doc)
}

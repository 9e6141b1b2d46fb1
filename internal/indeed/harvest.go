package indeed

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
)

// JobLink is one harvested posting: the absolute URL plus its job key,
// empty when the URL carries neither jk nor vjk.
type JobLink struct {
	URL string
	Key string
}

// CollectApplyLinks scans a search-result page for job cards that expose
// the in-platform apply marker and returns their absolute links, in
// document order. Cards without the marker (external-apply-only postings)
// and cards without an href are dropped here, before any tab is opened.
func CollectApplyLinks(pageHTML, language string) []JobLink {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		slog.Warn("harvest: listing page parse failed", slog.Any("error", err))
		return nil
	}

	var cards []*html.Node
	findAllByAttr(doc, "data-testid", "slider_item", &cards)

	var links []JobLink
	for _, card := range cards {
		if findByAttr(card, "data-testid", "indeedApply") == nil {
			continue
		}
		anchor := findByClass(card, "jcs-JobTitle")
		if anchor == nil || anchor.Data != "a" {
			continue
		}
		href := attrValue(anchor, "href")
		if href == "" {
			continue
		}
		if strings.HasPrefix(href, "/") {
			href = "https://" + DomainForLanguage(language) + href
		}
		if !IsPlatformURL(href) {
			continue
		}
		links = append(links, JobLink{URL: href, Key: ExtractJobKey(href)})
	}
	return links
}

// Harvester deduplicates harvested links across listing pages within a
// run and against previously processed job keys.
type Harvester struct {
	language string
	known    func(key string) bool
	seen     map[string]bool
}

// NewHarvester creates a harvester for one run. known reports whether a
// job key was already processed in an earlier run (nil disables it).
func NewHarvester(language string, known func(key string) bool) *Harvester {
	if known == nil {
		known = func(string) bool { return false }
	}
	return &Harvester{language: language, known: known, seen: make(map[string]bool)}
}

// Collect harvests one listing page and returns only links not yet seen
// in this run and not already recorded by the job registry.
func (h *Harvester) Collect(pageHTML string) []JobLink {
	raw := CollectApplyLinks(pageHTML, h.language)

	var fresh []JobLink
	for _, l := range raw {
		if h.seen[l.URL] {
			continue
		}
		if l.Key != "" && h.known(l.Key) {
			continue
		}
		h.seen[l.URL] = true
		fresh = append(fresh, l)
	}
	if skipped := len(raw) - len(fresh); skipped > 0 {
		slog.Info("harvest: page scanned",
			slog.Int("new", len(fresh)), slog.Int("skipped", skipped))
	} else {
		slog.Info("harvest: page scanned", slog.Int("new", len(fresh)))
	}
	return fresh
}

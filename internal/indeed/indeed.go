// Package indeed holds the platform-specific knowledge: locale domains,
// job-key extraction, listing-page harvesting and job-page scraping.
// Selectors are tuned to Indeed's current markup and nothing else.
package indeed

import (
	"net/url"
	"strings"
)

const (
	// PrimaryDomain serves en/us and unknown locales.
	PrimaryDomain = "www.indeed.com"

	// WizardHost is the origin the apply wizard loads from, usually
	// inside a nested cross-origin frame.
	WizardHost = "smartapply.indeed.com"

	// AppliedListingURL lists previously submitted applications for the
	// logged-in account. Used for advisory post-submission verification.
	AppliedListingURL = "https://myjobs.indeed.com/applied"
)

// DomainForLanguage returns the Indeed domain for a locale code.
// Empty, "en" and "us" map to the primary domain; "uk" is a fixed
// alternate; anything else becomes "<code>.indeed.com". Case-insensitive.
func DomainForLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "", "en", "us":
		return PrimaryDomain
	case "uk":
		return "uk.indeed.com"
	}
	return lang + ".indeed.com"
}

// IsPlatformURL reports whether rawURL points at an indeed.com host.
func IsPlatformURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "indeed.com" || strings.HasSuffix(host, ".indeed.com")
}

// ExtractJobKey extracts the canonical job key from a posting URL.
// The "jk" query parameter is authoritative; "vjk" is the fallback used
// on serp-embedded view links. Returns "" when the URL carries neither.
func ExtractJobKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	if jk := q.Get("jk"); jk != "" {
		return jk
	}
	return q.Get("vjk")
}

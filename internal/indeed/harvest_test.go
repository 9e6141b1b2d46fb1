package indeed

import "testing"

// listingPage mimics Indeed's search-result markup: four cards, one of
// them without the in-platform apply marker, one without an href, one
// with a relative href.
const listingPage = `
<html><body><ul>
  <li data-testid="slider_item">
    <h2><a class="jcs-JobTitle" href="https://br.indeed.com/viewjob?jk=abc123def456">Desenvolvedor Go</a></h2>
    <span data-testid="indeedApply">Candidatura simplificada</span>
  </li>
  <li data-testid="slider_item">
    <h2><a class="jcs-JobTitle" href="https://br.indeed.com/viewjob?jk=extext000000">Vaga Externa</a></h2>
  </li>
  <li data-testid="slider_item">
    <h2><a class="jcs-JobTitle">Card Quebrado</a></h2>
    <span data-testid="indeedApply">Candidatura simplificada</span>
  </li>
  <li data-testid="slider_item">
    <h2><a class="jcs-JobTitle" href="/rc/clk?jk=fff000fff000&from=serp">Analista Python</a></h2>
    <span data-testid="indeedApply">Candidatura simplificada</span>
  </li>
</ul></body></html>`

func TestCollectApplyLinks(t *testing.T) {
	links := CollectApplyLinks(listingPage, "br")

	// Only the cards with both the apply marker and an href survive,
	// in document order.
	want := []JobLink{
		{URL: "https://br.indeed.com/viewjob?jk=abc123def456", Key: "abc123def456"},
		{URL: "https://br.indeed.com/rc/clk?jk=fff000fff000&from=serp", Key: "fff000fff000"},
	}
	if len(links) != len(want) {
		t.Fatalf("len(links) = %d, want %d", len(links), len(want))
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %+v, want %+v", i, links[i], want[i])
		}
	}
}

func TestCollectApplyLinks_EmptyAndGarbage(t *testing.T) {
	if links := CollectApplyLinks("", "br"); len(links) != 0 {
		t.Errorf("empty page yielded %d links", len(links))
	}
	if links := CollectApplyLinks("<div>no cards here</div>", "br"); len(links) != 0 {
		t.Errorf("cardless page yielded %d links", len(links))
	}
}

func TestHarvester_Dedupe(t *testing.T) {
	h := NewHarvester("br", nil)

	first := h.Collect(listingPage)
	if len(first) != 2 {
		t.Fatalf("first pass = %d links, want 2", len(first))
	}

	// The same page again, as happens when pagination stalls.
	second := h.Collect(listingPage)
	if len(second) != 0 {
		t.Errorf("second pass = %d links, want 0", len(second))
	}
}

func TestHarvester_SkipsKnownKeys(t *testing.T) {
	known := func(key string) bool { return key == "abc123def456" }
	h := NewHarvester("br", known)

	links := h.Collect(listingPage)
	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
	if links[0].Key != "fff000fff000" {
		t.Errorf("surviving key = %q, want fff000fff000", links[0].Key)
	}
}

const jobPage = `
<html><body>
  <h1 data-testid="jobsearch-JobInfoHeader-title"><span>Desenvolvedor Go Pleno</span></h1>
  <div data-testid="inlineHeader-companyName"><a>Acme Sistemas</a></div>
  <div data-testid="jobsearch-JobInfoHeader-companyLocation">São Paulo, SP</div>
  <div id="jobDescriptionText">
    <p>Procuramos dev Go.</p>
    <ul><li>Docker</li><li>Kubernetes</li></ul>
  </div>
</body></html>`

func TestScrapeJob(t *testing.T) {
	info := ScrapeJob(jobPage, "https://br.indeed.com/viewjob?jk=abc123def456")

	if info.Title != "Desenvolvedor Go Pleno" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.Company != "Acme Sistemas" {
		t.Errorf("Company = %q", info.Company)
	}
	if info.Location != "São Paulo, SP" {
		t.Errorf("Location = %q", info.Location)
	}
	if info.Description == "" {
		t.Error("Description is empty")
	}
	if info.URL != "https://br.indeed.com/viewjob?jk=abc123def456" {
		t.Errorf("URL = %q", info.URL)
	}
}

func TestScrapeJobTitleHTML_Fallbacks(t *testing.T) {
	if got := ScrapeJobTitleHTML(`<h1>Plain Heading Title</h1>`); got != "Plain Heading Title" {
		t.Errorf("h1 fallback = %q", got)
	}
	if got := ScrapeJobTitleHTML(`<div>nothing here</div>`); got != "" {
		t.Errorf("no title = %q, want empty", got)
	}
}

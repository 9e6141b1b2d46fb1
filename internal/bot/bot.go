// Package bot orchestrates a run: verify the session is logged in,
// harvest apply links from the configured searches, and drive the
// wizard for each new job, respecting the registry and the run caps.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/answers"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/config"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/history"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/indeed"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/registry"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/wizard"
)

// Mode selects the run strategy.
type Mode string

const (
	// ModeFull collects every listing page first, then works through
	// the whole batch with tailored documents.
	ModeFull Mode = "full"
	// ModeMinimal applies page by page with the stored resume and no
	// document drafting.
	ModeMinimal Mode = "minimal"
)

// pageSize is Indeed's listing pagination step.
const pageSize = 10

// errCapReached stops the apply loop early, not the run.
var errCapReached = fmt.Errorf("application cap reached")

// Bot ties the session, the durable state and the wizard together for
// one run.
type Bot struct {
	Config   *config.Config
	Session  browser.Session
	Registry *registry.Registry
	Cache    *answers.Cache
	Driver   *wizard.Driver

	limiter   *rate.Limiter
	submitted int
}

// New wires a Bot. driver must already carry the session and resolver.
func New(cfg *config.Config, session browser.Session, reg *registry.Registry, cache *answers.Cache, driver *wizard.Driver) *Bot {
	return &Bot{
		Config:   cfg,
		Session:  session,
		Registry: reg,
		Cache:    cache,
		Driver:   driver,
		// One job every few seconds at most; random pauses add jitter
		// on top.
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

// Run executes one full session: login gate, harvest, apply loop.
// Returns the number of submitted applications.
func (b *Bot) Run(ctx context.Context, mode Mode) (int, error) {
	if mode == ModeMinimal {
		b.Driver.Docs = nil
	}

	if err := b.waitForLogin(ctx); err != nil {
		return 0, err
	}

	var err error
	if mode == ModeMinimal {
		err = b.forEachListingPage(ctx, func(links []indeed.JobLink) error {
			return b.applyBatch(ctx, links)
		})
	} else {
		var all []indeed.JobLink
		err = b.forEachListingPage(ctx, func(links []indeed.JobLink) error {
			all = append(all, links...)
			return nil
		})
		if err == nil {
			slog.Info("bot: harvest complete", slog.Int("new_jobs", len(all)))
			err = b.applyBatch(ctx, all)
		}
	}
	if err == errCapReached {
		slog.Info("bot: application cap reached", slog.Int("cap", b.Config.MaxApplies))
		err = nil
	}

	slog.Info("bot: run finished",
		slog.Int("submitted", b.submitted),
		slog.Int("applied_total", b.Registry.AppliedCount()),
		slog.Int("skipped_total", b.Registry.SkippedCount()))
	return b.submitted, err
}

const (
	loginAttempts = 12
	loginDelay    = 5 * time.Second
)

// waitForLogin opens the platform and polls for the authenticated
// session cookie. The bot never performs a login itself; the profile
// must arrive already authenticated, at most finishing a 2FA prompt
// while this waits.
func (b *Bot) waitForLogin(ctx context.Context) error {
	page, err := b.Session.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("bot: open tab: %w", err)
	}
	defer page.Close()

	home := "https://" + indeed.DomainForLanguage(b.Config.Browser.Language)
	if err := page.Navigate(ctx, home); err != nil {
		return fmt.Errorf("bot: reach %s: %w", home, err)
	}
	page.WaitReady(ctx, 15*time.Second)

	for attempt := 0; attempt < loginAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		cookies, err := page.Cookies(ctx)
		if err != nil {
			return fmt.Errorf("bot: read cookies: %w", err)
		}
		for _, c := range cookies {
			if c.Name == "PPID" && c.Value != "" {
				slog.Info("bot: session is logged in")
				return nil
			}
		}
		if attempt == 0 {
			slog.Warn("bot: no session cookie yet, waiting for login")
		}
		pause(ctx, loginDelay)
	}
	return fmt.Errorf("bot: browser profile is not logged in to Indeed, log in manually first")
}

// forEachListingPage walks every configured search through its
// pagination range and hands each page's fresh links to visit.
func (b *Bot) forEachListingPage(ctx context.Context, visit func([]indeed.JobLink) error) error {
	page, err := b.Session.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("bot: open tab: %w", err)
	}
	defer page.Close()

	h := indeed.NewHarvester(b.Config.Browser.Language, b.Registry.IsKnown)

	for _, base := range b.Config.SearchURLs() {
		for offset := b.Config.Search.Start; offset <= b.Config.Search.End; offset += pageSize {
			if err := ctx.Err(); err != nil {
				return err
			}

			addr := pageURL(base, offset)
			if err := page.Navigate(ctx, addr); err != nil {
				slog.Warn("bot: listing page failed", slog.String("url", addr), slog.Any("error", err))
				continue
			}
			page.WaitReady(ctx, 15*time.Second)
			randomPause(ctx, 2*time.Second, 4*time.Second)

			html, err := page.HTML(ctx)
			if err != nil {
				slog.Warn("bot: listing snapshot failed", slog.Any("error", err))
				continue
			}

			found := h.Collect(html)
			slog.Info("bot: listing page harvested",
				slog.Int("offset", offset), slog.Int("found", len(found)))

			if err := visit(found); err != nil {
				return err
			}

			// An empty page means the search ran out of results.
			if len(found) == 0 && offset > b.Config.Search.Start {
				break
			}
		}
	}
	return nil
}

// applyBatch works through a batch of links until it runs out or the
// application cap is hit.
func (b *Bot) applyBatch(ctx context.Context, links []indeed.JobLink) error {
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return err
		}
		if b.submitted >= b.Config.MaxApplies {
			return errCapReached
		}
		if link.Key != "" && b.Registry.IsKnown(link.Key) {
			continue
		}

		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
		randomPause(ctx, 3*time.Second, 7*time.Second)

		if b.applyOne(ctx, link) {
			b.submitted++
		}
	}
	return nil
}

// applyOne runs the wizard for one job and settles the durable state.
// Returns true when the application was submitted.
func (b *Bot) applyOne(ctx context.Context, link indeed.JobLink) bool {
	slog.Info("bot: applying", slog.String("key", link.Key), slog.String("url", link.URL))

	outcome := b.Driver.Apply(ctx, link.URL)

	// A link without a job key has nothing durable to record; writing
	// "" would poison IsKnown for every later keyless link.
	switch outcome.Status {
	case wizard.StatusSubmitted:
		if link.Key != "" {
			b.Registry.MarkApplied(link.Key)
		}
	case wizard.StatusSkipped:
		if outcome.Persistent() && link.Key != "" {
			b.Registry.MarkSkipped(link.Key, outcome.Reason)
		}
	case wizard.StatusFailed:
		// Stays unknown to the registry so a later run retries it.
		slog.Warn("bot: attempt failed", slog.String("key", link.Key), slog.String("reason", outcome.Reason))
	}

	if _, err := history.Record(ctx, history.Attempt{
		JobKey: link.Key,
		URL:    link.URL,
		Status: string(outcome.Status),
		Reason: outcome.Reason,
	}); err != nil {
		slog.Debug("bot: history write failed", slog.Any("error", err))
	}

	return outcome.Status == wizard.StatusSubmitted
}

// pageURL appends the pagination offset to a search URL.
func pageURL(base string, offset int) string {
	if offset == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sstart=%d", base, sep, offset)
}

// randomPause sleeps for a uniformly random duration in [min, max],
// unless the context ends first.
func randomPause(ctx context.Context, min, max time.Duration) {
	d := min + time.Duration(rand.Int64N(int64(max-min)+1))
	pause(ctx, d)
}

func pause(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// opTimeout bounds every individual CDP operation so nothing blocks
// indefinitely even when a frame detaches mid-call.
const opTimeout = 15 * time.Second

// Options configures the Chrome session.
type Options struct {
	UserDataDir string
	Headless    bool
	ProxyServer string
}

// ChromeSession drives a real Chrome instance over the DevTools
// protocol. One authenticated session per run; tabs come and go per job.
type ChromeSession struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromeSession launches Chrome with a persistent profile so the
// login session survives across runs.
func NewChromeSession(ctx context.Context, opts Options) (*ChromeSession, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}
	if opts.ProxyServer != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.ProxyServer))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Materialize the browser process before handing the session out.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	return &ChromeSession{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// NewPage opens a fresh tab.
func (s *ChromeSession) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: new tab: %w", err)
	}
	return &chromePage{target: &cdpTarget{ctx: tabCtx}, cancel: cancel}, nil
}

// Close shuts the whole browser down.
func (s *ChromeSession) Close() {
	s.browserCancel()
	s.allocCancel()
}

// cdpTarget is one CDP target: the tab's top document or an
// out-of-process iframe. Implements everything in Context except URL,
// which differs between the two.
type cdpTarget struct {
	ctx context.Context
}

func (t *cdpTarget) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opCtx, cancel := context.WithTimeout(t.ctx, opTimeout)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func (t *cdpTarget) Evaluate(ctx context.Context, js string, out any) error {
	if out == nil {
		var discard any
		out = &discard
	}
	return t.run(ctx, chromedp.Evaluate(js, out, awaitPromise))
}

func (t *cdpTarget) Buttons(ctx context.Context) ([]Button, error) {
	var buttons []Button
	if err := t.Evaluate(ctx, scanButtonsJS, &buttons); err != nil {
		return nil, fmt.Errorf("browser: button scan: %w", err)
	}
	return buttons, nil
}

func (t *cdpTarget) Fields(ctx context.Context) ([]Field, error) {
	var fields []Field
	if err := t.Evaluate(ctx, scanFieldsJS, &fields); err != nil {
		return nil, fmt.Errorf("browser: field scan: %w", err)
	}
	return fields, nil
}

func (t *cdpTarget) Click(ctx context.Context, ref string) error {
	sel := fmt.Sprintf(`[data-ibot-ref=%q]`, ref)
	return t.run(ctx, chromedp.Click(sel, chromedp.ByQuery))
}

func (t *cdpTarget) ClickSelector(ctx context.Context, sel string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opCtx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()
	return chromedp.Run(opCtx, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible))
}

func (t *cdpTarget) Fill(ctx context.Context, ref, value string) error {
	var ok bool
	if err := t.Evaluate(ctx, fmt.Sprintf(fillJS, jsArg(ref), jsArg(value)), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("browser: fill: ref %q not found", ref)
	}
	return nil
}

func (t *cdpTarget) SelectOption(ctx context.Context, ref, option string) error {
	var ok bool
	if err := t.Evaluate(ctx, fmt.Sprintf(selectByTextJS, jsArg(ref), jsArg(option)), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("browser: select: option %q not found for ref %q", option, ref)
	}
	return nil
}

func (t *cdpTarget) UploadFile(ctx context.Context, ref, path string) error {
	sel := fmt.Sprintf(`[data-ibot-ref=%q]`, ref)
	return t.run(ctx, chromedp.SetUploadFiles(sel, []string{path}, chromedp.ByQuery))
}

func (t *cdpTarget) ControlCounts(ctx context.Context) (int, int, int, error) {
	var counts struct {
		Buttons int `json:"buttons"`
		Inputs  int `json:"inputs"`
		Selects int `json:"selects"`
	}
	if err := t.Evaluate(ctx, controlCountsJS, &counts); err != nil {
		return 0, 0, 0, err
	}
	return counts.Buttons, counts.Inputs, counts.Selects, nil
}

// chromeFrame is a nested browsing context backed by its own CDP target.
type chromeFrame struct {
	*cdpTarget
	addr   string
	cancel context.CancelFunc
}

func (f *chromeFrame) URL(context.Context) string { return f.addr }

// chromePage is a tab.
type chromePage struct {
	target       *cdpTarget
	cancel       context.CancelFunc
	frameCancels []context.CancelFunc
	closed       bool
}

func (p *chromePage) URL(ctx context.Context) string {
	var loc string
	if err := p.target.run(ctx, chromedp.Location(&loc)); err != nil {
		return ""
	}
	return loc
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	navCtx, cancel := context.WithTimeout(p.target.ctx, 45*time.Second)
	defer cancel()
	return chromedp.Run(navCtx, chromedp.Navigate(url))
}

func (p *chromePage) WaitReady(ctx context.Context, timeout time.Duration) {
	if ctx.Err() != nil {
		return
	}
	opCtx, cancel := context.WithTimeout(p.target.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(opCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		slog.Debug("browser: page not ready within budget", slog.Any("error", err))
	}
}

// Frames attaches to the iframe targets belonging to this tab's frame
// tree. Cross-origin wizard frames are separate targets, which is
// exactly what the context resolver needs to scan. Targets() is
// browser-wide, so the list is filtered against the tab's own frame
// ids; iframes of other open tabs must never leak into the scan.
// Contexts from a previous call are detached first; callers must not
// hold on to them across steps.
func (p *chromePage) Frames(ctx context.Context) ([]Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, cancel := range p.frameCancels {
		cancel()
	}
	p.frameCancels = nil

	owned, err := p.frameIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("browser: frame tree: %w", err)
	}
	infos, err := chromedp.Targets(p.target.ctx)
	if err != nil {
		return nil, fmt.Errorf("browser: list targets: %w", err)
	}

	var frames []Context
	for _, info := range ownedIframeTargets(infos, owned) {
		frameCtx, cancel := chromedp.NewContext(p.target.ctx, chromedp.WithTargetID(info.TargetID))
		p.frameCancels = append(p.frameCancels, cancel)
		frames = append(frames, &chromeFrame{
			cdpTarget: &cdpTarget{ctx: frameCtx},
			addr:      info.URL,
			cancel:    cancel,
		})
	}
	return frames, nil
}

// frameIDs collects the id of every frame in this tab's tree,
// out-of-process children included.
func (p *chromePage) frameIDs(ctx context.Context) (map[string]bool, error) {
	ids := make(map[string]bool)
	err := p.target.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := cdppage.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		var walk func(*cdppage.FrameTree)
		walk = func(t *cdppage.FrameTree) {
			ids[string(t.Frame.ID)] = true
			for _, child := range t.ChildFrames {
				walk(child)
			}
		}
		walk(tree)
		return nil
	}))
	return ids, err
}

// ownedIframeTargets keeps the iframe targets whose id appears in the
// tab's frame tree. An out-of-process iframe reuses its frame id as its
// target id, which is what makes the match possible.
func ownedIframeTargets(infos []*target.Info, owned map[string]bool) []*target.Info {
	var kept []*target.Info
	for _, info := range infos {
		if info.Type != "iframe" || !owned[string(info.TargetID)] {
			continue
		}
		kept = append(kept, info)
	}
	return kept
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var src string
	if err := p.target.run(ctx, chromedp.OuterHTML("html", &src, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("browser: outer html: %w", err)
	}
	return src, nil
}

func (p *chromePage) Cookies(ctx context.Context) ([]Cookie, error) {
	var cookies []Cookie
	err := p.target.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		raw, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range raw {
			cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value})
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("browser: cookies: %w", err)
	}
	return cookies, nil
}

func (p *chromePage) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, cancel := range p.frameCancels {
		cancel()
	}
	p.frameCancels = nil
	p.cancel()
}

// Context methods delegate to the underlying target.

func (p *chromePage) Buttons(ctx context.Context) ([]Button, error) { return p.target.Buttons(ctx) }
func (p *chromePage) Fields(ctx context.Context) ([]Field, error)   { return p.target.Fields(ctx) }
func (p *chromePage) Click(ctx context.Context, ref string) error   { return p.target.Click(ctx, ref) }
func (p *chromePage) ClickSelector(ctx context.Context, sel string, timeout time.Duration) error {
	return p.target.ClickSelector(ctx, sel, timeout)
}
func (p *chromePage) Fill(ctx context.Context, ref, value string) error {
	return p.target.Fill(ctx, ref, value)
}
func (p *chromePage) SelectOption(ctx context.Context, ref, option string) error {
	return p.target.SelectOption(ctx, ref, option)
}
func (p *chromePage) UploadFile(ctx context.Context, ref, path string) error {
	return p.target.UploadFile(ctx, ref, path)
}
func (p *chromePage) ControlCounts(ctx context.Context) (int, int, int, error) {
	return p.target.ControlCounts(ctx)
}
func (p *chromePage) Evaluate(ctx context.Context, js string, out any) error {
	return p.target.Evaluate(ctx, js, out)
}

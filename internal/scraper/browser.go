package scraper

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/config"
)

// Browser holds the shared Chrome allocator. Each scrape run borrows
// its own Session from it; sessions are never shared across concurrent
// jobs.
type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	logger   *zap.Logger
	cfg      config.BrowserConfig
}

// NewBrowser creates the Chrome allocator with the configured options
func NewBrowser(logger *zap.Logger, cfg config.BrowserConfig) *Browser {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
		chromedp.Flag("disable-dev-shm-usage", true),
	}

	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.BinPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BinPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		allocCtx: allocCtx,
		cancel:   cancel,
		logger:   logger,
		cfg:      cfg,
	}
}

// Close shuts down the allocator and any remaining Chrome processes
func (b *Browser) Close() {
	b.cancel()
}

// Session is one browser tab bound to a single scrape run. The
// returned close func must be deferred by the caller; it tears down
// the tab on every exit path, including extraction failures.
type Session struct {
	ctx    context.Context
	logger *zap.Logger
	cfg    config.BrowserConfig
}

// NewSession opens a fresh browser context with the page timeout
// applied. The timeout bounds every wait inside the session so a
// stalled page cannot hang a worker indefinitely.
func (b *Browser) NewSession() (*Session, context.CancelFunc) {
	ctx, cancelCtx := chromedp.NewContext(b.allocCtx)
	ctx, cancelTimeout := context.WithTimeout(ctx, b.cfg.PageTimeout)

	cancel := func() {
		cancelTimeout()
		cancelCtx()
	}

	return &Session{ctx: ctx, logger: b.logger, cfg: b.cfg}, cancel
}

// Open navigates to url and sleeps a fixed settle delay so client-side
// rendering has a chance to complete before anything is read.
func (s *Session) Open(url string) error {
	s.logger.Debug("Opening page", zap.String("url", url))

	if err := chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.Sleep(s.cfg.SettleDelay),
	); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// ScrollUntilStable keeps scrolling to the bottom of the document
// until the measured height stops growing, forcing lazy-loaded
// catalogs to fully materialize. MaxScrolls bounds the loop so a
// page that keeps appending forever cannot spin us.
func (s *Session) ScrollUntilStable() error {
	var lastHeight int64
	if err := chromedp.Run(s.ctx,
		chromedp.Evaluate(`document.body.scrollHeight`, &lastHeight),
	); err != nil {
		return fmt.Errorf("failed to read initial height: %w", err)
	}

	for i := 0; i < s.cfg.MaxScrolls; i++ {
		var newHeight int64
		if err := chromedp.Run(s.ctx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(s.cfg.ScrollPause),
			chromedp.Evaluate(`document.body.scrollHeight`, &newHeight),
		); err != nil {
			return fmt.Errorf("scroll failed: %w", err)
		}
		if newHeight == lastHeight {
			s.logger.Debug("Page height stable", zap.Int64("height", newHeight), zap.Int("scrolls", i+1))
			return nil
		}
		lastHeight = newHeight
	}

	s.logger.Debug("Scroll limit reached before height stabilized",
		zap.Int("maxScrolls", s.cfg.MaxScrolls),
	)
	return nil
}

// HTML returns the rendered document as an HTML string
func (s *Session) HTML() (string, error) {
	var html string
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("failed to extract page HTML: %w", err)
	}

	s.logger.Debug("Page rendered", zap.Int("length", len(html)))
	return html, nil
}

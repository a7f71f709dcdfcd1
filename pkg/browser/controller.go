// Package browser implements the process-singleton headless-browser
// controller: a single actor goroutine owns the only live Chromium
// instance and serialises all navigation requests submitted to it.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// State is the controller's lifecycle state.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// NavigationTimeout is the ceiling for page navigation.
const NavigationTimeout = 20 * time.Second

// BodyWaitTimeout bounds waiting for the body element to appear.
const BodyWaitTimeout = 8 * time.Second

// joinTimeout bounds how long Close waits for the worker to drain.
const joinTimeout = 30 * time.Second

// ErrNotStarted is returned when a request is submitted to a stopped
// controller.
var ErrNotStarted = fmt.Errorf("browser_not_started")

// ErrTimeout is returned when a per-request timeout elapses while the
// worker is still busy with prior work.
var ErrTimeout = fmt.Errorf("timeout_waiting_for_browser")

// Result is what a single navigation produces.
type Result struct {
	Title         string
	HTML          string
	StatusCode    int
	AccessDenied  bool
	Screenshot    []byte
	ScreenshotRef string // set when a sink stored the capture
}

// request is one unit of work submitted to the browser worker goroutine.
type request struct {
	ctx               context.Context
	url               string
	userAgent         string
	captureScreenshot bool
	resultCh          chan requestOutcome
}

type requestOutcome struct {
	result *Result
	err    error
}

// ScreenshotSink receives captured screenshots for out-of-band storage.
type ScreenshotSink interface {
	Store(ctx context.Context, url string, png []byte) (ref string, err error)
}

// Controller is the thread-safe singleton browser actor.
type Controller struct {
	headless bool
	sink     ScreenshotSink

	mu      sync.Mutex
	state   State
	reqCh   chan *request
	done    chan struct{}
	cancel  context.CancelFunc
	allocCancel context.CancelFunc
}

// New creates a controller. headless selects headless vs headed Chromium.
func New(headless bool, sink ScreenshotSink) *Controller {
	return &Controller{headless: headless, sink: sink, state: StateStopped}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start launches the browser worker goroutine. Idempotent when already
// running or starting.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.state == StateRunning || c.state == StateStarting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateStarting
	c.reqCh = make(chan *request, 32)
	c.done = make(chan struct{})
	c.mu.Unlock()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Force the browser process to actually launch now so Start() fails
	// fast if Chromium is unavailable, rather than on the first request.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		c.mu.Lock()
		c.state = StateStopped
		c.mu.Unlock()
		return fmt.Errorf("launching browser: %w", err)
	}

	c.mu.Lock()
	c.cancel = cancel
	c.allocCancel = allocCancel
	c.state = StateRunning
	c.mu.Unlock()

	go c.run(browserCtx)
	slog.Info("browser controller started", "headless", c.headless)
	return nil
}

// Close stops the worker gracefully: in-flight work drains, then the
// browser is closed. Subsequent FetchPage calls fail with ErrNotStarted.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StateStopping
	reqCh := c.reqCh
	done := c.done
	cancel := c.cancel
	allocCancel := c.allocCancel
	c.mu.Unlock()

	close(reqCh) // sentinel: worker drains remaining requests then exits

	select {
	case <-done:
	case <-time.After(joinTimeout):
		slog.Warn("browser controller: join timed out, forcing shutdown")
	}

	if cancel != nil {
		cancel()
	}
	if allocCancel != nil {
		allocCancel()
	}

	c.mu.Lock()
	c.state = StateStopped
	c.mu.Unlock()
}

// FetchPage submits a navigation request and waits for the result, or until
// ctx is cancelled / perRequestTimeout elapses.
func (c *Controller) FetchPage(ctx context.Context, url, userAgent string, captureScreenshot bool, perRequestTimeout time.Duration) (*Result, error) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return nil, ErrNotStarted
	}
	reqCh := c.reqCh
	c.mu.Unlock()

	req := &request{
		ctx:               ctx,
		url:               url,
		userAgent:         userAgent,
		captureScreenshot: captureScreenshot,
		resultCh:          make(chan requestOutcome, 1),
	}

	var waitTimer <-chan time.Time
	if perRequestTimeout > 0 {
		t := time.NewTimer(perRequestTimeout)
		defer t.Stop()
		waitTimer = t.C
	}

	select {
	case reqCh <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-waitTimer:
		return nil, ErrTimeout
	}

	select {
	case out := <-req.resultCh:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-waitTimer:
		return nil, ErrTimeout
	}
}

// run is the sole goroutine that ever touches the browser context.
func (c *Controller) run(browserCtx context.Context) {
	defer close(c.done)
	for req := range c.reqCh {
		result, err := c.navigate(browserCtx, req)
		select {
		case req.resultCh <- requestOutcome{result: result, err: err}:
		default:
			// Caller gave up (context/timeout); drop the result.
		}
	}
	_ = chromedp.Cancel(browserCtx)
}

func (c *Controller) navigate(browserCtx context.Context, req *request) (*Result, error) {
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()

	navCtx, navCancel := context.WithTimeout(tabCtx, NavigationTimeout)
	defer navCancel()

	var statusCode int
	chromedp.ListenTarget(navCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok {
			if e.Response.URL == req.url || statusCode == 0 {
				statusCode = int(e.Response.Status)
			}
		}
	})

	tasks := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			return page.SetBypassCSP(true).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthInitScript).Do(ctx)
			return err
		}),
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return chromedp.EmulateViewport(1366, 768).Do(ctx)
		}),
		chromedp.Navigate(req.url),
	}
	if req.userAgent != "" {
		tasks = append(chromedp.Tasks{chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(req.userAgent).Do(ctx)
		})}, tasks...)
	}

	if err := chromedp.Run(navCtx, tasks); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	bodyCtx, bodyCancel := context.WithTimeout(tabCtx, BodyWaitTimeout)
	defer bodyCancel()
	_ = chromedp.Run(bodyCtx, chromedp.WaitReady("body", chromedp.ByQuery))

	var title, html string
	var screenshot []byte
	collectTasks := chromedp.Tasks{
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if req.captureScreenshot {
		collectTasks = append(collectTasks, chromedp.FullScreenshot(&screenshot, 90))
	}
	if err := chromedp.Run(tabCtx, collectTasks); err != nil {
		return nil, fmt.Errorf("extracting page content: %w", err)
	}

	accessDenied := statusCode == 401 || statusCode == 403 || looksLikeAccessDenied(title, html)

	result := &Result{
		Title:        title,
		HTML:         html,
		StatusCode:   statusCode,
		AccessDenied: accessDenied,
		Screenshot:   screenshot,
	}
	if len(screenshot) > 0 && c.sink != nil {
		ref, err := c.sink.Store(req.ctx, req.url, screenshot)
		if err != nil {
			slog.Warn("browser controller: screenshot sink store failed", "url", req.url, "error", err)
		} else {
			result.ScreenshotRef = ref
		}
	}
	return result, nil
}

// looksLikeAccessDenied applies the anti-bot body/title heuristics.
func looksLikeAccessDenied(title, html string) bool {
	lowerTitle := strings.ToLower(title)
	lowerHTML := strings.ToLower(html)
	markers := []string{"access denied", "403 forbidden"}
	for _, m := range markers {
		if strings.Contains(lowerTitle, m) || strings.Contains(lowerHTML, m) {
			return true
		}
	}
	return strings.Contains(lowerHTML, "cloudflare") && strings.Contains(lowerHTML, "security")
}

// stealthInitScript masks common automation fingerprints: undefines
// `navigator.webdriver`, sets plausible languages/plugins, stubs
// permissions queries.
const stealthInitScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
  parameters.name === 'notifications' ?
    Promise.resolve({ state: Notification.permission }) :
    originalQuery(parameters)
);
`

package serp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// DefaultQuery is the search term used when none is given.
	DefaultQuery = "gov.br"
	// DefaultTimeout bounds the whole browser session.
	DefaultTimeout = 20 * time.Second
	// DefaultOutput is the file the command writes results to.
	DefaultOutput = "webscraping_41b_resultado.csv"

	searchBaseURL    = "https://www.google.com/search"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	resultsSelector  = "div#search"
)

// consentScript clicks the first consent button labelled Aceitar or Concordo.
// It is a no-op when no banner is shown.
const consentScript = `(() => {
  const buttons = Array.from(document.querySelectorAll('button'));
  const target = buttons.find(b => /Aceitar|Concordo/.test(b.innerText || ''));
  if (target) { target.click(); return true; }
  return false;
})()`

// Options configures a browser fetch.
type Options struct {
	// Query is the search term (default: gov.br)
	Query string
	// Headless runs the browser without a window
	Headless bool
	// Timeout bounds the session (default: 20s)
	Timeout time.Duration
	// UserAgent overrides the browser user agent
	UserAgent string
	// Logger receives fetch and parse diagnostics (default: slog.Default())
	Logger *slog.Logger
}

// DefaultOptions returns headless options for DefaultQuery.
func DefaultOptions() Options {
	return Options{
		Query:     DefaultQuery,
		Headless:  true,
		Timeout:   DefaultTimeout,
		UserAgent: defaultUserAgent,
	}
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Query) == "" {
		o.Query = DefaultQuery
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// SearchURL returns the results page address for query.
func SearchURL(query string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("hl", "pt-BR")
	return searchBaseURL + "?" + v.Encode()
}

// Fetch opens the results page for opts.Query in Chrome, accepts the consent
// banner when present and returns the rendered HTML.
func Fetch(ctx context.Context, opts Options) (string, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", "pt-BR"),
		chromedp.UserAgent(opts.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancelTimeout()

	var (
		clicked bool
		html    string
	)
	tasks := chromedp.Tasks{
		chromedp.Navigate(SearchURL(opts.Query)),
		chromedp.Evaluate(consentScript, &clicked),
		chromedp.WaitReady(resultsSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(timeoutCtx, tasks); err != nil {
		return "", fmt.Errorf("serp: fetch %q: %w", opts.Query, err)
	}

	opts.Logger.Debug("results page fetched", "query", opts.Query, "consent_clicked", clicked, "bytes", len(html))
	return html, nil
}

// Search fetches and parses the first results page for opts.Query.
func Search(ctx context.Context, opts Options) ([]Result, error) {
	opts = opts.withDefaults()
	html, err := Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	return parseResults(strings.NewReader(html), opts.Logger)
}

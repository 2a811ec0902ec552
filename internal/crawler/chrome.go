package crawler

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sjsage522/cardwatch/helpers"

	"github.com/chromedp/chromedp"
)

// fetchWithChrome returns a FetchFunc that renders the page in headless Chrome.
// The listing rows are injected by scripts, so a plain GET is often not enough.
func fetchWithChrome(chromeBin string, readySelector string) FetchFunc {
	return func(ctx context.Context, url string) (io.Reader, error) {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(helpers.RandomUserAgent()),
		)
		if chromeBin != "" {
			opts = append(opts, chromedp.ExecPath(chromeBin))
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
		defer cancelAlloc()

		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancelBrowser()

		var html string
		err := chromedp.Run(browserCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady(readySelector, chromedp.ByQuery),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
		if err != nil {
			return nil, fmt.Errorf("chrome fetch %s: %w", url, err)
		}

		return strings.NewReader(html), nil
	}
}

// fetchWithHTTP returns a FetchFunc doing a plain GET with browser headers
func fetchWithHTTP() FetchFunc {
	return helpers.FetchWithRandomHeaders
}

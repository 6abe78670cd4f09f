package chart

import (
	"bytes"
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"TickerScope/internal/model"
)

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable probes for a usable headless browser once per
// process. Every later failure is reported immediately from the cached
// result instead of spawning another doomed browser launch.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		probe, cancel := chromedp.NewContext(ctx)
		defer cancel()
		headlessErr = chromedp.Run(probe)
	})
	return headlessErr
}

// RenderPNG rasterizes the full dashboard page (candlestick plus
// volume) into a PNG via headless Chrome.
func RenderPNG(ctx context.Context, ticker string, table model.PriceTable) ([]byte, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Page(ticker, table).Render(&buf); err != nil {
		return nil, err
	}
	height := klineHeightPx + volumeHeightPx + 120
	return renderHTMLToPNG(ctx, buf.Bytes(), chartWidthPx, height)
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		// Quality 100 selects PNG capture; any lower value switches to JPEG.
		chromedp.FullScreenshot(&screenshot, 100),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}

// Package browser captures the rendered dashboard with headless Chrome.
package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"house-dashboard/utils"
)

// Options controls a capture.
type Options struct {
	ChromeBin string
	Width     int64
	Height    int64
	Settle    time.Duration
	Timeout   time.Duration
	Quality   int
}

// DefaultOptions sizes the viewport to the dashboard's widest row.
func DefaultOptions() Options {
	return Options{
		Width:   1440,
		Height:  900,
		Settle:  2 * time.Second,
		Timeout: 60 * time.Second,
		Quality: 90,
	}
}

// Capture loads url in headless Chrome, waits for the charts to settle and
// returns a full-page PNG.
func Capture(ctx context.Context, url string, opts Options, logger *utils.Logger) ([]byte, error) {
	chromeBin := FindChromeBinary(opts.ChromeBin)
	if chromeBin != "" {
		logger.Info("[browser] Using browser binary: %s", chromeBin)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(int(opts.Width), int(opts.Height)),
	)
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	runCtx, cancelTimeout := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancelTimeout()

	var buf []byte
	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(opts.Width, opts.Height),
		chromedp.Navigate(url),
		chromedp.WaitVisible(`img.figure`, chromedp.ByQuery),
		chromedp.Sleep(opts.Settle),
		chromedp.FullScreenshot(&buf, opts.Quality),
	)
	if err != nil {
		return nil, fmt.Errorf("browser: capture %s: %w", url, err)
	}

	logger.Info("[browser] Captured %s (%d bytes)", url, len(buf))
	return buf, nil
}

// FindChromeBinary returns override if set, then $CHROME_BIN, then the first
// known Chrome/Chromium install. An empty result lets chromedp use its own
// lookup.
func FindChromeBinary(override string) string {
	if override != "" {
		return override
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

package yahoo

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"szakszon.com/stockinfo/logger"
)

const consentButton = "form.consent-form button[name=agree]"

// browserPages renders pages in headless Chrome. Used when plain requests
// are answered with the consent wall.
type browserPages struct {
	userAgent string
	timeout   time.Duration
	logger    logger.Logger
}

func (b *browserPages) Page(
	ctx context.Context,
	u string,
) (io.ReadCloser, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(b.userAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	bctx, cancel := chromedp.NewContext(
		actx,
		chromedp.WithErrorf(b.logf),
	)
	defer cancel()

	if b.timeout > 0 {
		var cancelTimeout context.CancelFunc
		bctx, cancelTimeout = context.WithTimeout(bctx, b.timeout)
		defer cancelTimeout()
	}

	var doc string
	err := chromedp.Run(bctx,
		emulation.SetUserAgentOverride(b.userAgent).
			WithAcceptLanguage("en-US"),
		chromedp.Navigate(u),
		runWithTimeOut(5*time.Second, chromedp.Tasks{
			chromedp.Click(
				consentButton,
				chromedp.ByQuery,
				chromedp.NodeVisible,
			),
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &doc, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

func (b *browserPages) logf(format string, v ...interface{}) {
	if b.logger != nil {
		b.logger.Logf("chrome: "+format, v...)
	}
}

// runWithTimeOut runs tasks that may legitimately never complete, like
// clicking a dialog that is not shown.
func runWithTimeOut(
	timeout time.Duration,
	tasks chromedp.Tasks,
) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		timeoutContext, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		tasks.Do(timeoutContext)
		return nil
	}
}

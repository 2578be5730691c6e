package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
	"szakszon.com/stockinfo/httprate"
	"szakszon.com/stockinfo/logger"
)

const crumbKey = "crumb"

// Yahoo is a client of the Yahoo Finance query API. Requests carry the
// session cookie and crumb obtained on first use.
type Yahoo struct {
	opts       options
	httpClient *httprate.RLClient
	session    *cache.Cache
	sessionMu  sync.Mutex
	pages      pageFetcher
}

func NewYahoo(os ...Option) (*Yahoo, error) {
	opts := defaultOptions
	for _, o := range os {
		opts = o(opts)
	}

	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %v", err)
	}

	httpClient := httprate.NewRLClient(opts.timeout, opts.rateLimiter, jar)
	if opts.userAgent != "" {
		httpClient.UserAgent = opts.userAgent
	}

	c := &Yahoo{
		opts:       opts,
		httpClient: httpClient,
		session:    cache.New(opts.crumbTTL, 2*opts.crumbTTL),
	}
	if opts.browser {
		c.pages = &browserPages{
			userAgent: httpClient.UserAgent,
			timeout:   opts.browserTimeout,
			logger:    opts.logger,
		}
	} else {
		c.pages = &httpPages{c}
	}
	return c, nil
}

func (c *Yahoo) quoteSummaryURL(
	symbol string,
	modules []string,
	crumb string,
) string {
	q := url.Values{}
	q.Set("modules", strings.Join(modules, ","))
	q.Set("crumb", crumb)
	return c.opts.baseURL +
		"/v10/finance/quoteSummary/" + url.PathEscape(symbol) +
		"?" + q.Encode()
}

func (c *Yahoo) chartURL(symbol string, crumb string) string {
	q := url.Values{}
	q.Set("range", c.opts.dividendRange)
	q.Set("interval", "1d")
	q.Set("events", "div")
	q.Set("crumb", crumb)
	return c.opts.baseURL +
		"/v8/finance/chart/" + url.PathEscape(symbol) +
		"?" + q.Encode()
}

func (c *Yahoo) crumbURL() string {
	return c.opts.baseURL + "/v1/test/getcrumb"
}

func (c *Yahoo) earningsURL(symbol string) string {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("offset", "0")
	q.Set("size", "25")
	return c.opts.pageURL + "/calendar/earnings?" + q.Encode()
}

func (c *Yahoo) httpGet(
	ctx context.Context,
	u string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return c.httpClient.Do(req)
}

// crumb returns the cached session crumb, fetching a new one when it has
// expired.
func (c *Yahoo) crumb(ctx context.Context) (string, error) {
	if v, ok := c.session.Get(crumbKey); ok {
		return v.(string), nil
	}

	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if v, ok := c.session.Get(crumbKey); ok {
		return v.(string), nil
	}

	if c.opts.cookieURL != "" {
		// Only the cookies matter, the response is usually a 404.
		resp, err := c.httpGet(ctx, c.opts.cookieURL)
		if err != nil {
			c.logf("yahoo: cookie bootstrap: %v", err)
		} else {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	resp, err := c.httpGet(ctx, c.crumbURL())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			StatusCode:  resp.StatusCode,
			Endpoint:    "getcrumb",
			Description: strings.TrimSpace(string(b)),
		}
	}

	crumb := strings.TrimSpace(string(b))
	if crumb == "" {
		return "", errors.New("empty crumb")
	}
	c.session.SetDefault(crumbKey, crumb)
	return crumb, nil
}

// getJSON fetches the URL built by urlFn and decodes the body into v. A
// rejected crumb is dropped so the next call starts a new session.
func (c *Yahoo) getJSON(
	ctx context.Context,
	endpoint string,
	urlFn func(crumb string) string,
	v interface{},
) error {
	crumb, err := c.crumb(ctx)
	if err != nil {
		return fmt.Errorf("crumb: %w", err)
	}

	resp, err := c.httpGet(ctx, urlFn(crumb))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		if resp.StatusCode == http.StatusUnauthorized ||
			resp.StatusCode == http.StatusForbidden {
			c.session.Delete(crumbKey)
		}
		return parseAPIError(endpoint, resp)
	}

	err = json.NewDecoder(resp.Body).Decode(v)
	if err != nil {
		return fmt.Errorf("decode %v: %v", endpoint, err)
	}
	return nil
}

func (c *Yahoo) logf(format string, v ...interface{}) {
	if c.opts.logger != nil {
		c.opts.logger.Logf(format, v...)
	}
}

type APIError struct {
	StatusCode  int
	Endpoint    string
	Code        string
	Description string
}

func (e *APIError) Error() string {
	msg := e.Description
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("yahoo %v: %v", e.Endpoint, msg)
	}
	return fmt.Sprintf("yahoo %v: http %d: %v", e.Endpoint, e.StatusCode, msg)
}

type errorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *errorBody) apiError(endpoint string) error {
	if e == nil {
		return nil
	}
	return &APIError{
		Endpoint:    endpoint,
		Code:        e.Code,
		Description: e.Description,
	}
}

// parseAPIError reads the error envelope every query endpoint uses:
// {"<endpoint>":{"result":null,"error":{"code":...,"description":...}}}.
func parseAPIError(endpoint string, resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}
	var env map[string]struct {
		Error *errorBody `json:"error"`
	}
	if json.Unmarshal(b, &env) == nil {
		for _, v := range env {
			if v.Error != nil {
				apiErr.Code = v.Error.Code
				apiErr.Description = v.Error.Description
				return apiErr
			}
		}
	}
	apiErr.Description = http.StatusText(resp.StatusCode)
	return apiErr
}

type options struct {
	baseURL        string
	pageURL        string
	cookieURL      string
	userAgent      string
	timeout        time.Duration
	rateLimiter    *rate.Limiter
	crumbTTL       time.Duration
	dividendRange  string
	browser        bool
	browserTimeout time.Duration
	logger         logger.Logger
}

var defaultOptions = options{
	baseURL:        "https://query2.finance.yahoo.com",
	pageURL:        "https://finance.yahoo.com",
	cookieURL:      "https://fc.yahoo.com",
	timeout:        20 * time.Second,
	crumbTTL:       time.Hour,
	dividendRange:  "5y",
	browserTimeout: 60 * time.Second,
}

type Option func(o options) options

func BaseURL(v string) Option {
	return func(o options) options {
		o.baseURL = strings.TrimRight(v, "/")
		return o
	}
}

func PageURL(v string) Option {
	return func(o options) options {
		o.pageURL = strings.TrimRight(v, "/")
		return o
	}
}

// CookieURL is requested once per session to obtain the cookies the crumb is
// bound to. Empty skips the request.
func CookieURL(v string) Option {
	return func(o options) options {
		o.cookieURL = v
		return o
	}
}

func UserAgent(v string) Option {
	return func(o options) options {
		o.userAgent = v
		return o
	}
}

func Timeout(d time.Duration) Option {
	return func(o options) options {
		o.timeout = d
		return o
	}
}

func RateLimiter(l *rate.Limiter) Option {
	return func(o options) options {
		o.rateLimiter = l
		return o
	}
}

func CrumbTTL(d time.Duration) Option {
	return func(o options) options {
		if d > 0 {
			o.crumbTTL = d
		}
		return o
	}
}

// DividendRange is the chart range the dividend history covers, e.g. "5y".
func DividendRange(v string) Option {
	return func(o options) options {
		if v != "" {
			o.dividendRange = v
		}
		return o
	}
}

// Browser renders HTML pages with headless Chrome instead of plain HTTP.
func Browser(v bool) Option {
	return func(o options) options {
		o.browser = v
		return o
	}
}

func BrowserTimeout(d time.Duration) Option {
	return func(o options) options {
		o.browserTimeout = d
		return o
	}
}

func Log(v logger.Logger) Option {
	return func(o options) options {
		o.logger = v
		return o
	}
}

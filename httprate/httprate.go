package httprate

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// RLClient waits on Ratelimiter before every request.
type RLClient struct {
	Client      *http.Client
	Ratelimiter *rate.Limiter
	UserAgent   string
}

func NewRLClient(
	timeout time.Duration,
	limiter *rate.Limiter,
	jar http.CookieJar,
) *RLClient {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &RLClient{
		Client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		Ratelimiter: limiter,
		UserAgent:   DefaultUserAgent,
	}
}

func (c *RLClient) Do(req *http.Request) (*http.Response, error) {
	if c.Ratelimiter != nil {
		err := c.Ratelimiter.Wait(req.Context())
		if err != nil {
			return nil, err
		}
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

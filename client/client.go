// Package client implements the HTTP collaborator for the AGP audit reports
// site: fetching the listing page and the linked report files.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	baseURL     = "https://agp.gov.pk"
	listingPath = "/AuditReports"

	// Be polite to the archive: it is a small government site.
	limitRate = 5

	defaultTimeout = 60 * time.Second
)

// Doer performs HTTP requests.
//
// The standard http.Client implements this interface.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Limiter interface{ Wait(context.Context) error }

func New(opts ...ClientOption) *Client {
	c := &Client{timeout: defaultTimeout}
	return c.applyOptions(opts...)
}

type ClientOption func(c *Client)

func WithHttpClient(client HttpRequestDoer) ClientOption {
	return func(c *Client) { c.client = client }
}

func WithRateLimiter(l Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

type Client struct {
	client  HttpRequestDoer
	limiter Limiter
	ua      string
	timeout time.Duration

	baseUrl string
}

func (self *Client) applyOptions(opts ...ClientOption) *Client {
	for _, fn := range opts {
		fn(self)
	}

	if self.client == nil {
		self.client = &http.Client{Timeout: self.timeout}
	}

	if self.limiter == nil {
		self.limiter = rate.NewLimiter(limitRate, limitRate)
	}

	return self
}

func (self *Client) WithBaseURL(url string) *Client {
	self.baseUrl = url
	return self
}

func (self *Client) BaseURL() string {
	if self.baseUrl == "" {
		return baseURL
	}
	return self.baseUrl
}

func (self *Client) WithUserAgent(ua string) *Client {
	self.ua = ua
	return self
}

// WithTimeout sets the per-request timeout of the default http.Client. It has
// no effect after an explicit client was injected with WithHttpClient.
func (self *Client) WithTimeout(timeout time.Duration) *Client {
	self.timeout = timeout
	if c, ok := self.client.(*http.Client); ok {
		c.Timeout = timeout
	}
	return self
}

func (self *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create new GET request for %q: %w", url, err)
	}
	req.Header.Add("User-Agent", self.ua)

	if err := self.limitRate(ctx); err != nil {
		return nil, fmt.Errorf("rate limit GET %s: %w", url, err)
	}

	resp, err := self.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	return resp, nil
}

func (self *Client) limitRate(ctx context.Context) error {
	if self.limiter != nil {
		if err := self.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait: %w", err)
		}
	}
	return nil
}

// Listing fetches the audit reports listing page and returns its markup,
// decoded from the server-declared encoding (UTF-8 by default).
func (self *Client) Listing(ctx context.Context) (string, error) {
	url, err := url.JoinPath(self.BaseURL(), listingPath)
	if err != nil {
		return "", fmt.Errorf("join listing path: %w", err)
	}

	resp, err := self.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode > maxExpectedStatusCode {
		return "", fmt.Errorf("GET %s: %w", url, newUnexpectedStatusError(resp))
	}

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("detect encoding of GET %s: %w", url, err)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read body from GET %s: %w", url, err)
	}
	return string(body), nil
}

// GetFile fetches a report file. href may be relative, in which case it is
// resolved against the base origin. Callers own closing the response body.
func (self *Client) GetFile(ctx context.Context, href string,
) (*http.Response, error) {
	fileUrl, err := self.resolveURL(href)
	if err != nil {
		return nil, err
	}

	resp, err := self.Get(ctx, fileUrl)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode > maxExpectedStatusCode {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w", fileUrl,
			newUnexpectedStatusError(resp))
	}
	return resp, nil
}

func (self *Client) resolveURL(href string) (string, error) {
	base, err := url.Parse(self.BaseURL())
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", self.BaseURL(), err)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse download url %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

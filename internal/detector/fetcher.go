package detector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nao1215/trackerscope/internal/model"
)

// Fetcher defaults.
const (
	// DefaultFetchTimeout bounds one page fetch including retries.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxBodySize limits the response body read to 5MB, enough
	// for any real HTML document while preventing memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent identifies trackerscope in HTTP requests.
	DefaultUserAgent = "trackerscope/1.0 (+https://github.com/nao1215/trackerscope)"

	// defaultRetryMax is how many times a failed fetch is retried.
	// Transient network errors are common enough that zero retries
	// produces noisy results, but a page that fails three times is down.
	defaultRetryMax = 2
)

// Page is one fetched page: the raw material for tracker detection.
type Page struct {
	// URL is the URL the page was actually served from, after any
	// HTTPS upgrade and redirects.
	URL string

	// RequestedURL is the URL as given by the caller.
	RequestedURL string

	// StatusCode is the HTTP response status code.
	StatusCode int

	// ContentType is the response MIME type.
	ContentType string

	// Body is the response body, truncated to the configured limit.
	Body []byte

	// Certificate is the display info of the served TLS certificate.
	// Nil for plain-HTTP responses.
	Certificate *model.CertInfo

	// HTTPSUpgraded is true if the caller asked for HTTP and the fetch
	// succeeded over HTTPS instead.
	HTTPSUpgraded bool
}

// Fetcher retrieves pages for detection.
//
// Design decision: We use retryablehttp rather than a bare http.Client
// because page fetches ride over the open internet where transient
// failures are routine, and the library's backoff handles them without
// hand-rolled retry loops.
type Fetcher struct {
	client      *retryablehttp.Client
	userAgent   string
	maxBodySize int64

	// upgradeHTTPS enables the https-first behavior for http:// URLs,
	// mirroring the browser's upgrade feature the dashboard reports on.
	upgradeHTTPS bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.HTTPClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize limits how many response bytes are read.
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithHTTPSUpgrade enables or disables trying HTTPS first for
// plain-HTTP URLs. Enabled by default.
func WithHTTPSUpgrade(enabled bool) FetcherOption {
	return func(f *Fetcher) {
		f.upgradeHTTPS = enabled
	}
}

// NewFetcher creates a Fetcher with sensible defaults.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = defaultRetryMax
	client.Logger = nil // fetch logging happens at the pipeline level
	client.HTTPClient.Timeout = DefaultFetchTimeout

	f := &Fetcher{
		client:       client,
		userAgent:    DefaultUserAgent,
		maxBodySize:  DefaultMaxBodySize,
		upgradeHTTPS: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the page at rawURL. A URL without a scheme is treated
// as https. For http URLs with upgrades enabled, the https variant is
// tried first and the plain request is only made if the upgrade fails.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(normalizeScheme(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", rawURL, err)
	}

	if u.Scheme == "http" && f.upgradeHTTPS {
		upgraded := *u
		upgraded.Scheme = "https"
		if page, err := f.fetchOne(ctx, upgraded.String()); err == nil {
			page.RequestedURL = rawURL
			page.HTTPSUpgraded = true
			return page, nil
		}
		// Upgrade failed; fall through to the URL as requested.
	}

	page, err := f.fetchOne(ctx, u.String())
	if err != nil {
		return nil, err
	}
	page.RequestedURL = rawURL
	return page, nil
}

// fetchOne performs a single GET and builds the Page.
func (f *Fetcher) fetchOne(ctx context.Context, pageURL string) (*Page, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Body close error is not actionable

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	page := &Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType(resp),
		Body:        body,
	}
	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		page.Certificate = model.NewCertInfo(resp.TLS.PeerCertificates[0])
	}
	return page, nil
}

// normalizeScheme prepends https:// to a bare host URL.
func normalizeScheme(rawURL string) string {
	if strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "https://" + rawURL
}

// contentType extracts the MIME type without parameters.
func contentType(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	return strings.TrimSpace(ct)
}

package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/httputil"
	"github.com/ato/corvoid/pkg/observability"
	"github.com/ato/corvoid/pkg/pom"
)

const (
	// DefaultURL is Maven Central.
	DefaultURL = "https://repo1.maven.org/maven2"

	// DefaultTimeout bounds connecting and waiting for response headers.
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "corvoid"
)

// Options configures a [Client]. The zero value is usable.
type Options struct {
	HTTPClient *http.Client // overrides Timeout when set
	Timeout    time.Duration
	Attempts   int           // total tries per download; 0 or 1 disables retrying
	RetryDelay time.Duration // initial backoff, see [httputil.Policy]
	UserAgent  string
	Logger     *log.Logger
}

// Client downloads files from a Maven-layout HTTP repository.
// It is safe for concurrent use.
type Client struct {
	base      string
	http      *http.Client
	retry     httputil.Policy
	userAgent string
	logger    *log.Logger
}

// New returns a client for the repository rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = timeout
		transport.TLSHandshakeTimeout = timeout
		hc = &http.Client{Transport: transport}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		base:      strings.TrimSuffix(baseURL, "/"),
		http:      hc,
		retry:     httputil.Policy{Attempts: opts.Attempts, Delay: opts.RetryDelay},
		userAgent: ua,
		logger:    logger,
	}, nil
}

// BaseURL returns the repository root without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// ArtifactURL returns the download URL of an artifact file.
func (c *Client) ArtifactURL(coord pom.Coord, version, classifier, typ string) string {
	return c.base + "/" + ArtifactPath(coord, version, classifier, typ)
}

// MetadataURL returns the URL of an artifact's version listing.
func (c *Client) MetadataURL(coord pom.Coord) string {
	return c.base + "/" + MetadataPath(coord)
}

// Download streams the body of rawURL into w and returns the number of bytes
// written. A 404 surfaces as [ErrNotFound]; transport failures and other
// statuses as [ErrNetwork]. Failed attempts are retried per [Options] only
// while nothing has been written to w.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	var total int64
	err := c.retry.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			c.logger.Debug("retrying download", "url", rawURL, "attempt", attempt)
		}
		n, err := c.get(ctx, rawURL, w)
		total += n
		if err != nil && total > 0 {
			return permanent(err)
		}
		return err
	})
	return total, err
}

// Fetch returns the whole body of rawURL. It is meant for small documents
// such as POMs and metadata.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.Download(ctx, rawURL, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Client) get(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{URL: rawURL, Code: resp.StatusCode}
		if serr.Temporary() {
			return 0, httputil.Retryable(serr)
		}
		return 0, serr
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		return n, httputil.Retryable(fmt.Errorf("%w: read %s: %v", ErrNetwork, rawURL, err))
	}
	return n, nil
}

// permanent strips the retry marker from err.
func permanent(err error) error {
	if re, ok := err.(*httputil.RetryableError); ok {
		return re.Err
	}
	return err
}

// Package storefront talks to the storefront's account pages: it fetches the
// paginated order listing and the per-order detail pages and parses them.
package storefront

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"orderharvest/internal/components/assert"
	"orderharvest/internal/components/telemetry"
	"orderharvest/internal/orders"
	"orderharvest/lib/restyutil"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch_listing = "client.fetch-listing"
	report_client_fetch_detail  = "client.fetch-detail"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Options struct {
	// BaseURL restricts redirects to its host when set.
	BaseURL string
	// SessionCookie is sent verbatim as the Cookie header.
	SessionCookie string
	UserAgent     string
	// Timeout defaults to 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond of 0 means requests are not limited.
	RequestsPerSecond float64
	CloudflareBypass  bool
	Vocabulary        Vocabulary
	// DumpDir receives a transcript of every response when set.
	DumpDir string
}

type Client struct {
	http  *resty.Client
	vocab Vocabulary
	tel   telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Vocabulary.Locale)

	tel = telemetry.NewScopedAPI("storefront", tel)

	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)

	if opts.BaseURL != "" {
		parsedBaseUrl, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, err
		}
		httpClient.SetBaseURL(opts.BaseURL)
		httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	}
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient.SetHeader("user-agent", userAgent)
	if opts.SessionCookie != "" {
		httpClient.SetHeader("cookie", opts.SessionCookie)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	httpClient.SetTimeout(timeout)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)

	if opts.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
		restyutil.Dump(httpClient, output)
	}

	return &Client{
		http:  httpClient,
		vocab: opts.Vocabulary,
		tel:   tel,
	}, nil
}

// get fetches ref and returns its body, any status outside of 2xx is a
// *orders.TransportError and an empty body is a *orders.EmptyResponseError.
func (c *Client) get(ctx context.Context, ref *url.URL) ([]byte, error) {
	endpoint := ref.String()

	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, &orders.TransportError{Ref: endpoint, Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, &orders.TransportError{Status: res.StatusCode(), Ref: endpoint}
	}
	if len(res.Body()) == 0 {
		return nil, &orders.EmptyResponseError{Ref: endpoint}
	}
	return res.Body(), nil
}

// FetchListing fetches and parses one page of the order listing.
func (c *Client) FetchListing(ctx context.Context, ref *url.URL) (orders.ListingPage, error) {
	assert.NotNil(ref)
	c.tel.ReportDebug(report_client_fetch_listing, ref.String())

	body, err := c.get(ctx, ref)
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_listing,
			fmt.Errorf("fetch: %w", err),
			ref.String(),
		)
		return orders.ListingPage{}, err
	}

	page, skipped, err := ParseListing(bytes.NewBuffer(body), ref)
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_listing,
			fmt.Errorf("parse: %w", err),
			ref.String(),
		)
		return orders.ListingPage{}, err
	}
	if skipped > 0 {
		c.tel.ReportWarning(
			report_client_fetch_listing,
			fmt.Errorf("skipped %d rows without an order number", skipped),
			ref.String(),
		)
	}
	if len(page.Rows) == 0 {
		c.tel.ReportWarning(
			report_client_fetch_listing,
			fmt.Errorf("no order rows found"),
			ref.String(),
		)
	}
	return page, nil
}

// FetchDetail fetches and parses the page of a single order. Failures are
// only reported as warnings, whether they matter is up to the caller.
func (c *Client) FetchDetail(ctx context.Context, ref *url.URL) (orders.Detail, error) {
	assert.NotNil(ref)
	c.tel.ReportDebug(report_client_fetch_detail, ref.String())

	body, err := c.get(ctx, ref)
	if err != nil {
		c.tel.ReportWarning(
			report_client_fetch_detail,
			fmt.Errorf("fetch: %w", err),
			ref.String(),
		)
		return orders.Detail{}, err
	}

	detail, err := ParseDetail(bytes.NewBuffer(body), c.vocab)
	if err != nil {
		c.tel.ReportWarning(
			report_client_fetch_detail,
			fmt.Errorf("parse: %w", err),
			ref.String(),
		)
		return orders.Detail{}, err
	}
	return detail, nil
}

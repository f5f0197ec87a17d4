// Package scraper builds the http clients used to read public pages.
//
// scraping methods here are read-only and stateless, each one follows the
// same structure:
// 1. make the request (rate limited, cookies kept between requests).
// 2. make assertions on response validity. (expected status, expected body)
// 3. transform the body into an output structure, usually through goquery
// selectors into slices of structs.
package scraper

import (
	"context"
	"fmt"
	"footstats/lib/restyutil"
	"footstats/lib/telemetry"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	UserAgent string
	Timeout   time.Duration
	// 0 disables rate limiting
	RequestsPerMinute float64
	// if set, every http message is dumped into this directory
	DumpDir    string
	TracerName string
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout == 0 {
		o.Timeout = time.Second * 30
	}
	if o.TracerName == "" {
		o.TracerName = "footstats.lib.scraper/http"
	}
	return o
}

func NewClient(opts ClientOptions) (*resty.Client, error) {
	opts = opts.withDefaults()

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)

	if opts.RequestsPerMinute > 0 {
		// burst of 1 spaces requests evenly, nothing is ever dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerMinute/60), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, opts.TracerName)

	if opts.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return nil, err
		}
		restyutil.InstrumentClient(client, output)
	}

	return client, nil
}

// StatusError is returned for responses outside of 2xx.
type StatusError struct {
	Url    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.Url, e.Status)
}

// Get fetches `url` and returns the body of a 2xx response.
func Get(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	res, err := client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if res.IsError() || res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, &StatusError{Url: url, Status: res.StatusCode()}
	}
	return res.Body(), nil
}

// Package imdb drives imdb.com's user-data export pipeline: it lists
// the exports visible to an authenticated session, enqueues missing
// ones, polls until they are ready and downloads the result.
//
// exports are produced out-of-band on imdb's side, so everything here
// is a snapshot of remote state, nothing is cached between calls.
package imdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"imdbdata/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseUrl    = "https://www.imdb.com"
	defaultGraphqlUrl = "https://api.graphql.imdb.com/"

	exportsPath   = "/exports/"
	watchlistPath = "/list/watchlist"
	ratingsPath   = "/list/ratings"

	sessionCookieName = "session-id"
	sessionHeaderName = "x-amzn-sessionid"
)

// every legitimate download link lives in this bucket, anything else
// is treated as a protocol violation and never followed.
const trustedResultPrefix = "https://userdataexport-dataexportsbucket-prod.s3.amazonaws.com"

var defaultPageHeaders = map[string]string{
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
}

var defaultGraphqlHeaders = map[string]string{
	"User-Agent":           "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Accept":               "application/graphql+json, application/json",
	"Accept-Language":      "en-US,en;q=0.5",
	"content-type":         "application/json",
	"x-imdb-client-name":   "imdb-web-next-localized",
	"x-imdb-user-country":  "US",
	"x-imdb-user-language": "en-US",
}

// ListingStrategy picks which of the two interchangeable export
// listing sources a client uses. imdb has been observed to require
// either depending on deployment, so the choice is configuration,
// never run-time sniffing.
type ListingStrategy string

const (
	// ListingFromPage scrapes the embedded JSON payload of the
	// /exports/ page.
	ListingFromPage ListingStrategy = "page"
	// ListingFromGraphql issues the persisted YourExports query
	// against the structured API.
	ListingFromGraphql ListingStrategy = "graphql"
)

type ClientOptions struct {
	// BaseUrl and GraphqlUrl default to the public imdb endpoints.
	BaseUrl    string
	GraphqlUrl string
	// Cookies seeds the session, name -> value.
	Cookies map[string]string
	// Listing defaults to ListingFromPage.
	Listing ListingStrategy
}

type Client struct {
	baseUrl    *url.URL
	graphqlUrl *url.URL

	page     *resty.Client
	graphql  *resty.Client
	download *resty.Client

	jar     http.CookieJar
	listing ListingSource

	// poll knobs, overridden in tests
	wait               func(ctx context.Context, d time.Duration) error
	now                func() time.Time
	pollUnit           time.Duration
	maxEnqueueAttempts int
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = defaultBaseUrl
	}
	if opts.GraphqlUrl == "" {
		opts.GraphqlUrl = defaultGraphqlUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	graphqlUrl, err := url.Parse(opts.GraphqlUrl)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	seedCookies(jar, opts.Cookies, baseUrl, graphqlUrl)

	page := resty.New()
	page.SetBaseURL(opts.BaseUrl)
	page.SetCookieJar(jar)
	page.SetHeaders(defaultPageHeaders)
	page.SetTimeout(time.Second * 30)
	page.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(page.GetClient().Transport)
	restyutil.InstrumentClient(page, tracer, restyInstrumentOutput)

	graphql := resty.New()
	graphql.SetBaseURL(opts.GraphqlUrl)
	graphql.SetCookieJar(jar)
	graphql.SetHeaders(defaultGraphqlHeaders)
	graphql.SetTimeout(time.Second * 30)
	restyutil.InstrumentClient(graphql, tracer, restyInstrumentOutput)

	// result urls are pre-signed, sending session cookies along would
	// only leak them to the bucket host
	download := resty.New()
	download.SetHeaders(defaultPageHeaders)
	download.SetTimeout(time.Minute * 2)
	restyutil.InstrumentClient(download, tracer, restyInstrumentOutput)

	c := &Client{
		baseUrl:            baseUrl,
		graphqlUrl:         graphqlUrl,
		page:               page,
		graphql:            graphql,
		download:           download,
		jar:                jar,
		wait:               sleepContext,
		now:                time.Now,
		pollUnit:           time.Second,
		maxEnqueueAttempts: 3,
	}

	switch opts.Listing {
	case ListingFromGraphql:
		c.listing = graphqlListing{c}
	case ListingFromPage, "":
		c.listing = pageListing{c}
	default:
		return nil, fmt.Errorf("unknown listing strategy: %q", opts.Listing)
	}

	return c, nil
}

// the same host-only cookies are planted at both origins so the jar
// serves them to page scrapes and graphql calls alike.
func seedCookies(jar http.CookieJar, cookies map[string]string, urls ...*url.URL) {
	if len(cookies) == 0 {
		return
	}
	var list []*http.Cookie
	for name, value := range cookies {
		list = append(list, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	for _, u := range urls {
		jar.SetCookies(u, list)
	}
}

// Cookies snapshots the session cookie bag as it stands now, for
// diffing against the loaded snapshot and conditional persistence.
func (c *Client) Cookies() map[string]string {
	out := map[string]string{}
	for _, u := range []*url.URL{c.graphqlUrl, c.baseUrl} {
		for _, cookie := range c.jar.Cookies(u) {
			out[cookie.Name] = cookie.Value
		}
	}
	return out
}

func (c *Client) sessionId() string {
	for _, cookie := range c.jar.Cookies(c.baseUrl) {
		if cookie.Name == sessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

// the only suspension point of the polling loop, cancellable so a
// caller can abort a long poll before maxWait runs out.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

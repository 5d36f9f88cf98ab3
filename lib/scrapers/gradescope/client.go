// Package gradescope is an unofficial client for the Gradescope web
// portal. Gradescope has no public API; everything here works by
// scraping server-rendered pages and replaying the portal's own form
// submissions, so correctness is defined relative to the observed
// markup. Markup changes on the portal side are interface changes, not
// bugs in this package.
package gradescope

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/sanjith314/gradescope-api/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/gradescope")

const DefaultBaseUrl = "https://www.gradescope.com"

// DefaultFetchDelay is the pause between consecutive submission-page
// fetches. The portal rate limits bursty clients; this stays under
// that limit without negotiating anything.
const DefaultFetchDelay = 100 * time.Millisecond

// Client is an authenticated Gradescope session: a cookie jar bound to
// one identity. It tracks no expiry of its own; once the portal drops
// the session, operations start failing with ErrNotAuthenticated.
// A Client is not safe for concurrent use, the cookie jar is shared
// mutable state.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	// Location is the institution's timezone; the portal renders
	// dates timezone-naive, so it cannot be recovered from markup.
	Location *time.Location

	fetchDelay time.Duration
}

type ClientOptions struct {
	// BaseUrl overrides the portal origin, mainly for tests.
	BaseUrl string
	// Timezone is the institution's timezone. Defaults to the
	// process-local zone.
	Timezone *time.Location
	// FetchDelay is the pause between per-submission fetches.
	// Zero means DefaultFetchDelay, negative disables the delay.
	FetchDelay time.Duration
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	rawUrl := opts.BaseUrl
	if rawUrl == "" {
		rawUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(rawUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(rawUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/gradescope/http")

	loc := opts.Timezone
	if loc == nil {
		loc = time.Local
	}
	delay := opts.FetchDelay
	if delay == 0 {
		delay = DefaultFetchDelay
	} else if delay < 0 {
		delay = 0
	}

	c := &Client{
		BaseUrl:    baseUrl,
		Http:       client,
		Location:   loc,
		fetchDelay: delay,
	}
	return c, nil
}

// LoginEmailPassword performs the login handshake: it scrapes the
// hidden authenticity token off the home page (which also seeds the
// session cookie), posts the credentials, then checks the account page
// since the portal answers bad credentials with a perfectly ordinary
// 200. Returns ErrAuthenticationFailed when the credentials were
// rejected.
func (c *Client) LoginEmailPassword(ctx context.Context, email, password string) error {
	ctx, span := tracer.Start(ctx, "client:LoginEmailPassword")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch home page")
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse home page html")
		return err
	}

	token := doc.Find(`input[name="authenticity_token"]`).AttrOr("value", "")
	if token == "" {
		span.SetStatus(codes.Error, "failed to find authenticity token")
		return fmt.Errorf("could not find authenticity token on home page")
	}

	_, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"utf8":                     "✓",
			"authenticity_token":       token,
			"session[email]":           email,
			"session[password]":        password,
			"session[remember_me]":     "0",
			"session[remember_me_sso]": "0",
			"commit":                   "Log In",
		}).
		Post("/login")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}

	// the login response itself carries no usable signal, probe a
	// protected page instead
	_, err = c.fetchAuthorized(ctx, "/account")
	if errors.Is(err, ErrNotAuthenticated) {
		span.SetStatus(codes.Error, ErrAuthenticationFailed.Error())
		return ErrAuthenticationFailed
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to verify login")
		return err
	}

	return nil
}

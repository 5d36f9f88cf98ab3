package gradescope

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Markers the portal embeds in otherwise-200 pages. These strings are
// part of the scraping contract; if Gradescope rewords them this gate
// goes blind.
const (
	notLoggedInMarker   = "You must be logged in to access this page."
	notAuthorizedMarker = "You are not authorized to access this page."
	notFoundMarker      = "Page not found"
)

// fetchAuthorized wraps an authenticated GET with the authorization
// gate: the known failure pages are converted into their typed errors
// before any caller gets to parse markup. Every read and token harvest
// in this package goes through here.
func (c *Client) fetchAuthorized(ctx context.Context, path string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:fetchAuthorized")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return nil, err
	}

	if res.StatusCode() == http.StatusNotFound {
		span.SetStatus(codes.Error, ErrNotFound.Error())
		return nil, ErrNotFound
	}

	body := string(res.Body())
	switch {
	case strings.Contains(body, notLoggedInMarker):
		span.SetStatus(codes.Error, ErrNotAuthenticated.Error())
		return nil, ErrNotAuthenticated
	case strings.Contains(body, notAuthorizedMarker):
		span.SetStatus(codes.Error, ErrNotAuthorized.Error())
		return nil, ErrNotAuthorized
	case strings.Contains(body, notFoundMarker):
		span.SetStatus(codes.Error, ErrNotFound.Error())
		return nil, ErrNotFound
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}
	return doc, nil
}

package gradescope

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sanjith314/gradescope-api/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GetAssignmentSubmissions maps every submission id visible on the
// grading-review page to that submission's artifact download links.
//
// This costs one authorized GET per submission, spaced by the client's
// fetch delay, so it is slow on purpose: the portal's behavior under
// parallel requests from one session is unverified and tripping its
// abuse protection logs the account out.
func (c *Client) GetAssignmentSubmissions(
	ctx context.Context,
	courseId, assignmentId string,
) (map[string][]string, error) {
	ctx, span := tracer.Start(ctx, "client:GetAssignmentSubmissions")
	defer span.End()
	span.SetAttributes(
		attribute.String("course_id", courseId),
		attribute.String("assignment_id", assignmentId),
	)

	if courseId == "" || assignmentId == "" {
		span.SetStatus(codes.Error, ErrInvalidParameters.Error())
		return nil, fmt.Errorf("%w: course id and assignment id", ErrInvalidParameters)
	}

	doc, err := c.fetchAuthorized(ctx, fmt.Sprintf(
		"/courses/%s/assignments/%s/review_grades", courseId, assignmentId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch review grades page")
		return nil, err
	}

	var submissionIds []string
	doc.Find("td.table--primaryLink a").Each(func(_ int, a *goquery.Selection) {
		id := htmlutil.LastPathSegment(a.AttrOr("href", ""))
		if id != "" {
			submissionIds = append(submissionIds, id)
		}
	})
	span.SetAttributes(attribute.Int("submissions", len(submissionIds)))

	links := map[string][]string{}
	for _, submissionId := range submissionIds {
		artifacts, err := c.submissionFiles(ctx, courseId, assignmentId, submissionId)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch submission files")
			return nil, err
		}
		links[submissionId] = artifacts

		if err := c.pause(ctx); err != nil {
			return nil, err
		}
	}

	return links, nil
}

// GetAssignmentSubmission resolves one student's most recent submission
// on the review page by email and returns its artifact links. Returns
// ErrSubmissionNotFound when no row matches the email or the matching
// row has no submission link.
func (c *Client) GetAssignmentSubmission(
	ctx context.Context,
	studentEmail, courseId, assignmentId string,
) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:GetAssignmentSubmission")
	defer span.End()
	span.SetAttributes(
		attribute.String("course_id", courseId),
		attribute.String("assignment_id", assignmentId),
	)

	if studentEmail == "" || courseId == "" || assignmentId == "" {
		span.SetStatus(codes.Error, ErrInvalidParameters.Error())
		return nil, fmt.Errorf("%w: student email, course id and assignment id", ErrInvalidParameters)
	}

	doc, err := c.fetchAuthorized(ctx, fmt.Sprintf(
		"/courses/%s/assignments/%s/review_grades", courseId, assignmentId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch review grades page")
		return nil, err
	}

	// the email cell sits right after the cell linking the submission;
	// a row without that link is a student who never submitted
	submissionId := ""
	doc.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if !strings.Contains(htmlutil.CleanText(td.Text()), studentEmail) {
			return true
		}
		submissionId = htmlutil.LastPathSegment(
			td.Prev().Find("a").First().AttrOr("href", ""))
		return false
	})
	if submissionId == "" {
		span.SetStatus(codes.Error, ErrSubmissionNotFound.Error())
		return nil, ErrSubmissionNotFound
	}

	return c.submissionFiles(ctx, courseId, assignmentId, submissionId)
}

// submissionFiles scrapes one submission page for its downloadable
// artifacts, which the portal serves off S3. Image-only submissions
// render inline without download links and are unsupported.
func (c *Client) submissionFiles(
	ctx context.Context,
	courseId, assignmentId, submissionId string,
) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:submissionFiles")
	defer span.End()
	span.SetAttributes(attribute.String("submission_id", submissionId))

	doc, err := c.fetchAuthorized(ctx, fmt.Sprintf(
		"/courses/%s/assignments/%s/submissions/%s", courseId, assignmentId, submissionId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch submission page")
		return nil, err
	}

	links := []string{}
	for _, anchor := range htmlutil.GetAnchors(doc.Find(`a[href*="amazonaws.com"]`), c.BaseUrl) {
		links = append(links, anchor.Href)
	}

	if len(links) == 0 && doc.Find("img.submissionImage").Length() > 0 {
		span.SetStatus(codes.Error, ErrUnsupportedSubmissionType.Error())
		return nil, ErrUnsupportedSubmissionType
	}

	return links, nil
}

func (c *Client) pause(ctx context.Context) error {
	if c.fetchDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.fetchDelay):
		return nil
	}
}

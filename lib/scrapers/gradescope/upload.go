package gradescope

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// UploadFile is one file of a submission upload.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// UploadSubmission submits files to the student-facing submission
// endpoint, following the same token-harvest-then-multipart-POST
// pattern as the date update (the token comes off the course page
// here). On success it returns the submission link the portal
// redirected to. When the server declines the upload (assignment
// closed, late window over) the link is empty and the error nil;
// an empty file list is ErrInvalidParameters and makes no request.
func (c *Client) UploadSubmission(
	ctx context.Context,
	courseId, assignmentId string,
	files []UploadFile,
	leaderboardName string,
) (string, error) {
	ctx, span := tracer.Start(ctx, "client:UploadSubmission")
	defer span.End()
	span.SetAttributes(
		attribute.String("course_id", courseId),
		attribute.String("assignment_id", assignmentId),
		attribute.Int("files", len(files)),
	)

	if courseId == "" || assignmentId == "" {
		span.SetStatus(codes.Error, ErrInvalidParameters.Error())
		return "", fmt.Errorf("%w: course id and assignment id", ErrInvalidParameters)
	}
	if len(files) == 0 {
		span.SetStatus(codes.Error, ErrInvalidParameters.Error())
		return "", fmt.Errorf("%w: no files to upload", ErrInvalidParameters)
	}

	token, err := c.harvestToken(ctx, "/courses/"+courseId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to harvest authenticity token")
		return "", err
	}

	fields := map[string]string{
		"utf8":               "✓",
		"authenticity_token": token,
		"submission[method]": "upload",
	}
	if leaderboardName != "" {
		fields["submission[leaderboard_name]"] = leaderboardName
	}

	req := c.Http.R().
		SetContext(ctx).
		SetMultipartFormData(fields)
	for _, f := range files {
		req.SetMultipartField("submission[files][]", f.Name, "application/octet-stream", f.Reader)
	}

	res, err := req.Post(fmt.Sprintf("/courses/%s/assignments/%s/submissions", courseId, assignmentId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post submission")
		return "", err
	}

	// a declined upload bounces back to the course page instead of
	// redirecting to the new submission
	if res.StatusCode() != http.StatusOK || res.RawResponse == nil || res.RawResponse.Request == nil {
		span.SetStatus(codes.Error, "upload declined by the portal")
		return "", nil
	}
	link := res.RawResponse.Request.URL.String()
	if !strings.Contains(link, "/submissions/") {
		span.SetStatus(codes.Error, "upload declined by the portal")
		return "", nil
	}

	return link, nil
}

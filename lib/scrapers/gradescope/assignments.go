package gradescope

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sanjith314/gradescope-api/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Assignment dates are timezone-naive on the portal; they are parsed
// in (and must be supplied in) the institution's local zone. A zero
// time means the date was absent or unparsable.
type Assignment struct {
	AssignmentId     string    `json:"assignment_id"`
	Name             string    `json:"name"`
	ReleaseDate      time.Time `json:"release_date"`
	DueDate          time.Time `json:"due_date"`
	LateDueDate      time.Time `json:"late_due_date"`
	SubmissionStatus string    `json:"submissions_status"`
	Grade            string    `json:"grade"`
	MaxGrade         string    `json:"max_grade"`
}

// the portal's datetime attribute format, e.g.
// "2024-05-01 23:59:00 -0700". The offset is rendered but reflects the
// portal's server zone, not the institution's, so only the naive
// prefix is trusted.
const portalTimeLayout = "2006-01-02 15:04:05"

// the format the edit form expects dates back in
const formTimeLayout = "2006-01-02T15:04"

func parsePortalTime(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if len(s) >= len(portalTimeLayout) {
		t, err := time.ParseInLocation(portalTimeLayout, s[:len(portalTimeLayout)], loc)
		if err == nil {
			return t
		}
	}
	t, err := time.ParseInLocation(formTimeLayout, s, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// GetAssignments scrapes a course page for its assignment table. The
// portal renders a different table for instructors than for students,
// so the instructor extraction is attempted first and the student
// extraction is the fallback. The result is never nil.
func (c *Client) GetAssignments(ctx context.Context, courseId string) ([]Assignment, error) {
	ctx, span := tracer.Start(ctx, "client:GetAssignments")
	defer span.End()
	span.SetAttributes(attribute.String("course_id", courseId))

	if courseId == "" {
		span.SetStatus(codes.Error, ErrInvalidParameters.Error())
		return nil, fmt.Errorf("%w: course id", ErrInvalidParameters)
	}

	doc, err := c.fetchAuthorized(ctx, "/courses/"+courseId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course page")
		return nil, err
	}

	assignments := parseInstructorAssignments(doc, c.Location)
	if len(assignments) == 0 {
		assignments = parseStudentAssignments(doc, c.Location)
	}

	span.SetAttributes(attribute.Int("assignments", len(assignments)))
	return assignments, nil
}

// parseInstructorAssignments reads the instructor-view table. Each row
// links the assignment name to its edit page, which is where the
// assignment id comes from.
func parseInstructorAssignments(doc *goquery.Document, loc *time.Location) []Assignment {
	assignments := []Assignment{}

	doc.Find("table#assignments-instructor-table tbody tr").Each(func(_ int, row *goquery.Selection) {
		anchor := row.Find("td a").First()
		name := htmlutil.CleanText(anchor.Text())
		if name == "" {
			return
		}

		assignment := Assignment{
			AssignmentId:     assignmentIdFromHref(anchor.AttrOr("href", "")),
			Name:             name,
			SubmissionStatus: htmlutil.CleanText(row.Find("td.submissionStatus").Text()),
		}
		fillDates(&assignment, row, loc)

		assignments = append(assignments, assignment)
	})

	return assignments
}

// parseStudentAssignments reads the student-view table: the name sits
// in a th (linked only once the student has a submission to land on),
// the grade in a "x / y" score cell.
func parseStudentAssignments(doc *goquery.Document, loc *time.Location) []Assignment {
	assignments := []Assignment{}

	doc.Find("table#assignments-student-table tbody tr").Each(func(_ int, row *goquery.Selection) {
		nameCell := row.Find("th").First()
		name := htmlutil.CleanText(nameCell.Text())
		if name == "" {
			return
		}

		assignment := Assignment{
			AssignmentId:     assignmentIdFromHref(nameCell.Find("a").AttrOr("href", "")),
			Name:             name,
			SubmissionStatus: htmlutil.CleanText(row.Find("div.submissionStatus--text").Text()),
		}
		assignment.Grade, assignment.MaxGrade = splitScore(
			row.Find("div.submissionStatus--score").Text())
		fillDates(&assignment, row, loc)

		assignments = append(assignments, assignment)
	})

	return assignments
}

// assignmentIdFromHref pulls the assignment id out of any assignment
// url. Instructor rows link the assignment itself while student rows
// link the student's submission under it, so the id is the segment
// after "assignments" rather than the trailing one.
func assignmentIdFromHref(href string) string {
	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(link.Path, "/"), "/")
	for i, segment := range segments {
		if segment == "assignments" && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}

func fillDates(assignment *Assignment, row *goquery.Selection, loc *time.Location) {
	assignment.ReleaseDate = parsePortalTime(
		row.Find("time.submissionTimeChart--releaseDate").First().AttrOr("datetime", ""), loc)

	dueDates := row.Find("time.submissionTimeChart--dueDate")
	assignment.DueDate = parsePortalTime(dueDates.First().AttrOr("datetime", ""), loc)
	if dueDates.Length() > 1 {
		assignment.LateDueDate = parsePortalTime(dueDates.Eq(1).AttrOr("datetime", ""), loc)
	}
}

// splitScore splits the "85.0 / 100.0" score cell.
func splitScore(s string) (grade, maxGrade string) {
	parts := strings.SplitN(htmlutil.CleanText(s), "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// UpdateAssignmentDates rewrites an assignment's release/due/late-due
// dates by replaying the edit form: the edit page is fetched for a
// fresh authenticity token (tokens are page-scoped and single-use
// across pages), then a multipart form with the portal's exact field
// names is posted to the assignment url. Rails only sees GET/POST, so
// the PATCH rides in the _method override field. A zero time clears
// the corresponding date; a non-zero lateDue also flips the
// allow-late-submissions flag on. Returns true iff the portal answered
// 200; the response body is not inspected.
func (c *Client) UpdateAssignmentDates(
	ctx context.Context,
	courseId, assignmentId string,
	release, due, lateDue time.Time,
) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:UpdateAssignmentDates")
	defer span.End()
	span.SetAttributes(
		attribute.String("course_id", courseId),
		attribute.String("assignment_id", assignmentId),
	)

	if courseId == "" || assignmentId == "" {
		span.SetStatus(codes.Error, ErrInvalidParameters.Error())
		return false, fmt.Errorf("%w: course id and assignment id", ErrInvalidParameters)
	}

	assignmentPath := fmt.Sprintf("/courses/%s/assignments/%s", courseId, assignmentId)
	editPath := assignmentPath + "/edit"

	token, err := c.harvestToken(ctx, editPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to harvest authenticity token")
		return false, err
	}

	allowLate := "0"
	if !lateDue.IsZero() {
		allowLate = "1"
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"utf8":                               "✓",
			"_method":                            "patch",
			"authenticity_token":                 token,
			"assignment[release_date_string]":    formatFormTime(release),
			"assignment[due_date_string]":        formatFormTime(due),
			"assignment[allow_late_submissions]": allowLate,
			"assignment[hard_due_date_string]":   formatFormTime(lateDue),
			"commit":                             "Save",
		}).
		SetHeader("Referer", c.BaseUrl.JoinPath(editPath).String()).
		Post(assignmentPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post assignment form")
		return false, err
	}

	return res.StatusCode() == http.StatusOK, nil
}

func formatFormTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(formTimeLayout)
}

// harvestToken fetches a page through the authorization gate and pulls
// its hidden authenticity token.
func (c *Client) harvestToken(ctx context.Context, path string) (string, error) {
	doc, err := c.fetchAuthorized(ctx, path)
	if err != nil {
		return "", err
	}
	token := doc.Find(`input[name="authenticity_token"]`).AttrOr("value", "")
	if token == "" {
		return "", fmt.Errorf("could not find authenticity token on %s", path)
	}
	return token, nil
}

package gradescope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sanjith314/gradescope-api/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Member struct {
	FullName       string `json:"full_name"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	StudentId      string `json:"sid"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	MemberId       string `json:"id"`
	NumSubmissions int    `json:"num_submissions"`
	Sections       string `json:"sections"`
	CourseId       string `json:"course_id"`
}

// GetCourseMembers scrapes the course roster. A course id that doesn't
// resolve (or that the session may not see) yields (nil, nil) rather
// than an error; callers key off the nil slice. An empty course id is
// ErrInvalidParameters before any request is made.
func (c *Client) GetCourseMembers(ctx context.Context, courseId string) ([]Member, error) {
	ctx, span := tracer.Start(ctx, "client:GetCourseMembers")
	defer span.End()
	span.SetAttributes(attribute.String("course_id", courseId))

	if courseId == "" {
		span.SetStatus(codes.Error, ErrInvalidParameters.Error())
		return nil, fmt.Errorf("%w: course id", ErrInvalidParameters)
	}

	doc, err := c.fetchAuthorized(ctx, fmt.Sprintf("/courses/%s/memberships", courseId))
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotAuthorized) {
		// an invalid course id is reported as a null roster, not an
		// error; see DESIGN.md for why this one operation differs
		span.SetStatus(codes.Error, err.Error())
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch memberships page")
		return nil, err
	}

	members := parseRoster(doc, courseId)
	span.SetAttributes(attribute.Int("members", len(members)))
	return members, nil
}

// rosterEntry is the JSON blob the roster edit buttons carry in their
// data-cm attribute.
type rosterEntry struct {
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Sid       string `json:"sid"`
	Email     string `json:"email"`
}

// parseRoster emits exactly one Member per table row. Rows missing an
// email (or the whole edit blob) still produce a record with empty
// fields; consumers count rows through this invariant.
func parseRoster(doc *goquery.Document, courseId string) []Member {
	members := []Member{}

	doc.Find("table.js-rosterTable tbody tr").Each(func(_ int, row *goquery.Selection) {
		member := Member{CourseId: courseId}

		nameBtn := row.Find("button.js-rosterName").First()
		member.FullName = htmlutil.CleanText(nameBtn.Text())
		member.MemberId = membershipId(nameBtn.AttrOr("data-url", ""))

		var entry rosterEntry
		blob := row.Find("button.js-rosterEditButton").First().AttrOr("data-cm", "")
		if blob != "" && json.Unmarshal([]byte(blob), &entry) == nil {
			if entry.FullName != "" {
				member.FullName = entry.FullName
			}
			member.FirstName = entry.FirstName
			member.LastName = entry.LastName
			member.StudentId = entry.Sid
			member.Email = entry.Email
		}

		member.Role = htmlutil.CleanText(
			row.Find("select.js-rosterRoleSelect option[selected]").First().Text())
		member.NumSubmissions = leadingInt(row.Find("td.rosterCell--submissions").Text())
		member.Sections = htmlutil.CleanText(row.Find("td.rosterCell--sections").Text())

		members = append(members, member)
	})

	return members
}

// membershipId pulls the membership id out of an edit url like
// "/courses/123/memberships/98765/edit".
func membershipId(href string) string {
	return htmlutil.LastPathSegment(strings.TrimSuffix(href, "/edit"))
}

package gradescope

import (
	"context"
	"strconv"
	"strings"

	"github.com/sanjith314/gradescope-api/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Course struct {
	Name               string `json:"name"`
	FullName           string `json:"full_name"`
	Semester           string `json:"semester"`
	Year               string `json:"year"`
	NumGradesPublished int    `json:"num_grades_published"`
	NumAssignments     int    `json:"num_assignments"`
}

// CourseList holds the user's courses split by role. Both maps are
// always non-nil; a role the account doesn't have yields an empty map.
type CourseList struct {
	Instructor map[string]Course `json:"instructor"`
	Student    map[string]Course `json:"student"`
}

// GetCourses scrapes the account page. The page comes in two layouts:
// a single "Your Courses" section when the account has exactly one
// role, or "Instructor Courses" / "Student Courses" sections when it
// has both. Records are parsed fresh on every call, nothing is cached.
func (c *Client) GetCourses(ctx context.Context) (CourseList, error) {
	ctx, span := tracer.Start(ctx, "client:GetCourses")
	defer span.End()

	doc, err := c.fetchAuthorized(ctx, "/account")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch account page")
		return CourseList{}, err
	}

	courses := CourseList{
		Instructor: map[string]Course{},
		Student:    map[string]Course{},
	}

	single, isInstructor := parseCourseSection(doc, "Your Courses")
	if len(single) > 0 {
		if isInstructor {
			courses.Instructor = single
		} else {
			courses.Student = single
		}
		return courses, nil
	}

	instructor, _ := parseCourseSection(doc, "Instructor Courses")
	if len(instructor) > 0 {
		courses.Instructor = instructor
	}
	student, _ := parseCourseSection(doc, "Student Courses")
	if len(student) > 0 {
		courses.Student = student
	}

	span.SetAttributes(
		attribute.Int("instructor_courses", len(courses.Instructor)),
		attribute.Int("student_courses", len(courses.Student)),
	)
	return courses, nil
}

// parseCourseSection extracts the course boxes under the page heading
// with the given title. The second return reports whether the section
// renders instructor boxes, which carry a "grades published" count
// that student boxes lack.
func parseCourseSection(doc *goquery.Document, heading string) (map[string]Course, bool) {
	courses := map[string]Course{}
	isInstructor := false

	doc.Find("h1.pageHeading").Each(func(_ int, h *goquery.Selection) {
		if htmlutil.CleanText(h.Text()) != heading {
			return
		}

		// everything until the next heading belongs to this section
		h.NextUntil("h1.pageHeading").Each(func(_ int, section *goquery.Selection) {
			section.Find("a.courseBox").Each(func(_ int, box *goquery.Selection) {
				id := htmlutil.LastPathSegment(box.AttrOr("href", ""))
				if id == "" {
					return
				}

				course := parseCourseBox(box)
				if box.Find("div.courseBox--gradesPublished").Length() > 0 {
					isInstructor = true
				}
				courses[id] = course
			})
		})
	})

	return courses, isInstructor
}

func parseCourseBox(box *goquery.Selection) Course {
	semester, year := splitTerm(nearestTerm(box))
	return Course{
		Name:               htmlutil.CleanText(box.Find("h3.courseBox--shortname").Text()),
		FullName:           htmlutil.CleanText(box.Find("div.courseBox--name").Text()),
		Semester:           semester,
		Year:               year,
		NumAssignments:     leadingInt(box.Find("div.courseBox--assignments").Text()),
		NumGradesPublished: leadingInt(box.Find("div.courseBox--gradesPublished").Text()),
	}
}

// nearestTerm walks back from a course box to the term label the
// account page renders above each group of boxes, e.g. "Fall 2023".
func nearestTerm(box *goquery.Selection) string {
	group := box.Closest("div.courseList--coursesForTerm")
	if group.Length() == 0 {
		return ""
	}
	return htmlutil.CleanText(group.PrevAllFiltered("div.courseList--term").First().Text())
}

func splitTerm(term string) (semester, year string) {
	fields := strings.Fields(term)
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) == 1 {
		return fields[0], ""
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

// leadingInt parses the number off counters like "5 assignments" or
// "3 grades published". Returns 0 when there is none.
func leadingInt(s string) int {
	fields := strings.Fields(htmlutil.CleanText(s))
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}

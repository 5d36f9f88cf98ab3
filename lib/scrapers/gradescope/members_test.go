package gradescope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetCourseMembers(t *testing.T) {
	mux, server := newTestPortal(t)
	client := newTestClient(t, server.URL)
	servePage(mux, "/courses/753413/memberships", membershipsPage)

	members, err := client.GetCourseMembers(context.Background(), "753413")
	require.NoError(t, err)
	require.Len(t, members, 3)

	jane := members[0]
	require.Equal(t, Member{
		FullName:       "Jane Doe",
		FirstName:      "Jane",
		LastName:       "Doe",
		StudentId:      "jd2024",
		Email:          "jane@university.edu",
		Role:           "Student",
		MemberId:       "11111",
		NumSubmissions: 3,
		Sections:       "Section A",
		CourseId:       "753413",
	}, jane)

	require.Equal(t, "Instructor", members[1].Role)
	require.Equal(t, "22222", members[1].MemberId)

	// a row without an email is still one record, not a dropped row
	require.Equal(t, "", members[2].Email)
	require.Equal(t, "753413", members[2].CourseId)
}

func TestGetCourseMembersInvalidCourse(t *testing.T) {
	_, server := newTestPortal(t)
	client := newTestClient(t, server.URL)

	// nothing registered, the portal 404s
	members, err := client.GetCourseMembers(context.Background(), "1111111")
	require.NoError(t, err)
	require.Nil(t, members)
}

func TestGetCourseMembersEmptyCourseId(t *testing.T) {
	_, server := newTestPortal(t)
	client := newTestClient(t, server.URL)

	_, err := client.GetCourseMembers(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidParameters)
}

package gradescope

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func serveReviewGrades(t *testing.T) *Client {
	mux, server := newTestPortal(t)
	client := newTestClient(t, server.URL)

	servePage(mux, "/courses/753413/assignments/4455030/review_grades", reviewGradesPage)
	servePage(mux, "/courses/753413/assignments/4455030/submissions/201", submissionPage)
	servePage(mux, "/courses/753413/assignments/4455030/submissions/202", submissionPage)

	return client
}

func TestGetAssignmentSubmissions(t *testing.T) {
	client := serveReviewGrades(t)

	links, err := client.GetAssignmentSubmissions(context.Background(), "753413", "4455030")
	require.NoError(t, err)

	// one key per submission visible on the review page
	require.Len(t, links, 2)
	for _, id := range []string{"201", "202"} {
		require.Equal(t, []string{
			"https://production-gradescope-uploads.s3-us-west-2.amazonaws.com/uploads/text_file.txt?signature=abc",
			"https://production-gradescope-uploads.s3-us-west-2.amazonaws.com/uploads/report.pdf?signature=def",
		}, links[id])
	}
}

func TestGetAssignmentSubmissionsSpacing(t *testing.T) {
	mux, server := newTestPortal(t)

	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:    server.URL,
		FetchDelay: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	servePage(mux, "/courses/753413/assignments/4455030/review_grades", reviewGradesPage)
	servePage(mux, "/courses/753413/assignments/4455030/submissions/201", submissionPage)
	servePage(mux, "/courses/753413/assignments/4455030/submissions/202", submissionPage)

	start := time.Now()
	_, err = client.GetAssignmentSubmissions(context.Background(), "753413", "4455030")
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestGetAssignmentSubmission(t *testing.T) {
	client := serveReviewGrades(t)

	links, err := client.GetAssignmentSubmission(
		context.Background(), "john@university.edu", "753413", "4455030")
	require.NoError(t, err)
	require.Len(t, links, 2)
}

func TestGetAssignmentSubmissionNoMatch(t *testing.T) {
	client := serveReviewGrades(t)

	_, err := client.GetAssignmentSubmission(
		context.Background(), "nobody@university.edu", "753413", "4455030")
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestGetAssignmentSubmissionNeverSubmitted(t *testing.T) {
	client := serveReviewGrades(t)

	// the row exists but has no submission link in front of it
	_, err := client.GetAssignmentSubmission(
		context.Background(), "slacker@university.edu", "753413", "4455030")
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestImageOnlySubmission(t *testing.T) {
	mux, server := newTestPortal(t)
	client := newTestClient(t, server.URL)

	servePage(mux, "/courses/753413/assignments/4455030/review_grades", reviewGradesPage)
	servePage(mux, "/courses/753413/assignments/4455030/submissions/201", submissionImagePage)

	_, err := client.GetAssignmentSubmissions(context.Background(), "753413", "4455030")
	require.ErrorIs(t, err, ErrUnsupportedSubmissionType)
}

func TestGetAssignmentSubmissionsEmptyIds(t *testing.T) {
	_, server := newTestPortal(t)
	client := newTestClient(t, server.URL)

	_, err := client.GetAssignmentSubmissions(context.Background(), "753413", "")
	require.ErrorIs(t, err, ErrInvalidParameters)
}

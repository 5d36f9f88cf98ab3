package gradescope

import (
	"context"
	_ "embed"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sanjith314/gradescope-api/lib/telemetry"
)

var (
	//go:embed testdata/account_student.html
	accountStudentPage []byte
	//go:embed testdata/account_instructor.html
	accountInstructorPage []byte
	//go:embed testdata/account_dual.html
	accountDualPage []byte
	//go:embed testdata/course_instructor.html
	courseInstructorPage []byte
	//go:embed testdata/course_student.html
	courseStudentPage []byte
	//go:embed testdata/memberships.html
	membershipsPage []byte
	//go:embed testdata/review_grades.html
	reviewGradesPage []byte
	//go:embed testdata/submission.html
	submissionPage []byte
	//go:embed testdata/submission_image.html
	submissionImagePage []byte
)

const notLoggedInPage = `<!DOCTYPE html><html><body>
<div class="alert">You must be logged in to access this page.</div>
</body></html>`

const notAuthorizedPage = `<!DOCTYPE html><html><body>
<div class="alert">You are not authorized to access this page.</div>
</body></html>`

func newTestPortal(t *testing.T) (*http.ServeMux, *httptest.Server) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return mux, server
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/gradescope")
	t.Cleanup(cleanup)

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:    baseUrl,
		Timezone:   loc,
		FetchDelay: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func servePage(mux *http.ServeMux, path string, body []byte) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write(body)
	})
}

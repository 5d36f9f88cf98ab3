package gradescope

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const coursePage = `<!DOCTYPE html><html><body>
<form>
	<input type="hidden" name="authenticity_token" value="upload-tok-789">
</form>
</body></html>`

func TestUploadSubmission(t *testing.T) {
	mux, server := newTestPortal(t)
	client := newTestClient(t, server.URL)

	servePage(mux, "GET /courses/753413", []byte(coursePage))

	var form map[string][]string
	var fileNames []string
	mux.HandleFunc("POST /courses/753413/assignments/4455030/submissions", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form = r.MultipartForm.Value
		for _, f := range r.MultipartForm.File["submission[files][]"] {
			fileNames = append(fileNames, f.Filename)
		}
		http.Redirect(w, r, "/courses/753413/assignments/4455030/submissions/99999", http.StatusFound)
	})
	servePage(mux, "GET /courses/753413/assignments/4455030/submissions/99999",
		[]byte(`<html><body>Submitted!</body></html>`))

	link, err := client.UploadSubmission(context.Background(), "753413", "4455030",
		[]UploadFile{
			{Name: "main.py", Reader: strings.NewReader("print('hi')")},
			{Name: "notes.txt", Reader: strings.NewReader("hello")},
		}, "")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(link, "/courses/753413/assignments/4455030/submissions/99999"))

	require.Equal(t, "✓", form["utf8"][0])
	require.Equal(t, "upload-tok-789", form["authenticity_token"][0])
	require.Equal(t, "upload", form["submission[method]"][0])
	require.NotContains(t, form, "submission[leaderboard_name]")
	require.Equal(t, []string{"main.py", "notes.txt"}, fileNames)
}

func TestUploadSubmissionLeaderboardName(t *testing.T) {
	mux, server := newTestPortal(t)
	client := newTestClient(t, server.URL)

	servePage(mux, "GET /courses/753413", []byte(coursePage))

	var form map[string][]string
	mux.HandleFunc("POST /courses/753413/assignments/4455030/submissions", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form = r.MultipartForm.Value
		http.Redirect(w, r, "/courses/753413/assignments/4455030/submissions/99999", http.StatusFound)
	})
	servePage(mux, "GET /courses/753413/assignments/4455030/submissions/99999",
		[]byte(`<html><body>Submitted!</body></html>`))

	_, err := client.UploadSubmission(context.Background(), "753413", "4455030",
		[]UploadFile{{Name: "main.py", Reader: strings.NewReader("print('hi')")}},
		"team rocket")
	require.NoError(t, err)
	require.Equal(t, "team rocket", form["submission[leaderboard_name]"][0])
}

func TestUploadSubmissionDeclined(t *testing.T) {
	mux, server := newTestPortal(t)
	client := newTestClient(t, server.URL)

	servePage(mux, "GET /courses/753413", []byte(coursePage))
	// assignment closed, the portal bounces back without a redirect
	// to a new submission
	servePage(mux, "POST /courses/753413/assignments/4455030/submissions", []byte(coursePage))

	link, err := client.UploadSubmission(context.Background(), "753413", "4455030",
		[]UploadFile{{Name: "main.py", Reader: strings.NewReader("print('hi')")}}, "")
	require.NoError(t, err)
	require.Equal(t, "", link)
}

func TestUploadSubmissionNoFiles(t *testing.T) {
	mux, server := newTestPortal(t)
	client := newTestClient(t, server.URL)

	var requests atomic.Int64
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.NotFound(w, r)
	})

	link, err := client.UploadSubmission(context.Background(), "753413", "4455030", nil, "")
	require.ErrorIs(t, err, ErrInvalidParameters)
	require.Equal(t, "", link)
	require.Equal(t, int64(0), requests.Load(), "no network request should be made")
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sanjith314/gradescope-api/lib/scrapers/gradescope"

	"github.com/stretchr/testify/require"
)

const stubHomePage = `<html><body>
<form action="/login"><input type="hidden" name="authenticity_token" value="tok"></form>
</body></html>`

const stubAccountPage = `<html><body>
<h1 class="pageHeading">Your Courses</h1>
<div class="courseList">
	<div class="courseList--term">Fall 2024</div>
	<div class="courseList--coursesForTerm">
		<a class="courseBox" href="/courses/971386">
			<h3 class="courseBox--shortname">CS101</h3>
			<div class="courseBox--name">Intro to CS</div>
			<div class="courseBox--assignments">2 assignments</div>
		</a>
	</div>
</div>
</body></html>`

const stubNotLoggedInPage = `<html><body>
You must be logged in to access this page.
</body></html>`

// newStubPortal stands in for Gradescope itself so the full
// login -> token -> authenticated request chain runs end to end.
func newStubPortal(t *testing.T) *httptest.Server {
	loggedIn := false

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(stubHomePage))
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		loggedIn = r.PostFormValue("session[password]") == "hunter2"
		http.Redirect(w, r, "/account", http.StatusFound)
	})
	mux.HandleFunc("/account", func(w http.ResponseWriter, r *http.Request) {
		if loggedIn {
			w.Write([]byte(stubAccountPage))
			return
		}
		w.Write([]byte(stubNotLoggedInPage))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T) (*httptest.Server, *SessionStore) {
	portal := newStubPortal(t)

	store := NewSessionStore(time.Minute)
	service := NewService(store, func(ctx context.Context) (*gradescope.Client, error) {
		return gradescope.NewClient(ctx, gradescope.ClientOptions{
			BaseUrl:    portal.URL,
			FetchDelay: -1,
		})
	})

	server := httptest.NewServer(service.Router())
	t.Cleanup(server.Close)
	return server, store
}

func login(t *testing.T, server *httptest.Server, password string) (*http.Response, string) {
	res, err := http.PostForm(server.URL+"/token", url.Values{
		"username": {"jane@university.edu"},
		"password": {password},
	})
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })

	if res.StatusCode != http.StatusOK {
		return res, ""
	}
	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "bearer", body.TokenType)
	return res, body.AccessToken
}

func authedGet(t *testing.T, server *httptest.Server, token, path string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestLoginAndGetCourses(t *testing.T) {
	server, _ := newTestService(t)

	res, token := login(t, server, "hunter2")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotEmpty(t, token)

	coursesRes := authedGet(t, server, token, "/courses")
	require.Equal(t, http.StatusOK, coursesRes.StatusCode)

	var courses gradescope.CourseList
	require.NoError(t, json.NewDecoder(coursesRes.Body).Decode(&courses))
	require.Empty(t, courses.Instructor)
	require.Contains(t, courses.Student, "971386")
	require.Equal(t, "CS101", courses.Student["971386"].Name)
}

func TestLoginInvalidCredentials(t *testing.T) {
	server, store := newTestService(t)

	res, _ := login(t, server, "wrong")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, 0, store.Len(), "no session should be stored on failed login")
}

func TestMissingBearerToken(t *testing.T) {
	server, _ := newTestService(t)

	res, err := http.Get(server.URL + "/courses")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestInvalidBearerToken(t *testing.T) {
	server, _ := newTestService(t)

	res := authedGet(t, server, "bogus", "/courses")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	server, store := newTestService(t)

	res, token := login(t, server, "hunter2")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, 1, store.Len())

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/token", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	delRes, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delRes.Body.Close()
	require.Equal(t, http.StatusNoContent, delRes.StatusCode)
	require.Equal(t, 0, store.Len())

	res2 := authedGet(t, server, token, "/courses")
	require.Equal(t, http.StatusUnauthorized, res2.StatusCode)
}

func TestRootReportsLoggedIn(t *testing.T) {
	server, _ := newTestService(t)

	res, token := login(t, server, "hunter2")
	require.Equal(t, http.StatusOK, res.StatusCode)

	rootRes := authedGet(t, server, token, "/")
	require.Equal(t, http.StatusOK, rootRes.StatusCode)

	var msg string
	require.NoError(t, json.NewDecoder(rootRes.Body).Decode(&msg))
	require.True(t, strings.Contains(msg, "logged in"))
}

// Package api is the thin routing layer over the scraping engine: it
// maps engine operations onto HTTP+JSON endpoints and issues opaque
// session tokens in place of portal cookie jars. All the engineering
// weight lives in the engine; handlers here only translate shapes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sanjith314/gradescope-api/lib/scrapers/gradescope"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ClientFactory builds a fresh engine client for one login. Swapped
// out in tests to point the engine at a stub portal.
type ClientFactory func(ctx context.Context) (*gradescope.Client, error)

type Service struct {
	store     *SessionStore
	newClient ClientFactory
}

func NewService(store *SessionStore, newClient ClientFactory) *Service {
	return &Service{
		store:     store,
		newClient: newClient,
	}
}

func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Post("/token", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleRoot)
		r.Delete("/token", s.handleLogout)
		r.Get("/courses", s.handleGetCourses)
		r.Get("/courses/{courseID}/members", s.handleGetCourseMembers)
		r.Get("/courses/{courseID}/assignments", s.handleGetAssignments)
		r.Patch("/courses/{courseID}/assignments/{assignmentID}", s.handleUpdateDates)
		r.Get("/courses/{courseID}/assignments/{assignmentID}/submissions", s.handleGetSubmissions)
		r.Post("/courses/{courseID}/assignments/{assignmentID}/submissions", s.handleUpload)
		r.Get("/courses/{courseID}/assignments/{assignmentID}/submissions/{email}", s.handleGetSubmission)
	})

	return r
}

type ctxKey int

const sessionKey ctxKey = 0

func (s *Service) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		client := s.store.Get(token)
		if client == nil {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionClient(r *http.Request) *gradescope.Client {
	client, _ := r.Context().Value(sessionKey).(*gradescope.Client)
	return client
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJson(w, status, map[string]string{"detail": detail})
}

// writeEngineError maps the engine's sentinels onto status codes;
// anything unrecognized is a transport failure upstream of us.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gradescope.ErrInvalidParameters):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gradescope.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, gradescope.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, gradescope.ErrNotFound),
		errors.Is(err, gradescope.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, gradescope.ErrUnsupportedSubmissionType):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	client, err := s.newClient(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build portal client", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to build portal client")
		return
	}

	err = client.LoginEmailPassword(r.Context(), email, password)
	if errors.Is(err, gradescope.ErrAuthenticationFailed) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}

	token := s.store.Create(client)
	writeJson(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, "Successfully logged in")
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.store.Invalidate(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGetCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := sessionClient(r).GetCourses(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, courses)
}

func (s *Service) handleGetCourseMembers(w http.ResponseWriter, r *http.Request) {
	members, err := sessionClient(r).GetCourseMembers(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	// a nil roster means the course id didn't resolve
	if members == nil {
		writeJson(w, http.StatusOK, nil)
		return
	}
	writeJson(w, http.StatusOK, members)
}

func (s *Service) handleGetAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := sessionClient(r).GetAssignments(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, assignments)
}

type updateDatesRequest struct {
	ReleaseDate string `json:"release_date"`
	DueDate     string `json:"due_date"`
	LateDueDate string `json:"late_due_date"`
}

func (s *Service) handleUpdateDates(w http.ResponseWriter, r *http.Request) {
	var req updateDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	client := sessionClient(r)
	release, err := parseDateField(req.ReleaseDate, client.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid release_date")
		return
	}
	due, err := parseDateField(req.DueDate, client.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid due_date")
		return
	}
	lateDue, err := parseDateField(req.LateDueDate, client.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid late_due_date")
		return
	}

	ok, err := client.UpdateAssignmentDates(
		r.Context(),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"),
		release, due, lateDue,
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]bool{"updated": ok})
}

// dates come over the wire in the same naive format the portal uses
func parseDateField(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", s, loc)
}

func (s *Service) handleGetSubmissions(w http.ResponseWriter, r *http.Request) {
	links, err := sessionClient(r).GetAssignmentSubmissions(
		r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, links)
}

func (s *Service) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	links, err := sessionClient(r).GetAssignmentSubmission(
		r.Context(),
		chi.URLParam(r, "email"),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, links)
}

func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	var files []gradescope.UploadFile
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			f, err := header.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable file part")
				return
			}
			defer f.Close()
			files = append(files, gradescope.UploadFile{Name: header.Filename, Reader: f})
		}
	}

	link, err := sessionClient(r).UploadSubmission(
		r.Context(),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"),
		files,
		r.FormValue("leaderboard_name"),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if link == "" {
		// the portal declined the upload, not an error on our side
		writeJson(w, http.StatusOK, map[string]any{"link": nil})
		return
	}
	writeJson(w, http.StatusOK, map[string]string{"link": link})
}

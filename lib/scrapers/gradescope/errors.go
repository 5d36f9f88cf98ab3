package gradescope

import "errors"

// Failures the portal expresses through page content rather than
// status codes. Transport failures are returned as-is from the
// underlying HTTP client.
var (
	// ErrAuthenticationFailed means the login credentials were rejected.
	ErrAuthenticationFailed = errors.New("invalid email or password")
	// ErrNotAuthenticated means the session no longer carries valid
	// cookies for a protected page.
	ErrNotAuthenticated = errors.New("you must be logged in to access this page")
	// ErrNotAuthorized means the session is authenticated but lacks
	// permission, e.g. a student fetching instructor-only data.
	ErrNotAuthorized = errors.New("you are not authorized to access this page")
	// ErrNotFound means a course, assignment or submission id did not
	// resolve to a page.
	ErrNotFound = errors.New("page not found")
	// ErrInvalidParameters means the caller supplied an empty or
	// missing required identifier. No request is made in this case.
	ErrInvalidParameters = errors.New("one or more invalid parameters")
	// ErrUnsupportedSubmissionType marks image-only submissions, which
	// have no downloadable artifacts to scrape.
	ErrUnsupportedSubmissionType = errors.New("image-only submissions are not supported")
	// ErrSubmissionNotFound means no submission matched the given
	// student on the review page.
	ErrSubmissionNotFound = errors.New("no submission found")
)

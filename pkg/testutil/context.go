package testutil

import (
	"net/http"
	"time"

	"custodia/pkg/requestcontext"
)

// WithController authenticates the request as a data controller, simulating
// what the auth middleware does for a controller token.
func WithController(req *http.Request, controllerID string) *http.Request {
	return req.WithContext(requestcontext.WithControllerID(req.Context(), controllerID))
}

// WithSubject authenticates the request as a data subject.
func WithSubject(req *http.Request, subjectID string) *http.Request {
	return req.WithContext(requestcontext.WithSubjectID(req.Context(), subjectID))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

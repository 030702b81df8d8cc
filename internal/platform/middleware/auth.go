package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"custodia/pkg/requestcontext"
)

// TokenValidator validates bearer tokens presented by controllers and
// subjects. Implemented by internal/jwttoken.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims is the subset of claims the middleware propagates.
type TokenClaims struct {
	ControllerID string
	SubjectID    string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// RequireAuth validates the Authorization header and injects the caller's
// identifiers into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if claims.ControllerID != "" {
				ctx = requestcontext.WithControllerID(ctx, claims.ControllerID)
			}
			if claims.SubjectID != "" {
				ctx = requestcontext.WithSubjectID(ctx, claims.SubjectID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

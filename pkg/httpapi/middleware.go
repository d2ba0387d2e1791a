package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5/request"

	"digital.vasic.lessons/pkg/apperr"
	"digital.vasic.lessons/pkg/auth"
)

type ctxKey int

const (
	ctxUserKey ctxKey = iota
	ctxTokenKey
)

// authenticate resolves the bearer token, when present, into a user
// stored in the request context. Requests without a token pass
// through anonymously; a bad token is rejected.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := request.BearerExtractor{}.ExtractToken(r)
		if errors.Is(err, request.ErrNoTokenInRequest) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			s.handleError(w, r, apperr.Unauthorized(err.Error()))
			return
		}

		user, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey, user)
		ctx = context.WithValue(ctx, ctxTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser rejects anonymous requests.
func requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()) == nil {
			writeErrorJSON(w, "authentication required", http.StatusUnauthorized, apperr.CodeUnauthorized)
			return
		}
		next(w, r)
	}
}

func userFromContext(ctx context.Context) *auth.User {
	u, _ := ctx.Value(ctxUserKey).(*auth.User)
	return u
}

func userIDFromContext(ctx context.Context) string {
	if u := userFromContext(ctx); u != nil {
		return u.ID
	}
	return ""
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(ctxTokenKey).(string)
	return t
}

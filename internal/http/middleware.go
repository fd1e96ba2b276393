package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mrirakib04/sks-web/internal/domain"
)

type ctxKey int

const userKey ctxKey = iota

// RequestIDMiddleware echoes the id assigned by middleware.RequestID, which
// must run first, in the X-Request-ID response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
		}
		next.ServeHTTP(w, r)
	})
}

// UserSource reports the logged-in user, or an error when nobody is.
type UserSource interface {
	User() (domain.User, error)
}

// RequireUser rejects requests without a live session and puts the user in
// the request context.
func RequireUser(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := users.User()
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "login required")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff is RequireUser for admins and moderators only.
func RequireStaff(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireUser(users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !userFromContext(r.Context()).IsStaff() {
				respondError(w, http.StatusForbidden, "permission_denied", "staff only")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func userFromContext(ctx context.Context) domain.User {
	u, _ := ctx.Value(userKey).(domain.User)
	return u
}

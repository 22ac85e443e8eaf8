package middleware

import (
	"context"
	"net/http"

	"github.com/taskwell/taskwell-api/internal/api/shared"
)

// UserIDHeader is the request header carrying the caller's identity.
// Authentication itself happens upstream (gateway or sidecar); this service
// trusts the header it is handed.
const UserIDHeader = "X-User-ID"

// IdentityMiddleware resolves the caller's user ID from the X-User-ID
// header and stores it in the request context.
type IdentityMiddleware struct {
	// devUserID is the identity assumed for requests without the header.
	// When empty, such requests are rejected with 401.
	devUserID string
}

// NewIdentityMiddleware creates an IdentityMiddleware with the given
// fallback identity for header-less requests.
func NewIdentityMiddleware(devUserID string) *IdentityMiddleware {
	return &IdentityMiddleware{devUserID: devUserID}
}

// Resolve extracts the user ID and adds it to the request context under
// shared.UserIDContextKey.
func (m *IdentityMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			userID = m.devUserID
		}
		if userID == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

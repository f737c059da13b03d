// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"folio/internal/models"
	"folio/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserKey is the context key for the authenticated user.
	UserKey contextKey = "user"
)

// UserFinder loads the account named by a verified token.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireAuth verifies the session token, loads the user and stores it in
// the request context. Missing, invalid and expired tokens, as well as
// tokens for deleted users, all get the same 401.
func RequireAuth(sessions *session.Manager, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessions.Verify(session.TokenFromRequest(r))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			id, _ := claims.UserID()
			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				slog.Error("load session user", "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if user == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// UserFromCtx extracts the authenticated user from the request context.
// Returns nil if the request did not pass through RequireAuth.
func UserFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(UserKey).(*models.User)
	return u
}

/*
Package handler provides the HTTP handlers and routing for the cardparty server.

This file contains the session middleware that resolves a request's session token
to the connected User and records the activity. Every authenticated request counts
as proof of life, which is also how an outstanding liveness ping gets answered.
*/
package handler

import (
	"context"
	"net/http"

	"cardparty/internal/app/game"
	"cardparty/internal/pkg/auth/jwt"
	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/resp"
)

type sessionContextKey string

// contextUserKey is the context key holding the resolved *game.User.
const contextUserKey sessionContextKey = "session_user"

// RequireSession rejects requests without a valid session token or whose session no
// longer maps to a connected user, and marks user activity on every request that
// passes.
func RequireSession(deps *AppDeps) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := jwt.GetPayloadFromContext(r)
			if payload == nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			u := deps.Users.GetBySession(payload.SessionID)
			if u == nil || !u.IsValid() {
				resp.RespondError(w, r, errs.NewError(errs.ErrSessionNotFound))
				return
			}

			u.UserDidSomething()

			ctx := context.WithValue(r.Context(), contextUserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionUser returns the connected user resolved by RequireSession.
func sessionUser(r *http.Request) *game.User {
	u, _ := r.Context().Value(contextUserKey).(*game.User)
	return u
}

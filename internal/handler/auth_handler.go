/*
Package handler provides the HTTP handlers and routing for the cardparty server.

This file handles session establishment and teardown: nickname validation, session
id issuance, registration in the connected-user registry, and the session token the
client presents on every later request.
*/
package handler

import (
	"net/http"
	"regexp"
	"slices"

	"cardparty/internal/app/game"
	"cardparty/internal/pkg/auth/jwt"
	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/limiter"
	"cardparty/internal/pkg/logx"
	"cardparty/internal/pkg/randx"
	"cardparty/internal/pkg/req"
	"cardparty/internal/pkg/resp"
)

// nicknameRegex bounds display names: letters first, then letters, digits or
// underscores, 3 to 30 characters total.
var nicknameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{2,29}$`)

type registerInput struct {
	Nickname string `json:"nickname"`
}

// HandleRegister establishes a session: validates the nickname, creates the User,
// admits it to the registry and returns the signed session token.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input registerInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !nicknameRegex.MatchString(input.Nickname) {
			resp.RespondError(w, r, errs.NewError(errs.ErrNicknameInvalid))
			return
		}

		hostname := limiter.ClientIP(r)
		admin := slices.Contains(deps.Config.AdminAddrs, hostname)
		sessionID := randx.SessionID()

		u := game.NewUser(input.Nickname, hostname, sessionID, admin)
		if customErr := deps.Users.CheckAndAdd(u); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		payload := &jwt.Payload{
			SessionID: sessionID,
			Nickname:  input.Nickname,
			Admin:     admin,
		}

		token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.SessionExpiration)
		if err != nil {
			logx.Error(err, "Failed to sign session token", "nickname", input.Nickname)
			deps.Users.Remove(u)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token":     token,
			"sessionId": sessionID,
			"nickname":  u.Nickname(),
			"admin":     admin,
		})
	}
}

// HandleLogout tears the session down explicitly: the user leaves its game, is
// invalidated and dropped from the registry.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r)

		u.NoLongerValid()
		deps.Users.Remove(u)

		resp.RespondSuccess(w, r, nil)
	}
}

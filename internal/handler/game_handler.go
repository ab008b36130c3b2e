/*
Package handler provides the HTTP handlers and routing for the cardparty server.

This file contains the game lifecycle handlers: create, list, join, spectate,
leave, option updates and chat.
*/
package handler

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"cardparty/internal/app/game"
	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/logx"
	"cardparty/internal/pkg/req"
	"cardparty/internal/pkg/resp"
)

// MaxChatMessageRunes caps a single chat message.
const MaxChatMessageRunes = 500

type createGameInput struct {
	// Options is the raw options payload; absent or malformed content falls back
	// to defaults field by field rather than failing the request.
	Options json.RawMessage `json:"options,omitempty"`
}

// HandleCreateGame creates a game with the requester as host and first player.
func HandleCreateGame(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r)

		var input createGameInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		options := game.DeserializeGameOptions(deps.Prefs, string(input.Options))

		if customErr := validateCardSets(r, deps, options); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		g, customErr := deps.Games.CreateGame(u, options)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, g.Info(true))
	}
}

// validateCardSets checks that every selected card set resolves: local ids against
// the card database, external ids against the object-storage resolver. With neither
// collaborator configured the selection is accepted as-is.
func validateCardSets(r *http.Request, deps *AppDeps, options *game.GameOptions) *errs.CustomError {
	if deps.Cards != nil {
		localIDs := options.LocalCardSetIDs()
		if len(localIDs) > 0 {
			sets, err := deps.Cards.ByIDs(r.Context(), localIDs)
			if err != nil {
				logx.Error(err, "Failed to resolve local card sets")
				return errs.NewError(errs.ErrUnknown)
			}
			if len(sets) != len(localIDs) {
				return errs.NewError(errs.ErrCardSetNotFound)
			}
		}
	}

	if deps.Resolver != nil {
		for _, id := range options.CardSetIDs() {
			if id > 0 {
				continue
			}
			if _, err := deps.Resolver.FetchCardSet(r.Context(), id); err != nil {
				return errs.NewError(errs.ErrCardSetNotFound)
			}
		}
	}

	return nil
}

// HandleListGames returns the public listing of every live game.
func HandleListGames(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{"games": deps.Games.List()})
	}
}

// HandleGetGame returns one game's view; members get the privileged view including
// the password.
func HandleGetGame(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r)

		g := deps.Games.Get(chi.URLParam(r, "id"))
		if g == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrGameNotFound))
			return
		}

		resp.RespondSuccess(w, r, g.Info(g.HasMember(u)))
	}
}

type joinGameInput struct {
	Password string `json:"password,omitempty"`
}

// HandleJoinGame seats the requester as a player.
func HandleJoinGame(deps *AppDeps) http.HandlerFunc {
	return joinHandler(deps, func(g *game.Game, u *game.User) *errs.CustomError {
		return g.AddPlayer(u)
	})
}

// HandleSpectateGame seats the requester as a spectator.
func HandleSpectateGame(deps *AppDeps) http.HandlerFunc {
	return joinHandler(deps, func(g *game.Game, u *game.User) *errs.CustomError {
		return g.AddSpectator(u)
	})
}

// joinHandler factors the shared join path: resolve the game, check the password,
// seat via the given roster operation.
func joinHandler(deps *AppDeps, seat func(*game.Game, *game.User) *errs.CustomError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r)

		g := deps.Games.Get(chi.URLParam(r, "id"))
		if g == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrGameNotFound))
			return
		}

		var input joinGameInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// Admins walk past game passwords, matching their moderation role.
		if pw := g.Options().Password(); pw != "" && input.Password != pw && !u.IsAdmin() {
			resp.RespondError(w, r, errs.NewError(errs.ErrWrongPassword))
			return
		}

		if customErr := seat(g, u); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, g.Info(true))
	}
}

// HandleLeaveGame removes the requester from the game's rosters. Leaving a game the
// user is not in is a no-op success, mirroring the defensive removal semantics.
func HandleLeaveGame(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r)

		g := deps.Games.Get(chi.URLParam(r, "id"))
		if g == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrGameNotFound))
			return
		}

		g.RemovePlayer(u)
		g.RemoveSpectator(u)

		resp.RespondSuccess(w, r, nil)
	}
}

type updateOptionsInput struct {
	Options json.RawMessage `json:"options"`
}

// HandleUpdateGameOptions lets the host (or an admin) change the game's options.
// The new values are propagated into the existing options instance in place.
func HandleUpdateGameOptions(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r)

		g := deps.Games.Get(chi.URLParam(r, "id"))
		if g == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrGameNotFound))
			return
		}

		if g.Host() != u && !u.IsAdmin() {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotGameHost))
			return
		}

		var input updateOptionsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		newOptions := game.DeserializeGameOptions(deps.Prefs, string(input.Options))

		if customErr := validateCardSets(r, deps, newOptions); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		g.UpdateOptions(newOptions)

		resp.RespondSuccess(w, r, g.Info(true))
	}
}

type chatInput struct {
	Message string `json:"message"`
}

// HandleGameChat broadcasts a chat line to the requester's game, applying the
// per-user flood window. A rejected message leaves the user connected.
func HandleGameChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r)

		g := deps.Games.Get(chi.URLParam(r, "id"))
		if g == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrGameNotFound))
			return
		}
		if !g.HasMember(u) {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotInGame))
			return
		}

		msg, customErr := buildChatMessage(w, r, u, map[string]any{"gameId": g.ID()})
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		g.Broadcast(msg)
		resp.RespondSuccess(w, r, nil)
	}
}

// HandleGlobalChat broadcasts a chat line to every connected user, under the same
// flood window as game chat.
func HandleGlobalChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r)

		msg, customErr := buildChatMessage(w, r, u, nil)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		deps.Users.Broadcast(msg, nil)
		resp.RespondSuccess(w, r, nil)
	}
}

// buildChatMessage binds and validates the chat payload, runs the flood check, and
// records the message time only once the message is definitely going out.
func buildChatMessage(w http.ResponseWriter, r *http.Request, u *game.User, extra map[string]any) (game.QueuedMessage, *errs.CustomError) {
	var input chatInput
	if customErr := req.BindJSON(w, r, &input); customErr != nil {
		return game.QueuedMessage{}, customErr
	}

	if input.Message == "" {
		return game.QueuedMessage{}, errs.NewError(errs.ErrInvalidParams)
	}
	if utf8.RuneCountInString(input.Message) > MaxChatMessageRunes {
		return game.QueuedMessage{}, errs.NewError(errs.ErrChatMessageTooLong)
	}

	if customErr := u.CheckChatFlood(); customErr != nil {
		return game.QueuedMessage{}, customErr
	}
	u.RecordMessageTime()

	payload := map[string]any{
		"from":    u.Nickname(),
		"message": input.Message,
	}
	for k, v := range extra {
		payload[k] = v
	}

	return game.NewQueuedMessage(game.TypeChat, payload), nil
}

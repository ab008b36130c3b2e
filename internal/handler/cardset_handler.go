/*
Package handler provides the HTTP handlers and routing for the cardparty server.

This file exposes the card-set catalog: the local sets from the database and, on
demand, the content of an externally sourced set from object storage.
*/
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cardparty/internal/app/cards"
	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/logx"
	"cardparty/internal/pkg/resp"
)

// HandleListCardSets returns the local card-set catalog. Without a database the
// catalog is simply empty.
func HandleListCardSets(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sets := []cards.CardSet{}

		if deps.Cards != nil {
			listed, err := deps.Cards.List(r.Context())
			if err != nil {
				logx.Error(err, "Failed to list card sets")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			if listed != nil {
				sets = listed
			}
		}

		resp.RespondSuccess(w, r, map[string]any{"cardSets": sets})
	}
}

// HandleGetExternalCardSet fetches one externally sourced card set by its
// non-positive id.
func HandleGetExternalCardSet(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Resolver == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrCardSetNotFound))
			return
		}

		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || id > 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		set, err := deps.Resolver.FetchCardSet(r.Context(), id)
		if err != nil {
			logx.Warn("Failed to fetch external card set", "id", id, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrCardSetNotFound))
			return
		}

		resp.RespondSuccess(w, r, set)
	}
}

package handler

import (
	"cardparty/internal/app/cards"
	"cardparty/internal/app/game"
	"cardparty/internal/app/prefs"
	"cardparty/internal/app/storage"
	"cardparty/internal/configs"
)

// AppDeps carries the shared collaborators every handler needs.
type AppDeps struct {
	Config *configs.AppConfig
	Users  *game.Registry
	Games  *game.Manager
	Prefs  *prefs.Preferences

	// Cards resolves local (positive id) card sets; nil when no database is
	// configured.
	Cards *cards.Store

	// Resolver resolves externally sourced (non-positive id) card sets; nil when no
	// bucket is configured.
	Resolver storage.CardSetResolver
}

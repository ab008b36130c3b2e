/*
Package game contains the in-memory presence core of the party-game server.

This file defines the Game struct. A game owns its rosters (players and spectators)
and its GameOptions instance; all membership changes route through it so the roster
and each user's membership back-reference can never be observed disagreeing.
*/
package game

import (
	"sync"

	"github.com/rs/zerolog"

	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/logx"
)

// Events broadcast to a game's members when its presence state changes.
const (
	EventPlayerJoin     = "player_join"
	EventPlayerLeave    = "player_leave"
	EventSpectatorJoin  = "spectator_join"
	EventSpectatorLeave = "spectator_leave"
	EventHostChange     = "host_change"
	EventOptionsChanged = "options_changed"
)

// GameInfo is the listing view of a game.
type GameInfo struct {
	ID          string          `json:"id"`
	Host        string          `json:"host"`
	Players     []string        `json:"players"`
	Spectators  []string        `json:"spectators"`
	HasPassword bool            `json:"hasPassword"`
	Options     GameOptionsView `json:"options"`
}

// Game owns an ordered player roster, a spectator roster and one GameOptions
// instance. mu guards both rosters and the host; the lock order is always game
// before user.
type Game struct {
	id string

	mu         sync.Mutex
	host       *User
	players    []*User
	spectators []*User

	options *GameOptions

	// cleanup tells the manager this game emptied out and should be dropped.
	cleanup chan<- string

	logger zerolog.Logger
}

// NewGame creates a game owned by the given host with the given options. The host is
// not added to the roster here; the manager does that so the add path is uniform.
func NewGame(id string, host *User, options *GameOptions, cleanup chan<- string) *Game {
	return &Game{
		id:      id,
		host:    host,
		options: options,
		cleanup: cleanup,
		logger: logx.Logger().With().
			Str("game_id", id).
			Logger(),
	}
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Options returns the game's owned options instance. The pointer is stable for the
// game's lifetime; Update mutates it in place.
func (g *Game) Options() *GameOptions { return g.options }

// Host returns the current host.
func (g *Game) Host() *User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.host
}

// AddPlayer admits the user to the player roster. It fails when the roster is at the
// options' player limit, when the user is already in this game, or when the user is in
// another game. Roster and back-reference are updated under one lock so no observer
// sees them disagree.
func (g *Game) AddPlayer(u *User) *errs.CustomError {
	g.mu.Lock()
	defer g.mu.Unlock()

	if indexOfUser(g.players, u) >= 0 || indexOfUser(g.spectators, u) >= 0 {
		return errs.NewError(errs.ErrAlreadyInGame)
	}
	if len(g.players) >= g.options.PlayerLimit() {
		return errs.NewError(errs.ErrGameFull)
	}
	if err := u.joinGame(g); err != nil {
		return err
	}

	g.players = append(g.players, u)
	g.broadcastLocked(NewQueuedMessage(TypeGamePlayerEvent, map[string]any{
		"event":    EventPlayerJoin,
		"gameId":   g.id,
		"nickname": u.Nickname(),
	}))

	g.logger.Info().Str("nickname", u.Nickname()).Int("players", len(g.players)).Msg("Player joined game")
	return nil
}

// RemovePlayer drops the user from the player roster. It always succeeds: removing a
// user who was never a member is a no-op, because the eviction path may race ordinary
// leaves and must not care.
func (g *Game) RemovePlayer(u *User) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := indexOfUser(g.players, u)
	if i < 0 {
		return
	}

	g.players = append(g.players[:i], g.players[i+1:]...)
	u.leaveGame(g)

	g.broadcastLocked(NewQueuedMessage(TypeGamePlayerEvent, map[string]any{
		"event":    EventPlayerLeave,
		"gameId":   g.id,
		"nickname": u.Nickname(),
	}))
	g.logger.Info().Str("nickname", u.Nickname()).Int("players", len(g.players)).Msg("Player left game")

	if g.host == u {
		g.electHostLocked()
	}
	g.maybeCleanupLocked()
}

// AddSpectator admits the user to the spectator roster, under the same rules as
// AddPlayer but against the spectator limit.
func (g *Game) AddSpectator(u *User) *errs.CustomError {
	g.mu.Lock()
	defer g.mu.Unlock()

	if indexOfUser(g.players, u) >= 0 || indexOfUser(g.spectators, u) >= 0 {
		return errs.NewError(errs.ErrAlreadyInGame)
	}
	if len(g.spectators) >= g.options.SpectatorLimit() {
		return errs.NewError(errs.ErrSpectatorsFull)
	}
	if err := u.joinGame(g); err != nil {
		return err
	}

	g.spectators = append(g.spectators, u)
	g.broadcastLocked(NewQueuedMessage(TypeGamePlayerEvent, map[string]any{
		"event":    EventSpectatorJoin,
		"gameId":   g.id,
		"nickname": u.Nickname(),
	}))
	return nil
}

// RemoveSpectator drops the user from the spectator roster; a defensive no-op for
// non-members, like RemovePlayer.
func (g *Game) RemoveSpectator(u *User) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := indexOfUser(g.spectators, u)
	if i < 0 {
		return
	}

	g.spectators = append(g.spectators[:i], g.spectators[i+1:]...)
	u.leaveGame(g)

	g.broadcastLocked(NewQueuedMessage(TypeGamePlayerEvent, map[string]any{
		"event":    EventSpectatorLeave,
		"gameId":   g.id,
		"nickname": u.Nickname(),
	}))
	g.maybeCleanupLocked()
}

// HasPlayer reports whether the user occupies a player slot.
func (g *Game) HasPlayer(u *User) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return indexOfUser(g.players, u) >= 0
}

// HasSpectator reports whether the user occupies a spectator slot.
func (g *Game) HasSpectator(u *User) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return indexOfUser(g.spectators, u) >= 0
}

// HasMember reports whether the user occupies any slot in this game.
func (g *Game) HasMember(u *User) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return indexOfUser(g.players, u) >= 0 || indexOfUser(g.spectators, u) >= 0
}

// PlayerCount returns the number of occupied player slots.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// MemberCount returns the number of occupied slots across both rosters.
func (g *Game) MemberCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players) + len(g.spectators)
}

// UpdateOptions propagates new options into the owned instance in place and tells the
// members. Holders of the old pointer observe the new values without re-fetching.
func (g *Game) UpdateOptions(n *GameOptions) {
	g.options.Update(n)

	g.Broadcast(NewQueuedMessage(TypeGameEvent, map[string]any{
		"event":   EventOptionsChanged,
		"gameId":  g.id,
		"options": g.options.Serialize(false),
	}))
	g.logger.Info().Msg("Game options updated")
}

// Broadcast enqueues the message to every player and spectator.
func (g *Game) Broadcast(msg QueuedMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcastLocked(msg)
}

// Info builds the serializable view of this game. includePassword selects the
// privileged options view and must only be true for members.
func (g *Game) Info(includePassword bool) GameInfo {
	g.mu.Lock()
	info := GameInfo{
		ID:         g.id,
		Players:    nicknames(g.players),
		Spectators: nicknames(g.spectators),
	}
	if g.host != nil {
		info.Host = g.host.Nickname()
	}
	g.mu.Unlock()

	info.HasPassword = g.options.Password() != ""
	info.Options = g.options.Serialize(includePassword)
	return info
}

func (g *Game) broadcastLocked(msg QueuedMessage) {
	for _, u := range g.players {
		u.EnqueueMessage(msg)
	}
	for _, u := range g.spectators {
		u.EnqueueMessage(msg)
	}
}

// electHostLocked promotes the longest-standing player after the host left. An empty
// game keeps a nil host until cleanup collects it.
func (g *Game) electHostLocked() {
	if len(g.players) == 0 {
		g.host = nil
		return
	}

	g.host = g.players[0]
	g.broadcastLocked(NewQueuedMessage(TypeGameEvent, map[string]any{
		"event":    EventHostChange,
		"gameId":   g.id,
		"nickname": g.host.Nickname(),
	}))
}

func (g *Game) maybeCleanupLocked() {
	if len(g.players) > 0 || len(g.spectators) > 0 || g.cleanup == nil {
		return
	}

	select {
	case g.cleanup <- g.id:
	default:
		g.logger.Warn().Msg("Manager cleanup channel full, skipping empty-game notification")
	}
}

func indexOfUser(list []*User, u *User) int {
	for i, other := range list {
		if other == u {
			return i
		}
	}
	return -1
}

func nicknames(list []*User) []string {
	names := make([]string, 0, len(list))
	for _, u := range list {
		names = append(names, u.Nickname())
	}
	return names
}

/*
Package game contains the in-memory presence core of the party-game server.

This file defines the Registry of all connected users, keyed by nickname with a
secondary session-id index. It is the set the liveness supervisor sweeps and the
fan-out target for server-wide player events.
*/
package game

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/logx"
)

// Server-wide player events broadcast to everyone connected.
const (
	EventNewPlayer  = "new_player"
	EventPlayerQuit = "player_quit"
)

// Registry tracks every connected user.
type Registry struct {
	mu        sync.RWMutex
	byNick    map[string]*User
	bySession map[string]*User

	floodCount  int
	floodWindow time.Duration

	logger zerolog.Logger
}

// NewRegistry constructs an empty registry. floodCount and floodWindow configure the
// chat-flood window applied to each admitted user; zero values keep the defaults.
func NewRegistry(floodCount int, floodWindow time.Duration) *Registry {
	return &Registry{
		byNick:      make(map[string]*User),
		bySession:   make(map[string]*User),
		floodCount:  floodCount,
		floodWindow: floodWindow,
		logger:      logx.Logger().With().Str("component", "UserRegistry").Logger(),
	}
}

// CheckAndAdd admits the user unless its nickname is already taken
// (case-insensitive). On success everyone else is told a new player connected.
func (r *Registry) CheckAndAdd(u *User) *errs.CustomError {
	key := strings.ToLower(u.Nickname())

	r.mu.Lock()
	if _, taken := r.byNick[key]; taken {
		r.mu.Unlock()
		return errs.NewError(errs.ErrNicknameInUse)
	}

	u.setFloodPolicy(r.floodCount, r.floodWindow)
	r.byNick[key] = u
	r.bySession[u.SessionID()] = u
	total := len(r.byNick)
	r.mu.Unlock()

	r.logger.Info().Str("nickname", u.Nickname()).Int("connected", total).Msg("User connected")

	r.Broadcast(NewQueuedMessage(TypePlayerEvent, map[string]any{
		"event":    EventNewPlayer,
		"nickname": u.Nickname(),
	}), u)
	return nil
}

// Remove forgets the user. Removing an unknown user is a no-op, so the eviction path
// and an explicit logout can race harmlessly.
func (r *Registry) Remove(u *User) {
	key := strings.ToLower(u.Nickname())

	r.mu.Lock()
	current, ok := r.byNick[key]
	if !ok || current != u {
		r.mu.Unlock()
		return
	}
	delete(r.byNick, key)
	delete(r.bySession, u.SessionID())
	total := len(r.byNick)
	r.mu.Unlock()

	r.logger.Info().Str("nickname", u.Nickname()).Int("connected", total).Msg("User removed")

	r.Broadcast(NewQueuedMessage(TypePlayerEvent, map[string]any{
		"event":    EventPlayerQuit,
		"nickname": u.Nickname(),
	}), u)
}

// GetByNickname returns the connected user with that nickname (case-insensitive),
// or nil.
func (r *Registry) GetByNickname(nickname string) *User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byNick[strings.ToLower(nickname)]
}

// GetBySession returns the connected user owning that session id, or nil.
func (r *Registry) GetBySession(sessionID string) *User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bySession[sessionID]
}

// HasNickname reports whether the nickname is taken.
func (r *Registry) HasNickname(nickname string) bool {
	return r.GetByNickname(nickname) != nil
}

// Users returns a snapshot of every connected user.
func (r *Registry) Users() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*User, 0, len(r.byNick))
	for _, u := range r.byNick {
		users = append(users, u)
	}
	return users
}

// Count returns the number of connected users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byNick)
}

// Broadcast enqueues the message to every connected user except the excluded one
// (pass nil to reach everyone).
func (r *Registry) Broadcast(msg QueuedMessage, exclude *User) {
	for _, u := range r.Users() {
		if u != exclude {
			u.EnqueueMessage(msg)
		}
	}
}

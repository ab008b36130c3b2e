/*
Package game contains the in-memory presence core of the party-game server.

This file defines the Manager, the registry of all live games. It allocates game
ids, seats the creating host, lists games for the lobby, and collects games that
emptied out.
*/
package game

import (
	"sync"

	"github.com/rs/zerolog"

	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/logx"
	"cardparty/internal/pkg/randx"
)

const cleanupChannelBuffer = 16

// Manager coordinates all active games.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*Game

	// cleanup receives ids of games whose last member left. It is never closed:
	// an eviction still in flight during shutdown may empty a game, and its
	// notification must land in the buffer, not panic.
	cleanup chan string

	// done stops the cleanup loop.
	done chan struct{}

	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewManager constructs a game manager and starts its cleanup loop.
func NewManager() *Manager {
	m := &Manager{
		games:   make(map[string]*Game),
		cleanup: make(chan string, cleanupChannelBuffer),
		done:    make(chan struct{}),
		logger:  logx.Logger().With().Str("component", "GameManager").Logger(),
	}

	m.wg.Add(1)
	go m.runCleanupLoop()

	return m
}

// CreateGame allocates an id, creates the game and seats the host as its first
// player. Fails when the host is already in another game.
func (m *Manager) CreateGame(host *User, options *GameOptions) (*Game, *errs.CustomError) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for {
		candidate, err := randx.GameID()
		if err != nil {
			m.logger.Error().Err(err).Msg("Failed to generate game id")
			return nil, errs.NewError(errs.ErrUnknown)
		}
		if _, taken := m.games[candidate]; !taken {
			id = candidate
			break
		}
	}

	g := NewGame(id, host, options, m.cleanup)
	if joinErr := g.AddPlayer(host); joinErr != nil {
		return nil, joinErr
	}

	m.games[id] = g
	m.logger.Info().Str("game_id", id).Str("host", host.Nickname()).Msg("Game created")
	return g, nil
}

// Get returns the game with the given id, or nil.
func (m *Manager) Get(id string) *Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.games[id]
}

// List returns the listing view of every live game. Passwords are never included in
// listings.
func (m *Manager) List() []GameInfo {
	m.mu.RLock()
	games := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.mu.RUnlock()

	infos := make([]GameInfo, 0, len(games))
	for _, g := range games {
		infos = append(infos, g.Info(false))
	}
	return infos
}

// Remove drops the game from the registry. Members, if any remain, keep their
// back-references until removed through the game itself.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[id]; ok {
		delete(m.games, id)
		m.logger.Info().Str("game_id", id).Msg("Game removed")
	}
}

// Shutdown stops the cleanup loop. Empty-game notifications arriving afterwards are
// absorbed by the channel buffer and dropped with the process.
func (m *Manager) Shutdown() {
	close(m.done)
	m.wg.Wait()
	m.logger.Info().Msg("Game manager shut down")
}

// runCleanupLoop drops games as they report themselves empty.
func (m *Manager) runCleanupLoop() {
	defer m.wg.Done()

	for {
		select {
		case id := <-m.cleanup:
			m.mu.Lock()
			if g, ok := m.games[id]; ok && g.MemberCount() == 0 {
				delete(m.games, id)
				m.logger.Info().Str("game_id", id).Msg("Empty game collected")
			}
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

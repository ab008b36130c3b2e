/*
Package game contains the in-memory presence core of the party-game server.

This file defines the Supervisor, the periodic liveness sweep. Users idle past the
ping threshold get a PING enqueued; users still silent past the eviction threshold
with a ping outstanding are marked invalid, pulled out of their game and dropped
from the registry. Eviction is a lifecycle transition, never an error.
*/
package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cardparty/internal/pkg/logx"
)

const (
	// DefaultSweepInterval is how often the supervisor walks the registry.
	DefaultSweepInterval = 5 * time.Second

	// DefaultPingAfter is how long a user may be silent before being pinged.
	DefaultPingAfter = 20 * time.Second

	// DefaultEvictAfter is how long a user may be silent, with a ping outstanding,
	// before being evicted. Must exceed DefaultPingAfter.
	DefaultEvictAfter = 60 * time.Second
)

// Supervisor periodically sweeps the user registry for dead connections.
type Supervisor struct {
	registry *Registry

	interval   time.Duration
	pingAfter  time.Duration
	evictAfter time.Duration

	now    func() time.Time
	logger zerolog.Logger
}

// NewSupervisor constructs a supervisor over the given registry. Non-positive
// durations fall back to the defaults.
func NewSupervisor(registry *Registry, interval, pingAfter, evictAfter time.Duration) *Supervisor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if pingAfter <= 0 {
		pingAfter = DefaultPingAfter
	}
	if evictAfter <= 0 {
		evictAfter = DefaultEvictAfter
	}

	return &Supervisor{
		registry:   registry,
		interval:   interval,
		pingAfter:  pingAfter,
		evictAfter: evictAfter,
		now:        time.Now,
		logger:     logx.Logger().With().Str("component", "PresenceSupervisor").Logger(),
	}
}

// Run sweeps until the context is cancelled. Each pass either fully evicts a user or
// leaves it untouched, so shutdown mid-sweep never strands half-evicted state.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.interval).
		Dur("ping_after", s.pingAfter).
		Dur("evict_after", s.evictAfter).
		Msg("Liveness sweep started")

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-ctx.Done():
			s.logger.Info().Msg("Liveness sweep stopped")
			return
		}
	}
}

// sweep walks a snapshot of the registry once. A silent user is pinged each pass
// until it responds; one that stays silent past the eviction threshold with a ping
// outstanding is invalidated and deregistered.
func (s *Supervisor) sweep() {
	now := s.now()

	for _, u := range s.registry.Users() {
		idle := now.Sub(s.lastSeen(u))
		if idle < s.pingAfter {
			continue
		}

		if u.IsWaitingPong() && idle >= s.evictAfter {
			s.logger.Info().
				Str("nickname", u.Nickname()).
				Dur("idle", idle).
				Msg("Evicting unresponsive user")

			u.NoLongerValid()
			s.registry.Remove(u)
			continue
		}

		u.SendPing()
	}
}

// lastSeen returns the most recent proof of life for the user, from either side of
// the connection.
func (s *Supervisor) lastSeen(u *User) time.Time {
	action := u.LastUserAction()
	received := u.LastReceivedEvents()
	if received.After(action) {
		return received
	}
	return action
}

/*
Package game contains the in-memory presence core of the party-game server.

This file defines the User struct: a connected participant's identity, its liveness
bookkeeping, the chat-flood window, and the routing of outbound messages to the
currently attached EventSender.
*/
package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/logx"
)

const (
	// DefaultChatFloodCount is the number of chat messages the flood window holds.
	DefaultChatFloodCount = 10

	// DefaultChatFloodWindow is the duration the flood window spans.
	DefaultChatFloodWindow = 5 * time.Second
)

// User represents one connected participant. Identity fields are immutable after
// construction; all runtime state is guarded by mu.
type User struct {
	nickname  string
	hostname  string
	sessionID string
	admin     bool

	mu sync.Mutex

	// lastMessageTimes holds the timestamps of the most recent chat messages in
	// ascending order, never longer than floodCount entries.
	lastMessageTimes []time.Time

	lastUserAction     time.Time
	lastReceivedEvents time.Time
	waitingPong        bool
	valid              bool
	currentGame        *Game
	eventsSender       EventSender

	floodCount  int
	floodWindow time.Duration
	now         func() time.Time

	logger zerolog.Logger
}

// NewUser creates a connected user from the identity the session layer established.
func NewUser(nickname, hostname, sessionID string, admin bool) *User {
	now := time.Now()
	return &User{
		nickname:       nickname,
		hostname:       hostname,
		sessionID:      sessionID,
		admin:          admin,
		valid:          true,
		lastUserAction: now,
		floodCount:     DefaultChatFloodCount,
		floodWindow:    DefaultChatFloodWindow,
		now:            time.Now,
		logger: logx.Logger().With().
			Str("nickname", nickname).
			Str("session_id", sessionID).
			Logger(),
	}
}

// Nickname returns the user's display name.
func (u *User) Nickname() string { return u.nickname }

// Hostname returns the client's network origin, kept for audit and moderation.
func (u *User) Hostname() string { return u.hostname }

// SessionID returns the opaque per-connection-session identifier.
func (u *User) SessionID() string { return u.sessionID }

// IsAdmin reports whether the user has the admin privilege tier.
func (u *User) IsAdmin() bool { return u.admin }

// setFloodPolicy overrides the chat-flood window bounds; called by the registry
// when a user is admitted, before any concurrent access exists.
func (u *User) setFloodPolicy(count int, window time.Duration) {
	if count > 0 {
		u.floodCount = count
	}
	if window > 0 {
		u.floodWindow = window
	}
}

// EstablishedEventsConnection attaches the delivery channel for the poll request that
// just arrived. A newer connection supersedes any previous one; closing the old one is
// the transport's responsibility.
func (u *User) EstablishedEventsConnection(sender EventSender) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.eventsSender = sender
}

// EnqueueMessage hands the message to the attached delivery channel, or drops it when
// none is attached. Buffering between polls is the sender's concern, not the user's.
func (u *User) EnqueueMessage(msg QueuedMessage) {
	u.mu.Lock()
	sender := u.eventsSender
	u.mu.Unlock()

	if sender != nil {
		sender.Enqueue(msg)
	}
}

// UserDidSomething records that the transport observed any client activity. Activity
// doubles as the pong for an outstanding liveness ping.
func (u *User) UserDidSomething() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastUserAction = u.now()
	u.waitingPong = false
}

// UserReceivedEvents records a successful event delivery or an explicit pong.
func (u *User) UserReceivedEvents() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastReceivedEvents = u.now()
	u.waitingPong = false
}

// LastUserAction returns the timestamp of the last observed client activity.
func (u *User) LastUserAction() time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastUserAction
}

// LastReceivedEvents returns the timestamp of the last successful delivery or pong.
func (u *User) LastReceivedEvents() time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastReceivedEvents
}

// SendPing marks the user as awaiting proof of life and enqueues a PING message.
// Safe to repeat while already waiting; the flag is simply set again.
func (u *User) SendPing() {
	u.mu.Lock()
	u.waitingPong = true
	u.mu.Unlock()

	u.EnqueueMessage(NewQueuedMessage(TypePing, nil))
}

// IsWaitingPong reports whether a liveness ping is outstanding and unanswered.
func (u *User) IsWaitingPong() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.waitingPong
}

// IsValid reports whether the user is still considered connected. The flag is
// monotonic: once false it never becomes true again.
func (u *User) IsValid() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.valid
}

// CheckChatFlood enforces the sliding-window chat rate limit. It fails when the window
// is full and its oldest entry is still younger than the window duration; otherwise a
// full window has exactly one slot freed and the check passes. Callers must record the
// new message time themselves after a passing check.
func (u *User) CheckChatFlood() *errs.CustomError {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.lastMessageTimes) >= u.floodCount {
		head := u.lastMessageTimes[0]
		if u.now().Sub(head) < u.floodWindow {
			return errs.NewError(errs.ErrTooFast)
		}
		u.lastMessageTimes = u.lastMessageTimes[1:]
	}

	return nil
}

// RecordMessageTime appends the current time to the flood window. Call only after a
// passing CheckChatFlood, which guarantees there is room.
func (u *User) RecordMessageTime() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastMessageTimes = append(u.lastMessageTimes, u.now())
}

// NoLongerValid marks the user as permanently disconnected, removing it from its
// current game first. Calling it again is a no-op beyond already being invalid.
func (u *User) NoLongerValid() {
	u.mu.Lock()
	g := u.currentGame
	u.mu.Unlock()

	if g != nil {
		g.RemovePlayer(u)
		g.RemoveSpectator(u)
	}

	u.mu.Lock()
	u.valid = false
	u.mu.Unlock()

	u.logger.Info().Msg("User no longer valid")
}

// Game returns the game this user is currently participating in, or nil.
func (u *User) Game() *Game {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.currentGame
}

// joinGame marks the given game as this user's active game. Only Game may call this;
// it is the membership half of the roster/back-reference pair that Game keeps atomic.
func (u *User) joinGame(g *Game) *errs.CustomError {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.currentGame != nil && u.currentGame != g {
		return errs.NewError(errs.ErrAlreadyInGame)
	}

	u.currentGame = g
	return nil
}

// leaveGame clears the membership back-reference, but only when it still points at the
// given game, so a stale removal never clobbers a newer membership. Only Game may call
// this.
func (u *User) leaveGame(g *Game) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.currentGame == g {
		u.currentGame = nil
	}
}

/*
Package game contains the in-memory presence core of the party-game server: connected
users, games and their rosters, game options, outbound event routing, and the liveness
sweep that evicts silently departed clients.

This file defines the QueuedMessage value and the EventSender contract through which
messages reach a client's currently parked delivery connection.
*/
package game

// MessageType tags a QueuedMessage so the client can dispatch it without inspecting
// the payload.
type MessageType string

const (
	// TypePing is a liveness probe; any subsequent client activity counts as the pong.
	TypePing MessageType = "PING"

	// TypePlayerEvent carries server-wide player events (connect, disconnect).
	TypePlayerEvent MessageType = "PLAYER_EVENT"

	// TypeGameEvent carries game-scoped events (options changed, roster changed).
	TypeGameEvent MessageType = "GAME_EVENT"

	// TypeGamePlayerEvent carries events about a single player within a game.
	TypeGamePlayerEvent MessageType = "GAME_PLAYER_EVENT"

	// TypeChat carries chat lines, either global or game-scoped.
	TypeChat MessageType = "CHAT"
)

// QueuedMessage is an immutable envelope placed into a user's outbound delivery path.
// The payload is opaque to this package; it is serialized as-is by the transport.
type QueuedMessage struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

// NewQueuedMessage builds a message envelope.
func NewQueuedMessage(msgType MessageType, payload any) QueuedMessage {
	return QueuedMessage{Type: msgType, Payload: payload}
}

// EventSender is the delivery channel behind one parked client connection.
//
// Implementations must accept Enqueue from any goroutine, preserve FIFO order, and
// eventually flush every accepted message to exactly one client as a single response,
// after which the sender becomes inert and silently discards further messages.
type EventSender interface {
	Enqueue(msg QueuedMessage)
}

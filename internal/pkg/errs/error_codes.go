/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally within
the server and in responses to clients. Every one of them is recoverable at the
request boundary; none is process-fatal.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON in the body.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the per-IP request rate limit was hit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Game and Chat Business Logic Errors
const (
	// ErrGameNotFound indicates that no game exists under the requested id.
	ErrGameNotFound = 2101

	// ErrGameFull indicates that the game's player roster is at its limit.
	ErrGameFull = 2102

	// ErrSpectatorsFull indicates that the game's spectator roster is at its limit.
	ErrSpectatorsFull = 2103

	// ErrAlreadyInGame indicates a join attempt while already a member of another game.
	ErrAlreadyInGame = 2104

	// ErrNotInGame indicates an in-game operation by a user who is not a member.
	ErrNotInGame = 2105

	// ErrWrongPassword indicates a join attempt with a missing or incorrect password.
	ErrWrongPassword = 2106

	// ErrNotGameHost indicates a host-only operation attempted by a non-host member.
	ErrNotGameHost = 2107

	// ErrTooFast indicates the chat-flood window rejected the message. The single chat
	// action is refused; the user stays connected.
	ErrTooFast = 2201

	// ErrChatMessageTooLong indicates the chat message exceeded the length limit.
	ErrChatMessageTooLong = 2202

	// ErrCardSetNotFound indicates a requested card set id could not be resolved.
	ErrCardSetNotFound = 2301
)

// 3xxx: Session and Security Errors
const (
	// ErrNicknameInvalid indicates the requested nickname failed validation.
	ErrNicknameInvalid = 3001

	// ErrNicknameInUse indicates the requested nickname is already connected.
	ErrNicknameInUse = 3002

	// ErrSessionNotFound indicates the session token references no connected user,
	// typically after an eviction or a server restart.
	ErrSessionNotFound = 3003

	// ErrUnauthorized indicates a missing or invalid session token.
	ErrUnauthorized = 3004
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)

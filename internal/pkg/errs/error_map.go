/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application
// error code. The key is the error code (int), and the value contains the user
// message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Game and Chat Business Logic Errors
	ErrGameNotFound:       {Code: ErrGameNotFound, Message: "Game not found."},
	ErrGameFull:           {Code: ErrGameFull, Message: "This game is full."},
	ErrSpectatorsFull:     {Code: ErrSpectatorsFull, Message: "No spectator slots left in this game."},
	ErrAlreadyInGame:      {Code: ErrAlreadyInGame, Message: "You are already in a game."},
	ErrNotInGame:          {Code: ErrNotInGame, Message: "You are not in this game."},
	ErrWrongPassword:      {Code: ErrWrongPassword, Message: "Wrong game password."},
	ErrNotGameHost:        {Code: ErrNotGameHost, Message: "Only the game host can do that."},
	ErrTooFast:            {Code: ErrTooFast, Message: "You are chatting too fast. Slow down.", Status: http.StatusTooManyRequests},
	ErrChatMessageTooLong: {Code: ErrChatMessageTooLong, Message: "Message is too long."},
	ErrCardSetNotFound:    {Code: ErrCardSetNotFound, Message: "One or more selected card sets do not exist."},

	// 3xxx: Session and Security Errors
	ErrNicknameInvalid: {Code: ErrNicknameInvalid, Message: "Invalid nickname."},
	ErrNicknameInUse:   {Code: ErrNicknameInUse, Message: "Nickname is already in use."},
	ErrSessionNotFound: {Code: ErrSessionNotFound, Message: "Session expired. Please reconnect.", Status: http.StatusUnauthorized},
	ErrUnauthorized:    {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}

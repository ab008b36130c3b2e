package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the session-token claims. A token proves the holder owns a
// connected session; the presence state itself lives server-side in the user
// registry.
type Payload struct {
	// StandardClaims embeds Exp, Iat and Iss, required for validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// SessionID is the opaque identifier of the connection session, issued at
	// session establishment and used to look the user up in the registry.
	SessionID string `json:"session_id"`

	// Nickname is the display name bound to the session.
	Nickname string `json:"nickname"`

	// Admin marks the privilege tier granted at establishment.
	Admin bool `json:"admin"`
}

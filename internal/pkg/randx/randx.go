/*
Package randx provides cryptographically secure random identifiers.

It generates fixed-length Base62 game ids and UUID session ids.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// GameIDLength is the fixed length of generated game ids.
	GameIDLength = 6
)

var base62Len = big.NewInt(int64(len(Base62Chars)))

// GameID generates a Base62 game id using crypto/rand.
func GameID() (string, error) {
	result := make([]byte, GameIDLength)

	for i := range GameIDLength {
		num, err := rand.Int(rand.Reader, base62Len)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for game id: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// IsValidGameID checks length and character set of a game id.
func IsValidGameID(id string) bool {
	if len(id) != GameIDLength {
		return false
	}

	for _, char := range id {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// SessionID generates the opaque per-connection-session identifier handed out at
// session establishment.
func SessionID() string {
	return uuid.New().String()
}

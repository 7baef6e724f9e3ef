/*
Package randx generates the identifiers the relay hands out: UUID session and
message IDs, plus Base62 fallback nicknames for clients that join without one.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the character set used for generated nickname suffixes.
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 character set.
	Base62Len = int64(len(Base62Chars))

	// NicknameSuffixLength is the number of random characters appended to the
	// fallback nickname prefix.
	NicknameSuffixLength = 6
)

// SessionID generates the server-side identifier for a new connection.
// Clients address each other by this value, so it doubles as the direct
// delivery target name.
func SessionID() string {
	return uuid.New().String()
}

// MessageID generates the authoritative identifier a message carries after
// server receipt, replacing whatever the client minted locally.
func MessageID() string {
	return uuid.New().String()
}

// Nickname generates a "User_" prefixed display name from crypto/rand,
// used when a client announces itself with an empty name.
func Nickname() (string, error) {
	result := make([]byte, NicknameSuffixLength)

	for i := 0; i < NicknameSuffixLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for nickname: %v", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return "User_" + string(result), nil
}

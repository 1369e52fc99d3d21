// Package gameid generates sortable identifiers for games: a UUIDv7 written
// as 26 lowercase Crockford base32 characters.
package gameid

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Crockford base32, lowercase.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generate returns a new game ID. IDs generated later sort after earlier
// ones.
func Generate() string {
	return Encode(uuid.Must(uuid.NewV7()))
}

// Encode writes a UUID as 26 base32 characters, right aligned so the first
// character carries only the top three bits.
func Encode(id uuid.UUID) string {
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])

	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// Validate checks that id is a well formed game ID.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("game ID must be exactly 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}

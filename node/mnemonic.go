package node

import (
	"strings"

	"github.com/google/uuid"
)

var (
	mnemonicOnsets = [16]string{
		"b", "d", "f", "g", "h", "k", "l", "m",
		"n", "p", "r", "s", "t", "v", "w", "z",
	}
	mnemonicVowels = [4]string{"a", "e", "i", "o"}
)

// Mnemonic derives a pronounceable default name from a UUID by turning its
// leading bytes into consonant-vowel syllables. Collisions are fine; the
// registry disambiguates names with a numeric suffix.
func Mnemonic(id uuid.UUID) string {
	var sb strings.Builder
	for _, b := range id[:4] {
		sb.WriteString(mnemonicOnsets[b>>4])
		sb.WriteString(mnemonicVowels[b&0x03])
	}
	return sb.String()
}
